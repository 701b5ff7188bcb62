package failover_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bank-api/internal/failover"
)

// fakePinger lets tests drive the manager's probe loop without a live
// replication server.
type fakePinger struct {
	fail atomic.Bool
}

func (p *fakePinger) Ping(ctx context.Context) error {
	if p.fail.Load() {
		return errors.New("simulated unreachable backup")
	}
	return nil
}

func TestManagerStartsInNormalMode(t *testing.T) {
	m := failover.New(&fakePinger{}, time.Hour)
	assert.Equal(t, failover.Normal, m.Mode())
}

func TestForceFailoverTransitionsImmediately(t *testing.T) {
	m := failover.New(&fakePinger{}, time.Hour)
	m.ForceFailover()
	assert.Equal(t, failover.Failover, m.Mode())
}

func TestForceFailoverIsIdempotent(t *testing.T) {
	m := failover.New(&fakePinger{}, time.Hour)
	m.ForceFailover()
	m.ForceFailover()
	assert.Equal(t, failover.Failover, m.Mode())
}

func TestRunRecoversToNormalOnceBackupPingsSucceed(t *testing.T) {
	pinger := &fakePinger{}
	m := failover.New(pinger, 10*time.Millisecond)
	m.ForceFailover()
	assert.Equal(t, failover.Failover, m.Mode())

	go m.Run()
	defer m.Stop()

	assert.Eventually(t, func() bool {
		return m.Mode() == failover.Normal
	}, time.Second, 5*time.Millisecond, "a live backup should bring the manager back to NORMAL")
}

func TestRunTransitionsToFailoverWhenPingsFail(t *testing.T) {
	pinger := &fakePinger{}
	pinger.fail.Store(true)
	m := failover.New(pinger, 10*time.Millisecond)

	go m.Run()
	defer m.Stop()

	assert.Eventually(t, func() bool {
		return m.Mode() == failover.Failover
	}, time.Second, 5*time.Millisecond)
}

func TestStopTerminatesTheProbeLoop(t *testing.T) {
	m := failover.New(&fakePinger{}, 5*time.Millisecond)
	go m.Run()

	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return; probe loop may not have terminated")
	}
}
