package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"bank-api/internal/domain"
)

// ErrUnreachable distinguishes a transport-level failure (timeout, dial
// error, connection reset) from a logical reply (the backup responded with
// an engine result). Only ErrUnreachable feeds the failover manager; a
// logical reply with success=false is still a successful round trip
// (SPEC_FULL.md §4.2).
var ErrUnreachable = errors.New("rpc: backup unreachable")

// Client is the primary's stub for talking to the backup's replication
// server.
type Client struct {
	addr             string
	replicateTimeout time.Duration
	pingTimeout      time.Duration
}

func NewClient(addr string, replicateTimeout, pingTimeout time.Duration) *Client {
	return &Client{
		addr:             addr,
		replicateTimeout: replicateTimeout,
		pingTimeout:      pingTimeout,
	}
}

// Replicate sends the transaction to the backup and waits for its
// authoritative result. A dial failure, timeout, or connection reset is
// reported as ErrUnreachable. A reply with OK=false (the backup's engine
// returned an error) is reported as a separate, non-ErrUnreachable error.
// Any other reply (including a business failure like insufficient balance)
// is returned as a domain.Transaction.
func (c *Client) Replicate(ctx context.Context, txn domain.Transaction) (domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, c.replicateTimeout)
	defer cancel()

	req := Request{
		Method:        MethodApplyTransaction,
		Kind:          string(txn.Kind),
		AccountID:     txn.AccountID,
		Amount:        txn.Amount,
		TransactionID: txn.TransactionID,
	}

	var reply Reply
	if err := c.call(ctx, req, &reply); err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	if !reply.OK {
		return domain.Transaction{}, fmt.Errorf("rpc: backup rejected request: %s", reply.Error)
	}

	result := txn
	result.Status = domain.Committed
	result.Success = reply.Success
	result.NewBalance = reply.NewBalance
	result.Message = reply.Message
	return result, nil
}

// Ping checks backup liveness within a shorter timeout than Replicate.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.pingTimeout)
	defer cancel()

	var reply Reply
	if err := c.call(ctx, Request{Method: MethodPing}, &reply); err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if !reply.OK {
		return fmt.Errorf("%w: backup ping rejected: %s", ErrUnreachable, reply.Error)
	}
	return nil
}

func (c *Client) call(ctx context.Context, req Request, reply *Reply) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := writeFrame(conn, req); err != nil {
		return err
	}
	if err := readFrame(conn, reply); err != nil {
		return fmt.Errorf("read reply: %w", err)
	}
	return nil
}
