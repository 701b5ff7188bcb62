// Package orchestrator implements the primary's sync-first replication
// protocol: replicate to the backup first, then apply locally, then compare
// results (SPEC_FULL.md §4.4). It is the one place that knows about both the
// wallet engine and the replication client; the HTTP edge only knows about
// the orchestrator.
package orchestrator

import (
	"context"
	"errors"
	"math"
	"sync"

	"bank-api/internal/domain"
	"bank-api/internal/events"
	"bank-api/internal/failover"
	"bank-api/internal/metrics"
	"bank-api/internal/pkg/logging"
	"bank-api/internal/replication/rpc"
	"bank-api/internal/wallet"
)

const balanceEpsilon = 1e-9

// Orchestrator sequences replication and local apply for the primary.
type Orchestrator struct {
	engine    *wallet.Engine
	replica   *rpc.Client
	failover  *failover.Manager
	publisher events.Publisher

	// slots serializes replication per account_id: the order in which a
	// given account's operations are persisted on the primary must equal
	// the order on the backup during NORMAL mode (SPEC_FULL.md §5). Held
	// from just before Replicate until apply returns (after the local
	// engine call, the divergence check and the event publish) —
	// distinct from the engine's own internal per-account lock, which only
	// guards the local balance/WAL critical section.
	slotsMu sync.Mutex
	slots   map[string]*sync.Mutex
}

func New(engine *wallet.Engine, replica *rpc.Client, fm *failover.Manager, publisher events.Publisher) *Orchestrator {
	return &Orchestrator{
		engine:    engine,
		replica:   replica,
		failover:  fm,
		publisher: publisher,
		slots:     make(map[string]*sync.Mutex),
	}
}

func (o *Orchestrator) slotFor(accountID string) *sync.Mutex {
	o.slotsMu.Lock()
	defer o.slotsMu.Unlock()

	m, ok := o.slots[accountID]
	if !ok {
		m = &sync.Mutex{}
		o.slots[accountID] = m
	}
	return m
}

// Deposit replicates-then-applies a deposit. The sequencing logic shared
// with Withdraw lives in apply; the two differ only in the transaction kind.
func (o *Orchestrator) Deposit(ctx context.Context, accountID string, amount float64, transactionID string) (domain.Transaction, error) {
	return o.apply(ctx, domain.Transaction{
		TransactionID: transactionID,
		AccountID:     accountID,
		Amount:        amount,
		Kind:          domain.Deposit,
	})
}

// Withdraw replicates-then-applies a withdrawal.
func (o *Orchestrator) Withdraw(ctx context.Context, accountID string, amount float64, transactionID string) (domain.Transaction, error) {
	return o.apply(ctx, domain.Transaction{
		TransactionID: transactionID,
		AccountID:     accountID,
		Amount:        amount,
		Kind:          domain.Withdraw,
	})
}

// GetBalance bypasses replication entirely and is answered by the primary
// engine (SPEC_FULL.md §4.4).
func (o *Orchestrator) GetBalance(accountID string) float64 {
	return o.engine.GetBalance(accountID)
}

// apply implements SPEC_FULL.md §4.4 steps 1-5 for either operation kind.
func (o *Orchestrator) apply(ctx context.Context, txn domain.Transaction) (domain.Transaction, error) {
	slot := o.slotFor(txn.AccountID)
	slot.Lock()
	defer slot.Unlock()

	var backupResult *domain.Transaction

	if o.failover.Mode() == failover.Normal {
		result, err := o.replica.Replicate(ctx, txn)
		switch {
		case err == nil:
			backupResult = &result
			outcome := "ok"
			if !result.Success {
				outcome = "business_failure"
			}
			metrics.ReplicationRoundsTotal.WithLabelValues(outcome).Inc()

		case errors.Is(err, rpc.ErrUnreachable):
			// A logical reply, even success=false, is returned as a
			// non-error result by rpc.Client.Replicate, so only a transport
			// failure lands here — transition to FAILOVER and continue
			// locally per SPEC_FULL.md §4.4 step 2.
			o.failover.ForceFailover()
			metrics.ReplicationRoundsTotal.WithLabelValues("unreachable").Inc()
			logging.Warn("replication unreachable, proceeding locally", map[string]interface{}{
				"transaction_id": txn.TransactionID,
				"account_id":     txn.AccountID,
				"error":          err.Error(),
			})

		default:
			// The backup answered but rejected the request (its engine
			// returned an error). It is reachable, so the mode stays NORMAL;
			// the primary applies locally with no backup result to compare.
			logging.Error("backup rejected replicated transaction", err, map[string]interface{}{
				"transaction_id": txn.TransactionID,
				"account_id":     txn.AccountID,
			})
		}
	}

	localResult, err := o.applyLocally(txn)
	if err != nil {
		return domain.Transaction{}, err
	}

	if backupResult != nil {
		o.checkDivergence(txn.TransactionID, localResult, *backupResult)
	}

	if localResult.Status == domain.Committed {
		if pubErr := o.publisher.PublishCommitted(events.FromTransaction(localResult)); pubErr != nil {
			logging.Warn("event publish failed", map[string]interface{}{
				"transaction_id": localResult.TransactionID,
				"error":          pubErr.Error(),
			})
		}
	}

	return localResult, nil
}

func (o *Orchestrator) applyLocally(txn domain.Transaction) (domain.Transaction, error) {
	switch txn.Kind {
	case domain.Deposit:
		return o.engine.Deposit(txn.AccountID, txn.Amount, txn.TransactionID)
	case domain.Withdraw:
		return o.engine.Withdraw(txn.AccountID, txn.Amount, txn.TransactionID)
	default:
		return domain.Transaction{}, wallet.ErrInvalidAmount
	}
}

// checkDivergence compares the primary's and backup's results for the same
// operation during NORMAL mode. A mismatch is a fatal invariant violation
// per SPEC_FULL.md §4.4 step 4: logged at ERROR and counted, but the
// primary's own record is still what's returned to the client.
func (o *Orchestrator) checkDivergence(transactionID string, primary, backup domain.Transaction) {
	successMatches := primary.Success == backup.Success
	balanceMatches := !primary.Success || math.Abs(primary.NewBalance-backup.NewBalance) < balanceEpsilon

	if successMatches && balanceMatches {
		return
	}

	metrics.ReplicationDivergenceTotal.Inc()
	logging.Error("replication divergence detected", nil, map[string]interface{}{
		"transaction_id": transactionID,
		"primary":        primary,
		"backup":         backup,
	})
}
