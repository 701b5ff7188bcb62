// Package wallet implements the replicated transaction engine: the in-memory
// balance map and transaction ledger, the WAL write/commit/rollback sequence,
// and idempotent deposit/withdraw. It is the one component both the primary
// and the backup processes run identically and independently (see
// SPEC_FULL.md §4.1).
package wallet

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"bank-api/internal/domain"
	"bank-api/internal/metrics"
	"bank-api/internal/walfile"
)

var (
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrEmptyAccountID  = errors.New("account_id must not be empty")
	ErrEmptyTxnID      = errors.New("transaction_id must not be empty")
	ErrAlreadyRecovered = errors.New("engine already recovered")
)

const insufficientBalanceMessage = "insufficient balance"

// Engine is the per-process wallet: one balance map, one ledger, one WAL.
// Two operations on the same account_id are strictly serialized via a
// striped per-account mutex (the same shape as the teacher's
// accountMutexes map, generalized from guarding Postgres round-trips to
// guarding in-memory balance + WAL writes). A separate engine-wide mutex
// protects the shared ledger index (the transaction_id -> Transaction map
// used for idempotent replay) since it is touched by every account's shard.
type Engine struct {
	ledger   *walfile.Ledger
	snapshot *walfile.Snapshot

	shardsMu sync.Mutex
	shards   map[string]*sync.Mutex

	indexMu sync.RWMutex
	index   map[string]domain.Transaction // transaction_id -> latest record
	balance map[string]float64            // account_id -> balance

	recovered bool
}

// New opens the ledger and snapshot at the given paths. Recover must be
// called once before any mutating operation is accepted.
func New(ledgerPath, snapshotPath string) (*Engine, error) {
	ledger, err := walfile.OpenLedger(ledgerPath)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		ledger:   ledger,
		snapshot: walfile.NewSnapshot(snapshotPath),
		shards:   make(map[string]*sync.Mutex),
		index:    make(map[string]domain.Transaction),
		balance:  make(map[string]float64),
	}
	return e, nil
}

// Recover scans the ledger for PENDING records left by a crash between the
// PENDING write and the COMMITTED write, rolls each one back (without
// touching the balance, since the balance effect is only durable once the
// COMMITTED record lands — see SPEC_FULL.md §4.1), and rebuilds the
// in-memory balance map and ledger index from the ledger, the source of
// truth. The snapshot file is never trusted over the ledger; it exists only
// to make a future fast-path possible, not to skip the ledger scan.
func (e *Engine) Recover() error {
	if e.recovered {
		return ErrAlreadyRecovered
	}

	records, err := e.ledger.ReadAll()
	if err != nil {
		return fmt.Errorf("wallet: recovery failed: %w", err)
	}

	balances := make(map[string]float64)
	index := make(map[string]domain.Transaction)

	for _, txn := range records {
		if txn.Status == domain.Pending {
			txn.Status = domain.RolledBack
			txn.Success = false
			txn.Message = "rolled back during crash recovery"
			if err := e.ledger.Append(txn); err != nil {
				return fmt.Errorf("wallet: recovery rollback append failed: %w", err)
			}
			metrics.WALRecoveryRolledBackTotal.Inc()
		}

		index[txn.TransactionID] = txn

		if txn.Status == domain.Committed && txn.Success {
			balances[txn.AccountID] = txn.NewBalance
		}
	}

	e.indexMu.Lock()
	e.index = index
	e.balance = balances
	e.indexMu.Unlock()

	if err := e.snapshot.Save(balances); err != nil {
		return fmt.Errorf("wallet: recovery snapshot flush failed: %w", err)
	}

	e.recovered = true
	return nil
}

func (e *Engine) shardFor(accountID string) *sync.Mutex {
	e.shardsMu.Lock()
	defer e.shardsMu.Unlock()

	m, ok := e.shards[accountID]
	if !ok {
		m = &sync.Mutex{}
		e.shards[accountID] = m
	}
	return m
}

// lookup returns the cached record for transactionID, if one exists, for
// idempotent replay: a known transaction_id returns its verbatim result
// without touching the WAL or the balance (SPEC_FULL.md §4.1).
func (e *Engine) lookup(transactionID string) (domain.Transaction, bool) {
	e.indexMu.RLock()
	defer e.indexMu.RUnlock()
	txn, ok := e.index[transactionID]
	return txn, ok
}

func (e *Engine) recordPending(txn domain.Transaction) error {
	if err := e.ledger.Append(txn); err != nil {
		return err
	}
	e.indexMu.Lock()
	e.index[txn.TransactionID] = txn
	e.indexMu.Unlock()
	return nil
}

func (e *Engine) commit(txn domain.Transaction, newBalance float64, balanceChanged bool) (domain.Transaction, error) {
	if err := e.ledger.Append(txn); err != nil {
		return domain.Transaction{}, err
	}

	e.indexMu.Lock()
	e.index[txn.TransactionID] = txn
	if balanceChanged {
		e.balance[txn.AccountID] = newBalance
	}
	e.indexMu.Unlock()

	return txn, nil
}

// Deposit credits amount to accountID under transactionID. Preconditions:
// amount > 0, accountID and transactionID non-empty. A repeat call with the
// same transactionID returns the cached result verbatim and has no further
// effect on the balance or the WAL.
func (e *Engine) Deposit(accountID string, amount float64, transactionID string) (domain.Transaction, error) {
	if err := validate(accountID, amount, transactionID); err != nil {
		return domain.Transaction{}, err
	}

	if cached, ok := e.lookup(transactionID); ok {
		return cached, nil
	}

	shard := e.shardFor(accountID)
	shard.Lock()
	defer shard.Unlock()

	// Re-check under the shard lock: two concurrent callers with the same
	// transactionID for the same account could both pass the first lookup.
	if cached, ok := e.lookup(transactionID); ok {
		return cached, nil
	}

	pending := domain.Transaction{
		TransactionID: transactionID,
		AccountID:     accountID,
		Amount:        amount,
		Kind:          domain.Deposit,
		Status:        domain.Pending,
		CreatedAt:     time.Now(),
	}
	if err := e.recordPending(pending); err != nil {
		return domain.Transaction{}, fmt.Errorf("wallet: deposit durability failure: %w", err)
	}

	e.indexMu.RLock()
	newBalance := e.balance[accountID] + amount
	e.indexMu.RUnlock()

	committed := pending
	committed.Status = domain.Committed
	committed.Success = true
	committed.NewBalance = newBalance

	return e.commit(committed, newBalance, true)
}

// Withdraw debits amount from accountID under transactionID. An unknown
// account is treated as balance 0 (withdrawal fails with insufficient
// balance). Insufficient balance is a business failure, not an error: it
// still commits a COMMITTED record with success=false so both replicas
// record the same decided outcome (SPEC_FULL.md §4.4).
func (e *Engine) Withdraw(accountID string, amount float64, transactionID string) (domain.Transaction, error) {
	if err := validate(accountID, amount, transactionID); err != nil {
		return domain.Transaction{}, err
	}

	if cached, ok := e.lookup(transactionID); ok {
		return cached, nil
	}

	shard := e.shardFor(accountID)
	shard.Lock()
	defer shard.Unlock()

	if cached, ok := e.lookup(transactionID); ok {
		return cached, nil
	}

	pending := domain.Transaction{
		TransactionID: transactionID,
		AccountID:     accountID,
		Amount:        amount,
		Kind:          domain.Withdraw,
		Status:        domain.Pending,
		CreatedAt:     time.Now(),
	}
	if err := e.recordPending(pending); err != nil {
		return domain.Transaction{}, fmt.Errorf("wallet: withdraw durability failure: %w", err)
	}

	e.indexMu.RLock()
	current := e.balance[accountID]
	e.indexMu.RUnlock()

	committed := pending
	committed.Status = domain.Committed

	if current < amount {
		committed.Success = false
		committed.Message = insufficientBalanceMessage
		committed.NewBalance = current
		return e.commit(committed, current, false)
	}

	newBalance := current - amount
	committed.Success = true
	committed.NewBalance = newBalance
	return e.commit(committed, newBalance, true)
}

// GetBalance is a pure read; unknown accounts return 0.
func (e *Engine) GetBalance(accountID string) float64 {
	e.indexMu.RLock()
	defer e.indexMu.RUnlock()
	return e.balance[accountID]
}

// Close releases the underlying ledger file handle.
func (e *Engine) Close() error {
	return e.ledger.Close()
}

func validate(accountID string, amount float64, transactionID string) error {
	if accountID == "" {
		return ErrEmptyAccountID
	}
	if transactionID == "" {
		return ErrEmptyTxnID
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
