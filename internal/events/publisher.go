// Package events publishes committed transactions to an external stream,
// generalized from the teacher's per-operation Kafka events
// (internal/infrastructure/messaging/{publisher.go,events.go}) into one
// TransactionCommittedEvent covering both deposit and withdraw. This is
// strictly a best-effort observability/integration side channel: it is
// published only after the orchestrator's synchronous replicate-then-apply
// protocol has already decided the transaction, and a publish failure never
// fails the client-visible request (SPEC_FULL.md §4.7).
package events

import (
	"bank-api/internal/domain"
)

// TransactionCommittedEvent mirrors a committed domain.Transaction for
// external consumers.
type TransactionCommittedEvent struct {
	TransactionID string  `json:"transaction_id"`
	AccountID     string  `json:"account_id"`
	Kind          string  `json:"kind"`
	Amount        float64 `json:"amount"`
	Success       bool    `json:"success"`
	NewBalance    float64 `json:"new_balance,omitempty"`
	Message       string  `json:"message,omitempty"`
	CreatedAt     int64   `json:"created_at_unix"`
}

// Publisher is implemented by the Kafka-backed publisher and by NoOp.
type Publisher interface {
	PublishCommitted(event TransactionCommittedEvent) error
	Close() error
}

// FromTransaction adapts a domain.Transaction into the wire event shape.
func FromTransaction(txn domain.Transaction) TransactionCommittedEvent {
	return TransactionCommittedEvent{
		TransactionID: txn.TransactionID,
		AccountID:     txn.AccountID,
		Kind:          string(txn.Kind),
		Amount:        txn.Amount,
		Success:       txn.Success,
		NewBalance:    txn.NewBalance,
		Message:       txn.Message,
		CreatedAt:     txn.CreatedAt.Unix(),
	}
}

// NoOpPublisher is substituted whenever Kafka is disabled or unreachable at
// startup, exactly as the teacher's messaging.NoOpEventPublisher degrades
// gracefully rather than failing the whole process.
type NoOpPublisher struct{}

func (NoOpPublisher) PublishCommitted(TransactionCommittedEvent) error { return nil }
func (NoOpPublisher) Close() error                                     { return nil }
