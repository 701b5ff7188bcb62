package events_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bank-api/internal/domain"
	"bank-api/internal/events"
)

func TestFromTransactionMapsEveryField(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	txn := domain.Transaction{
		TransactionID: "txn-1",
		AccountID:     "acc-1",
		Amount:        250,
		Kind:          domain.Withdraw,
		Status:        domain.Committed,
		Success:       true,
		NewBalance:    750,
		Message:       "",
		CreatedAt:     created,
	}

	event := events.FromTransaction(txn)

	assert.Equal(t, "txn-1", event.TransactionID)
	assert.Equal(t, "acc-1", event.AccountID)
	assert.Equal(t, "WITHDRAW", event.Kind)
	assert.Equal(t, 250.0, event.Amount)
	assert.True(t, event.Success)
	assert.Equal(t, 750.0, event.NewBalance)
	assert.Equal(t, created.Unix(), event.CreatedAt)
}

func TestNoOpPublisherNeverFails(t *testing.T) {
	var pub events.Publisher = events.NoOpPublisher{}
	assert.NoError(t, pub.PublishCommitted(events.TransactionCommittedEvent{}))
	assert.NoError(t, pub.Close())
}
