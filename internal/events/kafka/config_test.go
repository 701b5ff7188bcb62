package kafka_test

import (
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-api/internal/events/kafka"
)

func TestToSaramaConfigAppliesDurabilityFirstSettings(t *testing.T) {
	cfg := &kafka.Config{
		Brokers:      []string{"localhost:9092"},
		ClientID:     "wallet-service",
		MaxRetries:   5,
		RetryBackoff: 100 * time.Millisecond,
	}

	sc, err := cfg.ToSaramaConfig()
	require.NoError(t, err)

	assert.Equal(t, sarama.WaitForAll, sc.Producer.RequiredAcks)
	assert.True(t, sc.Producer.Return.Successes)
	assert.True(t, sc.Producer.Return.Errors)
	assert.Equal(t, 5, sc.Producer.Retry.Max)
	assert.Equal(t, "wallet-service", sc.ClientID)
}

func TestConfigStringIncludesBrokersAndClientID(t *testing.T) {
	cfg := &kafka.Config{Brokers: []string{"b1:9092", "b2:9092"}, ClientID: "wallet-service"}
	s := cfg.String()
	assert.Contains(t, s, "b1:9092")
	assert.Contains(t, s, "wallet-service")
}
