// Package kafka wraps sarama for the committed-transaction event feed,
// generalized from internal/infrastructure/messaging/kafka/{config,producer}.go.
package kafka

import (
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

const committedTopic = "wallet.transactions.committed"

// Config holds Kafka producer configuration.
type Config struct {
	Brokers      []string
	ClientID     string
	MaxRetries   int
	RetryBackoff time.Duration
}

// ToSaramaConfig converts to Sarama configuration, reusing the teacher's
// durability-first settings (wait for all in-sync replicas) since this is a
// committed-transaction audit feed, not a high-throughput queue.
func (c *Config) ToSaramaConfig() (*sarama.Config, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.Retry.Max = c.MaxRetries
	cfg.Producer.Retry.Backoff = c.RetryBackoff
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.ClientID = c.ClientID
	cfg.Version = sarama.V3_0_0_0
	return cfg, nil
}

func (c *Config) String() string {
	return fmt.Sprintf("brokers=%v client_id=%s", c.Brokers, c.ClientID)
}
