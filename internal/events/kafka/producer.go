package kafka

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/IBM/sarama"

	"bank-api/internal/events"
	"bank-api/internal/pkg/logging"
)

// Producer publishes committed-transaction events to Kafka, mirroring the
// teacher's synchronous producer (internal/infrastructure/messaging/kafka/producer.go)
// generalized from a generic PublishEvent(topic, key, payload) to the single
// committedTopic this design needs.
type Producer struct {
	producer sarama.SyncProducer

	mu     sync.RWMutex
	closed bool
}

func NewProducer(cfg *Config) (*Producer, error) {
	saramaCfg, err := cfg.ToSaramaConfig()
	if err != nil {
		return nil, fmt.Errorf("kafka: sarama config: %w", err)
	}

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("kafka: new producer: %w", err)
	}

	logging.Info("kafka producer initialized", map[string]interface{}{"config": cfg.String()})
	return &Producer{producer: producer}, nil
}

func (p *Producer) PublishCommitted(event events.TransactionCommittedEvent) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("kafka: producer is closed")
	}
	p.mu.RUnlock()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: committedTopic,
		Key:   sarama.StringEncoder(event.AccountID),
		Value: sarama.ByteEncoder(payload),
	}

	_, _, err = p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("kafka: send message: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.producer.Close()
}
