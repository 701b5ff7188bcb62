package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bank-api/internal/config"
)

func TestLoadAppliesDefaultsWhenEnvironmentIsUnset(t *testing.T) {
	cfg := config.Load()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "50051", cfg.Replication.PrimaryRPCPort)
	assert.Equal(t, "50052", cfg.Replication.BackupRPCPort)
	assert.Equal(t, "localhost:50052", cfg.Replication.BackupRPCAddr)
	assert.Equal(t, 5000*time.Millisecond, cfg.Replication.ReplicateTimeout)
	assert.Equal(t, 2000*time.Millisecond, cfg.Replication.PingTimeout)
	assert.Equal(t, 5000*time.Millisecond, cfg.Failover.HealthInterval)
	assert.Equal(t, "./data", cfg.WAL.StateDir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoadReadsOverridesFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9001")
	t.Setenv("REPLICATE_TIMEOUT_MS", "1500")
	t.Setenv("KAFKA_ENABLED", "false")
	t.Setenv("KAFKA_BROKERS", "b1:9092,b2:9092")
	t.Setenv("ENVIRONMENT", "production")

	cfg := config.Load()

	assert.Equal(t, "9001", cfg.Server.Port)
	assert.Equal(t, 1500*time.Millisecond, cfg.Replication.ReplicateTimeout)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "production", cfg.Environment)
}

func TestLoadFallsBackToDefaultOnUnparseableDuration(t *testing.T) {
	t.Setenv("PING_TIMEOUT_MS", "not-a-number")

	cfg := config.Load()

	assert.Equal(t, 2000*time.Millisecond, cfg.Replication.PingTimeout)
}
