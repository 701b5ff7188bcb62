// Package config loads this service's environment-driven configuration,
// generalized from the teacher's several small config loaders
// (src/config/config.go, internal/infrastructure/database/postgres/config.go,
// internal/infrastructure/messaging/kafka/config.go) into one loader that
// covers the HTTP edge, replication RPC, WAL, and event-publishing surfaces
// this design actually has (SPEC_FULL.md §6).
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server      ServerConfig
	Replication ReplicationConfig
	Failover    FailoverConfig
	WAL         WALConfig
	Logging     LoggingConfig
	Kafka       KafkaConfig
	Environment string
}

type ServerConfig struct {
	Port string
}

// ReplicationConfig governs the primary-side RPC client and the backup-side
// RPC server (SPEC_FULL.md §6).
type ReplicationConfig struct {
	PrimaryRPCPort   string
	BackupRPCPort    string
	BackupRPCAddr    string // host:port the primary dials to reach the backup
	ReplicateTimeout time.Duration
	PingTimeout      time.Duration
}

type FailoverConfig struct {
	HealthInterval time.Duration
}

// WALConfig points at the parent state directory. Primary and backup keep
// their files in distinct primary/ and backup/ subdirectories of StateDir,
// so both can run on one host during testing (SPEC_FULL.md §6).
type WALConfig struct {
	StateDir string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type KafkaConfig struct {
	Enabled  bool
	Brokers  []string
	ClientID string
}

// Load reads configuration from the environment, defaulting every value the
// way the teacher's getEnv/getEnvAsInt helpers do.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("HTTP_PORT", "8000"),
		},
		Replication: ReplicationConfig{
			PrimaryRPCPort:   getEnv("PRIMARY_RPC_PORT", "50051"),
			BackupRPCPort:    getEnv("BACKUP_RPC_PORT", "50052"),
			BackupRPCAddr:    getEnv("BACKUP_RPC_ADDR", "localhost:50052"),
			ReplicateTimeout: getEnvAsDuration("REPLICATE_TIMEOUT_MS", 5000*time.Millisecond),
			PingTimeout:      getEnvAsDuration("PING_TIMEOUT_MS", 2000*time.Millisecond),
		},
		Failover: FailoverConfig{
			HealthInterval: getEnvAsDuration("HEALTH_INTERVAL_MS", 5000*time.Millisecond),
		},
		WAL: WALConfig{
			StateDir: getEnv("STATE_DIR", "./data"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Kafka: KafkaConfig{
			Enabled:  getEnvAsBool("KAFKA_ENABLED", true),
			Brokers:  getEnvAsSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			ClientID: getEnv("KAFKA_CLIENT_ID", "wallet-service"),
		},
		Environment: getEnv("ENVIRONMENT", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := getEnv(name, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsSlice(name string, defaultVal []string) []string {
	valStr := getEnv(name, "")
	if valStr == "" {
		return defaultVal
	}
	return strings.Split(valStr, ",")
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	if ms, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultVal
}
