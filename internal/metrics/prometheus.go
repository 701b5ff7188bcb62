// Package metrics exposes the Prometheus vectors this service reports,
// generalized from the teacher's HTTP + banking-operation counters
// (src/metrics/prometheus.go) with the replication/failover additions
// SPEC_FULL.md §4.8 calls for.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPDuration is the HTTP request latency histogram, unchanged shape
	// from the teacher's middleware.PrometheusMiddleware.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	// BankingOperationsTotal reuses the teacher's operation/status label
	// pair for deposit and withdraw.
	BankingOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "banking_operations_total",
			Help: "Total number of banking operations",
		},
		[]string{"operation", "status"},
	)

	// ReplicationRoundsTotal counts each Replicate call by outcome: ok,
	// business_failure, or unreachable. A reply in which the backup rejected
	// the request is not counted.
	ReplicationRoundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "replication_rounds_total",
			Help: "Total number of primary-to-backup replication round trips, by outcome",
		},
		[]string{"outcome"},
	)

	// FailoverTransitionsTotal counts state-machine transitions by the mode
	// entered.
	FailoverTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "failover_transitions_total",
			Help: "Total number of failover mode transitions, labeled by the mode entered",
		},
		[]string{"to"},
	)

	// FailoverMode is a live gauge of the current mode: 0 = NORMAL, 1 = FAILOVER.
	FailoverMode = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "failover_mode",
			Help: "Current failover mode (0=NORMAL, 1=FAILOVER)",
		},
	)

	// ReplicationDivergenceTotal counts the fatal case where the primary and
	// backup disagree on a result during NORMAL mode (SPEC_FULL.md §4.4).
	ReplicationDivergenceTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "replication_divergence_total",
			Help: "Total number of detected primary/backup result mismatches",
		},
	)

	// WALRecoveryRolledBackTotal counts PENDING records rolled back at
	// startup recovery.
	WALRecoveryRolledBackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wal_recovery_rolled_back_total",
			Help: "Total number of PENDING ledger records rolled back during the last recovery",
		},
	)
)
