package application

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const outcomeError = "ERROR"

var (
	ledgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_ledger_operations_total",
		Help: "Ledger operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	ledgerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventory_ledger_operation_duration_seconds",
		Help:    "Latency of ledger operations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	publishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_event_publish_failures_total",
		Help: "Ticket events that could not be published after commit.",
	})
)

func observeOperation(op, outcome string, elapsed time.Duration) {
	ledgerOperations.WithLabelValues(op, outcome).Inc()
	ledgerDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}
