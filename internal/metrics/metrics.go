// Package metrics exposes Prometheus instrumentation for the ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var TransactionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ledger_transactions_processed_total",
	Help: "Ledger transactions recorded, by type and final status.",
}, []string{"type", "status"})

var OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "ledger_operation_duration_seconds",
	Help:    "Wall time of ledger operations from entry to commit.",
	Buckets: prometheus.DefBuckets,
}, []string{"operation"})

var LockTimeouts = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ledger_lock_timeouts_total",
	Help: "Account lock acquisitions abandoned after the bounded wait.",
})

var VersionConflicts = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ledger_version_conflicts_total",
	Help: "Optimistic save conflicts observed during commits.",
})

var EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ledger_events_dropped_total",
	Help: "Audit/notification events dropped because the queue was full.",
})
