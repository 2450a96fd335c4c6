package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RPC Metrics
var (
	RPCRoundTrips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rpc_batch_round_trips_total",
		Help: "The total number of JSON-RPC batch calls sent to the node",
	})

	RPCBatchRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rpc_batch_requests_total",
		Help: "The total number of JSON-RPC requests sent inside batch calls",
	})

	RPCRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rpc_batch_retries_total",
		Help: "The total number of retried JSON-RPC batch calls",
	})

	RPCBatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rpc_batch_duration_seconds",
		Help:    "Time taken by a JSON-RPC batch call including retries",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})
)

// Executor Metrics
var (
	ExecutorBatchesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "executor_batches_completed_total",
		Help: "The total number of batches processed successfully",
	})

	ExecutorBatchesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "executor_batches_failed_total",
		Help: "The total number of batches that failed",
	})

	ExecutorUnitsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "executor_work_units_processed_total",
		Help: "The total number of work units in successfully processed batches",
	})

	ExecutorInFlightBatches = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "executor_in_flight_batches",
		Help: "The number of batches currently being processed",
	})

	ExecutorProgressPercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "executor_progress_percent",
		Help: "Completed work units as a percentage of the declared total",
	})
)

// Exporter Metrics
var (
	ItemsExported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exporter_items_exported_total",
		Help: "The total number of items handed to the exporter by item type",
	}, []string{"type"})

	LastExportedBlock = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "exporter_last_exported_block",
		Help: "The number of the block most recently exported",
	})
)
