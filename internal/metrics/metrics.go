// Package metrics holds the Prometheus collectors for ingestion and the store.
// Collectors live on Registry, which the CLI dumps to a textfile and the HTTP
// API serves on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the registry every plib collector is registered on.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// Ingestion metrics
var (
	IngestFilesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plib_ingest_files_total",
			Help: "Files handled by the ingestion orchestrator",
		},
		[]string{"mode", "outcome"}, // mode: scan|upload, outcome: ok|failed|skipped
	)

	IngestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plib_ingest_duration_seconds",
			Help:    "Wall time of a whole ingestion batch",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"mode"},
	)

	TimestampSourceTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plib_extract_timestamp_source_total",
			Help: "Capture timestamps resolved per fallback stage",
		},
		[]string{"source"},
	)

	LibraryBytesCopied = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "plib_library_bytes_copied_total",
			Help: "Bytes copied into the managed library",
		},
	)
)

// Store metrics
var (
	StoreOperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plib_store_operation_duration_seconds",
			Help:    "Metadata store operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	StoreOperationErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plib_store_operation_errors_total",
			Help: "Metadata store operations that returned an error",
		},
		[]string{"operation"},
	)
)

// HTTP API metrics
var (
	HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plib_http_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plib_http_request_duration_seconds",
			Help:    "HTTP API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveStore records the duration of a store operation started at start.
// Pass the operation's error so failures are counted too.
func ObserveStore(operation string, start time.Time, err error) {
	StoreOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(operation).Inc()
	}
}

// WriteTextfile writes every registered metric to path in the text exposition
// format, for the node_exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
