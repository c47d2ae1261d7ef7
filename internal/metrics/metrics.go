package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Records flattened from source documents, by document family.
	RecordsFlattened = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refdata_records_flattened_total",
			Help: "Total number of source records flattened (by document family).",
		},
		[]string{"family"},
	)

	// Instruments processed by the ingestion pipeline, by outcome.
	InstrumentsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refdata_instruments_processed_total",
			Help: "Instruments processed by outcome (built, overwritten, validation, not_found, internal).",
		},
		[]string{"outcome"},
	)

	// Enrichment lookups by service and result.
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refdata_enrichment_lookups_total",
			Help: "Enrichment lookups by service and result.",
		},
		[]string{"service", "result"}, // result = "hit" | "empty" | "error"
	)

	LookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "refdata_enrichment_lookup_duration_seconds",
			Help:    "Duration of enrichment lookups in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms → ~10s
		},
		[]string{"service"},
	)

	// Cache accesses by cache backend and result.
	CacheAccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refdata_cache_access_total",
			Help: "Cache accesses by backend and result.",
		},
		[]string{"backend", "result"}, // hit | stale | miss
	)

	NATSMessageCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_total",
			Help: "Total number of NATS messages published.",
		},
		[]string{"subject", "result"},
	)

	NATSMessageLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nats_publish_latency_seconds",
			Help:    "Latency of NATS JetStream publishes in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"subject"},
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refdata_errors_total",
			Help: "Count of errors by component and reason.",
		},
		[]string{"component", "reason"},
	)

	// Gauges the completion time of the last ingestion run.
	LastIngestTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "refdata_last_ingest_timestamp",
			Help: "Timestamp (unix seconds) of the last completed ingestion run.",
		},
	)
)

// ObserveDuration records the time elapsed since start on a histogram.
func ObserveDuration(h *prometheus.HistogramVec, start time.Time, labels ...string) {
	h.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
}

func AddRecordsFlattened(family string, n int) {
	RecordsFlattened.WithLabelValues(family).Add(float64(n))
}

func IncInstrument(outcome string) {
	InstrumentsProcessed.WithLabelValues(outcome).Inc()
}

func IncLookup(service, result string) {
	LookupsTotal.WithLabelValues(service, result).Inc()
}

func IncCache(backend, result string) {
	CacheAccess.WithLabelValues(backend, result).Inc()
}

func IncNATSMessage(subject, result string) {
	NATSMessageCount.WithLabelValues(subject, result).Inc()
}

func IncError(component, reason string) {
	ErrorsTotal.WithLabelValues(component, reason).Inc()
}

func SetLastIngest(t time.Time) {
	LastIngestTimestamp.Set(float64(t.Unix()))
}
