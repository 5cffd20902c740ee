package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics exposed by the build and query
// services.
type Metrics struct {
	// Request metrics (REST layer)
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestErrors   *prometheus.CounterVec

	// Build metrics
	BuildsTotal        prometheus.Counter
	BuildDuration      prometheus.Histogram
	BuildDocuments     prometheus.Gauge
	BuildPostingsTotal prometheus.Gauge
	IndexMemoryBytes   prometheus.Gauge

	// Query metrics
	QueriesTotal      prometheus.Counter
	QueryLatency      prometheus.Histogram
	QueryResultSize   prometheus.Histogram
	QueryBlocksSkipped prometheus.Counter
	QueryBlocksEvaluated prometheus.Counter

	// System metrics
	GoroutinesCount prometheus.Gauge
	MemoryUsage     prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seismic_requests_total",
				Help: "Total number of requests by method and status",
			},
			[]string{"method", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "seismic_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		RequestErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seismic_request_errors_total",
				Help: "Total number of request errors by method and error type",
			},
			[]string{"method", "error_type"},
		),

		BuildsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "seismic_builds_total",
				Help: "Total number of index builds completed",
			},
		),
		BuildDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "seismic_build_duration_seconds",
				Help:    "Index build duration in seconds",
				Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 300, 600},
			},
		),
		BuildDocuments: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "seismic_build_documents",
				Help: "Number of documents in the most recently built index",
			},
		),
		BuildPostingsTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "seismic_build_postings_total",
				Help: "Total postings retained across all lists after pruning",
			},
		),
		IndexMemoryBytes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "seismic_index_memory_bytes",
				Help: "Approximate resident size of the loaded index",
			},
		),

		QueriesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "seismic_queries_total",
				Help: "Total number of queries executed",
			},
		),
		QueryLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "seismic_query_latency_seconds",
				Help:    "Query latency in seconds",
				Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
			},
		),
		QueryResultSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "seismic_query_result_size",
				Help:    "Number of results returned per query",
				Buckets: []float64{1, 5, 10, 20, 50, 100, 200},
			},
		),
		QueryBlocksSkipped: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "seismic_query_blocks_skipped_total",
				Help: "Total posting-list blocks skipped via summary pruning",
			},
		),
		QueryBlocksEvaluated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "seismic_query_blocks_evaluated_total",
				Help: "Total posting-list blocks evaluated",
			},
		),

		GoroutinesCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "seismic_goroutines",
				Help: "Current number of goroutines",
			},
		),
		MemoryUsage: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "seismic_memory_bytes",
				Help: "Process memory usage in bytes",
			},
		),
	}
}

// RecordRequest records a REST request with duration and status.
func (m *Metrics) RecordRequest(method, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, status).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordError records a request error.
func (m *Metrics) RecordError(method, errorType string) {
	m.RequestErrors.WithLabelValues(method, errorType).Inc()
}

// RecordBuild records a completed index build.
func (m *Metrics) RecordBuild(duration time.Duration, numDocuments, numPostings int, memoryBytes int) {
	m.BuildsTotal.Inc()
	m.BuildDuration.Observe(duration.Seconds())
	m.BuildDocuments.Set(float64(numDocuments))
	m.BuildPostingsTotal.Set(float64(numPostings))
	m.IndexMemoryBytes.Set(float64(memoryBytes))
}

// RecordQuery records a completed query.
func (m *Metrics) RecordQuery(duration time.Duration, resultSize, blocksSkipped, blocksEvaluated int) {
	m.QueriesTotal.Inc()
	m.QueryLatency.Observe(duration.Seconds())
	m.QueryResultSize.Observe(float64(resultSize))
	m.QueryBlocksSkipped.Add(float64(blocksSkipped))
	m.QueryBlocksEvaluated.Add(float64(blocksEvaluated))
}

// UpdateGoroutineCount updates the goroutine count gauge.
func (m *Metrics) UpdateGoroutineCount(count int) {
	m.GoroutinesCount.Set(float64(count))
}

// UpdateMemoryUsage updates the process memory usage gauge.
func (m *Metrics) UpdateMemoryUsage(bytes uint64) {
	m.MemoryUsage.Set(float64(bytes))
}
