package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Generation metrics
	GenerationDuration prometheus.Histogram
	GenerationsTotal   *prometheus.CounterVec
	DatasetRows        *prometheus.GaugeVec

	// Report metrics
	ComputeDuration   *prometheus.HistogramVec
	ReportCacheHits   prometheus.Counter
	ReportCacheMisses prometheus.Counter

	// Archive metrics
	ArchiveDuration *prometheus.HistogramVec
	ArchiveErrors   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		GenerationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Dataset generation wall time",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		GenerationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generations_total",
				Help:      "Dataset generations by result",
			},
			[]string{"result"},
		),
		DatasetRows: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dataset_rows",
				Help:      "Row count of the current dataset per table",
			},
			[]string{"table"},
		),

		ComputeDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "report_compute_duration_seconds",
				Help:      "Report computation time per section",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"section"},
		),
		ReportCacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_cache_hits_total",
				Help:      "Report cache hits",
			},
		),
		ReportCacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_cache_misses_total",
				Help:      "Report cache misses",
			},
		),

		ArchiveDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "archive_duration_seconds",
				Help:      "Dataset archive time per backend",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
			},
			[]string{"backend"},
		),
		ArchiveErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "archive_errors_total",
				Help:      "Dataset archive failures by backend",
			},
			[]string{"backend"},
		),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by path, method and status",
			},
			[]string{"path", "method", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"path", "method"},
		),

		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Rate limit rejections",
			},
			[]string{"path", "ip"},
		),
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordGeneration records one dataset generation.
func (m *Metrics) RecordGeneration(duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.GenerationsTotal.WithLabelValues(result).Inc()
	if err == nil {
		m.GenerationDuration.Observe(duration.Seconds())
	}
}

// RecordDatasetRows updates the per-table row gauges.
func (m *Metrics) RecordDatasetRows(counts map[string]int) {
	for table, n := range counts {
		m.DatasetRows.WithLabelValues(table).Set(float64(n))
	}
}

// RecordComputeSection records the time spent in one report section.
func (m *Metrics) RecordComputeSection(section string, duration time.Duration) {
	m.ComputeDuration.WithLabelValues(section).Observe(duration.Seconds())
}

// RecordCacheHit records a report cache lookup.
func (m *Metrics) RecordCacheHit(hit bool) {
	if hit {
		m.ReportCacheHits.Inc()
	} else {
		m.ReportCacheMisses.Inc()
	}
}

// RecordArchive records one archive attempt.
func (m *Metrics) RecordArchive(backend string, duration time.Duration, err error) {
	if err != nil {
		m.ArchiveErrors.WithLabelValues(backend).Inc()
		return
	}
	m.ArchiveDuration.WithLabelValues(backend).Observe(duration.Seconds())
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(path, method, status string, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(path, method, status).Inc()
	m.HTTPDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordRateLimitHit records a rate limit rejection.
func (m *Metrics) RecordRateLimitHit(path, ip string) {
	m.RateLimitHits.WithLabelValues(path, ip).Inc()
}
