// Package metrics exposes Prometheus collectors for the extraction pipeline.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "docx"

var (
	global *Metrics
	once   sync.Once
)

// Metrics holds the registered collectors.
type Metrics struct {
	// Cascade
	BackendAttempts   *prometheus.CounterVec
	BackendDuration   *prometheus.HistogramVec
	ExtractionsTotal  *prometheus.CounterVec
	ExtractionSeconds prometheus.Histogram

	// Validation and categorization
	ViolationsTotal *prometheus.CounterVec
	CategoriesTotal *prometheus.CounterVec

	// Storage
	DuplicatesTotal     prometheus.Counter
	PendingConfirmation prometheus.Gauge

	// Jobs
	JobsTotal *prometheus.CounterVec

	// HTTP
	HTTPRequests *prometheus.CounterVec
}

// Get returns the process-wide metrics, registering them on first use.
//
// Metrics:
//   - docx_backend_attempts_total{method,outcome}
//   - docx_backend_duration_seconds{method}
//   - docx_extractions_total{state}
//   - docx_extraction_duration_seconds
//   - docx_validation_violations_total{rule,severity}
//   - docx_category_suggestions_total{category}
//   - docx_duplicate_documents_total
//   - docx_pending_confirmations
//   - docx_jobs_total{status}
//   - docx_http_requests_total{method,path,status}
func Get() *Metrics {
	once.Do(func() {
		global = &Metrics{
			BackendAttempts: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "backend_attempts_total",
					Help:      "Extraction backend attempts by outcome",
				},
				[]string{"method", "outcome"},
			),
			BackendDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: namespace,
					Name:      "backend_duration_seconds",
					Help:      "Duration of a single backend attempt",
					Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
				},
				[]string{"method"},
			),
			ExtractionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "extractions_total",
					Help:      "Finished extractions by terminal state",
				},
				[]string{"state"},
			),
			ExtractionSeconds: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: namespace,
					Name:      "extraction_duration_seconds",
					Help:      "End-to-end duration of the extraction cascade",
					Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
				},
			),
			ViolationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "validation_violations_total",
					Help:      "Validation violations by rule",
				},
				[]string{"rule", "severity"},
			),
			CategoriesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "category_suggestions_total",
					Help:      "Category suggestions by category",
				},
				[]string{"category"},
			),
			DuplicatesTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "duplicate_documents_total",
					Help:      "Documents skipped because their fingerprint was already stored",
				},
			),
			PendingConfirmation: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: namespace,
					Name:      "pending_confirmations",
					Help:      "Documents waiting for user confirmation",
				},
			),
			JobsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "jobs_total",
					Help:      "Finished extraction job attempts by status",
				},
				[]string{"status"},
			),
			HTTPRequests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "http_requests_total",
					Help:      "HTTP requests by route and status",
				},
				[]string{"method", "path", "status"},
			),
		}
	})
	return global
}

// ObserveAttempt records one backend attempt.
func (m *Metrics) ObserveAttempt(method, outcome string, d time.Duration) {
	m.BackendAttempts.WithLabelValues(method, outcome).Inc()
	m.BackendDuration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveExtraction records a finished cascade.
func (m *Metrics) ObserveExtraction(state string, d time.Duration) {
	m.ExtractionsTotal.WithLabelValues(state).Inc()
	m.ExtractionSeconds.Observe(d.Seconds())
}
