// Package metrics exposes Prometheus metrics for the stub server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidconv_stub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidconv_stub_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Job Metrics
	JobsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidconv_stub_jobs_created_total",
			Help: "Total number of simulated conversion jobs created",
		},
		[]string{"resolution"},
	)

	JobsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidconv_stub_jobs_completed_total",
			Help: "Total number of simulated jobs reaching a terminal state",
		},
		[]string{"status"},
	)

	JobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidconv_stub_jobs_in_progress",
			Help: "Number of simulated jobs currently processing",
		},
	)
)

// RecordHTTPRequest records an HTTP request
func RecordHTTPRequest(method, endpoint, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordJobCreated records a job creation
func RecordJobCreated(resolution string) {
	JobsCreatedTotal.WithLabelValues(resolution).Inc()
	JobsInProgress.Inc()
}

// RecordJobFinished records a job reaching a terminal state
func RecordJobFinished(status string) {
	JobsCompletedTotal.WithLabelValues(status).Inc()
	JobsInProgress.Dec()
}
