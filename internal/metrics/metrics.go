package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OutboundRequestsTotal tracks outbound API calls by provider, endpoint and status.
	OutboundRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dex_outbound_requests_total",
			Help: "Total number of outbound provider API requests (by provider, endpoint, and status).",
		},
		[]string{"provider", "endpoint", "status"},
	)

	// OutboundRequestDuration measures the duration of outbound provider calls.
	OutboundRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dex_outbound_request_duration_seconds",
			Help:    "Duration of outbound provider API requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"provider", "endpoint"},
	)

	// SwapAttemptsTotal counts execution engine attempts by outcome.
	SwapAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dex_swap_attempts_total",
			Help: "Number of transaction execution attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// SwapExecutionsTotal counts completed swap executions by final status.
	SwapExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dex_swap_executions_total",
			Help: "Number of swap executions by final status (confirmed, failed).",
		},
		[]string{"status"},
	)

	// CatalogRefreshDuration measures full token catalog rebuild time.
	CatalogRefreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dex_catalog_refresh_duration_seconds",
			Help:    "Duration of token catalog rebuilds in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"source"},
	)

	// NATSPublishErrors tracks NATS publish failures by subject.
	NATSPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_publish_errors_total",
			Help: "Number of NATS publish failures by subject.",
		},
		[]string{"subject"},
	)
)

// IncOutboundRequest increments the outbound API request counter.
func IncOutboundRequest(provider, endpoint, status string) {
	OutboundRequestsTotal.WithLabelValues(provider, endpoint, status).Inc()
}

// IncSwapAttempt increments the per-attempt counter.
func IncSwapAttempt(outcome string) {
	SwapAttemptsTotal.WithLabelValues(outcome).Inc()
}

// IncSwapExecution increments the final-status counter.
func IncSwapExecution(status string) {
	SwapExecutionsTotal.WithLabelValues(status).Inc()
}

// ObserveDuration records elapsed time since start into a HistogramVec or SummaryVec.
func ObserveDuration(v any, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()
	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case *prometheus.SummaryVec:
		metric.WithLabelValues(labels...).Observe(duration)
	}
}

// IncNATSPublishError increments the NATS publish error counter for the given subject.
func IncNATSPublishError(subject string) {
	NATSPublishErrors.WithLabelValues(subject).Inc()
}
