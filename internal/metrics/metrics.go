package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Provider operation metrics
var (
	// ProviderRequestsTotal counts provider operations by provider, operation and status.
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of provider operations.",
		},
		[]string{"provider", "operation", "status"},
	)

	// ProviderRequestDuration observes how long provider operations take.
	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Duration of provider operations in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "operation"},
	)

	// StreamsEmittedTotal counts streams handed to callers.
	StreamsEmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_streams_emitted_total",
			Help: "Total number of stream candidates emitted.",
		},
		[]string{"provider"},
	)

	// StreamResolutionFailuresTotal counts link candidates that could not be resolved.
	StreamResolutionFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_stream_failures_total",
			Help: "Total number of stream candidates that failed to resolve.",
		},
		[]string{"provider"},
	)
)

// Upstream fetch metrics
var (
	// UpstreamFetchesTotal counts outbound HTTP requests by host and status.
	UpstreamFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_fetches_total",
			Help: "Total number of outbound HTTP fetches.",
		},
		[]string{"host", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		ProviderRequestsTotal,
		ProviderRequestDuration,
		StreamsEmittedTotal,
		StreamResolutionFailuresTotal,
		UpstreamFetchesTotal,
	)
}
