package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Graph exports run a few milliseconds; /refresh waits on the upstream
// feeds and can take tens of seconds.
var requestDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// Responses range from a short click outcome to a full JSON or DOT export.
var responseSizeBuckets = prometheus.ExponentialBuckets(256, 4, 8)

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "eyeball_http_requests_total",
			Help: "API requests by route and status; unknown paths count as route \"other\"",
		},
		[]string{"method", "route", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eyeball_http_request_duration_seconds",
			Help:    "API request latency in seconds by route",
			Buckets: requestDurationBuckets,
		},
		[]string{"method", "route"},
	)

	r.HTTPRequestsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "eyeball_http_requests_in_flight",
			Help: "API requests currently being served",
		},
	)

	r.HTTPResponseSizeBytes = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eyeball_http_response_size_bytes",
			Help:    "API response body size in bytes by route",
			Buckets: responseSizeBuckets,
		},
		[]string{"method", "route"},
	)
}
