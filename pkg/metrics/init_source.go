package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSourceMetrics() {
	r.SourceFetchTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "eyeball_source_fetch_total",
			Help: "Total number of source fetches",
		},
		[]string{"source", "status"},
	)

	r.SourceFetchDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eyeball_source_fetch_duration_seconds",
			Help:    "Source fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	r.SourceRowsRejected = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "eyeball_source_rows_rejected_total",
			Help: "Total number of feed rows rejected at ingestion",
		},
		[]string{"source"},
	)

	r.LastRefreshTimestamp = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "eyeball_last_refresh_timestamp_seconds",
			Help: "Unix time of the last successful data refresh",
		},
	)

	r.RefreshFailuresTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "eyeball_refresh_failures_total",
			Help: "Total number of failed data refreshes",
		},
	)
}
