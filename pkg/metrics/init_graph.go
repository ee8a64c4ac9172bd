package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.GraphNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "eyeball_graph_nodes",
			Help: "Number of nodes in the current graph",
		},
	)

	r.GraphEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "eyeball_graph_edges",
			Help: "Number of edges in the current graph",
		},
	)

	r.GraphPeers = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "eyeball_graph_peers",
			Help: "Number of peer nodes in the current graph",
		},
	)

	r.GraphMaliciousPeers = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "eyeball_graph_malicious_peers",
			Help: "Number of peer nodes flagged malicious in the current graph",
		},
	)

	r.GraphBuildsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "eyeball_graph_builds_total",
			Help: "Total number of graph rebuilds",
		},
	)

	r.GraphBuildDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eyeball_graph_build_duration_seconds",
			Help:    "Time to build and lay out a graph",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)
}
