package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initPushMetrics() {
	r.WebSocketClients = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "eyeball_websocket_clients",
			Help: "Number of connected websocket clients",
		},
	)

	r.WebSocketMessagesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "eyeball_websocket_messages_total",
			Help: "Total number of messages pushed to websocket clients",
		},
	)

	r.EventsDroppedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "eyeball_events_dropped_total",
			Help: "Total number of events dropped for slow subscribers",
		},
	)
}
