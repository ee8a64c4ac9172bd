package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initInteractionMetrics() {
	r.ClicksTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "eyeball_clicks_total",
			Help: "Total number of canvas clicks by outcome",
		},
		[]string{"outcome"},
	)

	r.MenuActionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "eyeball_menu_actions_total",
			Help: "Total number of menu actions invoked",
		},
		[]string{"action", "status"},
	)
}
