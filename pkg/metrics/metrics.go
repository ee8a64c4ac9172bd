package metrics

import (
	"time"
)

// RecordHTTPRequest records a request to a named API route with its duration
func (r *Registry) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordGraphBuild records a rebuild and the size of the resulting graph
func (r *Registry) RecordGraphBuild(nodes, edges, peers, maliciousPeers int, duration time.Duration) {
	r.GraphBuildsTotal.Inc()
	r.GraphBuildDuration.Observe(duration.Seconds())
	r.GraphNodes.Set(float64(nodes))
	r.GraphEdges.Set(float64(edges))
	r.GraphPeers.Set(float64(peers))
	r.GraphMaliciousPeers.Set(float64(maliciousPeers))
}

// RecordClick records a click by its outcome
func (r *Registry) RecordClick(outcome string) {
	r.ClicksTotal.WithLabelValues(outcome).Inc()
}

// RecordMenuAction records a menu action invocation
func (r *Registry) RecordMenuAction(action, status string) {
	r.MenuActionsTotal.WithLabelValues(action, status).Inc()
}

// RecordSourceFetch records one source fetch
func (r *Registry) RecordSourceFetch(source, status string, duration time.Duration, rejected int) {
	r.SourceFetchTotal.WithLabelValues(source, status).Inc()
	r.SourceFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if rejected > 0 {
		r.SourceRowsRejected.WithLabelValues(source).Add(float64(rejected))
	}
}

// RecordRefresh records the result of a full data refresh
func (r *Registry) RecordRefresh(at time.Time, err error) {
	if err != nil {
		r.RefreshFailuresTotal.Inc()
		return
	}
	r.LastRefreshTimestamp.Set(float64(at.Unix()))
}

// RecordResponseSize records the body size of a named API route's response
func (r *Registry) RecordResponseSize(method, route string, size float64) {
	r.HTTPResponseSizeBytes.WithLabelValues(method, route).Observe(size)
}

// IncHTTPRequestsInFlight marks the start of an HTTP request
func (r *Registry) IncHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Inc()
}

// DecHTTPRequestsInFlight marks the end of an HTTP request
func (r *Registry) DecHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Dec()
}
