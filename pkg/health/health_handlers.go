package health

import (
	"encoding/json"
	"net/http"
)

func writeResponse(w http.ResponseWriter, response Response, strict bool) {
	w.Header().Set("Content-Type", "application/json")

	status := http.StatusOK
	switch response.Status {
	case StatusUnhealthy:
		status = http.StatusServiceUnavailable
	case StatusDegraded:
		// readiness and liveness are binary
		if strict {
			status = http.StatusServiceUnavailable
		}
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// HTTPHandler serves the overall health. Degraded still answers 200.
func (hc *HealthChecker) HTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, hc.Check(), false)
	}
}

// ReadinessHandler serves readiness checks
func (hc *HealthChecker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, hc.CheckReadiness(), true)
	}
}

// LivenessHandler serves liveness checks
func (hc *HealthChecker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, hc.CheckLiveness(), true)
	}
}
