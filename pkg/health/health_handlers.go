package health

import (
	"encoding/json"
	"net/http"
)

// ReadinessHandler serves the readiness probe. Degraded answers 200 so the
// endpoint doubles as a progress view; only unhealthy answers 503.
func (hc *HealthChecker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, hc.CheckReadiness(), false)
	}
}

// LivenessHandler serves the liveness probe; anything but healthy is 503.
func (hc *HealthChecker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, hc.CheckLiveness(), true)
	}
}

func writeResponse(w http.ResponseWriter, response Response, strict bool) {
	w.Header().Set("Content-Type", "application/json")

	status := http.StatusOK
	if response.Status == StatusUnhealthy || (strict && response.Status != StatusHealthy) {
		status = http.StatusServiceUnavailable
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
