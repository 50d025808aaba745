package healthprobe

import (
	"net/http"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

// HealthChecker provides liveness and readiness probes for the service.
type HealthChecker struct {
	startTime time.Time
	ready     atomic.Bool
}

// New creates a new HealthChecker.
func New() *HealthChecker {
	return &HealthChecker{
		startTime: time.Now(),
	}
}

// SetReady marks the service as ready (or not) to serve traffic.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

type probeResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Message       string  `json:"message,omitempty"`
}

func (h *HealthChecker) write(w http.ResponseWriter, code int, resp probeResponse) {
	resp.UptimeSeconds = time.Since(h.startTime).Seconds()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// Health is the liveness handler: 200 whenever the process is running.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.write(w, http.StatusOK, probeResponse{Status: "healthy"})
	}
}

// Ready is the readiness handler: 200 once startup wiring completed,
// 503 before that and during shutdown.
func (h *HealthChecker) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.ready.Load() {
			h.write(w, http.StatusServiceUnavailable, probeResponse{
				Status:  "not_ready",
				Message: "service is starting or shutting down",
			})
			return
		}

		h.write(w, http.StatusOK, probeResponse{Status: "ready"})
	}
}
