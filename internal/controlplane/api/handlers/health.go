package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthCheckTimeout bounds the catalog check made by the readiness probe.
const HealthCheckTimeout = 5 * time.Second

// HealthChecker is a dependency the readiness probe checks.
type HealthChecker interface {
	Healthcheck(ctx context.Context) error
}

// HealthHandler handles health check endpoints. They are unauthenticated.
type HealthHandler struct {
	catalog   HealthChecker
	startTime time.Time
}

// NewHealthHandler creates a new health handler. A nil catalog makes the
// readiness probe fail.
func NewHealthHandler(catalog HealthChecker) *HealthHandler {
	return &HealthHandler{
		catalog:   catalog,
		startTime: time.Now(),
	}
}

// Liveness handles GET /health. It succeeds while the process serves HTTP.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime)
	WriteJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"service":    "dmds",
		"started_at": h.startTime.UTC().Format(time.RFC3339),
		"uptime":     uptime.Round(time.Second).String(),
		"uptime_sec": int64(uptime.Seconds()),
	}))
}

// Readiness handles GET /health/ready. It checks that the catalog answers.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthyResponse("catalog not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), HealthCheckTimeout)
	defer cancel()

	start := time.Now()
	if err := h.catalog.Healthcheck(ctx); err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthyResponse("catalog: "+err.Error()))
		return
	}
	WriteJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"catalog_latency": time.Since(start).String(),
	}))
}
