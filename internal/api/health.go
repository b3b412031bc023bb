package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const healthCheckTimeout = 2 * time.Second

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string                     `json:"status"`
	Service    string                     `json:"service"`
	Version    string                     `json:"version"`
	Components map[string]ComponentHealth `json:"components"`
	Timestamp  time.Time                  `json:"timestamp"`
}

// ComponentHealth reports one dependency.
type ComponentHealth struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// HealthCheck handles GET /health. It pings the store and answers 503 when
// the store is unreachable.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := h.words.Ping(ctx)
	db := ComponentHealth{Status: "healthy", LatencyMS: time.Since(start).Milliseconds()}

	resp := HealthResponse{
		Status:     "healthy",
		Service:    h.info.Name,
		Version:    h.info.Version,
		Components: map[string]ComponentHealth{"database": db},
		Timestamp:  time.Now().UTC(),
	}
	status := http.StatusOK

	if err != nil {
		h.log.WarnContext(r.Context(), "health check failed", slog.Any("error", err))
		db.Status = "unhealthy"
		db.Error = "database unreachable"
		resp.Components["database"] = db
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}
