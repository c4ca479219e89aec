package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker reports the liveness of one backing dependency.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// WithHealthChecks registers dependency probes for the health endpoint.
func (h *Handlers) WithHealthChecks(checks ...HealthChecker) *Handlers {
	h.checks = checks
	return h
}

// Health handles GET /health. The service reports degraded, not down, when
// a dependency probe fails; cached reads may still be served.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	deps := make(map[string]string, len(h.checks))
	for _, c := range h.checks {
		if err := c.Check(ctx); err != nil {
			deps[c.Name()] = err.Error()
			status = "degraded"
			continue
		}
		deps[c.Name()] = "ok"
	}

	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:       status,
		Timestamp:    time.Now().UTC(),
		Dependencies: deps,
	})
}
