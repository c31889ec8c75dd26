package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/personalai/assistant/internal/models"
)

const version = "1.0.0"

// HealthChecker is implemented by dependencies that can report connectivity
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles GET /health with dependency checks
type HealthHandler struct {
	checks map[string]HealthChecker
	llm    bool
}

// NewHealthHandler takes the named dependencies to ping. llmEnabled only
// reports whether a model provider is configured.
func NewHealthHandler(checks map[string]HealthChecker, llmEnabled bool) *HealthHandler {
	return &HealthHandler{checks: checks, llm: llmEnabled}
}

// Welcome handles GET /
func (h *HealthHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	models.WriteJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Personal AI Assistant API"})
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"server": "ok"}
	overallStatus := "healthy"

	// Use a short timeout for health checks so they don't block
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	for name, c := range h.checks {
		if c == nil {
			checks[name] = "disabled"
			continue
		}
		if err := c.HealthCheck(ctx); err != nil {
			checks[name] = "unavailable: " + err.Error()
			overallStatus = "degraded"
		} else {
			checks[name] = "ok"
		}
	}

	if h.llm {
		checks["llm"] = "configured"
	} else {
		checks["llm"] = "disabled"
	}

	statusCode := http.StatusOK
	if overallStatus == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	models.WriteJSON(w, statusCode, models.HealthResponse{
		Status:  overallStatus,
		Version: version,
		Checks:  checks,
	})
}
