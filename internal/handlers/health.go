package handlers

import (
	"context"
	"net/http"
	"time"

	logpkg "github.com/benvon/careerontrack/internal/logger"
	"github.com/benvon/careerontrack/internal/models"
)

const (
	// APIHealthMessage is returned by GET /api/health
	APIHealthMessage = "CareerOnTrack API is running"

	dependencyCheckTimeout = 5 * time.Second
)

// DependencyCheck pings one backing service for the extended health check
type DependencyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthChecker handles health check requests
type HealthChecker struct {
	checks []DependencyCheck
}

// NewHealthChecker creates a health checker probing checks in extended mode
func NewHealthChecker(checks ...DependencyCheck) *HealthChecker {
	return &HealthChecker{checks: checks}
}

// HealthzResponse represents the /healthz response
type HealthzResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// APIHealth handles GET /api/health
func (h *HealthChecker) APIHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthResponse{Status: "ok", Message: APIHealthMessage})
}

// HealthCheck handles the /healthz endpoint. With ?mode=extended every
// dependency is pinged and any failure answers 503.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthzResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if r.URL.Query().Get("mode") != "extended" {
		respondJSON(w, http.StatusOK, response)
		return
	}

	response.Checks = make(map[string]string, len(h.checks))
	for _, c := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), dependencyCheckTimeout)
		err := c.Check(ctx)
		cancel()

		if err != nil {
			response.Status = "unhealthy"
			response.Checks[c.Name] = "unhealthy: " + logpkg.SanitizeError(err)
			continue
		}
		response.Checks[c.Name] = "healthy"
	}

	status := http.StatusOK
	if response.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, response)
}
