package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vistamar/listings-api/internal/middleware"
	"github.com/vistamar/listings-api/internal/services"
)

const (
	// APIVersion is the current version of the API
	APIVersion = "1.2.0"
	// HealthCheckTimeout bounds the provider probes behind the readiness
	// endpoint.
	HealthCheckTimeout = 5 * time.Second
)

// HealthHandler handles health check and readiness endpoints.
type HealthHandler struct {
	aggregator *services.Aggregator
	startTime  time.Time
	env        string
}

// NewHealthHandler creates a new HealthHandler instance.
func NewHealthHandler(aggregator *services.Aggregator, env string) *HealthHandler {
	return &HealthHandler{
		aggregator: aggregator,
		startTime:  time.Now(),
		env:        env,
	}
}

// HealthResponse represents the basic health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status  string `json:"status"`
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime"`
}

// Health handles GET /health endpoint.
// This is a basic liveness check that always returns 200 OK without
// touching any upstream provider.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// Ready handles GET /health/ready endpoint.
// Readiness is the AND of every configured provider's health; the message
// names the first failing provider. Returns 503 when any provider is
// unhealthy.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), HealthCheckTimeout)
	defer cancel()

	status := h.aggregator.HealthCheck(ctx)
	if !status.Healthy {
		if log := middleware.GetLogger(c); log != nil {
			log.Error("Provider health check failed", fmt.Errorf("%s", status.Message), map[string]interface{}{
				"timeout": HealthCheckTimeout.String(),
			})
		}

		c.JSON(http.StatusServiceUnavailable, ReadyResponse{
			Status:  "not_ready",
			Healthy: false,
			Message: status.Message,
		})
		return
	}

	c.JSON(http.StatusOK, ReadyResponse{
		Status:  "ready",
		Healthy: true,
	})
}

// Info handles GET /api/v1/info endpoint.
// Returns API metadata including version, environment, and uptime.
func (h *HealthHandler) Info(c *gin.Context) {
	uptime := time.Since(h.startTime)

	c.JSON(http.StatusOK, InfoResponse{
		Version:     APIVersion,
		Environment: h.env,
		Uptime:      formatUptime(uptime),
	})
}

// formatUptime formats a duration into a human-readable string.
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
