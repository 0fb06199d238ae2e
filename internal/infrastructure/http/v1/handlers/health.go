// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockwise/internal/domain/availability"
)

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	store   Pinger
	driver  string
	mode    availability.Mode
	version string
}

// NewHealthHandler creates a new health handler. store may be nil for the
// in-memory driver.
func NewHealthHandler(store Pinger, driver string, mode availability.Mode, version string) *HealthHandler {
	return &HealthHandler{store: store, driver: driver, mode: mode, version: version}
}

// Health reports process and store status.
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	checks := map[string]string{"store": "healthy"}
	status := http.StatusOK

	if h.store != nil {
		if err := h.store.Ping(c.Request.Context()); err != nil {
			checks["store"] = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	body := gin.H{
		"status":            "ok",
		"app":               "stockwise",
		"version":           h.version,
		"store":             h.driver,
		"availability_mode": h.mode,
		"checks":            checks,
	}
	if status != http.StatusOK {
		body["status"] = "error"
	}
	c.JSON(status, body)
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
