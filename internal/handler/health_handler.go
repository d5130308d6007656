package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger verifies connectivity to a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Broker reports the state of an event broker connection.
type Broker interface {
	IsHealthy() bool
}

// HealthHandler handles the liveness endpoint.
type HealthHandler struct {
	repo   Pinger
	broker Broker // optional, may be nil
}

// NewHealthHandler creates a new HealthHandler instance. broker may be
// nil when event publishing is disabled.
func NewHealthHandler(repo Pinger, broker Broker) *HealthHandler {
	return &HealthHandler{repo: repo, broker: broker}
}

// Health reports service health, verifying database connectivity. The
// event broker state is reported but never fails the probe; publishing
// is best-effort.
func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.repo.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	report := gin.H{
		"status": "healthy",
	}
	if h.broker != nil {
		if h.broker.IsHealthy() {
			report["events"] = "connected"
		} else {
			report["events"] = "disconnected"
		}
	}

	c.JSON(http.StatusOK, report)
}
