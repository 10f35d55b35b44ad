package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fanvault/user-service/pkg/database"
	"github.com/fanvault/user-service/pkg/redis"
)

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	db    *database.PostgresDB
	cache *redis.Client
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *database.PostgresDB, cache *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Health returns basic health status
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "user-service",
	})
}

// Ready checks if the service is ready to accept traffic. Redis being
// down does not fail readiness; token revocation degrades instead.
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not_ready",
			"service":  "user-service",
			"database": "disconnected",
			"error":    err.Error(),
		})
		return
	}

	cacheStatus := "connected"
	if h.cache == nil || !h.cache.IsConnected(c.Request.Context()) {
		cacheStatus = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"service":  "user-service",
		"database": "connected",
		"redis":    cacheStatus,
	})
}
