package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/clientportal/backend/internal/infrastructure/persistence"
)

// SystemHandler serves liveness and readiness probes
type SystemHandler struct {
	BaseHandler
	db    *persistence.Database
	redis *redis.Client
}

// NewSystemHandler creates a system handler
func NewSystemHandler(db *persistence.Database, redisClient *redis.Client, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		BaseHandler: NewBaseHandler(logger.Named("system_handler")),
		db:          db,
		redis:       redisClient,
	}
}

// RegisterRoutes registers probe routes directly on the engine so they sit
// outside the authenticated API group.
func (h *SystemHandler) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/health", h.Health)
	engine.GET("/ready", h.Ready)
}

// Health reports process liveness
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

// Ready reports whether the database and Redis are reachable. Redis being
// down degrades caching but does not fail readiness.
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
		return
	}

	redisStatus := "ok"
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "degraded: " + err.Error()
		}
	} else {
		redisStatus = "disabled"
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok", "redis": redisStatus})
}
