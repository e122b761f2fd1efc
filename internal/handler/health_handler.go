package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/lodgio/lodgio-api/internal/cache"
	"github.com/lodgio/lodgio-api/internal/utils"
)

// HealthHandler reports liveness of the engine and its backing stores.
type HealthHandler struct {
	db    *sqlx.DB
	redis *cache.RedisClient
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(db *sqlx.DB, redis *cache.RedisClient) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Check pings the database and Redis.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := gin.H{
		"database": "ok",
		"redis":    "ok",
	}
	healthy := true

	if err := h.db.PingContext(ctx); err != nil {
		status["database"] = err.Error()
		healthy = false
	}
	if err := h.redis.Ping(ctx); err != nil {
		status["redis"] = err.Error()
		healthy = false
	}

	if !healthy {
		utils.Error(c, 503, "UNHEALTHY", "One or more dependencies are down")
		return
	}
	utils.Success(c, 200, "OK", status)
}
