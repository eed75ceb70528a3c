package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/wilayah_api/internal/cache"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

var startTime = time.Now()

// DBPinger is satisfied by *sqlx.DB and *sql.DB.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler provides health endpoint.
type HealthHandler struct {
	db    DBPinger
	cache cache.Store
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db DBPinger, store cache.Store) *HealthHandler {
	return &HealthHandler{db: db, cache: store}
}

// GetHealth reports database and cache status. Only a database failure
// makes the service unhealthy; without its cache it still serves reads.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "connected"
	if err := h.db.PingContext(ctx); err != nil {
		dbStatus = "disconnected"
	}

	cacheStatus := "local"
	if p, ok := h.cache.(cache.Pinger); ok {
		cacheStatus = "connected"
		if err := p.Ping(ctx); err != nil {
			cacheStatus = "disconnected"
		}
	}

	status, code, message := "healthy", http.StatusOK, "Service is healthy"
	if dbStatus != "connected" {
		status, code, message = "unhealthy", http.StatusServiceUnavailable, "Database unavailable"
	} else if cacheStatus == "disconnected" {
		status = "degraded"
	}

	utils.Success(c, code, message, gin.H{
		"status":   status,
		"version":  "1.0.0",
		"uptime":   int(time.Since(startTime).Seconds()),
		"database": dbStatus,
		"cache":    cacheStatus,
	})
}
