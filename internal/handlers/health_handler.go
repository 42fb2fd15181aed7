package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"happymeter/internal/database"
	"happymeter/internal/observability"
)

// DBPinger is the subset of *sql.DB the health check needs.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports service and database health.
type HealthHandler struct {
	db     DBPinger
	logger *observability.Logger
}

// NewHealthHandler creates a new HealthHandler instance.
func NewHealthHandler(db DBPinger, logger *observability.Logger) *HealthHandler {
	if db == nil {
		panic("NewHealthHandler: db is nil")
	}
	if logger == nil {
		panic("NewHealthHandler: logger is nil")
	}
	return &HealthHandler{db: db, logger: logger}
}

type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// Check handles GET /api/health. It pings the database with a short deadline
// and reports 503 when the store is unreachable.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), database.HealthCheckTimeout)
	defer cancel()

	now := time.Now().UTC().Format(timestampLayout)

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Error(c.Request.Context(), "health check database ping failed", err)
		c.JSON(http.StatusServiceUnavailable, healthResponse{
			Status:    "error",
			Database:  "disconnected",
			Timestamp: now,
		})
		return
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:    "ok",
		Database:  "connected",
		Timestamp: now,
	})
}
