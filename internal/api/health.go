package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/railplan/copilot/internal/ws"
)

// HealthHandler serves the health endpoint.
type HealthHandler struct {
	pool      *pgxpool.Pool
	hub       *ws.Hub
	log       *logrus.Logger
	version   string
	startTime time.Time
}

// NewHealthHandler creates a HealthHandler. pool may be nil when the audit
// database is not configured.
func NewHealthHandler(pool *pgxpool.Pool, hub *ws.Hub, log *logrus.Logger, version string) *HealthHandler {
	return &HealthHandler{
		pool:      pool,
		hub:       hub,
		log:       log,
		version:   version,
		startTime: time.Now(),
	}
}

type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	WSClients     int     `json:"ws_clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(c *gin.Context) {
	resp := healthResponse{
		Status:        "ok",
		Version:       h.version,
		Database:      "not_configured",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	if h.hub != nil {
		resp.WSClients = h.hub.ClientCount()
	}

	// Best-effort database ping (non-fatal, the audit sink degrades to logs).
	if h.pool != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		resp.Database = "connected"
		if err := h.pool.Ping(ctx); err != nil {
			h.log.WithError(err).Warn("health: database ping failed")
			resp.Database = "disconnected"
		}
	}

	c.JSON(http.StatusOK, resp)
}
