package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/railplan/copilot/internal/store"
)

// AuditReader is the audit query surface the handler depends on. Nil when
// no audit database is configured.
type AuditReader interface {
	RecentAudit(ctx context.Context, limit int) ([]store.AuditEntry, error)
}

var _ AuditReader = (*store.AuditStore)(nil)

const maxAuditLimit = 500

// AuditHandler serves the audit log read endpoint.
type AuditHandler struct {
	reader AuditReader
	log    *logrus.Logger
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(reader AuditReader, log *logrus.Logger) *AuditHandler {
	return &AuditHandler{reader: reader, log: log}
}

type auditResponse struct {
	Entries []store.AuditEntry `json:"entries"`
}

// Recent handles GET /api/audit?limit=N.
func (h *AuditHandler) Recent(c *gin.Context) {
	if h.reader == nil {
		respondError(c, http.StatusServiceUnavailable, ErrCodeAuditUnavailable, "audit log requires a configured database")
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxAuditLimit {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	entries, err := h.reader.RecentAudit(c.Request.Context(), limit)
	if err != nil {
		h.log.WithError(err).Error("audit query failed")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
		return
	}
	if entries == nil {
		entries = []store.AuditEntry{}
	}
	c.JSON(http.StatusOK, auditResponse{Entries: entries})
}
