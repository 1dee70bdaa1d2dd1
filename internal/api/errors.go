package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/railplan/copilot/internal/httputil"
	"github.com/railplan/copilot/internal/metrics"
	"github.com/railplan/copilot/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeInternalError    = "internal_error"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeStalePreview     = "stale_preview"
	ErrCodeCommitTaskFailed = "commit_task_failed"
	ErrCodeInterpretFailed  = "interpret_failed"
	ErrCodeAuditUnavailable = "audit_unavailable"
)

// respondError writes a standardized JSON error response, pulling the
// request ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

// respondEngineError maps engine sentinel errors to stable codes.
func respondEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrPreviewNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "preview not found or expired")
	case errors.Is(err, models.ErrClarificationNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "clarification not found or expired")
	case errors.Is(err, models.ErrStaleSnapshot):
		respondError(c, http.StatusConflict, ErrCodeStalePreview, "the data changed since the preview was created, preview again")
	case errors.Is(err, models.ErrCommitTaskFailed):
		respondError(c, http.StatusInternalServerError, ErrCodeCommitTaskFailed, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
	}
}
