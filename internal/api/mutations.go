// Package api provides the HTTP surface of the mutation engine.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/railplan/copilot/internal/engine"
	"github.com/railplan/copilot/internal/middleware"
	"github.com/railplan/copilot/internal/models"
)

// MutationHandler serves the preview/resolve/commit endpoints.
type MutationHandler struct {
	engine MutationEngine
	log    *logrus.Logger
}

// NewMutationHandler creates a MutationHandler.
func NewMutationHandler(eng MutationEngine, log *logrus.Logger) *MutationHandler {
	return &MutationHandler{engine: eng, log: log}
}

func identityFrom(c *gin.Context) engine.Identity {
	return engine.Identity{
		ClientID: c.GetString(middleware.ClientIDKey),
		Role:     c.GetString(middleware.ClientRoleKey),
	}
}

type previewRequest struct {
	Payload map[string]any `json:"payload"`
	Prompt  string         `json:"prompt"`
}

// Preview handles POST /api/mutations/preview. Either a structured payload
// or a natural-language prompt must be present; a prompt goes through the
// interpreter first.
func (h *MutationHandler) Preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if len(req.Payload) == 0 && req.Prompt == "" {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "either payload or prompt is required")
		return
	}

	payload := models.ActionPayload(req.Payload)
	if len(req.Payload) == 0 {
		interpreted, err := h.engine.Interpret(c.Request.Context(), req.Prompt)
		if err != nil {
			h.log.WithError(err).Warn("prompt interpretation failed")
			respondError(c, http.StatusBadGateway, ErrCodeInterpretFailed, "could not interpret the prompt")
			return
		}
		payload = interpreted
	}

	result, err := h.engine.Preview(c.Request.Context(), identityFrom(c), payload)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type resolveRequest struct {
	SelectedID string `json:"selectedId"`
}

// Resolve handles POST /api/mutations/resolve/:id.
func (h *MutationHandler) Resolve(c *gin.Context) {
	resolutionID := c.Param("id")
	if err := validatePathID(resolutionID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SelectedID == "" {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "selectedId is required")
		return
	}

	result, err := h.engine.Resolve(c.Request.Context(), identityFrom(c), resolutionID, req.SelectedID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Commit handles POST /api/mutations/:id/commit.
func (h *MutationHandler) Commit(c *gin.Context) {
	previewID := c.Param("id")
	if err := validatePathID(previewID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	result, err := h.engine.Commit(c.Request.Context(), identityFrom(c), previewID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
