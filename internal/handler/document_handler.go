package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dochub/internal/domain"
	"dochub/internal/service"
)

// DocumentHandler handles single-document endpoints.
type DocumentHandler struct {
	documents service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documents service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// ProcessInput is the DTO for process requests.
type ProcessInput struct {
	Path   string               `json:"path" binding:"required"`
	Config domain.SessionConfig `json:"config"`
}

// Process handles POST /api/v1/documents/process
func (h *DocumentHandler) Process(c *gin.Context) {
	var input ProcessInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	run, err := h.documents.Process(c.Request.Context(), input.Path, input.Config)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, run)
}

// Inspect handles GET /api/v1/documents/inspect?path=...
func (h *DocumentHandler) Inspect(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "path query parameter is required")
		return
	}

	insp, err := h.documents.Inspect(c.Request.Context(), path)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, insp)
}

// ValidateOptions handles POST /api/v1/options/validate
func (h *DocumentHandler) ValidateOptions(c *gin.Context) {
	var cfg domain.SessionConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	opts, result := h.documents.ValidateConfig(cfg)
	RespondOK(c, gin.H{"options": opts, "validation": result})
}
