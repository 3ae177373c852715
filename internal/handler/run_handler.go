package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dochub/internal/domain"
	"dochub/internal/port"
	"dochub/internal/xlsxexport"
)

// RunHandler handles run history endpoints.
type RunHandler struct {
	runs port.RunRepository
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(runs port.RunRepository) *RunHandler {
	return &RunHandler{runs: runs}
}

// List handles GET /api/v1/runs
func (h *RunHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	runs, total, err := h.runs.List(c.Request.Context(), limit, offset)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, runs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/runs/:id
func (h *RunHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid run id")
		return
	}

	run, err := h.runs.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, run)
}

// Delete handles DELETE /api/v1/runs/:id
func (h *RunHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid run id")
		return
	}

	if err := h.runs.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"deleted": true})
}

// Export handles GET /api/v1/runs/export, streaming the run history and
// change logs as an Excel workbook.
func (h *RunHandler) Export(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "500"))
	if limit < 1 || limit > 5000 {
		limit = 500
	}

	runs, _, err := h.runs.List(c.Request.Context(), limit, 0)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("dochub-runs-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := xlsxexport.WriteRunReport(c.Writer, runs); err != nil {
		HandleError(c, fmt.Errorf("%w: %v", domain.ErrProcessing, err))
	}
}
