package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dochub/internal/domain"
	"dochub/internal/service"
)

// JobHandler handles batch job endpoints.
type JobHandler struct {
	jobs service.JobService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobs service.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// BatchInput is the DTO for batch start requests.
type BatchInput struct {
	Paths       []string             `json:"paths" binding:"required,min=1"`
	Config      domain.SessionConfig `json:"config"`
	NotifyEmail string               `json:"notify_email"`
}

// Start handles POST /api/v1/batches
func (h *JobHandler) Start(c *gin.Context) {
	var input BatchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	id, err := h.jobs.StartBatch(input.Paths, input.Config, input.NotifyEmail)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, gin.H{"job_id": id})
}

// Get handles GET /api/v1/batches/:id
func (h *JobHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid job id")
		return
	}

	status, err := h.jobs.GetJob(id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, status)
}

// List handles GET /api/v1/batches
func (h *JobHandler) List(c *gin.Context) {
	RespondOK(c, h.jobs.ListJobs())
}

// Cancel handles POST /api/v1/batches/:id/cancel
func (h *JobHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid job id")
		return
	}

	if err := h.jobs.CancelJob(id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"canceled": true})
}
