package jobs

import (
	"net/http"
	"time"

	"cvstudio/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler exposes the jobs to an external scheduler. Both endpoints are
// parameterless and safe to re-run.
type Handler struct {
	overdue   *OverdueDetector
	retention *RetentionJob
}

func NewHandler(overdue *OverdueDetector, retention *RetentionJob) *Handler {
	return &Handler{overdue: overdue, retention: retention}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs/overdue", h.RunOverdue)
	rg.POST("/jobs/retention", h.RunRetention)
}

func (h *Handler) RunOverdue(c *gin.Context) {
	if err := h.overdue.Run(c.Request.Context(), time.Now()); err != nil {
		response.Error(c, http.StatusInternalServerError, "JOB_FAILED", "Overdue scan failed")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"job": "overdue", "completed": true})
}

func (h *Handler) RunRetention(c *gin.Context) {
	if err := h.retention.Run(c.Request.Context(), time.Now()); err != nil {
		response.Error(c, http.StatusInternalServerError, "JOB_FAILED", "Notification retention failed")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"job": "retention", "completed": true})
}
