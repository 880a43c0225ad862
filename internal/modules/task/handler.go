package task

import (
	"errors"
	"net/http"
	"strconv"

	"cvstudio/internal/domain"
	"cvstudio/internal/pkg/response"
	"cvstudio/internal/repository"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/tasks", h.Create)
	rg.GET("/tasks", h.List)
	rg.GET("/tasks/:id", h.Get)
	rg.PATCH("/tasks/:id/status", h.UpdateStatus)
	rg.POST("/tasks/:id/delivery", h.UploadDelivery)
	rg.PATCH("/tasks/:id/financials", h.UpdateFinancials)
	rg.DELETE("/tasks/:id", h.Delete)
	rg.POST("/tasks/bulk", h.Bulk)
}

func actorFrom(c *gin.Context) Actor {
	return Actor{
		UserID: c.GetInt64("user_id"),
		Role:   domain.UserRole(c.GetString("role")),
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	t, err := h.service.CreateTask(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		h.writeError(c, err, "Failed to create task")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"task": t})
}

func (h *Handler) List(c *gin.Context) {
	f := repository.ListFilter{
		Status:          domain.TaskStatus(c.Query("status")),
		IncludeArchived: c.Query("archived") == "true",
	}
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			f.Limit = v
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			f.Offset = v
		}
	}

	tasks, err := h.service.ListTasks(c.Request.Context(), f, actorFrom(c))
	if err != nil {
		h.writeError(c, err, "Failed to list tasks")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tasks": tasks})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	t, err := h.service.GetTask(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		h.writeError(c, err, "Failed to load task")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"task": t})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	t, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status, actorFrom(c))
	if err != nil {
		h.writeError(c, err, "Failed to update task status")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"task": t})
}

func (h *Handler) UploadDelivery(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req UploadDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	t, err := h.service.UploadDelivery(c.Request.Context(), id, req.URLs, actorFrom(c))
	if err != nil {
		h.writeError(c, err, "Failed to upload delivery")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"task": t})
}

func (h *Handler) UpdateFinancials(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req UpdateFinancialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	t, err := h.service.UpdateFinancials(c.Request.Context(), id, *req.FinancialTotal, *req.FinancialPaid, actorFrom(c))
	if err != nil {
		h.writeError(c, err, "Failed to update financials")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"task": t})
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteTask(c.Request.Context(), id, actorFrom(c)); err != nil {
		h.writeError(c, err, "Failed to delete task")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) Bulk(c *gin.Context) {
	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.Bulk(c.Request.Context(), req, actorFrom(c)); err != nil {
		h.writeError(c, err, "Bulk operation failed")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"action":    req.Action,
		"task_ids":  req.TaskIDs,
		"completed": true,
	})
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid task ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Task not found")
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "CONFLICT", "Task code already exists")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}
