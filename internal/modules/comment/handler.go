package comment

import (
	"errors"
	"net/http"
	"strconv"

	"cvstudio/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tasks/:id/comments", h.List)
	rg.POST("/tasks/:id/comments", h.Create)
	rg.DELETE("/comments/:id", h.Delete)
}

type createCommentRequest struct {
	Text       string `json:"text" binding:"required"`
	AuthorName string `json:"author_name"`
}

func (h *Handler) List(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid task ID")
		return
	}

	comments, err := h.service.ListComments(c.Request.Context(), taskID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load comments")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"comments": comments})
}

func (h *Handler) Create(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid task ID")
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), taskID, c.GetInt64("user_id"), req.AuthorName, req.Text)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Comment text is required")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to add comment")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"comment": comment})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid comment ID")
		return
	}

	if err := h.service.DeleteComment(c.Request.Context(), id, c.GetInt64("user_id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Comment not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete comment")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
