package earnings

import (
	"net/http"
	"strconv"
	"time"

	"cvstudio/internal/domain"
	"cvstudio/internal/middleware"
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
	rg.GET("/earnings/me", middleware.RequireRole(string(domain.RoleModerator)), h.MyEarnings)
	rg.GET("/earnings/:id", middleware.AdminOnly(), h.ModeratorEarnings)
}

func (h *Handler) MyEarnings(c *gin.Context) {
	h.respond(c, c.GetInt64("user_id"))
}

func (h *Handler) ModeratorEarnings(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid moderator ID")
		return
	}
	h.respond(c, id)
}

func (h *Handler) respond(c *gin.Context, moderatorID int64) {
	month := time.Now().UTC()
	if raw := c.Query("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "month must be formatted YYYY-MM")
			return
		}
		month = parsed
	}

	sum, err := h.service.MonthlyEarnings(c.Request.Context(), moderatorID, month)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute earnings")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"earnings": sum})
}
