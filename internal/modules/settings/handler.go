package settings

import (
	"net/http"

	"deskhub/internal/pkg/response"
	"deskhub/internal/repository"

	"github.com/gin-gonic/gin"
)

// Handler exposes the auto-accept switch to administrators. When the
// switch is on, new reservations skip PENDING and start out APPROVED.
type Handler struct {
	settings *repository.SettingsRepository
}

func NewHandler(settings *repository.SettingsRepository) *Handler {
	return &Handler{settings: settings}
}

func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/switch", h.Get)
	admin.PUT("/switch", h.Set)
}

type switchRequest struct {
	AutoAccepting *bool `json:"auto_accepting" binding:"required"`
}

func (h *Handler) Get(c *gin.Context) {
	sw, err := h.settings.GetSwitch(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to read switch")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"switch": sw})
}

func (h *Handler) Set(c *gin.Context) {
	var req switchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "auto_accepting must be a boolean")
		return
	}

	sw, err := h.settings.SetAutoAccepting(c.Request.Context(), *req.AutoAccepting)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to update switch")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"switch": sw})
}
