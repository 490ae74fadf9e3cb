package desk

import (
	"errors"
	"net/http"
	"strconv"

	"deskhub/internal/domain"
	"deskhub/internal/modules/audit"
	"deskhub/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	audit   *audit.Recorder
}

func NewHandler(service *Service, recorder *audit.Recorder) *Handler {
	return &Handler{service: service, audit: recorder}
}

func (h *Handler) RegisterRoutes(user, admin *gin.RouterGroup) {
	user.GET("/hotdesks", h.List)

	admin.POST("/hotdesks", h.Create)
	admin.PATCH("/hotdesks/:id", h.Update)
	admin.DELETE("/hotdesks/:id", h.Delete)
}

type createRequest struct {
	DeskNumber int      `json:"desk_number" binding:"required"`
	Essentials []string `json:"essentials"`
}

type updateRequest struct {
	Essentials []string `json:"essentials"`
	Status     *string  `json:"status"`
}

func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "desk number is required")
		return
	}

	d, err := h.service.Create(c.Request.Context(), req.DeskNumber, req.Essentials)
	if err != nil {
		h.recordAudit(c, "create hotdesk", audit.StatusFailed, err.Error())
		h.respondError(c, err)
		return
	}

	h.recordAudit(c, "create hotdesk", audit.StatusSuccess, d.Title+" created")
	response.Success(c, http.StatusCreated, gin.H{"hotdesk": d})
}

func (h *Handler) List(c *gin.Context) {
	limit, offset := pageBounds(c)
	desks, total, err := h.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list hotdesks")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"desks": desks, "total_documents": total})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	var status *domain.DeskStatus
	if req.Status != nil {
		st := domain.DeskStatus(*req.Status)
		if st != domain.DeskAvailable && st != domain.DeskUnavailable {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown desk status")
			return
		}
		status = &st
	}

	d, err := h.service.Update(c.Request.Context(), id, req.Essentials, status)
	if err != nil {
		h.recordAudit(c, "update hotdesk", audit.StatusFailed, err.Error())
		h.respondError(c, err)
		return
	}

	h.recordAudit(c, "update hotdesk", audit.StatusSuccess, d.Title+" updated")
	response.Success(c, http.StatusOK, gin.H{"hotdesk": d})
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	d, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		h.recordAudit(c, "delete hotdesk", audit.StatusFailed, err.Error())
		h.respondError(c, err)
		return
	}

	h.recordAudit(c, "delete hotdesk", audit.StatusSuccess, d.Title+" deleted")
	response.Success(c, http.StatusOK, gin.H{"desk": d})
}

func (h *Handler) paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid hotdesk id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrValidation), errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrDeskInUse):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "unexpected failure")
	}
}

func (h *Handler) recordAudit(c *gin.Context, details, status, context string) {
	userID := c.GetInt64("user_id")
	var uid *int64
	if userID != 0 {
		uid = &userID
	}
	h.audit.Record(c.Request.Context(), audit.Entry{
		UserID:            uid,
		ActionType:        audit.ActionDeskManagement,
		ActionDetails:     details,
		IPAddress:         c.ClientIP(),
		Status:            status,
		AdditionalContext: context,
	})
}

func pageBounds(c *gin.Context) (limit, offset int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return limit, (page - 1) * limit
}
