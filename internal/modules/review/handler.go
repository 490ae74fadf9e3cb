package review

import (
	"errors"
	"net/http"
	"strconv"

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
	user.POST("/feedbacks", h.SubmitFeedback)
	user.GET("/reviews/self", h.PendingReviews)
	user.PATCH("/reviews/:id/archive", h.Archive)

	admin.GET("/feedbacks", h.ListFeedback)
}

type feedbackRequest struct {
	DeskNumber  int    `json:"desk_number" binding:"required"`
	Rating      int    `json:"rating" binding:"required"`
	Description string `json:"description"`
}

func (h *Handler) SubmitFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", ErrValidation.Error())
		return
	}

	userID := c.GetInt64("user_id")
	f, err := h.service.SubmitFeedback(c.Request.Context(), userID, req.DeskNumber, req.Rating, req.Description)
	if err != nil {
		h.recordAudit(c, "submit feedback", audit.StatusFailed, err.Error())
		switch {
		case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidRating), errors.Is(err, ErrNothingToRate):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to submit feedback")
		}
		return
	}

	h.recordAudit(c, "submit feedback", audit.StatusSuccess, "")
	response.Success(c, http.StatusCreated, gin.H{"feedback": f})
}

func (h *Handler) PendingReviews(c *gin.Context) {
	list, err := h.service.PendingReviews(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list reviews")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reviews": list})
}

func (h *Handler) Archive(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid review id")
		return
	}

	if err := h.service.Archive(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to archive review")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"archived": true})
}

func (h *Handler) ListFeedback(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	list, total, err := h.service.ListFeedback(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list feedback")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"feedbacks": list, "total_documents": total})
}

func (h *Handler) recordAudit(c *gin.Context, details, status, context string) {
	userID := c.GetInt64("user_id")
	var uid *int64
	if userID != 0 {
		uid = &userID
	}
	h.audit.Record(c.Request.Context(), audit.Entry{
		UserID:            uid,
		ActionType:        audit.ActionFeedback,
		ActionDetails:     details,
		IPAddress:         c.ClientIP(),
		Status:            status,
		AdditionalContext: context,
	})
}
