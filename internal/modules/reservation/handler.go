package reservation

import (
	"errors"
	"net/http"
	"strconv"
	"time"

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

// RegisterRoutes wires the self-service surface onto the authenticated
// group and the management surface onto the admin group.
func (h *Handler) RegisterRoutes(user, admin *gin.RouterGroup) {
	user.POST("/reservations/reserve", h.Reserve)
	user.GET("/reservations/self", h.ListSelf)
	user.GET("/reservations/self/history", h.SelfHistory)
	user.DELETE("/reservations/cancel/:id", h.Cancel)

	admin.GET("/reservations", h.List)
	admin.PATCH("/reservations/:id/action/:action", h.HandleAction)
	admin.DELETE("/reservations/abort/:id", h.Abort)
	admin.GET("/reservations/history", h.History)
}

func (h *Handler) Reserve(c *gin.Context) {
	var req ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", ErrMissingData.Error())
		return
	}

	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", ErrMissingData.Error())
		return
	}

	userID := c.GetInt64("user_id")

	var booking BookingRequest
	switch domain.ReservationMode(req.Mode) {
	case domain.ModeNormal:
		booking = NormalBooking{
			UserID:     userID,
			DeskNumber: req.DeskNumber,
			Date:       day,
			StartTime:  req.StartTime,
			EndTime:    req.EndTime,
		}
	case domain.ModeAdminHold:
		if c.GetString("role") != string(domain.RoleAdmin) {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "only admins may place holds")
			return
		}
		booking = AdminHold{
			UserID:     userID,
			DeskNumber: req.DeskNumber,
			Date:       day,
			StartTime:  req.StartTime,
			EndTime:    req.EndTime,
		}
	default:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown reservation mode")
		return
	}

	r, err := h.service.Reserve(c.Request.Context(), userID, booking)
	if err != nil {
		h.recordAudit(c, audit.ActionReservation, "reserve hotdesk", audit.StatusFailed, err.Error())
		h.respondError(c, err)
		return
	}

	h.recordAudit(c, audit.ActionReservation, "reserve hotdesk", audit.StatusSuccess, "")
	response.Success(c, http.StatusCreated, gin.H{"reservation": r})
}

// HandleAction covers the administrative approve/reject decision.
func (h *Handler) HandleAction(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	var (
		r    *domain.Reservation
		err  error
		done string
	)

	switch c.Param("action") {
	case "approve":
		r, err = h.service.Approve(c.Request.Context(), id)
		done = "reservation has been approved"
	case "reject":
		r, err = h.service.Reject(c.Request.Context(), id)
		done = "reservation has been rejected"
	default:
		h.recordAudit(c, audit.ActionReservationManagement, "handle reservation", audit.StatusFailed, ErrInvalidAction.Error())
		response.Error(c, http.StatusBadRequest, "INVALID_ACTION", ErrInvalidAction.Error())
		return
	}

	if err != nil {
		h.recordAudit(c, audit.ActionReservationManagement, "handle reservation", audit.StatusFailed, err.Error())
		h.respondError(c, err)
		return
	}

	h.recordAudit(c, audit.ActionReservationManagement, "handle reservation", audit.StatusSuccess, done)
	response.Success(c, http.StatusOK, gin.H{"reservation": r})
}

func (h *Handler) Abort(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	r, err := h.service.Abort(c.Request.Context(), id)
	if err != nil {
		h.recordAudit(c, audit.ActionReservationManagement, "abort reservation", audit.StatusFailed, err.Error())
		h.respondError(c, err)
		return
	}

	h.recordAudit(c, audit.ActionReservationManagement, "abort reservation", audit.StatusSuccess, "")
	response.Success(c, http.StatusOK, gin.H{"reservation": r})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	r, err := h.service.Cancel(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		h.recordAudit(c, audit.ActionReservation, "cancel reservation", audit.StatusFailed, err.Error())
		h.respondError(c, err)
		return
	}

	h.recordAudit(c, audit.ActionReservation, "cancel reservation", audit.StatusSuccess, "")
	response.Success(c, http.StatusOK, gin.H{"reservation": r})
}

func (h *Handler) List(c *gin.Context) {
	var q listQuery
	_ = c.ShouldBindQuery(&q)
	limit, offset := q.bounds()

	mode := domain.ModeNormal
	if c.Query("mode") == "1" {
		mode = domain.ModeAdminHold
	}

	list, total, err := h.service.List(c.Request.Context(), mode, limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list reservations")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservations": list, "total_documents": total})
}

func (h *Handler) ListSelf(c *gin.Context) {
	var q listQuery
	_ = c.ShouldBindQuery(&q)
	limit, offset := q.bounds()

	list, total, err := h.service.ListSelf(c.Request.Context(), c.GetInt64("user_id"), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list reservations")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservations": list, "total_documents": total})
}

func (h *Handler) History(c *gin.Context) {
	var q listQuery
	_ = c.ShouldBindQuery(&q)
	limit, offset := q.bounds()

	list, total, err := h.service.History(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list history")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservations": list, "total_documents": total})
}

func (h *Handler) SelfHistory(c *gin.Context) {
	var q listQuery
	_ = c.ShouldBindQuery(&q)
	limit, offset := q.bounds()

	list, total, err := h.service.SelfHistory(c.Request.Context(), c.GetInt64("user_id"), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list history")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservations": list, "total_documents": total})
}

func (h *Handler) paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid reservation id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrMissingData), errors.Is(err, ErrInvalidDateRange):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrDuplicateReservation),
		errors.Is(err, ErrDeskReserved),
		errors.Is(err, ErrDeskHeld),
		errors.Is(err, ErrDeskUnavailable),
		errors.Is(err, ErrDeskNotFound):
		response.Error(c, http.StatusBadRequest, "BOOKING_CONFLICT", err.Error())
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrInvalidAction):
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "unexpected failure")
	}
}

func (h *Handler) recordAudit(c *gin.Context, actionType, details, status, context string) {
	userID := c.GetInt64("user_id")
	var uid *int64
	if userID != 0 {
		uid = &userID
	}
	h.audit.Record(c.Request.Context(), audit.Entry{
		UserID:            uid,
		ActionType:        actionType,
		ActionDetails:     details,
		IPAddress:         c.ClientIP(),
		Status:            status,
		AdditionalContext: context,
	})
}
