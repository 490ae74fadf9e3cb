package audit

import (
	"context"
	"log"

	"deskhub/internal/domain"
	"deskhub/internal/repository"
)

// Action types recorded in the trail.
const (
	ActionReservation           = "reservation"
	ActionReservationManagement = "reservation management"
	ActionDeskManagement        = "desk management"
	ActionFeedback              = "feedback"
	ActionUserManagement        = "user management"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Entry describes one audited action.
type Entry struct {
	UserID            *int64
	Email             string
	ActionType        string
	ActionDetails     string
	IPAddress         string
	Status            string
	AdditionalContext string
}

// Recorder writes audit-trail rows. Failures are logged and swallowed so
// an audit outage never blocks the audited operation.
type Recorder struct {
	repo *repository.AuditRepository
}

func NewRecorder(repo *repository.AuditRepository) *Recorder {
	return &Recorder{repo: repo}
}

func (r *Recorder) Record(ctx context.Context, e Entry) {
	if r == nil || r.repo == nil {
		return
	}
	t := &domain.AuditTrail{
		UserID:            e.UserID,
		Email:             e.Email,
		ActionType:        e.ActionType,
		ActionDetails:     e.ActionDetails,
		IPAddress:         e.IPAddress,
		Status:            e.Status,
		AdditionalContext: e.AdditionalContext,
	}
	if err := r.repo.Create(ctx, t); err != nil {
		log.Printf("audit write failed type=%s details=%q: %v", e.ActionType, e.ActionDetails, err)
	}
}
