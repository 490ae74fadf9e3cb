package reservation

import (
	"context"
	"time"

	"deskhub/internal/domain"
)

// ReservationRepository is the persistence surface the state machine and
// the scheduling jobs need.
type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	GetByIDForUser(ctx context.Context, id, userID int64) (*domain.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error
	Delete(ctx context.Context, id int64) error

	HasActiveByUserAndDate(ctx context.Context, userID int64, date time.Time) (bool, error)
	HasActiveByDeskAndDate(ctx context.Context, deskNumber int, date time.Time, mode domain.ReservationMode) (bool, error)

	ListByMode(ctx context.Context, mode domain.ReservationMode, limit, offset int) ([]domain.Reservation, int64, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Reservation, int64, error)

	FindApprovedStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Reservation, error)
	MarkStartedStartingBetween(ctx context.Context, from, to time.Time) error
	FindEndedBefore(ctx context.Context, t time.Time) ([]domain.Reservation, error)
	DeleteEndedBefore(ctx context.Context, t time.Time) error
	FindPendingDatedBefore(ctx context.Context, t time.Time) ([]domain.Reservation, error)
	DeletePendingDatedBefore(ctx context.Context, t time.Time) error
	FindPendingStartedBefore(ctx context.Context, t time.Time) ([]domain.Reservation, error)
	DeletePendingStartedBefore(ctx context.Context, t time.Time) error
}

type HistoryRepository interface {
	Create(ctx context.Context, h *domain.ReservationHistory) error
	ListByMode(ctx context.Context, mode domain.ReservationMode, limit, offset int) ([]domain.ReservationHistory, int64, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.ReservationHistory, int64, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, rv *domain.UserReview) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	AdjustToRate(ctx context.Context, userID int64, delta int) error
}

// DeskDirectory is the read-only desk lookup consumed by the conflict
// checker. The reservation core never mutates desks.
type DeskDirectory interface {
	GetByDeskNumber(ctx context.Context, deskNumber int) (*domain.Hotdesk, error)
}

type SettingsRepository interface {
	GetSwitch(ctx context.Context) (*domain.Switch, error)
}

// JobLedger guards the history-writing jobs against double-processing a
// reservation across overlapping or retried runs.
type JobLedger interface {
	MarkProcessed(ctx context.Context, reservationID int64, job string) (bool, error)
}

// NotificationSender delivers best-effort user notifications. Both
// methods are fire-and-forget from the caller's perspective.
type NotificationSender interface {
	Email(recipient, subject, body string)
	Push(userID int64, event string, payload map[string]any)
}
