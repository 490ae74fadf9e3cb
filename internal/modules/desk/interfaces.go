package desk

import (
	"context"
	"time"

	"deskhub/internal/domain"
)

type DeskRepository interface {
	Create(ctx context.Context, d *domain.Hotdesk) error
	GetByID(ctx context.Context, id int64) (*domain.Hotdesk, error)
	GetByDeskNumber(ctx context.Context, deskNumber int) (*domain.Hotdesk, error)
	List(ctx context.Context, limit, offset int) ([]domain.Hotdesk, int64, error)
	Update(ctx context.Context, d *domain.Hotdesk) error
	Delete(ctx context.Context, id int64) error
}

// ReservationLookup tells whether a desk is claimed on a date; used to
// refuse edits to a desk that is in use today.
type ReservationLookup interface {
	HasReservationOnDate(ctx context.Context, deskNumber int, date time.Time) (bool, error)
}
