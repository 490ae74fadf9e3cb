package reservation

import (
	"context"
	"time"

	"deskhub/internal/domain"
)

// Booking-window bounds for normal reservations, in days from today.
const (
	minBookingLeadDays = 2
	maxBookingLeadDays = 16
)

// BookingRequest is a tagged booking variant: a self-service booking or
// an administrative hold. Holds skip the booking-window rule.
type BookingRequest interface {
	deskNumber() int
	date() time.Time
	fields() (start, end time.Time)
	mode() domain.ReservationMode
}

type NormalBooking struct {
	UserID     int64
	DeskNumber int
	Date       time.Time
	StartTime  time.Time
	EndTime    time.Time
}

func (b NormalBooking) deskNumber() int                { return b.DeskNumber }
func (b NormalBooking) date() time.Time                { return b.Date }
func (b NormalBooking) fields() (time.Time, time.Time) { return b.StartTime, b.EndTime }
func (b NormalBooking) mode() domain.ReservationMode   { return domain.ModeNormal }

type AdminHold struct {
	UserID     int64
	DeskNumber int
	Date       time.Time
	StartTime  time.Time
	EndTime    time.Time
}

func (b AdminHold) deskNumber() int                { return b.DeskNumber }
func (b AdminHold) date() time.Time                { return b.Date }
func (b AdminHold) fields() (time.Time, time.Time) { return b.StartTime, b.EndTime }
func (b AdminHold) mode() domain.ReservationMode   { return domain.ModeAdminHold }

// ConflictChecker decides whether a booking request may proceed. It is a
// pure predicate over existing state; the caller creates the reservation.
type ConflictChecker struct {
	reservations ReservationRepository
	desks        DeskDirectory

	now func() time.Time
}

func NewConflictChecker(reservations ReservationRepository, desks DeskDirectory) *ConflictChecker {
	return &ConflictChecker{
		reservations: reservations,
		desks:        desks,
		now:          time.Now,
	}
}

// CanReserve applies the booking rules in precedence order and returns
// the first rejection, or nil when the request may proceed.
func (c *ConflictChecker) CanReserve(ctx context.Context, userID int64, req BookingRequest) error {
	start, end := req.fields()
	if req.date().IsZero() || start.IsZero() || end.IsZero() || req.deskNumber() == 0 {
		return ErrMissingData
	}

	day := truncateToDay(req.date())

	if _, normal := req.(NormalBooking); normal {
		today := truncateToDay(c.now())
		earliest := today.AddDate(0, 0, minBookingLeadDays)
		latest := today.AddDate(0, 0, maxBookingLeadDays)
		if day.Before(earliest) || day.After(latest) {
			return ErrInvalidDateRange
		}
	}

	taken, err := c.reservations.HasActiveByUserAndDate(ctx, userID, day)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateReservation
	}

	reserved, err := c.reservations.HasActiveByDeskAndDate(ctx, req.deskNumber(), day, domain.ModeNormal)
	if err != nil {
		return err
	}
	if reserved {
		return ErrDeskReserved
	}

	if _, hold := req.(AdminHold); hold {
		held, err := c.reservations.HasActiveByDeskAndDate(ctx, req.deskNumber(), day, domain.ModeAdminHold)
		if err != nil {
			return err
		}
		if held {
			return ErrDeskHeld
		}
	}

	desk, err := c.desks.GetByDeskNumber(ctx, req.deskNumber())
	if err != nil {
		if isRecordNotFound(err) {
			return ErrDeskNotFound
		}
		return err
	}
	if desk.Status != domain.DeskAvailable {
		return ErrDeskUnavailable
	}

	if !domain.ValidDeskNumber(req.deskNumber()) {
		return ErrDeskNotFound
	}

	return nil
}

// truncateToDay drops the time-of-day component in UTC.
func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
