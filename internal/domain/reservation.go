package domain

import "time"

type ReservationStatus string

const (
	ReservationPending  ReservationStatus = "PENDING"
	ReservationApproved ReservationStatus = "APPROVED"
	ReservationStarted  ReservationStatus = "STARTED"
)

// ReservationMode distinguishes self-service bookings from administrative
// holds that block a desk out of the inventory.
type ReservationMode int

const (
	ModeNormal    ReservationMode = 0
	ModeAdminHold ReservationMode = 1
)

type Reservation struct {
	ID         int64             `json:"id"`
	UserID     int64             `json:"user_id"`
	DeskNumber int               `json:"desk_number"`
	Date       time.Time         `json:"date"`
	StartTime  time.Time         `json:"start_time"`
	EndTime    time.Time         `json:"end_time"`
	Status     ReservationStatus `json:"status"`
	Mode       ReservationMode   `json:"mode"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Active reservations are the ones that still claim the desk.
func (r *Reservation) IsActive() bool {
	switch r.Status {
	case ReservationPending, ReservationApproved, ReservationStarted:
		return true
	}
	return false
}
