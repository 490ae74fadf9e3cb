package reservation

import "errors"

var (
	ErrMissingData          = errors.New("missing required data")
	ErrInvalidDateRange     = errors.New("invalid date range")
	ErrDuplicateReservation = errors.New("you already have a reservation for this date")
	ErrDeskReserved         = errors.New("hotdesk is already reserved")
	ErrDeskHeld             = errors.New("hotdesk is already temporarily unavailable")
	ErrDeskUnavailable      = errors.New("hotdesk is unavailable")
	ErrDeskNotFound         = errors.New("hotdesk not found")

	ErrNotFound       = errors.New("reservation not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidAction  = errors.New("invalid action")
)
