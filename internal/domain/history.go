package domain

import "time"

// HistoryType is the terminal disposition recorded when a reservation
// leaves active life.
type HistoryType string

const (
	HistoryRejected  HistoryType = "REJECTED"
	HistoryCanceled  HistoryType = "CANCELED"
	HistoryCompleted HistoryType = "COMPLETED"
	HistoryExpired   HistoryType = "EXPIRED"
	HistoryAborted   HistoryType = "ABORTED"
)

// ReservationHistory is append-only: one row per terminal transition,
// never updated or deleted.
type ReservationHistory struct {
	ID            int64           `json:"id"`
	ReservationID int64           `json:"reservation_id"`
	UserID        int64           `json:"user_id"`
	DeskNumber    int             `json:"desk_number"`
	Date          time.Time       `json:"date"`
	StartTime     time.Time       `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
	Type          HistoryType     `json:"type"`
	Mode          ReservationMode `json:"mode"`
	CreatedAt     time.Time       `json:"created_at"`
}
