package domain

import "time"

type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "PENDING"
	ReviewRated    ReviewStatus = "RATED"
	ReviewArchived ReviewStatus = "ARCHIVED"
)

// UserReview is the rating obligation created when a normal reservation
// completes. It stays PENDING until the user submits feedback.
type UserReview struct {
	ID            int64        `json:"id"`
	UserID        int64        `json:"user_id"`
	DeskNumber    int          `json:"desk_number"`
	ReservationID int64        `json:"reservation_id"`
	Date          time.Time    `json:"date"`
	Status        ReviewStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

type Feedback struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	DeskNumber  int       `json:"desk_number"`
	Rating      int       `json:"rating" validate:"gte=1,lte=5"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
