package domain

import "time"

type AuditTrail struct {
	ID                int64     `json:"id"`
	UserID            *int64    `json:"user_id,omitempty"`
	Email             string    `json:"email,omitempty"`
	ActionType        string    `json:"action_type"`
	ActionDetails     string    `json:"action_details"`
	IPAddress         string    `json:"ip_address"`
	Status            string    `json:"status"`
	AdditionalContext string    `json:"additional_context,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
