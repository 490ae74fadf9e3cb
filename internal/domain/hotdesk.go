package domain

import "time"

type DeskStatus string

const (
	DeskAvailable   DeskStatus = "AVAILABLE"
	DeskUnavailable DeskStatus = "UNAVAILABLE"
)

const (
	MinDeskNumber = 1
	MaxDeskNumber = 80
)

type Hotdesk struct {
	ID                  int64      `json:"id"`
	Title               string     `json:"title"`
	DeskNumber          int        `json:"desk_number"`
	Area                int        `json:"area"`
	WorkspaceEssentials []string   `json:"workspace_essentials,omitempty" gorm:"type:json;serializer:json"`
	Status              DeskStatus `json:"status"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// DeskArea maps a desk number onto one of the three floor areas.
func DeskArea(deskNumber int) int {
	switch {
	case deskNumber >= 1 && deskNumber <= 26:
		return 1
	case deskNumber >= 27 && deskNumber <= 53:
		return 2
	case deskNumber >= 54 && deskNumber <= 80:
		return 3
	}
	return 0
}

func ValidDeskNumber(deskNumber int) bool {
	return deskNumber >= MinDeskNumber && deskNumber <= MaxDeskNumber
}
