package domain

// Switch is a single-row configuration record. When AutoAccepting is on,
// new normal reservations are created directly in APPROVED.
type Switch struct {
	ID            int64 `json:"id"`
	AutoAccepting bool  `json:"auto_accepting"`
}
