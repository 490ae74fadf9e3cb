package reservation

import "time"

type ReserveRequest struct {
	Date       string    `json:"date" binding:"required"`
	StartTime  time.Time `json:"start_time" binding:"required"`
	EndTime    time.Time `json:"end_time" binding:"required"`
	DeskNumber int       `json:"desk_number" binding:"required"`
	Mode       int       `json:"mode"`
}

type listQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

func (q listQuery) bounds() (limit, offset int) {
	page := q.Page
	if page <= 0 {
		page = 1
	}
	limit = q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return limit, (page - 1) * limit
}
