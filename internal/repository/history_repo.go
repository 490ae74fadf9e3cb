package repository

import (
	"context"
	"time"

	"deskhub/internal/domain"

	"gorm.io/gorm"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

type historyModel struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	ReservationID int64     `gorm:"column:reservation_id;index"`
	UserID        int64     `gorm:"column:user_id;index"`
	DeskNumber    int       `gorm:"column:desk_number"`
	Date          time.Time `gorm:"column:date"`
	StartTime     time.Time `gorm:"column:start_time"`
	EndTime       time.Time `gorm:"column:end_time"`
	Type          string    `gorm:"column:type"`
	Mode          int       `gorm:"column:mode"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (historyModel) TableName() string { return "reservation_history" }

func toDomainHistory(m historyModel) *domain.ReservationHistory {
	return &domain.ReservationHistory{
		ID:            m.ID,
		ReservationID: m.ReservationID,
		UserID:        m.UserID,
		DeskNumber:    m.DeskNumber,
		Date:          m.Date,
		StartTime:     m.StartTime,
		EndTime:       m.EndTime,
		Type:          domain.HistoryType(m.Type),
		Mode:          domain.ReservationMode(m.Mode),
		CreatedAt:     m.CreatedAt,
	}
}

func (r *HistoryRepository) Create(ctx context.Context, h *domain.ReservationHistory) error {
	m := historyModel{
		ReservationID: h.ReservationID,
		UserID:        h.UserID,
		DeskNumber:    h.DeskNumber,
		Date:          h.Date,
		StartTime:     h.StartTime,
		EndTime:       h.EndTime,
		Type:          string(h.Type),
		Mode:          int(h.Mode),
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*h = *toDomainHistory(m)
	return nil
}

func (r *HistoryRepository) ListByMode(ctx context.Context, mode domain.ReservationMode, limit, offset int) ([]domain.ReservationHistory, int64, error) {
	q := r.db.WithContext(ctx).Model(&historyModel{}).Where("mode = ?", int(mode))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []historyModel
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]domain.ReservationHistory, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainHistory(m))
	}
	return out, total, nil
}

func (r *HistoryRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.ReservationHistory, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&historyModel{}).
		Where("user_id = ? AND mode = ?", userID, int(domain.ModeNormal))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []historyModel
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]domain.ReservationHistory, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainHistory(m))
	}
	return out, total, nil
}
