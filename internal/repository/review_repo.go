package repository

import (
	"context"
	"time"

	"deskhub/internal/domain"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

type reviewModel struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	UserID        int64     `gorm:"column:user_id;index"`
	DeskNumber    int       `gorm:"column:desk_number"`
	ReservationID int64     `gorm:"column:reservation_id;index"`
	Date          time.Time `gorm:"column:date"`
	Status        string    `gorm:"column:status"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (reviewModel) TableName() string { return "user_reviews" }

type feedbackModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	UserID      int64     `gorm:"column:user_id;index"`
	DeskNumber  int       `gorm:"column:desk_number"`
	Rating      int       `gorm:"column:rating"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (feedbackModel) TableName() string { return "feedbacks" }

func toDomainReview(m reviewModel) *domain.UserReview {
	return &domain.UserReview{
		ID:            m.ID,
		UserID:        m.UserID,
		DeskNumber:    m.DeskNumber,
		ReservationID: m.ReservationID,
		Date:          m.Date,
		Status:        domain.ReviewStatus(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *domain.UserReview) error {
	m := reviewModel{
		UserID:        rv.UserID,
		DeskNumber:    rv.DeskNumber,
		ReservationID: rv.ReservationID,
		Date:          rv.Date,
		Status:        string(rv.Status),
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*rv = *toDomainReview(m)
	return nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*domain.UserReview, error) {
	var m reviewModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainReview(m), nil
}

// FindOldestPending returns the oldest unrated obligation the user has for
// the desk, if any.
func (r *ReviewRepository) FindOldestPending(ctx context.Context, userID int64, deskNumber int) (*domain.UserReview, error) {
	var m reviewModel
	tx := r.db.WithContext(ctx).
		Where("user_id = ? AND desk_number = ? AND status = ?", userID, deskNumber, string(domain.ReviewPending)).
		Order("created_at ASC").
		First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainReview(m), nil
}

func (r *ReviewRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReviewStatus) error {
	return r.db.WithContext(ctx).
		Model(&reviewModel{}).
		Where("id = ?", id).
		Update("status", string(status)).Error
}

func (r *ReviewRepository) ListPendingByUser(ctx context.Context, userID int64) ([]domain.UserReview, error) {
	var rows []reviewModel
	tx := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, string(domain.ReviewPending)).
		Order("created_at ASC").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.UserReview, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReview(m))
	}
	return out, nil
}

func (r *ReviewRepository) CreateFeedback(ctx context.Context, f *domain.Feedback) error {
	m := feedbackModel{
		UserID:      f.UserID,
		DeskNumber:  f.DeskNumber,
		Rating:      f.Rating,
		Description: f.Description,
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	f.ID = m.ID
	f.CreatedAt = m.CreatedAt
	return nil
}

func (r *ReviewRepository) ListFeedback(ctx context.Context, limit, offset int) ([]domain.Feedback, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&feedbackModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []feedbackModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]domain.Feedback, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.Feedback{
			ID:          m.ID,
			UserID:      m.UserID,
			DeskNumber:  m.DeskNumber,
			Rating:      m.Rating,
			Description: m.Description,
			CreatedAt:   m.CreatedAt,
		})
	}
	return out, total, nil
}
