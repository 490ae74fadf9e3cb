package repository

import (
	"context"
	"time"

	"deskhub/internal/domain"

	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

type auditModel struct {
	ID                int64     `gorm:"column:id;primaryKey"`
	UserID            *int64    `gorm:"column:user_id;index"`
	Email             string    `gorm:"column:email"`
	ActionType        string    `gorm:"column:action_type"`
	ActionDetails     string    `gorm:"column:action_details"`
	IPAddress         string    `gorm:"column:ip_address"`
	Status            string    `gorm:"column:status"`
	AdditionalContext string    `gorm:"column:additional_context"`
	CreatedAt         time.Time `gorm:"column:created_at"`
}

func (auditModel) TableName() string { return "audit_trails" }

func (r *AuditRepository) Create(ctx context.Context, t *domain.AuditTrail) error {
	m := auditModel{
		UserID:            t.UserID,
		Email:             t.Email,
		ActionType:        t.ActionType,
		ActionDetails:     t.ActionDetails,
		IPAddress:         t.IPAddress,
		Status:            t.Status,
		AdditionalContext: t.AdditionalContext,
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	t.ID = m.ID
	t.CreatedAt = m.CreatedAt
	return nil
}
