package repository

import (
	"context"
	"errors"

	"deskhub/internal/domain"

	"gorm.io/gorm"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

type switchModel struct {
	ID            int64 `gorm:"column:id;primaryKey"`
	AutoAccepting bool  `gorm:"column:auto_accepting"`
}

func (switchModel) TableName() string { return "switches" }

// GetSwitch returns the single configuration row, creating it (switched
// off) if it does not exist yet.
func (r *SettingsRepository) GetSwitch(ctx context.Context) (*domain.Switch, error) {
	var m switchModel
	tx := r.db.WithContext(ctx).First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			m = switchModel{AutoAccepting: false}
			if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
				return nil, err
			}
		} else {
			return nil, tx.Error
		}
	}
	return &domain.Switch{ID: m.ID, AutoAccepting: m.AutoAccepting}, nil
}

func (r *SettingsRepository) SetAutoAccepting(ctx context.Context, on bool) (*domain.Switch, error) {
	sw, err := r.GetSwitch(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Model(&switchModel{}).
		Where("id = ?", sw.ID).
		Update("auto_accepting", on).Error; err != nil {
		return nil, err
	}
	sw.AutoAccepting = on
	return sw, nil
}
