package repository

import (
	"context"
	"time"

	"deskhub/internal/domain"

	"gorm.io/gorm"
)

type DeskRepository struct {
	db *gorm.DB
}

func NewDeskRepository(db *gorm.DB) *DeskRepository {
	return &DeskRepository{db: db}
}

type deskModel struct {
	ID                  int64     `gorm:"column:id;primaryKey"`
	Title               string    `gorm:"column:title;uniqueIndex"`
	DeskNumber          int       `gorm:"column:desk_number;uniqueIndex"`
	Area                int       `gorm:"column:area"`
	WorkspaceEssentials []string  `gorm:"column:workspace_essentials;type:json;serializer:json"`
	Status              string    `gorm:"column:status"`
	CreatedAt           time.Time `gorm:"column:created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at"`
}

func (deskModel) TableName() string { return "hotdesks" }

func toDomainDesk(m deskModel) *domain.Hotdesk {
	return &domain.Hotdesk{
		ID:                  m.ID,
		Title:               m.Title,
		DeskNumber:          m.DeskNumber,
		Area:                m.Area,
		WorkspaceEssentials: m.WorkspaceEssentials,
		Status:              domain.DeskStatus(m.Status),
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func (r *DeskRepository) Create(ctx context.Context, d *domain.Hotdesk) error {
	m := deskModel{
		Title:               d.Title,
		DeskNumber:          d.DeskNumber,
		Area:                d.Area,
		WorkspaceEssentials: d.WorkspaceEssentials,
		Status:              string(d.Status),
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*d = *toDomainDesk(m)
	return nil
}

func (r *DeskRepository) GetByID(ctx context.Context, id int64) (*domain.Hotdesk, error) {
	var m deskModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainDesk(m), nil
}

func (r *DeskRepository) GetByDeskNumber(ctx context.Context, deskNumber int) (*domain.Hotdesk, error) {
	var m deskModel
	tx := r.db.WithContext(ctx).Where("desk_number = ?", deskNumber).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainDesk(m), nil
}

func (r *DeskRepository) List(ctx context.Context, limit, offset int) ([]domain.Hotdesk, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&deskModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []deskModel
	if err := r.db.WithContext(ctx).
		Order("desk_number ASC").Limit(limit).Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]domain.Hotdesk, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainDesk(m))
	}
	return out, total, nil
}

func (r *DeskRepository) Update(ctx context.Context, d *domain.Hotdesk) error {
	return r.db.WithContext(ctx).
		Model(&deskModel{}).
		Where("id = ?", d.ID).
		Updates(map[string]any{
			"workspace_essentials": d.WorkspaceEssentials,
			"status":               string(d.Status),
		}).Error
}

func (r *DeskRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&deskModel{}, id).Error
}
