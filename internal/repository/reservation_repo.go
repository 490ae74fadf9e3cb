package repository

import (
	"context"
	"errors"
	"time"

	"deskhub/internal/domain"

	"gorm.io/gorm"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

type reservationModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	UserID     int64     `gorm:"column:user_id;index"`
	DeskNumber int       `gorm:"column:desk_number;uniqueIndex:idx_desk_slot"`
	Date       time.Time `gorm:"column:date;uniqueIndex:idx_desk_slot"`
	StartTime  time.Time `gorm:"column:start_time"`
	EndTime    time.Time `gorm:"column:end_time"`
	Status     string    `gorm:"column:status"`
	Mode       int       `gorm:"column:mode;uniqueIndex:idx_desk_slot"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (reservationModel) TableName() string { return "reservations" }

func toDomainReservation(m reservationModel) *domain.Reservation {
	return &domain.Reservation{
		ID:         m.ID,
		UserID:     m.UserID,
		DeskNumber: m.DeskNumber,
		Date:       m.Date,
		StartTime:  m.StartTime,
		EndTime:    m.EndTime,
		Status:     domain.ReservationStatus(m.Status),
		Mode:       domain.ReservationMode(m.Mode),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func toReservationModel(r *domain.Reservation) reservationModel {
	return reservationModel{
		ID:         r.ID,
		UserID:     r.UserID,
		DeskNumber: r.DeskNumber,
		Date:       r.Date,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		Status:     string(r.Status),
		Mode:       int(r.Mode),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

var activeStatuses = []string{
	string(domain.ReservationPending),
	string(domain.ReservationApproved),
	string(domain.ReservationStarted),
}

func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	m := toReservationModel(res)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*res = *toDomainReservation(m)
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	var m reservationModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainReservation(m), nil
}

// GetByIDForUser resolves a reservation only when it belongs to the user.
func (r *ReservationRepository) GetByIDForUser(ctx context.Context, id, userID int64) (*domain.Reservation, error) {
	var m reservationModel
	tx := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainReservation(m), nil
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error {
	return r.db.WithContext(ctx).
		Model(&reservationModel{}).
		Where("id = ?", id).
		Update("status", string(status)).Error
}

func (r *ReservationRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&reservationModel{}, id).Error
}

// HasActiveByUserAndDate reports whether the user already holds a normal
// reservation on the date. Terminal reservations are deleted, so every
// stored row counts as active.
func (r *ReservationRepository) HasActiveByUserAndDate(ctx context.Context, userID int64, date time.Time) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).
		Model(&reservationModel{}).
		Where("user_id = ? AND date = ? AND mode = ?", userID, date, int(domain.ModeNormal)).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

// HasActiveByDeskAndDate reports whether a desk already carries a
// reservation of the given mode on the date.
func (r *ReservationRepository) HasActiveByDeskAndDate(ctx context.Context, deskNumber int, date time.Time, mode domain.ReservationMode) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).
		Model(&reservationModel{}).
		Where("desk_number = ? AND date = ? AND mode = ? AND status IN ?", deskNumber, date, int(mode), activeStatuses).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

func (r *ReservationRepository) ListByMode(ctx context.Context, mode domain.ReservationMode, limit, offset int) ([]domain.Reservation, int64, error) {
	q := r.db.WithContext(ctx).Model(&reservationModel{}).Where("mode = ?", int(mode))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []reservationModel
	if err := q.Order("date ASC, start_time ASC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]domain.Reservation, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReservation(m))
	}
	return out, total, nil
}

func (r *ReservationRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Reservation, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&reservationModel{}).
		Where("user_id = ? AND mode = ?", userID, int(domain.ModeNormal))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []reservationModel
	if err := q.Order("date ASC, start_time ASC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]domain.Reservation, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReservation(m))
	}
	return out, total, nil
}

// FindApprovedStartingBetween selects normal reservations due for
// promotion to STARTED.
func (r *ReservationRepository) FindApprovedStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Reservation, error) {
	var rows []reservationModel
	tx := r.db.WithContext(ctx).
		Where("status = ? AND mode = ? AND start_time >= ? AND start_time < ?",
			string(domain.ReservationApproved), int(domain.ModeNormal), from, to).
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Reservation, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReservation(m))
	}
	return out, nil
}

func (r *ReservationRepository) MarkStartedStartingBetween(ctx context.Context, from, to time.Time) error {
	return r.db.WithContext(ctx).
		Model(&reservationModel{}).
		Where("status = ? AND mode = ? AND start_time >= ? AND start_time < ?",
			string(domain.ReservationApproved), int(domain.ModeNormal), from, to).
		Update("status", string(domain.ReservationStarted)).Error
}

func (r *ReservationRepository) FindEndedBefore(ctx context.Context, t time.Time) ([]domain.Reservation, error) {
	var rows []reservationModel
	tx := r.db.WithContext(ctx).Where("end_time <= ?", t).Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Reservation, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReservation(m))
	}
	return out, nil
}

func (r *ReservationRepository) DeleteEndedBefore(ctx context.Context, t time.Time) error {
	return r.db.WithContext(ctx).Where("end_time <= ?", t).Delete(&reservationModel{}).Error
}

func (r *ReservationRepository) FindPendingDatedBefore(ctx context.Context, t time.Time) ([]domain.Reservation, error) {
	var rows []reservationModel
	tx := r.db.WithContext(ctx).
		Where("status = ? AND date < ?", string(domain.ReservationPending), t).
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Reservation, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReservation(m))
	}
	return out, nil
}

func (r *ReservationRepository) DeletePendingDatedBefore(ctx context.Context, t time.Time) error {
	return r.db.WithContext(ctx).
		Where("status = ? AND date < ?", string(domain.ReservationPending), t).
		Delete(&reservationModel{}).Error
}

func (r *ReservationRepository) FindPendingStartedBefore(ctx context.Context, t time.Time) ([]domain.Reservation, error) {
	var rows []reservationModel
	tx := r.db.WithContext(ctx).
		Where("status = ? AND start_time < ?", string(domain.ReservationPending), t).
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Reservation, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReservation(m))
	}
	return out, nil
}

func (r *ReservationRepository) DeletePendingStartedBefore(ctx context.Context, t time.Time) error {
	return r.db.WithContext(ctx).
		Where("status = ? AND start_time < ?", string(domain.ReservationPending), t).
		Delete(&reservationModel{}).Error
}

// HasReservationOnDate reports whether any reservation exists for the desk
// on the date, regardless of mode.
func (r *ReservationRepository) HasReservationOnDate(ctx context.Context, deskNumber int, date time.Time) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).
		Model(&reservationModel{}).
		Where("desk_number = ? AND date = ?", deskNumber, date).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
