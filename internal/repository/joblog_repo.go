package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type JobLogRepository struct {
	db *gorm.DB
}

func NewJobLogRepository(db *gorm.DB) *JobLogRepository {
	return &JobLogRepository{db: db}
}

type jobLogModel struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	ReservationID int64     `gorm:"column:reservation_id;uniqueIndex:idx_job_once"`
	Job           string    `gorm:"column:job;uniqueIndex:idx_job_once"`
	ProcessedAt   time.Time `gorm:"column:processed_at"`
}

func (jobLogModel) TableName() string { return "job_logs" }

// MarkProcessed records the (reservation, job) pair. It returns true when
// this call inserted the row, false when the pair was already present, so
// a retrying job run can tell first processing from a repeat.
func (r *JobLogRepository) MarkProcessed(ctx context.Context, reservationID int64, job string) (bool, error) {
	m := jobLogModel{
		ReservationID: reservationID,
		Job:           job,
		ProcessedAt:   time.Now().UTC(),
	}
	tx := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&m)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// PurgeOlderThan drops ledger rows past their usefulness.
func (r *JobLogRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) error {
	return r.db.WithContext(ctx).
		Where("processed_at < ?", cutoff).
		Delete(&jobLogModel{}).Error
}
