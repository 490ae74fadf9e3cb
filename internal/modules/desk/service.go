package desk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"deskhub/internal/domain"

	"gorm.io/gorm"
)

type Service struct {
	desks        DeskRepository
	reservations ReservationLookup

	now func() time.Time
}

func NewService(desks DeskRepository, reservations ReservationLookup) *Service {
	return &Service{desks: desks, reservations: reservations, now: time.Now}
}

// Create registers a new hotdesk. The floor area is derived from the desk
// number, not chosen by the caller.
func (s *Service) Create(ctx context.Context, deskNumber int, essentials []string) (*domain.Hotdesk, error) {
	if !domain.ValidDeskNumber(deskNumber) {
		return nil, ErrValidation
	}

	if _, err := s.desks.GetByDeskNumber(ctx, deskNumber); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	d := &domain.Hotdesk{
		Title:               fmt.Sprintf("Hotdesk %d", deskNumber),
		DeskNumber:          deskNumber,
		Area:                domain.DeskArea(deskNumber),
		WorkspaceEssentials: essentials,
		Status:              domain.DeskAvailable,
	}
	if err := s.desks.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Hotdesk, int64, error) {
	return s.desks.List(ctx, limit, offset)
}

// Update changes essentials and availability. A desk reserved today is
// frozen until the reservation resolves.
func (s *Service) Update(ctx context.Context, id int64, essentials []string, status *domain.DeskStatus) (*domain.Hotdesk, error) {
	d, err := s.desks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	inUse, err := s.reservations.HasReservationOnDate(ctx, d.DeskNumber, today)
	if err != nil {
		return nil, err
	}
	if inUse {
		return nil, ErrDeskInUse
	}

	if essentials != nil {
		d.WorkspaceEssentials = essentials
	}
	if status != nil {
		d.Status = *status
	}
	if err := s.desks.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Delete(ctx context.Context, id int64) (*domain.Hotdesk, error) {
	d, err := s.desks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.desks.Delete(ctx, id); err != nil {
		return nil, err
	}
	return d, nil
}
