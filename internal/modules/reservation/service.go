package reservation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"deskhub/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// keyedMutex serializes work per (desk, date) key so the conflict check
// and the subsequent create cannot interleave for the same slot.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) *sync.Mutex {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m
}

type Service struct {
	reservations ReservationRepository
	history      HistoryRepository
	users        UserRepository
	settings     SettingsRepository
	checker      *ConflictChecker
	notifs       NotificationSender

	slots keyedMutex
}

func NewService(
	reservations ReservationRepository,
	history HistoryRepository,
	users UserRepository,
	settings SettingsRepository,
	checker *ConflictChecker,
	notifs NotificationSender,
) *Service {
	return &Service{
		reservations: reservations,
		history:      history,
		users:        users,
		settings:     settings,
		checker:      checker,
		notifs:       notifs,
	}
}

// Reserve runs the conflict checker and creates the reservation. The
// initial status is PENDING unless auto-accepting is switched on.
func (s *Service) Reserve(ctx context.Context, userID int64, req BookingRequest) (*domain.Reservation, error) {
	day := truncateToDay(req.date())

	lock := s.slots.lock(fmt.Sprintf("%d@%s", req.deskNumber(), day.Format("2006-01-02")))
	defer lock.Unlock()

	if err := s.checker.CanReserve(ctx, userID, req); err != nil {
		return nil, err
	}

	sw, err := s.settings.GetSwitch(ctx)
	if err != nil {
		return nil, err
	}

	status := domain.ReservationPending
	if sw.AutoAccepting {
		status = domain.ReservationApproved
	}

	start, end := req.fields()
	r := &domain.Reservation{
		UserID:     userID,
		DeskNumber: req.deskNumber(),
		Date:       day,
		StartTime:  start,
		EndTime:    end,
		Status:     status,
		Mode:       req.mode(),
	}

	if err := s.reservations.Create(ctx, r); err != nil {
		// The unique (desk, date, mode) index is the backstop for
		// races the checker cannot see across processes.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDeskReserved
		}
		return nil, err
	}

	if status == domain.ReservationApproved && r.Mode == domain.ModeNormal {
		s.notifyApproved(ctx, r)
	}

	return r, nil
}

// Approve moves a PENDING reservation to APPROVED.
func (s *Service) Approve(ctx context.Context, id int64) (*domain.Reservation, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if r.Status != domain.ReservationPending {
		return nil, ErrInvalidRequest
	}

	if err := s.reservations.UpdateStatus(ctx, id, domain.ReservationApproved); err != nil {
		return nil, err
	}
	r.Status = domain.ReservationApproved

	s.notifyApproved(ctx, r)

	return r, nil
}

// Reject terminates a PENDING reservation: one REJECTED history row, then
// the live record is deleted.
func (s *Service) Reject(ctx context.Context, id int64) (*domain.Reservation, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if r.Status != domain.ReservationPending {
		return nil, ErrInvalidRequest
	}

	if err := s.terminate(ctx, r, domain.HistoryRejected); err != nil {
		return nil, err
	}

	if r.Mode == domain.ModeNormal {
		s.email(ctx, r.UserID, "Reservation rejected",
			fmt.Sprintf("Your reservation for hotdesk %d on %s has been rejected.",
				r.DeskNumber, r.Date.Format("January 2, 2006")))
	}

	return r, nil
}

// Abort is the administrative kill switch. A normal reservation must have
// progressed past PENDING; holds have no approval step and are always
// abortable.
func (s *Service) Abort(ctx context.Context, id int64) (*domain.Reservation, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if r.Status == domain.ReservationPending && r.Mode != domain.ModeAdminHold {
		return nil, ErrInvalidRequest
	}

	if err := s.terminate(ctx, r, domain.HistoryAborted); err != nil {
		return nil, err
	}

	if r.Mode == domain.ModeNormal {
		s.email(ctx, r.UserID, "Reservation aborted",
			fmt.Sprintf("Your reservation for hotdesk %d on %s has been aborted.",
				r.DeskNumber, r.Date.Format("January 2, 2006")))
	}

	return r, nil
}

// Cancel is owner self-service. A reservation already in use can only be
// aborted by an admin.
func (s *Service) Cancel(ctx context.Context, id, userID int64) (*domain.Reservation, error) {
	r, err := s.reservations.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if r.Status == domain.ReservationStarted {
		return nil, ErrInvalidRequest
	}

	if err := s.terminate(ctx, r, domain.HistoryCanceled); err != nil {
		return nil, err
	}

	return r, nil
}

func (s *Service) List(ctx context.Context, mode domain.ReservationMode, limit, offset int) ([]domain.Reservation, int64, error) {
	return s.reservations.ListByMode(ctx, mode, limit, offset)
}

func (s *Service) ListSelf(ctx context.Context, userID int64, limit, offset int) ([]domain.Reservation, int64, error) {
	return s.reservations.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) History(ctx context.Context, limit, offset int) ([]domain.ReservationHistory, int64, error) {
	return s.history.ListByMode(ctx, domain.ModeNormal, limit, offset)
}

func (s *Service) SelfHistory(ctx context.Context, userID int64, limit, offset int) ([]domain.ReservationHistory, int64, error) {
	return s.history.ListByUser(ctx, userID, limit, offset)
}

// terminate writes exactly one history row for the terminal disposition
// and deletes the live record. The history row goes first so a crash in
// between cannot lose the terminal event.
func (s *Service) terminate(ctx context.Context, r *domain.Reservation, t domain.HistoryType) error {
	h := &domain.ReservationHistory{
		ReservationID: r.ID,
		UserID:        r.UserID,
		DeskNumber:    r.DeskNumber,
		Date:          r.Date,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Type:          t,
		Mode:          r.Mode,
	}
	if err := s.history.Create(ctx, h); err != nil {
		return err
	}
	return s.reservations.Delete(ctx, r.ID)
}

func (s *Service) notifyApproved(ctx context.Context, r *domain.Reservation) {
	s.email(ctx, r.UserID, "Reservation approved",
		fmt.Sprintf("Your reservation for hotdesk %d on %s has been approved.",
			r.DeskNumber, r.Date.Format("January 2, 2006")))
}

// email looks the user up and sends only when they opted in. Best-effort:
// any failure is absorbed by the sender.
func (s *Service) email(ctx context.Context, userID int64, subject, body string) {
	if s.notifs == nil {
		return
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil || !u.ReceivingEmail {
		return
	}
	s.notifs.Email(u.Email, subject, body)
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
