package reservation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"deskhub/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeStore is an in-memory stand-in for every persistence interface the
// reservation module consumes, mirroring the real repositories' query
// semantics closely enough for the state machine and the jobs.
type fakeStore struct {
	mu     sync.Mutex
	nextID int64

	reservations map[int64]domain.Reservation
	history      []domain.ReservationHistory
	reviews      []domain.UserReview
	users        map[int64]domain.User
	desks        map[int]domain.Hotdesk
	sw           domain.Switch
	ledger       map[string]bool

	emails []sentEmail
	pushes []sentPush
}

type sentEmail struct {
	recipient string
	subject   string
}

type sentPush struct {
	userID  int64
	event   string
	payload map[string]any
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		reservations: make(map[int64]domain.Reservation),
		users:        make(map[int64]domain.User),
		desks:        make(map[int]domain.Hotdesk),
		ledger:       make(map[string]bool),
	}
}

func (f *fakeStore) addUser(u domain.User) {
	f.users[u.ID] = u
}

func (f *fakeStore) addDesk(n int, status domain.DeskStatus) {
	f.desks[n] = domain.Hotdesk{
		ID:         int64(n),
		Title:      fmt.Sprintf("Hotdesk %d", n),
		DeskNumber: n,
		Area:       domain.DeskArea(n),
		Status:     status,
	}
}

func (f *fakeStore) Create(ctx context.Context, r *domain.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.reservations {
		if existing.DeskNumber == r.DeskNumber &&
			existing.Date.Equal(r.Date) &&
			existing.Mode == r.Mode {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_desk_slot"}
		}
	}

	f.nextID++
	r.ID = f.nextID
	f.reservations[r.ID] = *r
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (f *fakeStore) GetByIDForUser(ctx context.Context, id, userID int64) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok || r.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return nil
	}
	r.Status = status
	f.reservations[id] = r
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.reservations, id)
	return nil
}

func (f *fakeStore) HasActiveByUserAndDate(ctx context.Context, userID int64, date time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reservations {
		if r.UserID == userID && r.Date.Equal(date) && r.Mode == domain.ModeNormal {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) HasActiveByDeskAndDate(ctx context.Context, deskNumber int, date time.Time, mode domain.ReservationMode) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reservations {
		if r.DeskNumber == deskNumber && r.Date.Equal(date) && r.Mode == mode && r.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListByMode(ctx context.Context, mode domain.ReservationMode, limit, offset int) ([]domain.Reservation, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Reservation
	for _, r := range f.reservations {
		if r.Mode == mode {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Reservation, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Reservation
	for _, r := range f.reservations {
		if r.UserID == userID && r.Mode == domain.ModeNormal {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) FindApprovedStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Reservation
	for _, r := range f.reservations {
		if r.Status == domain.ReservationApproved && r.Mode == domain.ModeNormal &&
			!r.StartTime.Before(from) && r.StartTime.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkStartedStartingBetween(ctx context.Context, from, to time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, r := range f.reservations {
		if r.Status == domain.ReservationApproved && r.Mode == domain.ModeNormal &&
			!r.StartTime.Before(from) && r.StartTime.Before(to) {
			r.Status = domain.ReservationStarted
			f.reservations[id] = r
		}
	}
	return nil
}

func (f *fakeStore) FindEndedBefore(ctx context.Context, t time.Time) ([]domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Reservation
	for _, r := range f.reservations {
		if !r.EndTime.After(t) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteEndedBefore(ctx context.Context, t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, r := range f.reservations {
		if !r.EndTime.After(t) {
			delete(f.reservations, id)
		}
	}
	return nil
}

func (f *fakeStore) FindPendingDatedBefore(ctx context.Context, t time.Time) ([]domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Reservation
	for _, r := range f.reservations {
		if r.Status == domain.ReservationPending && r.Date.Before(t) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) DeletePendingDatedBefore(ctx context.Context, t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, r := range f.reservations {
		if r.Status == domain.ReservationPending && r.Date.Before(t) {
			delete(f.reservations, id)
		}
	}
	return nil
}

func (f *fakeStore) FindPendingStartedBefore(ctx context.Context, t time.Time) ([]domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Reservation
	for _, r := range f.reservations {
		if r.Status == domain.ReservationPending && r.StartTime.Before(t) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) DeletePendingStartedBefore(ctx context.Context, t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, r := range f.reservations {
		if r.Status == domain.ReservationPending && r.StartTime.Before(t) {
			delete(f.reservations, id)
		}
	}
	return nil
}

// HistoryRepository

func (f *fakeStore) CreateHistory(ctx context.Context, h *domain.ReservationHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	h.ID = int64(len(f.history) + 1)
	f.history = append(f.history, *h)
	return nil
}

func (f *fakeStore) ListHistoryByMode(ctx context.Context, mode domain.ReservationMode, limit, offset int) ([]domain.ReservationHistory, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ReservationHistory
	for _, h := range f.history {
		if h.Mode == mode {
			out = append(out, h)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) ListHistoryByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.ReservationHistory, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ReservationHistory
	for _, h := range f.history {
		if h.UserID == userID && h.Mode == domain.ModeNormal {
			out = append(out, h)
		}
	}
	return out, int64(len(out)), nil
}

// ReviewRepository

func (f *fakeStore) CreateReview(ctx context.Context, rv *domain.UserReview) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rv.ID = int64(len(f.reviews) + 1)
	f.reviews = append(f.reviews, *rv)
	return nil
}

// UserRepository

func (f *fakeStore) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (f *fakeStore) AdjustToRate(ctx context.Context, userID int64, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil
	}
	u.ToRate += delta
	f.users[userID] = u
	return nil
}

// DeskDirectory

func (f *fakeStore) GetByDeskNumber(ctx context.Context, deskNumber int) (*domain.Hotdesk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.desks[deskNumber]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

// SettingsRepository

func (f *fakeStore) GetSwitch(ctx context.Context) (*domain.Switch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sw := f.sw
	return &sw, nil
}

// JobLedger

func (f *fakeStore) MarkProcessed(ctx context.Context, reservationID int64, job string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fmt.Sprintf("%d/%s", reservationID, job)
	if f.ledger[key] {
		return false, nil
	}
	f.ledger[key] = true
	return true, nil
}

// NotificationSender

func (f *fakeStore) Email(recipient, subject, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails = append(f.emails, sentEmail{recipient: recipient, subject: subject})
}

func (f *fakeStore) Push(userID int64, event string, payload map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, sentPush{userID: userID, event: event, payload: payload})
}

// Typed views so the fake can satisfy the narrower interfaces with
// distinct method names.

type historyView struct{ *fakeStore }

func (v historyView) Create(ctx context.Context, h *domain.ReservationHistory) error {
	return v.CreateHistory(ctx, h)
}

func (v historyView) ListByMode(ctx context.Context, mode domain.ReservationMode, limit, offset int) ([]domain.ReservationHistory, int64, error) {
	return v.ListHistoryByMode(ctx, mode, limit, offset)
}

func (v historyView) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.ReservationHistory, int64, error) {
	return v.ListHistoryByUser(ctx, userID, limit, offset)
}

type reviewView struct{ *fakeStore }

func (v reviewView) Create(ctx context.Context, rv *domain.UserReview) error {
	return v.CreateReview(ctx, rv)
}

type userView struct{ *fakeStore }

func (v userView) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return v.GetUserByID(ctx, id)
}

func (v userView) AdjustToRate(ctx context.Context, userID int64, delta int) error {
	return v.fakeStore.AdjustToRate(ctx, userID, delta)
}

const testDay = "2026-03-10"

func testNow() time.Time {
	return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

func newTestService(f *fakeStore) *Service {
	checker := NewConflictChecker(f, f)
	checker.now = testNow
	return NewService(f, historyView{f}, userView{f}, f, checker, f)
}

func validBooking(userID int64, deskNumber int, leadDays int) NormalBooking {
	day := truncateToDay(testNow()).AddDate(0, 0, leadDays)
	return NormalBooking{
		UserID:     userID,
		DeskNumber: deskNumber,
		Date:       day,
		StartTime:  day.Add(9 * time.Hour),
		EndTime:    day.Add(17 * time.Hour),
	}
}

func TestReserveCreatesPendingByDefault(t *testing.T) {
	f := newFakeStore()
	f.addDesk(5, domain.DeskAvailable)
	f.addUser(domain.User{ID: 1, Email: "a@deskhub.local", ReceivingEmail: true})
	svc := newTestService(f)

	r, err := svc.Reserve(context.Background(), 1, validBooking(1, 5, 3))
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationPending, r.Status)
	assert.Equal(t, domain.ModeNormal, r.Mode)
	assert.Empty(t, f.emails, "no approval mail for a pending reservation")
}

func TestReserveAutoAcceptApprovesAndNotifies(t *testing.T) {
	f := newFakeStore()
	f.sw.AutoAccepting = true
	f.addDesk(5, domain.DeskAvailable)
	f.addUser(domain.User{ID: 1, Email: "a@deskhub.local", ReceivingEmail: true})
	svc := newTestService(f)

	r, err := svc.Reserve(context.Background(), 1, validBooking(1, 5, 3))
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationApproved, r.Status)
	require.Len(t, f.emails, 1)
	assert.Equal(t, "a@deskhub.local", f.emails[0].recipient)
}

func TestReserveSameSlotConflicts(t *testing.T) {
	f := newFakeStore()
	f.addDesk(5, domain.DeskAvailable)
	f.addUser(domain.User{ID: 1})
	f.addUser(domain.User{ID: 2})
	svc := newTestService(f)

	_, err := svc.Reserve(context.Background(), 1, validBooking(1, 5, 3))
	require.NoError(t, err)

	_, err = svc.Reserve(context.Background(), 2, validBooking(2, 5, 3))
	assert.ErrorIs(t, err, ErrDeskReserved)

	assert.Len(t, f.reservations, 1, "first reservation must be unaffected")
}

func TestReserveConcurrentSameSlotLeavesOneSurvivor(t *testing.T) {
	f := newFakeStore()
	f.addDesk(5, domain.DeskAvailable)
	svc := newTestService(f)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		userID := int64(i + 1)
		f.addUser(domain.User{ID: userID})
		wg.Add(1)
		go func(i int, userID int64) {
			defer wg.Done()
			_, errs[i] = svc.Reserve(context.Background(), userID, validBooking(userID, 5, 3))
		}(i, userID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, f.reservations, 1)
}

func TestApproveOnlyFromPending(t *testing.T) {
	f := newFakeStore()
	f.addDesk(5, domain.DeskAvailable)
	f.addUser(domain.User{ID: 1, Email: "a@deskhub.local", ReceivingEmail: true})
	svc := newTestService(f)

	r, err := svc.Reserve(context.Background(), 1, validBooking(1, 5, 3))
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationApproved, approved.Status)
	assert.Len(t, f.emails, 1)

	_, err = svc.Approve(context.Background(), r.ID)
	assert.ErrorIs(t, err, ErrInvalidRequest, "second approve must fail with a state error")
}

func TestApproveUnknownReservation(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)

	_, err := svc.Approve(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRejectDeletesAndWritesHistory(t *testing.T) {
	f := newFakeStore()
	f.addDesk(5, domain.DeskAvailable)
	f.addUser(domain.User{ID: 1, Email: "a@deskhub.local", ReceivingEmail: true})
	svc := newTestService(f)

	r, err := svc.Reserve(context.Background(), 1, validBooking(1, 5, 3))
	require.NoError(t, err)

	before := len(f.history)
	_, err = svc.Reject(context.Background(), r.ID)
	require.NoError(t, err)

	assert.Len(t, f.history, before+1)
	assert.Equal(t, domain.HistoryRejected, f.history[len(f.history)-1].Type)
	assert.NotContains(t, f.reservations, r.ID)

	_, err = svc.Reject(context.Background(), r.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAbortGuards(t *testing.T) {
	f := newFakeStore()
	f.addDesk(5, domain.DeskAvailable)
	f.addDesk(6, domain.DeskAvailable)
	f.addUser(domain.User{ID: 1})
	f.addUser(domain.User{ID: 9, Role: domain.RoleAdmin})
	svc := newTestService(f)

	pending, err := svc.Reserve(context.Background(), 1, validBooking(1, 5, 3))
	require.NoError(t, err)

	_, err = svc.Abort(context.Background(), pending.ID)
	assert.ErrorIs(t, err, ErrInvalidRequest, "pending normal reservations are rejected, not aborted")

	_, err = svc.Approve(context.Background(), pending.ID)
	require.NoError(t, err)

	_, err = svc.Abort(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HistoryAborted, f.history[len(f.history)-1].Type)

	// A hold has no approval step and is abortable straight away.
	day := truncateToDay(testNow()).AddDate(0, 0, 1)
	hold, err := svc.Reserve(context.Background(), 9, AdminHold{
		UserID:     9,
		DeskNumber: 6,
		Date:       day,
		StartTime:  day,
		EndTime:    day.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, domain.ReservationPending, hold.Status)

	_, err = svc.Abort(context.Background(), hold.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HistoryAborted, f.history[len(f.history)-1].Type)
	assert.Equal(t, domain.ModeAdminHold, f.history[len(f.history)-1].Mode)
}

func TestCancelGuards(t *testing.T) {
	f := newFakeStore()
	f.addDesk(5, domain.DeskAvailable)
	f.addUser(domain.User{ID: 1})
	svc := newTestService(f)

	r, err := svc.Reserve(context.Background(), 1, validBooking(1, 5, 3))
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), r.ID, 2)
	assert.ErrorIs(t, err, ErrNotFound, "other users cannot cancel the reservation")

	stored := f.reservations[r.ID]
	stored.Status = domain.ReservationStarted
	f.reservations[r.ID] = stored

	_, err = svc.Cancel(context.Background(), r.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidRequest, "a started reservation cannot be self-canceled")

	stored.Status = domain.ReservationApproved
	f.reservations[r.ID] = stored

	before := len(f.history)
	_, err = svc.Cancel(context.Background(), r.ID, 1)
	require.NoError(t, err)
	assert.Len(t, f.history, before+1)
	assert.Equal(t, domain.HistoryCanceled, f.history[len(f.history)-1].Type)
	assert.NotContains(t, f.reservations, r.ID)
}
