package reservation

import (
	"context"
	"testing"
	"time"

	"deskhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJobs(f *fakeStore, now func() time.Time) *Jobs {
	j := NewJobs(f, historyView{f}, reviewView{f}, userView{f}, f, f)
	j.now = now
	return j
}

func seedReservation(t *testing.T, f *fakeStore, r domain.Reservation) int64 {
	t.Helper()
	require.NoError(t, f.Create(context.Background(), &r))
	return r.ID
}

func TestStartPromotionWithinWindow(t *testing.T) {
	f := newFakeStore()
	f.addUser(domain.User{ID: 1, Email: "a@deskhub.local", ReceivingEmail: true})
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	dueID := seedReservation(t, f, domain.Reservation{
		UserID: 1, DeskNumber: 5, Date: today,
		StartTime: today, EndTime: today.Add(24 * time.Hour),
		Status: domain.ReservationApproved, Mode: domain.ModeNormal,
	})
	laterID := seedReservation(t, f, domain.Reservation{
		UserID: 1, DeskNumber: 6, Date: today,
		StartTime: today.Add(9 * time.Hour), EndTime: today.Add(17 * time.Hour),
		Status: domain.ReservationApproved, Mode: domain.ModeNormal,
	})

	j := newTestJobs(f, func() time.Time { return today.Add(10 * time.Second) })
	require.NoError(t, j.RunStartPromotion(context.Background()))

	assert.Equal(t, domain.ReservationStarted, f.reservations[dueID].Status)
	assert.Equal(t, domain.ReservationApproved, f.reservations[laterID].Status,
		"a reservation starting later in the day is not promoted")
	require.Len(t, f.emails, 1)
	assert.Equal(t, "Reservation started", f.emails[0].subject)
}

func TestStartPromotionSkipsPendingAndHolds(t *testing.T) {
	f := newFakeStore()
	f.addUser(domain.User{ID: 1})
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	pendingID := seedReservation(t, f, domain.Reservation{
		UserID: 1, DeskNumber: 5, Date: today,
		StartTime: today, EndTime: today.Add(24 * time.Hour),
		Status: domain.ReservationPending, Mode: domain.ModeNormal,
	})
	holdID := seedReservation(t, f, domain.Reservation{
		UserID: 1, DeskNumber: 6, Date: today,
		StartTime: today, EndTime: today.Add(24 * time.Hour),
		Status: domain.ReservationApproved, Mode: domain.ModeAdminHold,
	})

	j := newTestJobs(f, func() time.Time { return today.Add(5 * time.Second) })
	require.NoError(t, j.RunStartPromotion(context.Background()))

	assert.Equal(t, domain.ReservationPending, f.reservations[pendingID].Status)
	assert.Equal(t, domain.ReservationApproved, f.reservations[holdID].Status)
	assert.Empty(t, f.emails)
}

func TestExpiryCompletesAndCreatesReviewObligation(t *testing.T) {
	f := newFakeStore()
	f.addUser(domain.User{ID: 1, ToRate: 0})
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 9, 18, 30, 0, 0, time.UTC)

	endedID := seedReservation(t, f, domain.Reservation{
		UserID: 1, DeskNumber: 5, Date: day,
		StartTime: day.Add(9 * time.Hour), EndTime: day.Add(17 * time.Hour),
		Status: domain.ReservationStarted, Mode: domain.ModeNormal,
	})
	runningID := seedReservation(t, f, domain.Reservation{
		UserID: 1, DeskNumber: 6, Date: day,
		StartTime: day.Add(9 * time.Hour), EndTime: day.Add(23 * time.Hour),
		Status: domain.ReservationStarted, Mode: domain.ModeNormal,
	})

	j := newTestJobs(f, func() time.Time { return now })
	require.NoError(t, j.RunExpiry(context.Background()))

	assert.NotContains(t, f.reservations, endedID)
	assert.Contains(t, f.reservations, runningID, "a reservation still running is untouched")

	require.Len(t, f.history, 1)
	assert.Equal(t, domain.HistoryCompleted, f.history[0].Type)
	assert.Equal(t, endedID, f.history[0].ReservationID)

	require.Len(t, f.reviews, 1)
	assert.Equal(t, domain.ReviewPending, f.reviews[0].Status)
	assert.Equal(t, endedID, f.reviews[0].ReservationID)
	assert.Equal(t, 1, f.users[1].ToRate)

	require.Len(t, f.pushes, 1)
	assert.Equal(t, "reservation-expired", f.pushes[0].event)
	assert.EqualValues(t, 1, f.pushes[0].userID)
}

func TestExpiryHoldsGetHistoryButNoReview(t *testing.T) {
	f := newFakeStore()
	f.addUser(domain.User{ID: 9, Role: domain.RoleAdmin})
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	seedReservation(t, f, domain.Reservation{
		UserID: 9, DeskNumber: 5, Date: day,
		StartTime: day, EndTime: day.Add(24 * time.Hour),
		Status: domain.ReservationPending, Mode: domain.ModeAdminHold,
	})

	j := newTestJobs(f, func() time.Time { return day.Add(25 * time.Hour) })
	require.NoError(t, j.RunExpiry(context.Background()))

	require.Len(t, f.history, 1)
	assert.Equal(t, domain.HistoryCompleted, f.history[0].Type)
	assert.Equal(t, domain.ModeAdminHold, f.history[0].Mode)
	assert.Empty(t, f.reviews)
	assert.Empty(t, f.pushes)
	assert.Zero(t, f.users[9].ToRate)
}

func TestExpiryLedgerPreventsDuplicateHistory(t *testing.T) {
	f := newFakeStore()
	f.addUser(domain.User{ID: 1})
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	id := seedReservation(t, f, domain.Reservation{
		UserID: 1, DeskNumber: 5, Date: day,
		StartTime: day.Add(9 * time.Hour), EndTime: day.Add(17 * time.Hour),
		Status: domain.ReservationStarted, Mode: domain.ModeNormal,
	})

	j := newTestJobs(f, func() time.Time { return day.Add(18 * time.Hour) })
	require.NoError(t, j.RunExpiry(context.Background()))
	require.Len(t, f.history, 1)

	// Re-insert the same row as if the bulk delete had failed mid-run, then
	// run again: the ledger remembers the reservation was handled.
	f.reservations[id] = domain.Reservation{
		ID: id, UserID: 1, DeskNumber: 5, Date: day,
		StartTime: day.Add(9 * time.Hour), EndTime: day.Add(17 * time.Hour),
		Status: domain.ReservationStarted, Mode: domain.ModeNormal,
	}
	require.NoError(t, j.RunExpiry(context.Background()))

	assert.Len(t, f.history, 1, "a retried run must not write a second history row")
	assert.Len(t, f.reviews, 1)
	assert.Equal(t, 1, f.users[1].ToRate)
}

func TestMidnightCleanupExpiresStalePending(t *testing.T) {
	f := newFakeStore()
	f.addUser(domain.User{ID: 1})
	yesterday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	today := yesterday.AddDate(0, 0, 1)

	staleID := seedReservation(t, f, domain.Reservation{
		UserID: 1, DeskNumber: 5, Date: yesterday,
		StartTime: yesterday.Add(9 * time.Hour), EndTime: yesterday.Add(17 * time.Hour),
		Status: domain.ReservationPending, Mode: domain.ModeNormal,
	})
	approvedID := seedReservation(t, f, domain.Reservation{
		UserID: 1, DeskNumber: 6, Date: yesterday,
		StartTime: yesterday.Add(9 * time.Hour), EndTime: today.Add(17 * time.Hour),
		Status: domain.ReservationApproved, Mode: domain.ModeNormal,
	})
	upcomingID := seedReservation(t, f, domain.Reservation{
		UserID: 1, DeskNumber: 7, Date: today.AddDate(0, 0, 3),
		StartTime: today.AddDate(0, 0, 3).Add(9 * time.Hour), EndTime: today.AddDate(0, 0, 3).Add(17 * time.Hour),
		Status: domain.ReservationPending, Mode: domain.ModeNormal,
	})

	j := newTestJobs(f, func() time.Time { return today.Add(30 * time.Second) })
	require.NoError(t, j.RunMidnightCleanup(context.Background()))

	assert.NotContains(t, f.reservations, staleID)
	assert.Contains(t, f.reservations, approvedID, "only pending rows are swept")
	assert.Contains(t, f.reservations, upcomingID)

	require.Len(t, f.history, 1)
	assert.Equal(t, domain.HistoryExpired, f.history[0].Type)
	assert.Equal(t, staleID, f.history[0].ReservationID)
}

func TestUnapprovedCleanupExpiresMissedStarts(t *testing.T) {
	f := newFakeStore()
	f.addUser(domain.User{ID: 1})
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	now := day.Add(10 * time.Hour)

	missedID := seedReservation(t, f, domain.Reservation{
		UserID: 1, DeskNumber: 5, Date: day,
		StartTime: day.Add(9 * time.Hour), EndTime: day.Add(17 * time.Hour),
		Status: domain.ReservationPending, Mode: domain.ModeNormal,
	})
	futureID := seedReservation(t, f, domain.Reservation{
		UserID: 1, DeskNumber: 6, Date: day,
		StartTime: day.Add(14 * time.Hour), EndTime: day.Add(18 * time.Hour),
		Status: domain.ReservationPending, Mode: domain.ModeNormal,
	})

	j := newTestJobs(f, func() time.Time { return now })
	require.NoError(t, j.RunUnapprovedCleanup(context.Background()))

	assert.NotContains(t, f.reservations, missedID)
	assert.Contains(t, f.reservations, futureID)

	require.Len(t, f.history, 1)
	assert.Equal(t, domain.HistoryExpired, f.history[0].Type)
	assert.Equal(t, missedID, f.history[0].ReservationID)
}

func TestJobsStartStops(t *testing.T) {
	f := newFakeStore()
	j := newTestJobs(f, time.Now)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopCh := j.Start(ctx)
	close(stopCh)
}
