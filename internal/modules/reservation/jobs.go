package reservation

import (
	"context"
	"log"
	"time"

	"deskhub/internal/domain"
)

// Ledger names for the history-writing jobs.
const (
	jobExpiry            = "expiry"
	jobMidnightCleanup   = "midnight-cleanup"
	jobUnapprovedCleanup = "unapproved-cleanup"
)

// Jobs holds the four time-driven tasks that age reservations forward
// without user interaction. Every run is idempotent: the selection
// predicates exclude rows that already transitioned, and the ledger keeps
// a retried run from writing a second history row for the same record.
type Jobs struct {
	reservations ReservationRepository
	history      HistoryRepository
	reviews      ReviewRepository
	users        UserRepository
	ledger       JobLedger
	notifs       NotificationSender

	now func() time.Time
}

func NewJobs(
	reservations ReservationRepository,
	history HistoryRepository,
	reviews ReviewRepository,
	users UserRepository,
	ledger JobLedger,
	notifs NotificationSender,
) *Jobs {
	return &Jobs{
		reservations: reservations,
		history:      history,
		reviews:      reviews,
		users:        users,
		ledger:       ledger,
		notifs:       notifs,
		now:          time.Now,
	}
}

// RunStartPromotion flips approved normal reservations to STARTED.
//
// The trigger window is the first 20 seconds of the current UTC day, as
// the product has always run it. Reservations starting later in the day
// are never promoted by this job.
func (j *Jobs) RunStartPromotion(ctx context.Context) error {
	midnight := truncateToDay(j.now())
	windowEnd := midnight.Add(20 * time.Second)

	due, err := j.reservations.FindApprovedStartingBetween(ctx, midnight, windowEnd)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	if err := j.reservations.MarkStartedStartingBetween(ctx, midnight, windowEnd); err != nil {
		return err
	}

	for _, r := range due {
		j.email(ctx, r.UserID, "Reservation started",
			"Your hotdesk reservation has started. Enjoy your stay.")
	}

	log.Printf("start-promotion: %d reservation(s) moved to STARTED", len(due))
	return nil
}

// RunExpiry completes every reservation whose end time has passed: one
// COMPLETED history row each, a rating obligation for normal bookings,
// and a live event for connected owners. Side effects run per row before
// the bulk delete so identifying data is never lost.
func (j *Jobs) RunExpiry(ctx context.Context) error {
	cutoff := j.now().UTC().Truncate(time.Second)

	ended, err := j.reservations.FindEndedBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, r := range ended {
		first, err := j.ledger.MarkProcessed(ctx, r.ID, jobExpiry)
		if err != nil {
			return err
		}
		if !first {
			continue
		}

		if err := j.recordHistory(ctx, &r, domain.HistoryCompleted); err != nil {
			return err
		}

		if r.Mode != domain.ModeNormal {
			continue
		}

		rv := &domain.UserReview{
			UserID:        r.UserID,
			DeskNumber:    r.DeskNumber,
			ReservationID: r.ID,
			Date:          r.Date,
			Status:        domain.ReviewPending,
		}
		if err := j.reviews.Create(ctx, rv); err != nil {
			return err
		}
		if err := j.users.AdjustToRate(ctx, r.UserID, 1); err != nil {
			return err
		}

		if j.notifs != nil {
			j.notifs.Push(r.UserID, "reservation-expired", map[string]any{
				"reservation_id": r.ID,
				"desk_number":    r.DeskNumber,
				"message":        "Your reservation has ended.",
			})
		}
	}

	if len(ended) > 0 {
		if err := j.reservations.DeleteEndedBefore(ctx, cutoff); err != nil {
			return err
		}
		log.Printf("expiry: %d reservation(s) completed", len(ended))
	}
	return nil
}

// RunMidnightCleanup expires PENDING reservations whose date has passed
// without any administrative action.
func (j *Jobs) RunMidnightCleanup(ctx context.Context) error {
	today := truncateToDay(j.now())

	stale, err := j.reservations.FindPendingDatedBefore(ctx, today)
	if err != nil {
		return err
	}

	for _, r := range stale {
		first, err := j.ledger.MarkProcessed(ctx, r.ID, jobMidnightCleanup)
		if err != nil {
			return err
		}
		if !first {
			continue
		}
		if err := j.recordHistory(ctx, &r, domain.HistoryExpired); err != nil {
			return err
		}
	}

	if len(stale) > 0 {
		if err := j.reservations.DeletePendingDatedBefore(ctx, today); err != nil {
			return err
		}
		log.Printf("midnight-cleanup: %d stale pending reservation(s) expired", len(stale))
	}
	return nil
}

// RunUnapprovedCleanup expires PENDING reservations whose start time
// passed without approval. Catches the same-day cases the midnight job
// cannot see.
func (j *Jobs) RunUnapprovedCleanup(ctx context.Context) error {
	cutoff := j.now().UTC().Truncate(time.Second)

	missed, err := j.reservations.FindPendingStartedBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, r := range missed {
		first, err := j.ledger.MarkProcessed(ctx, r.ID, jobUnapprovedCleanup)
		if err != nil {
			return err
		}
		if !first {
			continue
		}
		if err := j.recordHistory(ctx, &r, domain.HistoryExpired); err != nil {
			return err
		}
	}

	if len(missed) > 0 {
		if err := j.reservations.DeletePendingStartedBefore(ctx, cutoff); err != nil {
			return err
		}
		log.Printf("unapproved-cleanup: %d unapproved reservation(s) expired", len(missed))
	}
	return nil
}

func (j *Jobs) recordHistory(ctx context.Context, r *domain.Reservation, t domain.HistoryType) error {
	return j.history.Create(ctx, &domain.ReservationHistory{
		ReservationID: r.ID,
		UserID:        r.UserID,
		DeskNumber:    r.DeskNumber,
		Date:          r.Date,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Type:          t,
		Mode:          r.Mode,
	})
}

func (j *Jobs) email(ctx context.Context, userID int64, subject, body string) {
	if j.notifs == nil {
		return
	}
	u, err := j.users.GetByID(ctx, userID)
	if err != nil || !u.ReceivingEmail {
		return
	}
	j.notifs.Email(u.Email, subject, body)
}

// Start runs the minute-granularity jobs on a shared ticker and the
// midnight cleanup on a daily timer. The returned channel stops both
// loops when closed; ctx cancellation stops them too.
func (j *Jobs) Start(ctx context.Context) chan struct{} {
	stopCh := make(chan struct{})

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.runLogged(ctx, "start-promotion", j.RunStartPromotion)
				j.runLogged(ctx, jobExpiry, j.RunExpiry)
				j.runLogged(ctx, jobUnapprovedCleanup, j.RunUnapprovedCleanup)
			case <-stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		for {
			next := truncateToDay(j.now()).AddDate(0, 0, 1)
			timer := time.NewTimer(time.Until(next))

			select {
			case <-timer.C:
				j.runLogged(ctx, jobMidnightCleanup, j.RunMidnightCleanup)
			case <-stopCh:
				timer.Stop()
				return
			case <-ctx.Done():
				timer.Stop()
				return
			}
		}
	}()

	log.Println("reservation jobs scheduled")
	return stopCh
}

// runLogged logs job faults instead of surfacing them; the next tick
// retries against the same idempotent selection.
func (j *Jobs) runLogged(ctx context.Context, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		log.Printf("job %s failed: %v", name, err)
	}
}
