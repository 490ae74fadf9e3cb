package review

import (
	"context"
	"errors"

	"deskhub/internal/domain"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.UserReview, error)
	FindOldestPending(ctx context.Context, userID int64, deskNumber int) (*domain.UserReview, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ReviewStatus) error
	ListPendingByUser(ctx context.Context, userID int64) ([]domain.UserReview, error)
	CreateFeedback(ctx context.Context, f *domain.Feedback) error
	ListFeedback(ctx context.Context, limit, offset int) ([]domain.Feedback, int64, error)
}

type UserRepository interface {
	AdjustToRate(ctx context.Context, userID int64, delta int) error
}

type Service struct {
	reviews ReviewRepository
	users   UserRepository
}

func NewService(reviews ReviewRepository, users UserRepository) *Service {
	return &Service{reviews: reviews, users: users}
}

// SubmitFeedback stores the rating, settles the oldest pending obligation
// for the desk, and decrements the user's outstanding-rating counter.
func (s *Service) SubmitFeedback(ctx context.Context, userID int64, deskNumber, rating int, description string) (*domain.Feedback, error) {
	if deskNumber == 0 || rating == 0 {
		return nil, ErrValidation
	}
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	obligation, err := s.reviews.FindOldestPending(ctx, userID, deskNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNothingToRate
		}
		return nil, err
	}

	f := &domain.Feedback{
		UserID:      userID,
		DeskNumber:  deskNumber,
		Rating:      rating,
		Description: description,
	}
	if err := s.reviews.CreateFeedback(ctx, f); err != nil {
		return nil, err
	}

	if err := s.reviews.UpdateStatus(ctx, obligation.ID, domain.ReviewRated); err != nil {
		return nil, err
	}
	if err := s.users.AdjustToRate(ctx, userID, -1); err != nil {
		return nil, err
	}

	return f, nil
}

func (s *Service) PendingReviews(ctx context.Context, userID int64) ([]domain.UserReview, error) {
	return s.reviews.ListPendingByUser(ctx, userID)
}

// Archive retires an obligation without a rating; the counter still goes
// down because nothing is owed anymore.
func (s *Service) Archive(ctx context.Context, id int64) error {
	rv, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	if rv.Status != domain.ReviewPending {
		return ErrReviewNotFound
	}
	if err := s.reviews.UpdateStatus(ctx, id, domain.ReviewArchived); err != nil {
		return err
	}
	return s.users.AdjustToRate(ctx, rv.UserID, -1)
}

func (s *Service) ListFeedback(ctx context.Context, limit, offset int) ([]domain.Feedback, int64, error) {
	return s.reviews.ListFeedback(ctx, limit, offset)
}
