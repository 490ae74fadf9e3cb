package review

import "errors"

var (
	ErrValidation     = errors.New("missing required fields")
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrNothingToRate  = errors.New("no pending review for this hotdesk")
	ErrReviewNotFound = errors.New("review not found")
)
