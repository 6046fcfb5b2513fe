package exercise

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrMissingTitle      = errors.New("exercise title is required")
	ErrMissingUser       = errors.New("user is required")
	ErrCatalogEmpty      = errors.New("exercise catalog is empty")
	ErrNoRecommendations = errors.New("number of recommendations must be greater than 0")
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Rating is a user's score for an exercise. There is at most one rating per
// user and exercise title.
type Rating struct {
	UserID        uuid.UUID
	ExerciseTitle string
	Value         int
	RatedAt       time.Time
}

// NewRating validates and builds a rating.
func NewRating(userID uuid.UUID, title string, value int, at time.Time) (Rating, error) {
	if userID == uuid.Nil {
		return Rating{}, ErrMissingUser
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Rating{}, ErrMissingTitle
	}
	if value < MinRating || value > MaxRating {
		return Rating{}, ErrInvalidRating
	}
	return Rating{UserID: userID, ExerciseTitle: title, Value: value, RatedAt: at}, nil
}
