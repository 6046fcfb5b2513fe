package gorm

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smartmeals/v2/internal/domain/exercise"
	"github.com/smartmeals/v2/internal/ports/outbound"
)

// RatingRepository implements the rating repository interface using GORM
type RatingRepository struct {
	db *gorm.DB
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *gorm.DB) outbound.RatingRepository {
	return &RatingRepository{db: db}
}

// Upsert inserts the rating or updates the value of the existing
// (user, exercise) row
func (r *RatingRepository) Upsert(ctx context.Context, rating exercise.Rating) error {
	model := RatingToModel(rating)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "exercise_title"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "updated_at"}),
	}).Create(model).Error
}

// ListAll returns every rating in insertion order
func (r *RatingRepository) ListAll(ctx context.Context) ([]exercise.Rating, error) {
	var models []RatingModel
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toRatings(models), nil
}

// ListByUser returns a user's ratings in insertion order
func (r *RatingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]exercise.Rating, error) {
	var models []RatingModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toRatings(models), nil
}

func toRatings(models []RatingModel) []exercise.Rating {
	out := make([]exercise.Rating, len(models))
	for i := range models {
		out[i] = ModelToRating(&models[i])
	}
	return out
}
