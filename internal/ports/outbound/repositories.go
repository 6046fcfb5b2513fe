// Package outbound defines the interfaces for outbound ports (driven adapters):
// persistence, caching and event publishing.
package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smartmeals/v2/internal/domain/exercise"
	"github.com/smartmeals/v2/internal/domain/mealplan"
	"github.com/smartmeals/v2/internal/domain/profile"
	"github.com/smartmeals/v2/internal/domain/shared"
)

// ProfileRepository persists user profiles and their progress history.
// FindByID returns an error with code PROFILE_NOT_FOUND for unknown IDs.
type ProfileRepository interface {
	Create(ctx context.Context, p *profile.Profile) error
	Update(ctx context.Context, p *profile.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
	// RecordProgress stores the profile's current weight, BMI and health
	// status and appends entry to its history.
	RecordProgress(ctx context.Context, p *profile.Profile, entry profile.ProgressEntry) error
}

// MealPlanRepository stores meal plan snapshots. Plans are append-only; the
// latest plan for a user is the one with the greatest CreatedAt.
type MealPlanRepository interface {
	Save(ctx context.Context, plan *mealplan.MealPlan) error
	// FindLatestByUser returns an error with code MEAL_PLAN_NOT_FOUND when
	// the user has no plan.
	FindLatestByUser(ctx context.Context, userID uuid.UUID) (*mealplan.MealPlan, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*mealplan.MealPlan, error)
	SetDayLogged(ctx context.Context, planID uuid.UUID, day int, logged bool) error
}

// RatingRepository stores exercise ratings keyed by user and exercise title.
type RatingRepository interface {
	// Upsert inserts the rating or replaces the value of an existing one.
	Upsert(ctx context.Context, r exercise.Rating) error
	ListAll(ctx context.Context) ([]exercise.Rating, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]exercise.Rating, error)
}

// CacheRepository defines the interface for caching operations. Get returns
// ErrCacheMiss when the key is absent.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// EventPublisher publishes domain events raised by aggregates.
type EventPublisher interface {
	Publish(ctx context.Context, event shared.DomainEvent) error
}

// MetricsRecorder receives planner outcomes for monitoring.
type MetricsRecorder interface {
	RecordMealPlan(outcome string, days, topUpPortions int)
	RecordRecommendation(kind string, count int, usedHistory bool)
	RecordRating()
	RecordCacheLookup(hit bool)
}
