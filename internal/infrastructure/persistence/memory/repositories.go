package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smartmeals/v2/internal/domain/exercise"
	"github.com/smartmeals/v2/internal/domain/mealplan"
	"github.com/smartmeals/v2/internal/domain/profile"
	"github.com/smartmeals/v2/internal/domain/shared"
	"github.com/smartmeals/v2/internal/ports/outbound"
	"github.com/smartmeals/v2/pkg/errors"
)

// ProfileRepository keeps profiles in a map. Stored values are copies so
// callers cannot mutate repository state.
type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*profile.Profile
}

var _ outbound.ProfileRepository = (*ProfileRepository)(nil)

// NewProfileRepository creates an empty profile repository
func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: make(map[uuid.UUID]*profile.Profile)}
}

func (r *ProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[p.ID]; exists {
		return errors.NewAppError(errors.CodeConflict, "Profile already exists", p.ID.String())
	}
	r.profiles[p.ID] = cloneProfile(p)
	return nil
}

func (r *ProfileRepository) Update(ctx context.Context, p *profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.profiles[p.ID]
	if !exists {
		return errors.NewProfileNotFoundError(p.ID.String())
	}
	updated := cloneProfile(p)
	updated.CreatedAt = stored.CreatedAt
	updated.ProgressHistory = stored.ProgressHistory
	r.profiles[p.ID] = updated
	return nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.profiles[id]
	if !exists {
		return nil, errors.NewProfileNotFoundError(id.String())
	}
	return cloneProfile(p), nil
}

func (r *ProfileRepository) RecordProgress(ctx context.Context, p *profile.Profile, entry profile.ProgressEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.profiles[p.ID]
	if !exists {
		return errors.NewProfileNotFoundError(p.ID.String())
	}
	stored.Weight = p.Weight
	stored.BMI = p.BMI
	stored.HealthStatus = p.HealthStatus
	stored.UpdatedAt = p.UpdatedAt
	stored.ProgressHistory = append(stored.ProgressHistory, entry)
	return nil
}

func cloneProfile(p *profile.Profile) *profile.Profile {
	c := *p
	c.AggregateRoot = shared.AggregateRoot{}
	c.Allergies = append([]string(nil), p.Allergies...)
	c.PreferredCuisines = append([]string(nil), p.PreferredCuisines...)
	c.ProgressHistory = append([]profile.ProgressEntry(nil), p.ProgressHistory...)
	return &c
}

// MealPlanRepository keeps meal plans in insertion order
type MealPlanRepository struct {
	mu    sync.RWMutex
	plans []*mealplan.MealPlan
}

var _ outbound.MealPlanRepository = (*MealPlanRepository)(nil)

// NewMealPlanRepository creates an empty meal plan repository
func NewMealPlanRepository() *MealPlanRepository {
	return &MealPlanRepository{}
}

func (r *MealPlanRepository) Save(ctx context.Context, plan *mealplan.MealPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now()
	}
	r.plans = append(r.plans, clonePlan(plan))
	return nil
}

func (r *MealPlanRepository) FindLatestByUser(ctx context.Context, userID uuid.UUID) (*mealplan.MealPlan, error) {
	plans := r.byUser(userID, 1)
	if len(plans) == 0 {
		return nil, errors.NewMealPlanNotFoundError(userID.String())
	}
	return plans[0], nil
}

func (r *MealPlanRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*mealplan.MealPlan, error) {
	return r.byUser(userID, limit), nil
}

// byUser returns copies of the user's plans, newest first. Plans created at
// the same instant keep reverse insertion order.
func (r *MealPlanRepository) byUser(userID uuid.UUID, limit int) []*mealplan.MealPlan {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*mealplan.MealPlan
	for i := len(r.plans) - 1; i >= 0; i-- {
		if r.plans[i].UserID == userID {
			out = append(out, r.plans[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i, p := range out {
		out[i] = clonePlan(p)
	}
	return out
}

func (r *MealPlanRepository) SetDayLogged(ctx context.Context, planID uuid.UUID, day int, logged bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.plans {
		if p.ID != planID {
			continue
		}
		if day < 1 || day > len(p.Days) {
			return errors.NewDayOutOfRangeError(day, len(p.Days))
		}
		p.Days[day-1].Logged = logged
		return nil
	}
	return errors.NewMealPlanNotFoundError(planID.String())
}

func clonePlan(p *mealplan.MealPlan) *mealplan.MealPlan {
	c := &mealplan.MealPlan{
		ID:            p.ID,
		UserID:        p.UserID,
		DailyCalories: p.DailyCalories,
		Macros:        p.Macros,
		CreatedAt:     p.CreatedAt,
		Days:          make([]mealplan.Day, len(p.Days)),
	}
	for i, d := range p.Days {
		day := d
		day.Meals = make([]mealplan.Meal, len(d.Meals))
		for j, m := range d.Meals {
			meal := m
			meal.Foods = append([]mealplan.FoodPortion(nil), m.Foods...)
			day.Meals[j] = meal
		}
		c.Days[i] = day
	}
	return c
}

type ratingKey struct {
	user  uuid.UUID
	title string
}

// RatingRepository keeps one rating per user and exercise title
type RatingRepository struct {
	mu      sync.RWMutex
	order   []ratingKey
	ratings map[ratingKey]exercise.Rating
}

var _ outbound.RatingRepository = (*RatingRepository)(nil)

// NewRatingRepository creates an empty rating repository
func NewRatingRepository() *RatingRepository {
	return &RatingRepository{ratings: make(map[ratingKey]exercise.Rating)}
}

func (r *RatingRepository) Upsert(ctx context.Context, rating exercise.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := ratingKey{user: rating.UserID, title: rating.ExerciseTitle}
	if _, exists := r.ratings[key]; !exists {
		r.order = append(r.order, key)
	}
	r.ratings[key] = rating
	return nil
}

func (r *RatingRepository) ListAll(ctx context.Context) ([]exercise.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]exercise.Rating, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.ratings[key])
	}
	return out, nil
}

func (r *RatingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]exercise.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []exercise.Rating
	for _, key := range r.order {
		if key.user == userID {
			out = append(out, r.ratings[key])
		}
	}
	return out, nil
}
