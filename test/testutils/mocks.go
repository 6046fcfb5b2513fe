// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/smartmeals/v2/internal/domain/exercise"
	"github.com/smartmeals/v2/internal/domain/mealplan"
	"github.com/smartmeals/v2/internal/domain/profile"
	"github.com/smartmeals/v2/internal/domain/shared"
	"github.com/smartmeals/v2/internal/ports/inbound"
	"github.com/smartmeals/v2/internal/ports/outbound"
)

// MockProfileRepository provides a mock implementation of ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfileRepository) Update(ctx context.Context, p *profile.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Profile), args.Error(1)
}

func (m *MockProfileRepository) RecordProgress(ctx context.Context, p *profile.Profile, entry profile.ProgressEntry) error {
	return m.Called(ctx, p, entry).Error(0)
}

// MockMealPlanRepository provides a mock implementation of MealPlanRepository
type MockMealPlanRepository struct {
	mock.Mock
}

func (m *MockMealPlanRepository) Save(ctx context.Context, plan *mealplan.MealPlan) error {
	return m.Called(ctx, plan).Error(0)
}

func (m *MockMealPlanRepository) FindLatestByUser(ctx context.Context, userID uuid.UUID) (*mealplan.MealPlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mealplan.MealPlan), args.Error(1)
}

func (m *MockMealPlanRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*mealplan.MealPlan, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*mealplan.MealPlan), args.Error(1)
}

func (m *MockMealPlanRepository) SetDayLogged(ctx context.Context, planID uuid.UUID, day int, logged bool) error {
	return m.Called(ctx, planID, day, logged).Error(0)
}

// MockRatingRepository provides a mock implementation of RatingRepository
type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) Upsert(ctx context.Context, r exercise.Rating) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRatingRepository) ListAll(ctx context.Context) ([]exercise.Rating, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]exercise.Rating), args.Error(1)
}

func (m *MockRatingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]exercise.Rating, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]exercise.Rating), args.Error(1)
}

// MockCacheRepository provides a mock implementation of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// RecordingPublisher collects published events
type RecordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *RecordingPublisher) Publish(ctx context.Context, event shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Names returns the names of the published events in order
func (p *RecordingPublisher) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, len(p.events))
	for i, e := range p.events {
		names[i] = e.EventName()
	}
	return names
}

// MockMetricsRecorder provides a mock implementation of MetricsRecorder.
// Calls are accepted without expectations.
type MockMetricsRecorder struct {
	mock.Mock
}

func (m *MockMetricsRecorder) RecordMealPlan(outcome string, days, topUpPortions int) {
	m.Called(outcome, days, topUpPortions)
}

func (m *MockMetricsRecorder) RecordRecommendation(kind string, count int, usedHistory bool) {
	m.Called(kind, count, usedHistory)
}

func (m *MockMetricsRecorder) RecordRating() {
	m.Called()
}

func (m *MockMetricsRecorder) RecordCacheLookup(hit bool) {
	m.Called(hit)
}

// NewPermissiveMetrics returns a metrics mock that accepts every call
func NewPermissiveMetrics() *MockMetricsRecorder {
	m := &MockMetricsRecorder{}
	m.On("RecordMealPlan", mock.Anything, mock.Anything, mock.Anything).Maybe()
	m.On("RecordRecommendation", mock.Anything, mock.Anything, mock.Anything).Maybe()
	m.On("RecordRating").Maybe()
	m.On("RecordCacheLookup", mock.Anything).Maybe()
	return m
}

// MockPlannerService provides a mock implementation of the planner use cases
type MockPlannerService struct {
	mock.Mock
}

func (m *MockPlannerService) TargetsForProfile(ctx context.Context, in inbound.ProfileInput) (*inbound.TargetsDTO, error) {
	args := m.Called(ctx, in)
	return nilOr[*inbound.TargetsDTO](args.Get(0)), args.Error(1)
}

func (m *MockPlannerService) PlanForProfile(ctx context.Context, in inbound.ProfileInput, days int) (*mealplan.MealPlan, error) {
	args := m.Called(ctx, in, days)
	return nilOr[*mealplan.MealPlan](args.Get(0)), args.Error(1)
}

func (m *MockPlannerService) ComputeTargets(ctx context.Context, userID uuid.UUID) (*inbound.TargetsDTO, error) {
	args := m.Called(ctx, userID)
	return nilOr[*inbound.TargetsDTO](args.Get(0)), args.Error(1)
}

func (m *MockPlannerService) GenerateMealPlan(ctx context.Context, cmd inbound.GeneratePlanCommand) (*mealplan.MealPlan, error) {
	args := m.Called(ctx, cmd)
	return nilOr[*mealplan.MealPlan](args.Get(0)), args.Error(1)
}

func (m *MockPlannerService) LatestMealPlan(ctx context.Context, userID uuid.UUID) (*mealplan.MealPlan, error) {
	args := m.Called(ctx, userID)
	return nilOr[*mealplan.MealPlan](args.Get(0)), args.Error(1)
}

func (m *MockPlannerService) SetDayLogged(ctx context.Context, cmd inbound.SetDayLoggedCommand) (*mealplan.MealPlan, error) {
	args := m.Called(ctx, cmd)
	return nilOr[*mealplan.MealPlan](args.Get(0)), args.Error(1)
}

func (m *MockPlannerService) ShoppingList(ctx context.Context, userID uuid.UUID) ([]mealplan.ShoppingGroup, error) {
	args := m.Called(ctx, userID)
	return nilOr[[]mealplan.ShoppingGroup](args.Get(0)), args.Error(1)
}

func (m *MockPlannerService) ExportMealPlan(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockPlannerService) RecommendRecipes(ctx context.Context, userID uuid.UUID, limit int) ([]inbound.RecipeRecommendationDTO, error) {
	args := m.Called(ctx, userID, limit)
	return nilOr[[]inbound.RecipeRecommendationDTO](args.Get(0)), args.Error(1)
}

func (m *MockPlannerService) RecommendExercises(ctx context.Context, userID uuid.UUID, count int) (*inbound.ExerciseRecommendationDTO, error) {
	args := m.Called(ctx, userID, count)
	return nilOr[*inbound.ExerciseRecommendationDTO](args.Get(0)), args.Error(1)
}

func (m *MockPlannerService) RecordRating(ctx context.Context, cmd inbound.RecordRatingCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

func (m *MockPlannerService) SearchFoods(ctx context.Context, query inbound.FoodSearchQuery) ([]inbound.FoodDTO, error) {
	args := m.Called(ctx, query)
	return nilOr[[]inbound.FoodDTO](args.Get(0)), args.Error(1)
}

// MockProfileService provides a mock implementation of the profile use cases
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) CreateProfile(ctx context.Context, in inbound.ProfileInput) (*inbound.ProfileDTO, error) {
	args := m.Called(ctx, in)
	return nilOr[*inbound.ProfileDTO](args.Get(0)), args.Error(1)
}

func (m *MockProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, in inbound.ProfileInput) (*inbound.ProfileDTO, error) {
	args := m.Called(ctx, userID, in)
	return nilOr[*inbound.ProfileDTO](args.Get(0)), args.Error(1)
}

func (m *MockProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*inbound.ProfileDTO, error) {
	args := m.Called(ctx, userID)
	return nilOr[*inbound.ProfileDTO](args.Get(0)), args.Error(1)
}

func (m *MockProfileService) RecordProgress(ctx context.Context, cmd inbound.RecordProgressCommand) (*inbound.ProfileDTO, error) {
	args := m.Called(ctx, cmd)
	return nilOr[*inbound.ProfileDTO](args.Get(0)), args.Error(1)
}

func (m *MockProfileService) ProgressReport(ctx context.Context, userID uuid.UUID) (*inbound.ProgressReport, error) {
	args := m.Called(ctx, userID)
	return nilOr[*inbound.ProgressReport](args.Get(0)), args.Error(1)
}

func nilOr[T any](v interface{}) T {
	var zero T
	if v == nil {
		return zero
	}
	return v.(T)
}

var (
	_ outbound.ProfileRepository  = (*MockProfileRepository)(nil)
	_ outbound.MealPlanRepository = (*MockMealPlanRepository)(nil)
	_ outbound.RatingRepository   = (*MockRatingRepository)(nil)
	_ outbound.CacheRepository    = (*MockCacheRepository)(nil)
	_ outbound.EventPublisher     = (*RecordingPublisher)(nil)
	_ outbound.MetricsRecorder    = (*MockMetricsRecorder)(nil)
	_ inbound.PlannerService      = (*MockPlannerService)(nil)
	_ inbound.ProfileService      = (*MockProfileService)(nil)
)
