// Package planner provides the application layer for meal planning and
// food and exercise recommendations.
package planner

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/smartmeals/v2/internal/domain/catalog"
	"github.com/smartmeals/v2/internal/domain/exercise"
	"github.com/smartmeals/v2/internal/domain/mealplan"
	"github.com/smartmeals/v2/internal/domain/nutrition"
	"github.com/smartmeals/v2/internal/domain/profile"
	"github.com/smartmeals/v2/internal/domain/shared"
	"github.com/smartmeals/v2/internal/ports/inbound"
	"github.com/smartmeals/v2/internal/ports/outbound"
	"github.com/smartmeals/v2/pkg/errors"
)

var tracer = otel.Tracer("github.com/smartmeals/v2/internal/application/planner")

// Options holds service level tunables.
type Options struct {
	DefaultDays        int
	MaxDays            int
	RecipeLimit        int
	ExerciseCount      int
	FoodSearchLimit    int
	LatestPlanCacheTTL time.Duration
}

func (o Options) withDefaults() Options {
	if o.DefaultDays <= 0 {
		o.DefaultDays = 7
	}
	if o.MaxDays <= 0 {
		o.MaxDays = 14
	}
	if o.RecipeLimit <= 0 {
		o.RecipeLimit = 10
	}
	if o.ExerciseCount <= 0 {
		o.ExerciseCount = 5
	}
	if o.FoodSearchLimit <= 0 {
		o.FoodSearchLimit = 20
	}
	if o.LatestPlanCacheTTL <= 0 {
		o.LatestPlanCacheTTL = 10 * time.Minute
	}
	return o
}

// PlannerService implements the planning use cases
type PlannerService struct {
	catalog     *catalog.Catalog
	profiles    outbound.ProfileRepository
	plans       outbound.MealPlanRepository
	ratings     outbound.RatingRepository
	cache       outbound.CacheRepository
	events      outbound.EventPublisher
	metrics     outbound.MetricsRecorder
	assembler   *mealplan.Assembler
	recommender *exercise.Recommender
	opts        Options
	now         func() time.Time
	logger      *zap.Logger
}

// NewPlannerService creates a new planner service
func NewPlannerService(
	cat *catalog.Catalog,
	profiles outbound.ProfileRepository,
	plans outbound.MealPlanRepository,
	ratings outbound.RatingRepository,
	cache outbound.CacheRepository,
	events outbound.EventPublisher,
	metrics outbound.MetricsRecorder,
	assembler *mealplan.Assembler,
	recommender *exercise.Recommender,
	opts Options,
	logger *zap.Logger,
) *PlannerService {
	return &PlannerService{
		catalog:     cat,
		profiles:    profiles,
		plans:       plans,
		ratings:     ratings,
		cache:       cache,
		events:      events,
		metrics:     metrics,
		assembler:   assembler,
		recommender: recommender,
		opts:        opts.withDefaults(),
		now:         time.Now,
		logger:      logger.Named("planner-service"),
	}
}

var _ inbound.PlannerService = (*PlannerService)(nil)

// TargetsForProfile computes targets for an inline profile
func (s *PlannerService) TargetsForProfile(ctx context.Context, in inbound.ProfileInput) (*inbound.TargetsDTO, error) {
	p := in.ToProfile()
	return targetsDTO(p), nil
}

// ComputeTargets computes targets for a stored profile
func (s *PlannerService) ComputeTargets(ctx context.Context, userID uuid.UUID) (*inbound.TargetsDTO, error) {
	p, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return targetsDTO(*p), nil
}

func targetsDTO(p profile.Profile) *inbound.TargetsDTO {
	p = profile.Normalize(p)
	t := nutrition.ComputeTargets(p)
	return &inbound.TargetsDTO{
		DailyCalories: t.Calories,
		CalorieGoal:   math.Round(t.MacroCalories()),
		Protein:       t.Protein,
		Carbs:         t.Carbs,
		Fat:           t.Fat,
		BMR:           nutrition.BMR(p.Weight, p.Height, p.Age, p.Sex),
		BMI:           p.BMI,
		HealthStatus:  p.HealthStatus,
	}
}

// PlanForProfile assembles a plan for an inline profile. Nothing is stored.
func (s *PlannerService) PlanForProfile(ctx context.Context, in inbound.ProfileInput, days int) (*mealplan.MealPlan, error) {
	_, span := tracer.Start(ctx, "planner.PlanForProfile")
	defer span.End()

	days, err := s.resolveDays(days)
	if err != nil {
		return nil, err
	}
	plan, err := s.assemble(in.ToProfile(), days)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	plan.ClearEvents()
	return plan, nil
}

// GenerateMealPlan assembles and stores a plan for a stored profile. The plan
// is returned even when saving it fails.
func (s *PlannerService) GenerateMealPlan(ctx context.Context, cmd inbound.GeneratePlanCommand) (*mealplan.MealPlan, error) {
	ctx, span := tracer.Start(ctx, "planner.GenerateMealPlan")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", cmd.UserID.String()), attribute.Int("plan.days", cmd.Days))

	days, err := s.resolveDays(cmd.Days)
	if err != nil {
		return nil, err
	}
	p, err := s.loadProfile(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Generating meal plan",
		zap.String("user_id", cmd.UserID.String()),
		zap.Int("days", days),
	)

	plan, err := s.assemble(*p, days)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if p.HasDurableID() {
		if err := s.plans.Save(ctx, plan); err != nil {
			s.logger.Error("Failed to save meal plan",
				zap.String("user_id", cmd.UserID.String()),
				zap.String("plan_id", plan.ID.String()),
				zap.Error(err),
			)
		}
		s.invalidateLatestPlan(ctx, cmd.UserID)
	}
	s.publish(ctx, plan.Events())

	s.logger.Info("Meal plan generated",
		zap.String("plan_id", plan.ID.String()),
		zap.Float64("daily_calories", plan.DailyCalories),
		zap.Int("top_up_portions", plan.TopUpPortions()),
	)
	return plan, nil
}

func (s *PlannerService) assemble(p profile.Profile, days int) (*mealplan.MealPlan, error) {
	plan, err := s.assembler.Assemble(p, s.catalog, days)
	if err != nil {
		appErr := planError(err)
		s.recordPlan(string(appErr.Code), days, 0)
		s.logger.Info("Meal plan not generated",
			zap.String("user_id", p.ID.String()),
			zap.String("reason", string(appErr.Code)),
		)
		return nil, appErr
	}
	s.recordPlan("success", days, plan.TopUpPortions())
	if n := plan.DaysBelowBand(); n > 0 {
		s.logger.Info("Meal plan days below calorie band",
			zap.String("user_id", p.ID.String()),
			zap.Int("days_below_band", n),
			zap.Float64("daily_calories", plan.DailyCalories),
		)
	}
	return plan, nil
}

// planError maps assembler failures to user-facing errors.
func planError(err error) *errors.AppError {
	var slotErr *mealplan.EmptySlotError
	switch {
	case stderrors.As(err, &slotErr):
		return errors.NewEmptyMealSlotError(string(slotErr.Slot), err)
	case stderrors.Is(err, mealplan.ErrNoMatchingRecipes):
		return errors.NewNoMatchingRecipesError(err)
	case stderrors.Is(err, mealplan.ErrCatalogEmpty):
		return errors.NewCatalogUnavailableError("meals")
	case stderrors.Is(err, mealplan.ErrInvalidDays):
		return errors.NewValidationError(err.Error())
	default:
		return errors.Wrap(err, "failed to assemble meal plan")
	}
}

func (s *PlannerService) resolveDays(days int) (int, error) {
	if days == 0 {
		return s.opts.DefaultDays, nil
	}
	if days < 0 || days > s.opts.MaxDays {
		return 0, errors.NewValidationError(fmt.Sprintf("days must be between 1 and %d", s.opts.MaxDays))
	}
	return days, nil
}

// LatestMealPlan returns the most recently generated plan for a user
func (s *PlannerService) LatestMealPlan(ctx context.Context, userID uuid.UUID) (*mealplan.MealPlan, error) {
	if cached, ok := s.cachedLatestPlan(ctx, userID); ok {
		return cached, nil
	}

	plan, err := s.plans.FindLatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, errors.CodeMealPlanNotFound) {
			return nil, err
		}
		return nil, errors.NewDatabaseError("load latest meal plan", err)
	}
	s.cacheLatestPlan(ctx, plan)
	return plan, nil
}

// SetDayLogged marks a day of the latest plan as eaten or not
func (s *PlannerService) SetDayLogged(ctx context.Context, cmd inbound.SetDayLoggedCommand) (*mealplan.MealPlan, error) {
	plan, err := s.LatestMealPlan(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if err := plan.SetDayLogged(cmd.Day, cmd.Logged, s.now()); err != nil {
		return nil, errors.NewDayOutOfRangeError(cmd.Day, len(plan.Days))
	}
	if err := s.plans.SetDayLogged(ctx, plan.ID, cmd.Day, cmd.Logged); err != nil {
		return nil, errors.NewDatabaseError("update logged status", err)
	}
	s.invalidateLatestPlan(ctx, cmd.UserID)
	s.publish(ctx, plan.Events())

	s.logger.Info("Meal plan day logged",
		zap.String("user_id", cmd.UserID.String()),
		zap.Int("day", cmd.Day),
		zap.Bool("logged", cmd.Logged),
	)
	return plan, nil
}

// ShoppingList groups the foods of the latest plan
func (s *PlannerService) ShoppingList(ctx context.Context, userID uuid.UUID) ([]mealplan.ShoppingGroup, error) {
	plan, err := s.LatestMealPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mealplan.ShoppingList(plan), nil
}

// ExportMealPlan renders the latest plan as text
func (s *PlannerService) ExportMealPlan(ctx context.Context, userID uuid.UUID) (string, error) {
	p, err := s.loadProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	plan, err := s.LatestMealPlan(ctx, userID)
	if err != nil {
		return "", err
	}
	owner := p.Name
	if owner == "" {
		owner = p.ID.String()
	}
	return mealplan.RenderText(plan, owner), nil
}

// RecommendRecipes scores the recipe catalog for the user's goal
func (s *PlannerService) RecommendRecipes(ctx context.Context, userID uuid.UUID, limit int) ([]inbound.RecipeRecommendationDTO, error) {
	p, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	recipes := s.catalog.Recipes()
	if len(recipes) == 0 {
		return nil, errors.NewCatalogUnavailableError("recipes")
	}
	if limit <= 0 {
		limit = s.opts.RecipeLimit
	}

	scored := catalog.ScoreRecipes(p.Goal, recipes, limit)
	out := make([]inbound.RecipeRecommendationDTO, len(scored))
	for i, r := range scored {
		out[i] = inbound.RecipeRecommendationDTO{
			Name:      r.Recipe.Name,
			Category:  r.Recipe.Category,
			URL:       r.Recipe.URL,
			Score:     r.Score,
			Calories:  r.Calories,
			Protein:   r.Protein,
			Fibre:     r.Fibre,
			Fat:       r.Fat,
			Carbs:     r.Carbs,
			Sugars:    r.Sugars,
			Salt:      r.Salt,
			Saturates: r.Saturates,
		}
	}
	s.recordRecommendation("recipes", len(out), false)
	return out, nil
}

// RecommendExercises builds the exercise recommendation for a user using the
// rating history of all users
func (s *PlannerService) RecommendExercises(ctx context.Context, userID uuid.UUID, count int) (*inbound.ExerciseRecommendationDTO, error) {
	ctx, span := tracer.Start(ctx, "planner.RecommendExercises")
	defer span.End()

	p, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	exercises := s.catalog.Exercises()
	if len(exercises) == 0 {
		return nil, errors.NewCatalogUnavailableError("exercises")
	}
	if count <= 0 {
		count = s.opts.ExerciseCount
	}

	ratings, err := s.ratings.ListAll(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("load exercise ratings", err)
	}

	rec, err := s.recommender.Recommend(*p, exercises, ratings, count)
	if err != nil {
		return nil, errors.Wrap(err, "failed to recommend exercises")
	}
	span.SetAttributes(attribute.Bool("exercise.used_history", rec.UsedHistory), attribute.Int("exercise.count", rec.Total()))

	s.logger.Debug("Exercises recommended",
		zap.String("user_id", userID.String()),
		zap.String("tier", rec.Intensity.Tier.String()),
		zap.Int("count", rec.Total()),
		zap.Bool("used_history", rec.UsedHistory),
	)
	s.recordRecommendation("exercises", rec.Total(), rec.UsedHistory)
	return exerciseDTO(rec), nil
}

func exerciseDTO(rec *exercise.Recommendation) *inbound.ExerciseRecommendationDTO {
	dto := &inbound.ExerciseRecommendationDTO{
		Tier:        rec.Intensity.Tier.String(),
		PlanLevel:   rec.Intensity.PlanLevel,
		BodyFat:     rec.Intensity.BodyFat,
		DaysPerWeek: rec.Intensity.DaysPerWeek,
		Sets:        rec.Intensity.Sets,
		Reasons:     rec.Intensity.Reasons,
		Weights:     make(map[string]float64, len(rec.Weights)),
		Categories:  make(map[string][]inbound.ExerciseDTO, len(rec.Categories)),
		UsedHistory: rec.UsedHistory,
	}
	for c, w := range rec.Weights {
		dto.Weights[string(c)] = w
	}
	for c, list := range rec.Categories {
		items := make([]inbound.ExerciseDTO, len(list))
		for i, s := range list {
			items[i] = inbound.ExerciseDTO{
				Title:           s.Exercise.Title,
				Description:     s.Exercise.Description,
				Type:            s.Exercise.Type,
				BodyPart:        s.Exercise.BodyPart,
				Equipment:       s.Exercise.Equipment,
				Level:           s.Exercise.Level,
				MuscleGroup:     string(s.MuscleGroup),
				PredictedRating: s.PredictedRating,
				FromHistory:     s.FromHistory,
			}
			if s.Exercise.HasRating {
				r := s.Exercise.Rating
				items[i].CatalogRating = &r
			}
		}
		dto.Categories[string(c)] = items
	}
	return dto
}

// RecordRating stores a user's rating of an exercise, replacing any
// previous rating of the same exercise
func (s *PlannerService) RecordRating(ctx context.Context, cmd inbound.RecordRatingCommand) error {
	r, err := exercise.NewRating(cmd.UserID, cmd.ExerciseTitle, cmd.Rating, s.now())
	switch {
	case stderrors.Is(err, exercise.ErrInvalidRating):
		return errors.NewInvalidRatingError(cmd.Rating)
	case err != nil:
		return errors.NewValidationError(err.Error())
	}

	if _, err := s.loadProfile(ctx, cmd.UserID); err != nil {
		return err
	}
	if err := s.ratings.Upsert(ctx, r); err != nil {
		return errors.NewDatabaseError("save exercise rating", err)
	}

	s.logger.Info("Exercise rated",
		zap.String("user_id", cmd.UserID.String()),
		zap.String("exercise", r.ExerciseTitle),
		zap.Int("rating", r.Value),
	)
	if s.metrics != nil {
		s.metrics.RecordRating()
	}
	return nil
}

// SearchFoods matches food names and applies the diet filter
func (s *PlannerService) SearchFoods(ctx context.Context, q inbound.FoodSearchQuery) ([]inbound.FoodDTO, error) {
	foods := s.catalog.Foods()
	if len(foods) == 0 {
		return nil, errors.NewCatalogUnavailableError("foods")
	}
	limit := q.Limit
	if limit <= 0 || limit > s.opts.FoodSearchLimit {
		limit = s.opts.FoodSearchLimit
	}

	needle := strings.ToLower(strings.TrimSpace(q.Query))
	matched := foods[:0:0]
	for _, f := range foods {
		if needle == "" || strings.Contains(strings.ToLower(f.Name), needle) {
			matched = append(matched, f)
		}
	}
	diet, _ := profile.ParseDietPreference(q.Diet)
	matched = catalog.FilterByDiet(matched, diet)

	out := make([]inbound.FoodDTO, 0, min(limit, len(matched)))
	for _, f := range matched {
		if len(out) == limit {
			break
		}
		out = append(out, inbound.FoodDTO{Name: f.Name, Calories: f.Calories, Protein: f.Protein, Carbs: f.Carbs, Fat: f.Fat})
	}
	return out, nil
}

func (s *PlannerService) loadProfile(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	p, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errors.CodeProfileNotFound) {
			return nil, err
		}
		return nil, errors.NewDatabaseError("load profile", err)
	}
	return p, nil
}

// Cache operations

func latestPlanKey(userID uuid.UUID) string {
	return fmt.Sprintf("mealplan:latest:%s", userID.String())
}

func (s *PlannerService) cachedLatestPlan(ctx context.Context, userID uuid.UUID) (*mealplan.MealPlan, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, latestPlanKey(userID))
	if err != nil {
		if !stderrors.Is(err, outbound.ErrCacheMiss) {
			s.logger.Warn("Failed to read cached meal plan", zap.Error(err))
		}
		s.recordCache(false)
		return nil, false
	}
	var plan mealplan.MealPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		s.logger.Warn("Discarding undecodable cached meal plan", zap.Error(err))
		s.recordCache(false)
		return nil, false
	}
	s.recordCache(true)
	return &plan, true
}

func (s *PlannerService) cacheLatestPlan(ctx context.Context, plan *mealplan.MealPlan) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(plan)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, latestPlanKey(plan.UserID), data, s.opts.LatestPlanCacheTTL); err != nil {
		s.logger.Warn("Failed to cache meal plan", zap.Error(err))
	}
}

func (s *PlannerService) invalidateLatestPlan(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, latestPlanKey(userID)); err != nil {
		s.logger.Warn("Failed to invalidate cached meal plan", zap.Error(err))
	}
}

func (s *PlannerService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.events == nil {
		return
	}
	for _, event := range events {
		if err := s.events.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish event",
				zap.String("event", event.EventName()),
				zap.Error(err),
			)
		}
	}
}

func (s *PlannerService) recordPlan(outcome string, days, portions int) {
	if s.metrics != nil {
		s.metrics.RecordMealPlan(outcome, days, portions)
	}
}

func (s *PlannerService) recordRecommendation(kind string, n int, usedHistory bool) {
	if s.metrics != nil {
		s.metrics.RecordRecommendation(kind, n, usedHistory)
	}
}

func (s *PlannerService) recordCache(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(hit)
	}
}
