// Package inbound defines the interfaces for inbound ports (driving adapters).
// HTTP handlers and the CLI use these to reach the planner use cases.
package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smartmeals/v2/internal/domain/mealplan"
	"github.com/smartmeals/v2/internal/domain/profile"
)

// PlannerService defines the planning and recommendation use cases
type PlannerService interface {
	// Stateless variants for profiles without a stored record
	TargetsForProfile(ctx context.Context, in ProfileInput) (*TargetsDTO, error)
	PlanForProfile(ctx context.Context, in ProfileInput, days int) (*mealplan.MealPlan, error)

	// Targets and meal plans
	ComputeTargets(ctx context.Context, userID uuid.UUID) (*TargetsDTO, error)
	GenerateMealPlan(ctx context.Context, cmd GeneratePlanCommand) (*mealplan.MealPlan, error)
	LatestMealPlan(ctx context.Context, userID uuid.UUID) (*mealplan.MealPlan, error)
	SetDayLogged(ctx context.Context, cmd SetDayLoggedCommand) (*mealplan.MealPlan, error)
	ShoppingList(ctx context.Context, userID uuid.UUID) ([]mealplan.ShoppingGroup, error)
	ExportMealPlan(ctx context.Context, userID uuid.UUID) (string, error)

	// Recommendations
	RecommendRecipes(ctx context.Context, userID uuid.UUID, limit int) ([]RecipeRecommendationDTO, error)
	RecommendExercises(ctx context.Context, userID uuid.UUID, count int) (*ExerciseRecommendationDTO, error)
	RecordRating(ctx context.Context, cmd RecordRatingCommand) error
	SearchFoods(ctx context.Context, query FoodSearchQuery) ([]FoodDTO, error)
}

// ProfileService defines the profile and progress use cases
type ProfileService interface {
	CreateProfile(ctx context.Context, in ProfileInput) (*ProfileDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*ProfileDTO, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	RecordProgress(ctx context.Context, cmd RecordProgressCommand) (*ProfileDTO, error)
	ProgressReport(ctx context.Context, userID uuid.UUID) (*ProgressReport, error)
}

// ProfileInput carries profile fields as entered. Enum fields accept any
// casing and either spaces or underscores.
type ProfileInput struct {
	Name              string   `json:"name" validate:"omitempty,max=100"`
	Weight            float64  `json:"weight" validate:"omitempty,gt=0,lte=500"`
	Height            float64  `json:"height" validate:"omitempty,gt=0,lte=300"`
	Age               int      `json:"age" validate:"omitempty,gt=0,lte=120"`
	Sex               string   `json:"sex" validate:"omitempty,max=20"`
	ActivityLevel     string   `json:"activity_level" validate:"omitempty,max=40"`
	Goal              string   `json:"goal" validate:"omitempty,max=40"`
	TargetWeight      float64  `json:"target_weight" validate:"omitempty,gte=0,lte=500"`
	DietPreference    string   `json:"diet_preference" validate:"omitempty,max=40"`
	Allergies         []string `json:"allergies" validate:"omitempty,max=50,dive,max=100"`
	PreferredCuisines []string `json:"preferred_cuisines" validate:"omitempty,max=50,dive,max=100"`
	HealthStatus      string   `json:"health_status" validate:"omitempty,max=40"`
	HealthConditions  string   `json:"health_conditions" validate:"omitempty,max=2000"`
}

// ToProfile converts the input into a normalized domain profile without an ID.
func (in ProfileInput) ToProfile() profile.Profile {
	sex, _ := profile.ParseSex(in.Sex)
	activity, _ := profile.ParseActivityLevel(in.ActivityLevel)
	goal := profile.GoalMaintainWeight
	if in.Goal != "" {
		goal, _ = profile.ParseGoal(in.Goal)
	}
	diet, _ := profile.ParseDietPreference(in.DietPreference)
	return profile.Normalize(profile.Profile{
		Name:              in.Name,
		Weight:            in.Weight,
		Height:            in.Height,
		Age:               in.Age,
		Sex:               sex,
		ActivityLevel:     activity,
		Goal:              goal,
		TargetWeight:      in.TargetWeight,
		DietPreference:    diet,
		Allergies:         in.Allergies,
		PreferredCuisines: in.PreferredCuisines,
		HealthStatus:      in.HealthStatus,
		HealthConditions:  in.HealthConditions,
	})
}

// ProfileDTO represents a stored profile
type ProfileDTO struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Weight            float64   `json:"weight"`
	Height            float64   `json:"height"`
	Age               int       `json:"age"`
	Sex               string    `json:"sex"`
	ActivityLevel     string    `json:"activity_level"`
	Goal              string    `json:"goal"`
	TargetWeight      float64   `json:"target_weight,omitempty"`
	DietPreference    string    `json:"diet_preference"`
	Allergies         []string  `json:"allergies"`
	PreferredCuisines []string  `json:"preferred_cuisines"`
	HealthStatus      string    `json:"health_status"`
	HealthConditions  string    `json:"health_conditions,omitempty"`
	BMI               float64   `json:"bmi"`
	ProgressEntries   int       `json:"progress_entries"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewProfileDTO maps a domain profile to its DTO
func NewProfileDTO(p *profile.Profile) *ProfileDTO {
	return &ProfileDTO{
		ID:                p.ID,
		Name:              p.Name,
		Weight:            p.Weight,
		Height:            p.Height,
		Age:               p.Age,
		Sex:               string(p.Sex),
		ActivityLevel:     string(p.ActivityLevel),
		Goal:              string(p.Goal),
		TargetWeight:      p.TargetWeight,
		DietPreference:    string(p.DietPreference),
		Allergies:         nonNil(p.Allergies),
		PreferredCuisines: nonNil(p.PreferredCuisines),
		HealthStatus:      p.HealthStatus,
		HealthConditions:  p.HealthConditions,
		BMI:               p.BMI,
		ProgressEntries:   len(p.ProgressHistory),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// RecordProgressCommand contains a weigh-in
type RecordProgressCommand struct {
	UserID uuid.UUID
	Weight float64 `validate:"gt=0,lte=500"`
}

// ProgressEntryDTO is one weigh-in
type ProgressEntryDTO struct {
	Timestamp time.Time `json:"timestamp"`
	Weight    float64   `json:"weight"`
	BMI       float64   `json:"bmi"`
}

// ProgressReport summarizes a user's weigh-ins against their goal
type ProgressReport struct {
	UserID              uuid.UUID          `json:"user_id"`
	Goal                string             `json:"goal"`
	History             []ProgressEntryDTO `json:"history"`
	WeeklyChange        *float64           `json:"weekly_change,omitempty"`
	TrendStatus         string             `json:"trend_status"`
	Advice              string             `json:"advice"`
	GoalProgress        *float64           `json:"goal_progress,omitempty"`
	EstimatedCompletion *time.Time         `json:"estimated_completion,omitempty"`
}

// TargetsDTO contains the daily calorie and macro targets
type TargetsDTO struct {
	DailyCalories float64 `json:"daily_calories"`
	CalorieGoal   float64 `json:"calorie_goal"`
	Protein       float64 `json:"protein"`
	Carbs         float64 `json:"carbs"`
	Fat           float64 `json:"fat"`
	BMR           float64 `json:"bmr"`
	BMI           float64 `json:"bmi"`
	HealthStatus  string  `json:"health_status"`
}

// GeneratePlanCommand requests a new plan for a stored profile
type GeneratePlanCommand struct {
	UserID uuid.UUID
	Days   int `validate:"gte=0,lte=31"`
}

// SetDayLoggedCommand toggles the logged flag on a day of the latest plan
type SetDayLoggedCommand struct {
	UserID uuid.UUID
	Day    int `validate:"gte=1"`
	Logged bool
}

// RecordRatingCommand rates an exercise
type RecordRatingCommand struct {
	UserID        uuid.UUID
	ExerciseTitle string `validate:"required,max=255"`
	Rating        int    `validate:"gte=1,lte=5"`
}

// FoodSearchQuery searches the food database
type FoodSearchQuery struct {
	Query string
	Diet  string
	Limit int
}

// FoodDTO is a food database row
type FoodDTO struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// RecipeRecommendationDTO is a scored recipe
type RecipeRecommendationDTO struct {
	Name      string  `json:"name"`
	Category  string  `json:"category,omitempty"`
	URL       string  `json:"url,omitempty"`
	Score     float64 `json:"score"`
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Fibre     float64 `json:"fibre"`
	Fat       float64 `json:"fat_percent"`
	Carbs     float64 `json:"carbs"`
	Sugars    float64 `json:"sugars_percent"`
	Salt      float64 `json:"salt_percent"`
	Saturates float64 `json:"saturates_percent"`
}

// ExerciseDTO is a recommended exercise
type ExerciseDTO struct {
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Type            string   `json:"type"`
	BodyPart        string   `json:"body_part"`
	Equipment       string   `json:"equipment,omitempty"`
	Level           string   `json:"level"`
	CatalogRating   *float64 `json:"catalog_rating,omitempty"`
	MuscleGroup     string   `json:"muscle_group"`
	PredictedRating float64  `json:"predicted_rating"`
	FromHistory     bool     `json:"from_history"`
}

// ExerciseRecommendationDTO is the exercise plan for a user
type ExerciseRecommendationDTO struct {
	Tier        string                   `json:"tier"`
	PlanLevel   int                      `json:"plan_level"`
	BodyFat     float64                  `json:"body_fat"`
	DaysPerWeek int                      `json:"days_per_week"`
	Sets        int                      `json:"sets"`
	Reasons     []string                 `json:"reasons,omitempty"`
	Weights     map[string]float64       `json:"weights"`
	Categories  map[string][]ExerciseDTO `json:"categories"`
	UsedHistory bool                     `json:"used_history"`
}
