package mongo

import (
	"time"

	"github.com/google/uuid"

	"github.com/smartmeals/v2/internal/domain/exercise"
	"github.com/smartmeals/v2/internal/domain/mealplan"
	"github.com/smartmeals/v2/internal/domain/profile"
)

// Identifiers are stored as their canonical string form.

type progressDocument struct {
	RecordedAt time.Time `bson:"recorded_at"`
	Weight     float64   `bson:"weight"`
	BMI        float64   `bson:"bmi"`
}

type profileDocument struct {
	ID                string             `bson:"_id"`
	Name              string             `bson:"name"`
	Weight            float64            `bson:"weight"`
	Height            float64            `bson:"height"`
	Age               int                `bson:"age"`
	Sex               string             `bson:"sex"`
	ActivityLevel     string             `bson:"activity_level"`
	Goal              string             `bson:"goal"`
	TargetWeight      float64            `bson:"target_weight"`
	DietPreference    string             `bson:"diet_preference"`
	Allergies         []string           `bson:"allergies"`
	PreferredCuisines []string           `bson:"preferred_cuisines"`
	HealthStatus      string             `bson:"health_status"`
	HealthConditions  string             `bson:"health_conditions"`
	BMI               float64            `bson:"bmi"`
	ProgressHistory   []progressDocument `bson:"progress_history"`
	CreatedAt         time.Time          `bson:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at"`
}

func toProfileDocument(p *profile.Profile) profileDocument {
	doc := profileDocument{
		ID:                p.ID.String(),
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
		ProgressHistory:   make([]progressDocument, 0, len(p.ProgressHistory)),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	for _, e := range p.ProgressHistory {
		doc.ProgressHistory = append(doc.ProgressHistory, toProgressDocument(e))
	}
	return doc
}

func toProgressDocument(e profile.ProgressEntry) progressDocument {
	return progressDocument{RecordedAt: e.Timestamp, Weight: e.Weight, BMI: e.BMI}
}

func (d profileDocument) toDomain() (*profile.Profile, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	p := &profile.Profile{
		ID:                id,
		Name:              d.Name,
		Weight:            d.Weight,
		Height:            d.Height,
		Age:               d.Age,
		Sex:               profile.Sex(d.Sex),
		ActivityLevel:     profile.ActivityLevel(d.ActivityLevel),
		Goal:              profile.Goal(d.Goal),
		TargetWeight:      d.TargetWeight,
		DietPreference:    profile.DietPreference(d.DietPreference),
		Allergies:         d.Allergies,
		PreferredCuisines: d.PreferredCuisines,
		HealthStatus:      d.HealthStatus,
		HealthConditions:  d.HealthConditions,
		BMI:               d.BMI,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
	for _, e := range d.ProgressHistory {
		p.ProgressHistory = append(p.ProgressHistory, profile.ProgressEntry{
			Timestamp: e.RecordedAt,
			Weight:    e.Weight,
			BMI:       e.BMI,
		})
	}
	return p, nil
}

// mealPlanDocument wraps the plan body, whose identity fields are not
// bson-mapped, with the stored identity.
type mealPlanDocument struct {
	ID        string            `bson:"_id"`
	UserID    string            `bson:"user_id"`
	CreatedAt time.Time         `bson:"created_at"`
	Plan      mealplan.MealPlan `bson:",inline"`
}

func toMealPlanDocument(p *mealplan.MealPlan) mealPlanDocument {
	return mealPlanDocument{
		ID:        p.ID.String(),
		UserID:    p.UserID.String(),
		CreatedAt: p.CreatedAt,
		Plan:      *p,
	}
}

func (d mealPlanDocument) toDomain() (*mealplan.MealPlan, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, err
	}
	plan := d.Plan
	plan.ID = id
	plan.UserID = userID
	plan.CreatedAt = d.CreatedAt
	return &plan, nil
}

type ratingDocument struct {
	UserID        string    `bson:"user_id"`
	ExerciseTitle string    `bson:"exercise_title"`
	Rating        int       `bson:"rating"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func (d ratingDocument) toDomain() (exercise.Rating, error) {
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return exercise.Rating{}, err
	}
	return exercise.Rating{
		UserID:        userID,
		ExerciseTitle: d.ExerciseTitle,
		Value:         d.Rating,
		RatedAt:       d.UpdatedAt,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
