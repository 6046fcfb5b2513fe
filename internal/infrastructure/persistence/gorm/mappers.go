// Package gorm provides mapping between domain entities and GORM models
package gorm

import (
	"encoding/json"
	"fmt"
	"sort"

	"gorm.io/datatypes"

	"github.com/smartmeals/v2/internal/domain/exercise"
	"github.com/smartmeals/v2/internal/domain/mealplan"
	"github.com/smartmeals/v2/internal/domain/profile"
)

// ProfileToModel converts a domain profile to a GORM model. Progress
// entries are written separately.
func ProfileToModel(p *profile.Profile) *ProfileModel {
	return &ProfileModel{
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
		Allergies:         StringSlice(p.Allergies),
		PreferredCuisines: StringSlice(p.PreferredCuisines),
		HealthStatus:      p.HealthStatus,
		HealthConditions:  p.HealthConditions,
		BMI:               p.BMI,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// ModelToProfile converts a GORM model with preloaded progress to a domain
// profile
func ModelToProfile(m *ProfileModel) *profile.Profile {
	entries := append([]ProgressEntryModel(nil), m.Progress...)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].RecordedAt.Before(entries[j].RecordedAt)
	})

	p := &profile.Profile{
		ID:                m.ID,
		Name:              m.Name,
		Weight:            m.Weight,
		Height:            m.Height,
		Age:               m.Age,
		Sex:               profile.Sex(m.Sex),
		ActivityLevel:     profile.ActivityLevel(m.ActivityLevel),
		Goal:              profile.Goal(m.Goal),
		TargetWeight:      m.TargetWeight,
		DietPreference:    profile.DietPreference(m.DietPreference),
		Allergies:         []string(m.Allergies),
		PreferredCuisines: []string(m.PreferredCuisines),
		HealthStatus:      m.HealthStatus,
		HealthConditions:  m.HealthConditions,
		BMI:               m.BMI,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	for _, e := range entries {
		p.ProgressHistory = append(p.ProgressHistory, profile.ProgressEntry{
			Timestamp: e.RecordedAt,
			Weight:    e.Weight,
			BMI:       e.BMI,
		})
	}
	return p
}

// MealPlanToModel converts a domain meal plan to a GORM model
func MealPlanToModel(plan *mealplan.MealPlan) (*MealPlanModel, error) {
	days, err := json.Marshal(plan.Days)
	if err != nil {
		return nil, fmt.Errorf("encode plan days: %w", err)
	}
	return &MealPlanModel{
		ID:            plan.ID,
		UserID:        plan.UserID,
		DailyCalories: plan.DailyCalories,
		Protein:       plan.Macros.Protein,
		Carbs:         plan.Macros.Carbs,
		Fat:           plan.Macros.Fat,
		Days:          datatypes.JSON(days),
		CreatedAt:     plan.CreatedAt,
	}, nil
}

// ModelToMealPlan converts a GORM model to a domain meal plan
func ModelToMealPlan(m *MealPlanModel) (*mealplan.MealPlan, error) {
	plan := &mealplan.MealPlan{
		ID:            m.ID,
		UserID:        m.UserID,
		DailyCalories: m.DailyCalories,
		Macros:        mealplan.Macros{Protein: m.Protein, Carbs: m.Carbs, Fat: m.Fat},
		CreatedAt:     m.CreatedAt,
	}
	if err := json.Unmarshal(m.Days, &plan.Days); err != nil {
		return nil, fmt.Errorf("decode plan days: %w", err)
	}
	return plan, nil
}

// RatingToModel converts a domain rating to a GORM model
func RatingToModel(r exercise.Rating) *RatingModel {
	return &RatingModel{
		UserID:        r.UserID,
		ExerciseTitle: r.ExerciseTitle,
		Rating:        r.Value,
		CreatedAt:     r.RatedAt,
		UpdatedAt:     r.RatedAt,
	}
}

// ModelToRating converts a GORM model to a domain rating
func ModelToRating(m *RatingModel) exercise.Rating {
	return exercise.Rating{
		UserID:        m.UserID,
		ExerciseTitle: m.ExerciseTitle,
		Value:         m.Rating,
		RatedAt:       m.UpdatedAt,
	}
}
