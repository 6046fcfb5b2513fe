// Package nutrition derives daily calorie and macronutrient targets from a
// profile using the Mifflin-St Jeor equation.
package nutrition

import (
	"math"

	"github.com/smartmeals/v2/internal/domain/profile"
)

// Energy density in kcal per gram.
const (
	KcalPerGramProtein = 4.0
	KcalPerGramCarbs   = 4.0
	KcalPerGramFat     = 9.0
)

// Target is the daily nutrient target for a profile.
type Target struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// MacroSplit is a share of daily calories per macronutrient.
type MacroSplit struct {
	Protein float64
	Fat     float64
	Carbs   float64
}

var activityMultipliers = map[profile.ActivityLevel]float64{
	profile.ActivitySedentary:        1.2,
	profile.ActivityLightlyActive:    1.375,
	profile.ActivityModeratelyActive: 1.55,
	profile.ActivityVeryActive:       1.725,
	profile.ActivityExtraActive:      1.9,
}

var goalAdjustments = map[profile.Goal]float64{
	profile.GoalWeightLoss:     -500,
	profile.GoalWeightGain:     500,
	profile.GoalMuscleGain:     300,
	profile.GoalMaintainWeight: 0,
	profile.GoalUnspecified:    0,
}

var macroSplits = map[profile.Goal]MacroSplit{
	profile.GoalMuscleGain:     {Protein: 0.30, Fat: 0.25, Carbs: 0.45},
	profile.GoalWeightLoss:     {Protein: 0.35, Fat: 0.30, Carbs: 0.35},
	profile.GoalWeightGain:     {Protein: 0.20, Fat: 0.30, Carbs: 0.50},
	profile.GoalMaintainWeight: {Protein: 0.25, Fat: 0.30, Carbs: 0.45},
	profile.GoalUnspecified:    {Protein: 0.25, Fat: 0.30, Carbs: 0.45},
}

// ActivityMultiplier returns the TDEE multiplier for an activity level.
// Unknown levels use the moderately active multiplier.
func ActivityMultiplier(level profile.ActivityLevel) float64 {
	if m, ok := activityMultipliers[level]; ok {
		return m
	}
	return activityMultipliers[profile.ActivityModeratelyActive]
}

// GoalAdjustment returns the additive daily calorie adjustment for a goal.
func GoalAdjustment(goal profile.Goal) float64 {
	return goalAdjustments[goal]
}

// SplitFor returns the macro split for a goal.
func SplitFor(goal profile.Goal) MacroSplit {
	if s, ok := macroSplits[goal]; ok {
		return s
	}
	return macroSplits[profile.GoalUnspecified]
}

// BMR returns the basal metabolic rate in kcal/day.
func BMR(weightKg, heightCm float64, age int, sex profile.Sex) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if sex == profile.SexMale {
		return base + 5
	}
	return base - 161
}

// DailyCalories returns TDEE plus the goal adjustment, rounded to the nearest 50.
func DailyCalories(p profile.Profile) float64 {
	p = profile.Normalize(p)
	tdee := BMR(p.Weight, p.Height, p.Age, p.Sex) * ActivityMultiplier(p.ActivityLevel)
	return roundTo(tdee+GoalAdjustment(p.Goal), 50)
}

// ComputeTargets returns the calorie and macro targets for p. Missing inputs
// are defaulted; it never fails.
func ComputeTargets(p profile.Profile) Target {
	p = profile.Normalize(p)
	calories := DailyCalories(p)
	split := SplitFor(p.Goal)
	return Target{
		Calories: calories,
		Protein:  math.Round(calories * split.Protein / KcalPerGramProtein),
		Carbs:    math.Round(calories * split.Carbs / KcalPerGramCarbs),
		Fat:      math.Round(calories * split.Fat / KcalPerGramFat),
	}
}

// MacroCalories recomputes calories from the macro grams of t.
func (t Target) MacroCalories() float64 {
	return t.Protein*KcalPerGramProtein + t.Carbs*KcalPerGramCarbs + t.Fat*KcalPerGramFat
}

func roundTo(v, step float64) float64 {
	return math.Round(v/step) * step
}
