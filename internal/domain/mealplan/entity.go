// Package mealplan contains the meal plan snapshot and the assembler that
// builds one from a profile and the meal catalog.
package mealplan

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/smartmeals/v2/internal/domain/catalog"
	"github.com/smartmeals/v2/internal/domain/shared"
)

var (
	ErrNoMatchingRecipes = errors.New("no recipes available that match your preferences")
	ErrCatalogEmpty      = errors.New("meal catalog is empty")
	ErrInvalidDays       = errors.New("days must be greater than 0")
	ErrDayOutOfRange     = errors.New("day is not part of the plan")
)

// EmptySlotError reports a meal slot with no candidate recipes.
type EmptySlotError struct {
	Slot catalog.MealSlot
}

func (e *EmptySlotError) Error() string {
	return fmt.Sprintf("no %s recipes found", e.Slot)
}

// FoodPortion is one food in a meal. Top-up portions may be a fraction of a
// catalog item, in which case the name carries the multiplier.
type FoodPortion struct {
	Name     string  `json:"name" bson:"name"`
	Calories float64 `json:"calories" bson:"calories"`
	Protein  float64 `json:"protein" bson:"protein"`
	Carbs    float64 `json:"carbs" bson:"carbs"`
	Fat      float64 `json:"fat" bson:"fat"`
}

// Meal is one slot of a day.
type Meal struct {
	Number int              `json:"meal_number" bson:"meal_number"`
	Slot   catalog.MealSlot `json:"slot" bson:"slot"`
	Name   string           `json:"meal_name" bson:"meal_name"`
	Foods  []FoodPortion    `json:"foods" bson:"foods"`
}

// Calories sums the calories of the meal's foods.
func (m Meal) Calories() float64 {
	var total float64
	for _, f := range m.Foods {
		total += f.Calories
	}
	return total
}

// Day is one day of a plan. Totals are derived from the meals by Recompute.
type Day struct {
	Number        int     `json:"day" bson:"day"`
	Meals         []Meal  `json:"meals" bson:"meals"`
	TotalCalories float64 `json:"total_calories" bson:"total_calories"`
	TotalProtein  float64 `json:"total_protein" bson:"total_protein"`
	TotalCarbs    float64 `json:"total_carbs" bson:"total_carbs"`
	TotalFat      float64 `json:"total_fat" bson:"total_fat"`
	Logged        bool    `json:"logged" bson:"logged"`
	// PoolExhausted is set when top-up stopped because every slot ran out
	// of candidates before the calorie band was reached.
	PoolExhausted bool `json:"pool_exhausted,omitempty" bson:"pool_exhausted,omitempty"`
	// BelowBand is set when the day ended under the lower edge of the
	// calorie band, either from an exhausted pool or a leftover too small
	// for a fractional portion.
	BelowBand bool `json:"below_band,omitempty" bson:"below_band,omitempty"`
}

// Recompute sets the day totals from its meals, rounded to one decimal.
func (d *Day) Recompute() {
	var cal, protein, carbs, fat float64
	for _, m := range d.Meals {
		for _, f := range m.Foods {
			cal += f.Calories
			protein += f.Protein
			carbs += f.Carbs
			fat += f.Fat
		}
	}
	d.TotalCalories = round1(cal)
	d.TotalProtein = round1(protein)
	d.TotalCarbs = round1(carbs)
	d.TotalFat = round1(fat)
}

// Macros is the daily macro target carried on a plan, in grams.
type Macros struct {
	Protein float64 `json:"protein" bson:"protein"`
	Carbs   float64 `json:"carbs" bson:"carbs"`
	Fat     float64 `json:"fat" bson:"fat"`
}

// MealPlan is an immutable snapshot of a generated plan. Only the per-day
// logged flag changes after creation.
type MealPlan struct {
	shared.AggregateRoot `json:"-" bson:"-"`

	ID            uuid.UUID `json:"id" bson:"-"`
	UserID        uuid.UUID `json:"user_id" bson:"-"`
	DailyCalories float64   `json:"daily_calories" bson:"daily_calories"`
	Macros        Macros    `json:"macros" bson:"macros"`
	Days          []Day     `json:"days" bson:"days"`
	CreatedAt     time.Time `json:"created_at" bson:"-"`
}

// SetDayLogged toggles the logged flag of a 1-based day.
func (p *MealPlan) SetDayLogged(day int, logged bool, now time.Time) error {
	if day < 1 || day > len(p.Days) {
		return ErrDayOutOfRange
	}
	p.Days[day-1].Logged = logged
	p.AddEvent(DayLoggedEvent{PlanID: p.ID, UserID: p.UserID, Day: day, Logged: logged, ChangedAt: now})
	return nil
}

// TopUpPortions counts portions added beyond the one food per meal picked
// from the ranked pools.
func (p *MealPlan) TopUpPortions() int {
	n := 0
	for _, d := range p.Days {
		for _, m := range d.Meals {
			if len(m.Foods) > 1 {
				n += len(m.Foods) - 1
			}
		}
	}
	return n
}

// DaysBelowBand counts days that ended under the calorie band.
func (p *MealPlan) DaysBelowBand() int {
	n := 0
	for _, d := range p.Days {
		if d.BelowBand {
			n++
		}
	}
	return n
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
