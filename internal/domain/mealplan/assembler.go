package mealplan

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/smartmeals/v2/internal/domain/catalog"
	"github.com/smartmeals/v2/internal/domain/nutrition"
	"github.com/smartmeals/v2/internal/domain/profile"
)

// Config tunes the top-up loop.
type Config struct {
	// CalorieTolerance is the half-width of the accepted band around the goal.
	CalorieTolerance float64
	// MinFraction is the smallest partial portion worth adding on overshoot.
	MinFraction float64
}

// DefaultConfig returns a 50 kcal band and a 0.4 minimum fraction.
func DefaultConfig() Config {
	return Config{CalorieTolerance: 50, MinFraction: 0.4}
}

// Assembler builds multi-day meal plans.
type Assembler struct {
	cfg Config
	now func() time.Time
}

// NewAssembler creates an assembler. Zero config values fall back to defaults.
func NewAssembler(cfg Config) *Assembler {
	def := DefaultConfig()
	if cfg.CalorieTolerance <= 0 {
		cfg.CalorieTolerance = def.CalorieTolerance
	}
	if cfg.MinFraction <= 0 {
		cfg.MinFraction = def.MinFraction
	}
	return &Assembler{cfg: cfg, now: time.Now}
}

// Config returns the active tuning.
func (a *Assembler) Config() Config {
	return a.cfg
}

// Assemble builds a plan of the given number of days for p. It fails with
// ErrNoMatchingRecipes when filtering removes every meal and with an
// *EmptySlotError when a slot has no candidates.
func (a *Assembler) Assemble(p profile.Profile, cat *catalog.Catalog, days int) (*MealPlan, error) {
	if days <= 0 {
		return nil, ErrInvalidDays
	}
	if cat == nil {
		return nil, ErrCatalogEmpty
	}
	meals := cat.Meals()
	if len(meals) == 0 {
		return nil, ErrCatalogEmpty
	}

	p = profile.Normalize(p)
	target := nutrition.ComputeTargets(p)
	goal := math.Round(target.MacroCalories())

	filtered := catalog.Filter(meals, p.Allergies, p.PreferredCuisines)
	if len(filtered) == 0 {
		return nil, ErrNoMatchingRecipes
	}

	want := catalog.Vector{goal, target.Fat, target.Carbs, target.Protein}
	pools := make([][]catalog.Item, len(catalog.Slots))
	for i, slot := range catalog.Slots {
		candidates := catalog.ItemsInSlot(filtered, slot)
		if len(candidates) == 0 {
			return nil, &EmptySlotError{Slot: slot}
		}
		ranked := catalog.RankBySimilarity(candidates, want, days)
		pool := make([]catalog.Item, len(ranked))
		for j, r := range ranked {
			pool[j] = r.Item
		}
		pools[i] = pool
	}

	now := a.now()
	plan := &MealPlan{
		ID:            uuid.New(),
		UserID:        p.ID,
		DailyCalories: goal,
		Macros:        Macros{Protein: target.Protein, Carbs: target.Carbs, Fat: target.Fat},
		Days:          make([]Day, 0, days),
		CreatedAt:     now,
	}
	for n := 1; n <= days; n++ {
		plan.Days = append(plan.Days, a.buildDay(n, pools, goal))
	}
	plan.AddEvent(MealPlanGeneratedEvent{PlanID: plan.ID, UserID: plan.UserID, Days: days, GeneratedAt: now})
	return plan, nil
}

func (a *Assembler) buildDay(number int, pools [][]catalog.Item, goal float64) Day {
	day := Day{Number: number, Meals: make([]Meal, len(catalog.Slots))}
	chosen := make([]int, len(pools))
	total := 0.0
	for i, slot := range catalog.Slots {
		idx := (number - 1) % len(pools[i])
		chosen[i] = idx
		item := pools[i][idx]
		day.Meals[i] = Meal{
			Number: i + 1,
			Slot:   slot,
			Name:   slot.Title(),
			Foods:  []FoodPortion{portionOf(item, item.Name, 1)},
		}
		total += item.Calories
	}

	day.PoolExhausted = a.topUp(&day, pools, chosen, total, goal)
	day.Recompute()
	day.BelowBand = day.TotalCalories < goal-a.cfg.CalorieTolerance
	return day
}

// topUp adds foods to the lightest meal until the day reaches the lower edge
// of the calorie band. It returns true when it stopped because every pool
// was exhausted.
func (a *Assembler) topUp(day *Day, pools [][]catalog.Item, chosen []int, total, goal float64) bool {
	lower := goal - a.cfg.CalorieTolerance
	upper := goal + a.cfg.CalorieTolerance
	pointers := make([]int, len(pools))
	exhausted := make([]bool, len(pools))
	remaining := len(pools)

	for slot := 0; total < lower; slot = (slot + 1) % len(pools) {
		if exhausted[slot] {
			continue
		}
		if pointers[slot] == chosen[slot] {
			pointers[slot]++
		}
		if pointers[slot] >= len(pools[slot]) {
			exhausted[slot] = true
			remaining--
			if remaining == 0 {
				return true
			}
			continue
		}

		item := pools[slot][pointers[slot]]
		pointers[slot]++

		if total+item.Calories > upper {
			if item.Calories > 0 {
				fraction := (goal - total) / item.Calories
				if fraction >= a.cfg.MinFraction {
					f := round2(fraction)
					name := fmt.Sprintf("%s (x%s)", item.Name, strconv.FormatFloat(f, 'f', -1, 64))
					addToLightest(day, portionOf(item, name, fraction))
				}
			}
			return false
		}

		addToLightest(day, portionOf(item, item.Name, 1))
		total += item.Calories
	}
	return false
}

func addToLightest(day *Day, f FoodPortion) {
	lightest := 0
	for i := 1; i < len(day.Meals); i++ {
		if day.Meals[i].Calories() < day.Meals[lightest].Calories() {
			lightest = i
		}
	}
	day.Meals[lightest].Foods = append(day.Meals[lightest].Foods, f)
}

func portionOf(item catalog.Item, name string, factor float64) FoodPortion {
	return FoodPortion{
		Name:     name,
		Calories: item.Calories * factor,
		Protein:  item.Protein * factor,
		Carbs:    item.Carbs * factor,
		Fat:      item.Fat * factor,
	}
}
