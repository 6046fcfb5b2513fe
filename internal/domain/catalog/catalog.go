// Package catalog holds the read-only reference datasets (meals, foods,
// recipe details, exercises) and the pure filtering, ranking and scoring
// functions over them.
package catalog

import (
	"slices"
	"strings"
)

// MealSlot is one of the fixed meal categories of a day.
type MealSlot string

const (
	SlotBreakfast MealSlot = "breakfast"
	SlotLunch     MealSlot = "lunch"
	SlotDinner    MealSlot = "dinner"
)

// Slots lists the meal slots in day order.
var Slots = []MealSlot{SlotBreakfast, SlotLunch, SlotDinner}

// Title returns the capitalized slot name, e.g. "Breakfast".
func (s MealSlot) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Item is a food or meal row with per-serving nutrients.
type Item struct {
	Name        string
	MealType    string
	Calories    float64
	Protein     float64 // g
	Carbs       float64 // g
	Fat         float64 // g
	Fibre       float64 // g
	Sugar       float64 // g
	Tags        []string
	Ingredients []string
}

// InSlot reports whether the item is tagged for the slot.
func (i Item) InSlot(slot MealSlot) bool {
	return strings.EqualFold(strings.TrimSpace(i.MealType), string(slot))
}

// RecipeDetail is a recipe row whose nutrient columns carry units or
// percent signs as raw text, e.g. "12.5g" or "8%".
type RecipeDetail struct {
	Name             string
	Category         string
	URL              string
	Calories         *float64
	Protein          string
	Fibre            string
	FatPercent       string
	Carbs            string
	SugarsPercent    string
	SaltPercent      string
	SaturatesPercent string
}

// Exercise is an exercise row.
type Exercise struct {
	Title       string
	Description string
	Type        string
	BodyPart    string
	Equipment   string
	Level       string
	// Rating is the dataset's own 0-10 score; HasRating is false when absent.
	Rating    float64
	HasRating bool
}

// Catalog is the immutable set of reference datasets. It is built once at
// startup and passed to every operation that needs it. Accessors return
// copies, so callers may reorder or filter freely.
type Catalog struct {
	meals     []Item
	foods     []Item
	recipes   []RecipeDetail
	exercises []Exercise
}

// New builds a catalog from already loaded rows. The slices are copied.
func New(meals, foods []Item, recipes []RecipeDetail, exercises []Exercise) *Catalog {
	return &Catalog{
		meals:     slices.Clone(meals),
		foods:     slices.Clone(foods),
		recipes:   slices.Clone(recipes),
		exercises: slices.Clone(exercises),
	}
}

// Meals returns the meal rows used for plan assembly.
func (c *Catalog) Meals() []Item { return slices.Clone(c.meals) }

// Foods returns the food database rows.
func (c *Catalog) Foods() []Item { return slices.Clone(c.foods) }

// Recipes returns the recipe detail rows used for goal scoring.
func (c *Catalog) Recipes() []RecipeDetail { return slices.Clone(c.recipes) }

// Exercises returns the exercise rows.
func (c *Catalog) Exercises() []Exercise { return slices.Clone(c.exercises) }

// Stats summarizes dataset sizes.
type Stats struct {
	Meals     int `json:"meals"`
	Foods     int `json:"foods"`
	Recipes   int `json:"recipes"`
	Exercises int `json:"exercises"`
}

// Stats returns the number of rows per dataset.
func (c *Catalog) Stats() Stats {
	return Stats{
		Meals:     len(c.meals),
		Foods:     len(c.foods),
		Recipes:   len(c.recipes),
		Exercises: len(c.exercises),
	}
}

// ItemsInSlot returns the items tagged for slot, in catalog order.
func ItemsInSlot(items []Item, slot MealSlot) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.InSlot(slot) {
			out = append(out, it)
		}
	}
	return out
}
