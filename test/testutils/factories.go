// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/smartmeals/v2/internal/domain/catalog"
	"github.com/smartmeals/v2/internal/domain/exercise"
	"github.com/smartmeals/v2/internal/domain/profile"
	"github.com/smartmeals/v2/internal/ports/inbound"
)

// ProfileBuilder provides a fluent interface for building test profiles.
// Defaults describe a 25 year old, 70 kg, 175 cm, moderately active man.
type ProfileBuilder struct {
	p profile.Profile
}

// NewProfileBuilder creates a new profile builder with default values
func NewProfileBuilder() *ProfileBuilder {
	return &ProfileBuilder{p: profile.Profile{
		ID:             uuid.New(),
		Name:           gofakeit.FirstName(),
		Weight:         70,
		Height:         175,
		Age:            25,
		Sex:            profile.SexMale,
		ActivityLevel:  profile.ActivityModeratelyActive,
		Goal:           profile.GoalMaintainWeight,
		DietPreference: profile.DietBoth,
	}}
}

// WithID sets the profile ID
func (b *ProfileBuilder) WithID(id uuid.UUID) *ProfileBuilder {
	b.p.ID = id
	return b
}

// WithMetrics sets weight, height and age
func (b *ProfileBuilder) WithMetrics(weight, height float64, age int) *ProfileBuilder {
	b.p.Weight, b.p.Height, b.p.Age = weight, height, age
	return b
}

// WithSex sets the sex
func (b *ProfileBuilder) WithSex(sex profile.Sex) *ProfileBuilder {
	b.p.Sex = sex
	return b
}

// WithActivity sets the activity level
func (b *ProfileBuilder) WithActivity(level profile.ActivityLevel) *ProfileBuilder {
	b.p.ActivityLevel = level
	return b
}

// WithGoal sets the goal
func (b *ProfileBuilder) WithGoal(goal profile.Goal) *ProfileBuilder {
	b.p.Goal = goal
	return b
}

// WithDiet sets the diet preference
func (b *ProfileBuilder) WithDiet(diet profile.DietPreference) *ProfileBuilder {
	b.p.DietPreference = diet
	return b
}

// WithAllergies sets the allergies
func (b *ProfileBuilder) WithAllergies(allergies ...string) *ProfileBuilder {
	b.p.Allergies = allergies
	return b
}

// WithCuisines sets the preferred cuisines
func (b *ProfileBuilder) WithCuisines(cuisines ...string) *ProfileBuilder {
	b.p.PreferredCuisines = cuisines
	return b
}

// WithHealthConditions sets the free-text health conditions
func (b *ProfileBuilder) WithHealthConditions(conditions string) *ProfileBuilder {
	b.p.HealthConditions = conditions
	return b
}

// WithTargetWeight sets the target weight
func (b *ProfileBuilder) WithTargetWeight(weight float64) *ProfileBuilder {
	b.p.TargetWeight = weight
	return b
}

// Build returns a normalized profile
func (b *ProfileBuilder) Build() profile.Profile {
	return profile.Normalize(b.p)
}

// BuildStored returns a profile as it would be after creation
func (b *ProfileBuilder) BuildStored(now time.Time) *profile.Profile {
	p := profile.New(b.p, now)
	p.ClearEvents()
	return p
}

// Input returns the profile as API input
func (b *ProfileBuilder) Input() inbound.ProfileInput {
	return inbound.ProfileInput{
		Name:              b.p.Name,
		Weight:            b.p.Weight,
		Height:            b.p.Height,
		Age:               b.p.Age,
		Sex:               string(b.p.Sex),
		ActivityLevel:     string(b.p.ActivityLevel),
		Goal:              string(b.p.Goal),
		TargetWeight:      b.p.TargetWeight,
		DietPreference:    string(b.p.DietPreference),
		Allergies:         b.p.Allergies,
		PreferredCuisines: b.p.PreferredCuisines,
		HealthConditions:  b.p.HealthConditions,
	}
}

// Meal builds a meal catalog row for slot with the given calories and
// proportional macros.
func Meal(name string, slot catalog.MealSlot, calories float64, tags ...string) catalog.Item {
	return catalog.Item{
		Name:     name,
		MealType: string(slot),
		Calories: calories,
		Protein:  calories * 0.25 / 4,
		Carbs:    calories * 0.45 / 4,
		Fat:      calories * 0.30 / 9,
		Tags:     tags,
	}
}

// RandomMeals creates n meals per slot with calories between 200 and 900
func RandomMeals(faker *gofakeit.Faker, n int) []catalog.Item {
	items := make([]catalog.Item, 0, n*len(catalog.Slots))
	for _, slot := range catalog.Slots {
		for i := 0; i < n; i++ {
			name := fmt.Sprintf("%s %s %d", faker.AdjectiveDescriptive(), slot, i)
			items = append(items, Meal(name, slot, float64(faker.Number(200, 900))))
		}
	}
	return items
}

// Recipe builds a recipe detail row with raw nutrient text
func Recipe(name string, calories float64, protein, fibre, sugars string) catalog.RecipeDetail {
	r := catalog.RecipeDetail{
		Name:          name,
		Category:      "Main",
		Protein:       protein,
		Fibre:         fibre,
		SugarsPercent: sugars,
	}
	if calories != 0 {
		r.Calories = &calories
	}
	return r
}

// Exercise builds an exercise row
func Exercise(title, typ, bodyPart, level string, rating float64) catalog.Exercise {
	return catalog.Exercise{
		Title:     title,
		Type:      typ,
		BodyPart:  bodyPart,
		Level:     level,
		Rating:    rating,
		HasRating: rating > 0,
	}
}

// SampleCatalog returns a small catalog that covers every meal slot, recipe
// goal and exercise category
func SampleCatalog() *catalog.Catalog {
	meals := []catalog.Item{
		Meal("Oat Porridge", catalog.SlotBreakfast, 450, "american"),
		Meal("Veggie Omelette", catalog.SlotBreakfast, 520, "french"),
		Meal("Greek Yogurt Bowl", catalog.SlotBreakfast, 380, "greek"),
		Meal("Chicken Rice Bowl", catalog.SlotLunch, 700, "asian"),
		Meal("Lentil Soup", catalog.SlotLunch, 520, "indian"),
		Meal("Tuna Salad", catalog.SlotLunch, 600, "mediterranean"),
		Meal("Beef Stir Fry", catalog.SlotDinner, 820, "asian"),
		Meal("Chickpea Curry", catalog.SlotDinner, 760, "indian"),
		Meal("Salmon Pasta", catalog.SlotDinner, 880, "italian"),
	}
	foods := []catalog.Item{
		{Name: "Apple", Calories: 95, Protein: 0.5, Carbs: 25, Fat: 0.3},
		{Name: "Chicken Breast", Calories: 165, Protein: 31, Fat: 3.6},
		{Name: "Almond Milk", Calories: 40, Protein: 1, Carbs: 1.5, Fat: 2.5},
		{Name: "Tofu", Calories: 144, Protein: 17, Carbs: 3, Fat: 8},
	}
	recipes := []catalog.RecipeDetail{
		Recipe("Protein Pancakes", 400, "30g", "5g", "8%"),
		Recipe("Bean Chili", 500, "25g", "15g", "4%"),
		Recipe("Mass Gainer Shake", 900, "50g", "3g", "30%"),
		Recipe("Plain Rice", 200, "4g", "1g", "0%"),
		Recipe("Missing Calories", 0, "20g", "2g", "1%"),
	}
	exercises := []catalog.Exercise{
		Exercise("Treadmill Run", "Cardio", "Quadriceps", "Intermediate", 8.5),
		Exercise("Rowing", "Cardio", "Middle Back", "Beginner", 7.9),
		Exercise("Jump Squat", "Plyometrics", "Quadriceps", "Intermediate", 8.1),
		Exercise("Bench Press", "Strength", "Chest", "Intermediate", 9.0),
		Exercise("Push Up", "Strength", "Chest", "Beginner", 8.8),
		Exercise("Plank", "Strength", "Abdominals", "Beginner", 8.0),
		Exercise("Crunch", "Strength", "Abdominals", "Beginner", 7.0),
		Exercise("Squat", "Strength", "Quadriceps", "Intermediate", 9.2),
		Exercise("Lunge", "Strength", "Hamstrings", "Beginner", 7.5),
		Exercise("Deadlift", "Powerlifting", "Lower Back", "Expert", 9.5),
		Exercise("Hamstring Stretch", "Stretching", "Hamstrings", "Beginner", 6.5),
		Exercise("Child Pose", "Stretching", "Lower Back", "Beginner", 7.2),
		Exercise("Shoulder Stretch", "Stretching", "Shoulders", "Beginner", 0),
	}
	return catalog.New(meals, foods, recipes, exercises)
}

// RatingFactory creates exercise ratings
type RatingFactory struct {
	faker *gofakeit.Faker
}

// NewRatingFactory creates a new rating factory with seeded faker
func NewRatingFactory(seed int64) *RatingFactory {
	return &RatingFactory{faker: gofakeit.New(seed)}
}

// Rating creates a rating with an explicit value
func (f *RatingFactory) Rating(userID uuid.UUID, title string, value int) exercise.Rating {
	return exercise.Rating{UserID: userID, ExerciseTitle: title, Value: value, RatedAt: time.Now().UTC()}
}

// RandomRatings rates every title for each user with a random value
func (f *RatingFactory) RandomRatings(users []uuid.UUID, titles []string) []exercise.Rating {
	out := make([]exercise.Rating, 0, len(users)*len(titles))
	for _, u := range users {
		for _, t := range titles {
			out = append(out, f.Rating(u, t, f.faker.Number(exercise.MinRating, exercise.MaxRating)))
		}
	}
	return out
}
