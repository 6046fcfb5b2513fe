package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/smartmeals/v2/internal/domain/profile"
)

// CatalogTestSuite provides a test suite for filtering, ranking and scoring
type CatalogTestSuite struct {
	suite.Suite
}

func names(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func (suite *CatalogTestSuite) TestFilter() {
	items := []Item{
		{Name: "Peanut Noodles", Tags: []string{"Thai"}},
		{Name: "Pad Thai", Tags: []string{"thai"}, Ingredients: []string{"Rice noodles", "Crushed peanuts"}},
		{Name: "Margherita Pizza", Tags: []string{"Italian"}},
		{Name: "Eggplant Parmesan", Tags: []string{"italian"}},
	}

	suite.Run("Allergy_ShouldMatchIngredientSubstringAndNameWord", func() {
		got := Filter(items, []string{"peanut"}, nil)
		assert.Equal(suite.T(), []string{"Margherita Pizza", "Eggplant Parmesan"}, names(got))
	})

	suite.Run("Allergy_ShouldNotMatchPartOfNameWord", func() {
		got := Filter(items, []string{"egg"}, nil)
		assert.Contains(suite.T(), names(got), "Eggplant Parmesan")
	})

	suite.Run("Allergy_ShouldMatchHyphenatedNameWord", func() {
		got := Filter([]Item{{Name: "Peanut-Butter Toast"}, {Name: "Butter Toast"}}, []string{"peanut"}, nil)
		assert.Equal(suite.T(), []string{"Butter Toast"}, names(got))
	})

	suite.Run("Cuisine_ShouldKeepTaggedItems", func() {
		got := Filter(items, nil, []string{"Italian"})
		assert.Equal(suite.T(), []string{"Margherita Pizza", "Eggplant Parmesan"}, names(got))
	})

	suite.Run("AllergyRemovesAll_ShouldSkipCuisinePass", func() {
		got := Filter(items[:1], []string{"peanut"}, []string{"thai"})
		assert.Empty(suite.T(), got)
	})

	suite.Run("NoCuisineMatch_ShouldReturnEmpty", func() {
		got := Filter(items, nil, []string{"mexican"})
		assert.Empty(suite.T(), got)
	})

	suite.Run("FilterTwice_ShouldMatchFilterOnce", func() {
		cases := []struct {
			allergies, cuisines []string
		}{
			{[]string{"peanut"}, nil},
			{nil, []string{"italian"}},
			{[]string{"egg"}, []string{"thai", "italian"}},
			{[]string{"peanut"}, []string{"mexican"}},
		}
		for _, tc := range cases {
			once := Filter(items, tc.allergies, tc.cuisines)
			twice := Filter(once, tc.allergies, tc.cuisines)
			assert.Equal(suite.T(), names(once), names(twice))
		}
	})

	suite.Run("Input_ShouldNotBeModified", func() {
		before := names(items)
		_ = Filter(items, []string{"pizza"}, []string{"thai"})
		assert.Equal(suite.T(), before, names(items))
	})
}

func (suite *CatalogTestSuite) TestFilterByDiet() {
	foods := []Item{{Name: "Chicken Breast"}, {Name: "Cheddar Cheese"}, {Name: "Tofu"}, {Name: "Salmon Fillet"}}

	suite.Run("Vegetarian_ShouldDropMeat", func() {
		got := FilterByDiet(foods, profile.DietVegetarian)
		assert.Equal(suite.T(), []string{"Cheddar Cheese", "Tofu"}, names(got))
	})

	suite.Run("Vegan_ShouldDropAnimalProducts", func() {
		got := FilterByDiet(foods, profile.DietVegan)
		assert.Equal(suite.T(), []string{"Tofu"}, names(got))
	})

	suite.Run("Both_ShouldKeepEverything", func() {
		assert.Len(suite.T(), FilterByDiet(foods, profile.DietBoth), 4)
	})
}

func (suite *CatalogTestSuite) TestRankBySimilarity() {
	items := []Item{
		{Name: "Light", Calories: 200, Fat: 5, Carbs: 30, Protein: 10},
		{Name: "Medium", Calories: 500, Fat: 15, Carbs: 60, Protein: 30},
		{Name: "Heavy", Calories: 900, Fat: 40, Carbs: 90, Protein: 50},
	}

	suite.Run("Target_ShouldRankClosestFirst", func() {
		// Act
		ranked := RankBySimilarity(items, Vector{900, 40, 90, 50}, 2)

		// Assert
		require.Len(suite.T(), ranked, 2)
		assert.Equal(suite.T(), "Heavy", ranked[0].Item.Name)
		assert.InDelta(suite.T(), 1.0, ranked[0].Score, 1e-9)
		assert.GreaterOrEqual(suite.T(), ranked[0].Score, ranked[1].Score)
	})

	suite.Run("FullResult_ShouldBeNonIncreasing", func() {
		// Arrange
		pool := append([]Item{
			{Name: "Snack", Calories: 150, Fat: 8, Carbs: 15, Protein: 4},
			{Name: "Shake", Calories: 420, Fat: 9, Carbs: 40, Protein: 45},
			{Name: "Pasta", Calories: 650, Fat: 18, Carbs: 95, Protein: 22},
		}, items...)

		// Act
		ranked := RankBySimilarity(pool, Vector{450, 12, 50, 35}, len(pool))

		// Assert
		require.Len(suite.T(), ranked, len(pool))
		for i := 1; i < len(ranked); i++ {
			assert.GreaterOrEqual(suite.T(), ranked[i-1].Score, ranked[i].Score, "rank %d", i)
		}
	})

	suite.Run("TopKLargerThanItems_ShouldReturnAll", func() {
		assert.Len(suite.T(), RankBySimilarity(items, Vector{500, 15, 60, 30}, 10), 3)
	})

	suite.Run("EmptyItems_ShouldReturnNil", func() {
		assert.Nil(suite.T(), RankBySimilarity(nil, Vector{}, 3))
	})

	suite.Run("ConstantFeature_ShouldNotDivideByZero", func() {
		same := []Item{{Name: "A", Calories: 100}, {Name: "B", Calories: 100}}
		ranked := RankBySimilarity(same, Vector{100, 0, 0, 0}, 2)
		require.Len(suite.T(), ranked, 2)
		assert.Equal(suite.T(), "A", ranked[0].Item.Name)
		assert.Equal(suite.T(), 0.0, ranked[0].Score)
	})
}

func (suite *CatalogTestSuite) TestScoreRecipes() {
	cal := func(v float64) *float64 { return &v }
	recipes := []RecipeDetail{
		{Name: "Lean", Calories: cal(400), Protein: "40g", Fibre: "10g", SugarsPercent: "2%"},
		{Name: "Sweet", Calories: cal(400), Protein: "5g", Fibre: "1g", SugarsPercent: "30%"},
		{Name: "Dense", Calories: cal(1000), Protein: "30g", Fibre: "2g"},
		{Name: "Unknown", Protein: "50g"},
	}

	suite.Run("ParseNumeric_ShouldStripUnits", func() {
		assert.Equal(suite.T(), 12.5, ParseNumeric("12.5g"))
		assert.Equal(suite.T(), 8.0, ParseNumeric(" 8 %"))
		assert.Equal(suite.T(), 0.0, ParseNumeric("n/a"))
	})

	suite.Run("WeightLoss_ShouldPreferProteinAndFibre", func() {
		got := ScoreRecipes(profile.GoalWeightLoss, recipes, 5)
		require.NotEmpty(suite.T(), got)
		assert.Equal(suite.T(), "Lean", got[0].Recipe.Name)
		for _, s := range got {
			assert.Positive(suite.T(), s.Score)
			assert.NotEqual(suite.T(), "Unknown", s.Recipe.Name)
		}
	})

	suite.Run("NonPositiveCalories_ShouldBeExcluded", func() {
		// Arrange
		withZero := append([]RecipeDetail{
			{Name: "Zero", Calories: cal(0), Protein: "60g", Fibre: "20g"},
			{Name: "Negative", Calories: cal(-50), Protein: "60g"},
		}, recipes...)

		// Act
		got := ScoreRecipes(profile.GoalWeightLoss, withZero, len(withZero))

		// Assert
		require.Len(suite.T(), got, 2)
		assert.Equal(suite.T(), "Lean", got[0].Recipe.Name)
		assert.Equal(suite.T(), "Dense", got[1].Recipe.Name)
	})

	suite.Run("WeightGain_ShouldPreferCalories", func() {
		got := ScoreRecipes(profile.GoalWeightGain, recipes, 1)
		require.Len(suite.T(), got, 1)
		assert.Equal(suite.T(), "Dense", got[0].Recipe.Name)
	})

	suite.Run("ZeroLimit_ShouldReturnNothing", func() {
		assert.Empty(suite.T(), ScoreRecipes(profile.GoalMuscleGain, recipes, 0))
	})
}

func (suite *CatalogTestSuite) TestCatalogCopies() {
	c := New([]Item{{Name: "A", MealType: "Breakfast"}}, nil, nil, nil)
	meals := c.Meals()
	meals[0].Name = "changed"

	assert.Equal(suite.T(), "A", c.Meals()[0].Name)
	assert.Len(suite.T(), ItemsInSlot(c.Meals(), SlotBreakfast), 1)
	assert.Equal(suite.T(), Stats{Meals: 1}, c.Stats())
}

func TestCatalogTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogTestSuite))
}
