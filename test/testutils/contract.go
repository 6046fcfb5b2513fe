package testutils

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/smartmeals/v2/internal/domain/mealplan"
	"github.com/smartmeals/v2/internal/domain/profile"
	"github.com/smartmeals/v2/internal/ports/outbound"
	"github.com/smartmeals/v2/pkg/errors"
)

// Stores bundles one backend's repositories
type Stores struct {
	Profiles  outbound.ProfileRepository
	MealPlans outbound.MealPlanRepository
	Ratings   outbound.RatingRepository
}

// RepositoryContractSuite runs the behaviour every storage backend must
// share. Embed it and set NewStores; it is called before each test.
type RepositoryContractSuite struct {
	suite.Suite
	NewStores func() Stores

	ctx    context.Context
	stores Stores
	now    time.Time
}

func (s *RepositoryContractSuite) SetupTest() {
	s.ctx = context.Background()
	s.stores = s.NewStores()
	// Backends store times at millisecond precision or coarser.
	s.now = time.Now().UTC().Truncate(time.Second)
}

func (s *RepositoryContractSuite) storedProfile() *profile.Profile {
	p := NewProfileBuilder().
		WithAllergies("peanut").
		WithCuisines("italian", "indian").
		BuildStored(s.now)
	require.NoError(s.T(), s.stores.Profiles.Create(s.ctx, p))
	return p
}

func (s *RepositoryContractSuite) plan(userID uuid.UUID, createdAt time.Time, days int) *mealplan.MealPlan {
	plan := &mealplan.MealPlan{
		ID:            uuid.New(),
		UserID:        userID,
		DailyCalories: 2600,
		Macros:        mealplan.Macros{Protein: 162.5, Carbs: 292.5, Fat: 86.7},
		CreatedAt:     createdAt,
	}
	for d := 1; d <= days; d++ {
		plan.Days = append(plan.Days, mealplan.Day{
			Number: d,
			Meals: []mealplan.Meal{{
				Number: 1,
				Name:   "Breakfast",
				Foods:  []mealplan.FoodPortion{{Name: "Oat Porridge", Calories: 450, Protein: 28, Carbs: 50, Fat: 15}},
			}},
			TotalCalories: 450,
		})
	}
	return plan
}

func (s *RepositoryContractSuite) TestProfileRepository() {
	s.Run("Create_ShouldRoundTrip", func() {
		// Arrange
		p := s.storedProfile()

		// Act
		found, err := s.stores.Profiles.FindByID(s.ctx, p.ID)

		// Assert
		require.NoError(s.T(), err)
		assert.Equal(s.T(), p.Name, found.Name)
		assert.Equal(s.T(), p.Weight, found.Weight)
		assert.Equal(s.T(), p.Goal, found.Goal)
		assert.Equal(s.T(), []string{"peanut"}, found.Allergies)
		assert.Equal(s.T(), []string{"italian", "indian"}, found.PreferredCuisines)
		assert.InDelta(s.T(), p.BMI, found.BMI, 0.001)
		assert.True(s.T(), p.CreatedAt.Equal(found.CreatedAt))
	})

	s.Run("UnknownID_ShouldReturnProfileNotFound", func() {
		// Act
		_, err := s.stores.Profiles.FindByID(s.ctx, uuid.New())

		// Assert
		assert.True(s.T(), errors.Is(err, errors.CodeProfileNotFound), "got %v", err)
	})

	s.Run("Update_ShouldKeepProgressHistory", func() {
		// Arrange
		p := s.storedProfile()
		entry, err := p.RecordProgress(69, s.now.Add(time.Hour))
		require.NoError(s.T(), err)
		require.NoError(s.T(), s.stores.Profiles.RecordProgress(s.ctx, p, entry))

		// Act
		p.Goal = profile.GoalWeightLoss
		p.Allergies = nil
		require.NoError(s.T(), s.stores.Profiles.Update(s.ctx, p))
		found, err := s.stores.Profiles.FindByID(s.ctx, p.ID)

		// Assert
		require.NoError(s.T(), err)
		assert.Equal(s.T(), profile.GoalWeightLoss, found.Goal)
		assert.Empty(s.T(), found.Allergies)
		require.Len(s.T(), found.ProgressHistory, 1)
		assert.Equal(s.T(), 69.0, found.ProgressHistory[0].Weight)
	})

	s.Run("UpdateUnknown_ShouldReturnProfileNotFound", func() {
		// Arrange
		p := NewProfileBuilder().BuildStored(s.now)

		// Act
		err := s.stores.Profiles.Update(s.ctx, p)

		// Assert
		assert.True(s.T(), errors.Is(err, errors.CodeProfileNotFound), "got %v", err)
	})

	s.Run("RecordProgress_ShouldKeepChronologicalOrder", func() {
		// Arrange
		p := s.storedProfile()

		// Act
		for i, w := range []float64{70, 69.4, 68.9} {
			entry, err := p.RecordProgress(w, s.now.Add(time.Duration(i+1)*24*time.Hour))
			require.NoError(s.T(), err)
			require.NoError(s.T(), s.stores.Profiles.RecordProgress(s.ctx, p, entry))
		}
		found, err := s.stores.Profiles.FindByID(s.ctx, p.ID)

		// Assert
		require.NoError(s.T(), err)
		require.Len(s.T(), found.ProgressHistory, 3)
		assert.Equal(s.T(), 70.0, found.ProgressHistory[0].Weight)
		assert.Equal(s.T(), 68.9, found.ProgressHistory[2].Weight)
		assert.Equal(s.T(), 68.9, found.Weight)
	})
}

func (s *RepositoryContractSuite) TestMealPlanRepository() {
	s.Run("FindLatest_ShouldReturnNewestPlan", func() {
		// Arrange
		userID := uuid.New()
		older := s.plan(userID, s.now.Add(-time.Hour), 2)
		newer := s.plan(userID, s.now, 3)
		require.NoError(s.T(), s.stores.MealPlans.Save(s.ctx, older))
		require.NoError(s.T(), s.stores.MealPlans.Save(s.ctx, newer))
		require.NoError(s.T(), s.stores.MealPlans.Save(s.ctx, s.plan(uuid.New(), s.now.Add(time.Hour), 1)))

		// Act
		latest, err := s.stores.MealPlans.FindLatestByUser(s.ctx, userID)

		// Assert
		require.NoError(s.T(), err)
		assert.Equal(s.T(), newer.ID, latest.ID)
		assert.Equal(s.T(), userID, latest.UserID)
		require.Len(s.T(), latest.Days, 3)
		assert.Equal(s.T(), "Oat Porridge", latest.Days[0].Meals[0].Foods[0].Name)
		assert.Equal(s.T(), newer.Macros, latest.Macros)
	})

	s.Run("ListByUser_ShouldLimitNewestFirst", func() {
		// Arrange
		userID := uuid.New()
		for i := 0; i < 3; i++ {
			require.NoError(s.T(), s.stores.MealPlans.Save(s.ctx, s.plan(userID, s.now.Add(time.Duration(i)*time.Minute), 1)))
		}

		// Act
		plans, err := s.stores.MealPlans.ListByUser(s.ctx, userID, 2)

		// Assert
		require.NoError(s.T(), err)
		require.Len(s.T(), plans, 2)
		assert.True(s.T(), plans[0].CreatedAt.After(plans[1].CreatedAt))
	})

	s.Run("NoPlans_ShouldReturnMealPlanNotFound", func() {
		// Act
		_, err := s.stores.MealPlans.FindLatestByUser(s.ctx, uuid.New())

		// Assert
		assert.True(s.T(), errors.Is(err, errors.CodeMealPlanNotFound), "got %v", err)
	})

	s.Run("SetDayLogged_ShouldPersistFlag", func() {
		// Arrange
		plan := s.plan(uuid.New(), s.now, 3)
		require.NoError(s.T(), s.stores.MealPlans.Save(s.ctx, plan))

		// Act
		require.NoError(s.T(), s.stores.MealPlans.SetDayLogged(s.ctx, plan.ID, 2, true))
		latest, err := s.stores.MealPlans.FindLatestByUser(s.ctx, plan.UserID)

		// Assert
		require.NoError(s.T(), err)
		assert.False(s.T(), latest.Days[0].Logged)
		assert.True(s.T(), latest.Days[1].Logged)
	})

	s.Run("SetDayLoggedOutOfRange_ShouldFail", func() {
		// Arrange
		plan := s.plan(uuid.New(), s.now, 2)
		require.NoError(s.T(), s.stores.MealPlans.Save(s.ctx, plan))

		// Act
		err := s.stores.MealPlans.SetDayLogged(s.ctx, plan.ID, 3, true)

		// Assert
		assert.True(s.T(), errors.Is(err, errors.CodeDayOutOfRange), "got %v", err)
	})

	s.Run("SetDayLoggedUnknownPlan_ShouldReturnMealPlanNotFound", func() {
		// Act
		err := s.stores.MealPlans.SetDayLogged(s.ctx, uuid.New(), 1, true)

		// Assert
		assert.True(s.T(), errors.Is(err, errors.CodeMealPlanNotFound), "got %v", err)
	})
}

func (s *RepositoryContractSuite) TestRatingRepository() {
	factory := NewRatingFactory(11)

	s.Run("Upsert_ShouldReplaceExistingRating", func() {
		// Arrange
		userID := uuid.New()
		first := factory.Rating(userID, "Squat", 2)
		first.RatedAt = s.now
		second := factory.Rating(userID, "Squat", 5)
		second.RatedAt = s.now.Add(time.Minute)

		// Act
		require.NoError(s.T(), s.stores.Ratings.Upsert(s.ctx, first))
		require.NoError(s.T(), s.stores.Ratings.Upsert(s.ctx, second))
		ratings, err := s.stores.Ratings.ListByUser(s.ctx, userID)

		// Assert
		require.NoError(s.T(), err)
		require.Len(s.T(), ratings, 1)
		assert.Equal(s.T(), 5, ratings[0].Value)
	})

	s.Run("ListByUser_ShouldFilterOtherUsers", func() {
		// Arrange
		alice, bob := uuid.New(), uuid.New()
		for _, r := range factory.RandomRatings([]uuid.UUID{alice, bob}, []string{"Plank", "Rowing"}) {
			r.RatedAt = s.now
			require.NoError(s.T(), s.stores.Ratings.Upsert(s.ctx, r))
		}

		// Act
		ratings, err := s.stores.Ratings.ListByUser(s.ctx, alice)
		require.NoError(s.T(), err)
		all, err := s.stores.Ratings.ListAll(s.ctx)

		// Assert
		require.NoError(s.T(), err)
		assert.Len(s.T(), ratings, 2)
		for _, r := range ratings {
			assert.Equal(s.T(), alice, r.UserID)
		}
		assert.GreaterOrEqual(s.T(), len(all), 4)
	})
}
