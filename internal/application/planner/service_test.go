package planner_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/smartmeals/v2/internal/application/planner"
	"github.com/smartmeals/v2/internal/domain/catalog"
	"github.com/smartmeals/v2/internal/domain/exercise"
	"github.com/smartmeals/v2/internal/domain/mealplan"
	"github.com/smartmeals/v2/internal/domain/profile"
	"github.com/smartmeals/v2/internal/infrastructure/persistence/memory"
	"github.com/smartmeals/v2/internal/ports/inbound"
	"github.com/smartmeals/v2/internal/ports/outbound"
	"github.com/smartmeals/v2/pkg/errors"
	"github.com/smartmeals/v2/test/testutils"
)

// PlannerServiceTestSuite provides a test suite for the planner service
type PlannerServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	profiles  *memory.ProfileRepository
	plans     *memory.MealPlanRepository
	ratings   *memory.RatingRepository
	publisher *testutils.RecordingPublisher
	service   *planner.PlannerService
	user      *profile.Profile
}

func (suite *PlannerServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.profiles = memory.NewProfileRepository()
	suite.plans = memory.NewMealPlanRepository()
	suite.ratings = memory.NewRatingRepository()
	suite.publisher = &testutils.RecordingPublisher{}
	suite.service = suite.newService(testutils.SampleCatalog(), suite.plans, nil, zap.NewNop())

	suite.user = testutils.NewProfileBuilder().BuildStored(time.Now())
	require.NoError(suite.T(), suite.profiles.Create(suite.ctx, suite.user))
}

func (suite *PlannerServiceTestSuite) newService(cat *catalog.Catalog, plans outbound.MealPlanRepository, cache outbound.CacheRepository, logger *zap.Logger) *planner.PlannerService {
	return planner.NewPlannerService(
		cat,
		suite.profiles,
		plans,
		suite.ratings,
		cache,
		suite.publisher,
		testutils.NewPermissiveMetrics(),
		mealplan.NewAssembler(mealplan.DefaultConfig()),
		exercise.NewRecommender(exercise.DefaultConfig()),
		planner.Options{DefaultDays: 7, MaxDays: 14},
		logger,
	)
}

func (suite *PlannerServiceTestSuite) TestTargets() {
	suite.Run("WeightLoss_ShouldSubtractFiveHundred", func() {
		// Arrange
		in := testutils.NewProfileBuilder().WithGoal(profile.GoalWeightLoss).Input()

		// Act
		targets, err := suite.service.TargetsForProfile(suite.ctx, in)

		// Assert
		require.NoError(suite.T(), err)
		assert.InDelta(suite.T(), 2100, targets.DailyCalories, 0.001)
		assert.InDelta(suite.T(), 184, targets.Protein, 0.5)
		assert.InDelta(suite.T(), 184, targets.Carbs, 0.5)
		assert.InDelta(suite.T(), 70, targets.Fat, 0.5)
		assert.InDelta(suite.T(), 1673.75, targets.BMR, 0.001)
		assert.Equal(suite.T(), profile.StatusHealthy, targets.HealthStatus)
	})

	suite.Run("StoredProfile_ShouldMatchInlineProfile", func() {
		// Act
		stored, err := suite.service.ComputeTargets(suite.ctx, suite.user.ID)
		require.NoError(suite.T(), err)
		inline, err := suite.service.TargetsForProfile(suite.ctx, testutils.NewProfileBuilder().Input())

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), inline.DailyCalories, stored.DailyCalories)
		assert.Equal(suite.T(), inline.CalorieGoal, stored.CalorieGoal)
	})

	suite.Run("UnknownUser_ShouldReturnProfileNotFound", func() {
		// Act
		_, err := suite.service.ComputeTargets(suite.ctx, uuid.New())

		// Assert
		assert.True(suite.T(), errors.Is(err, errors.CodeProfileNotFound))
	})
}

func (suite *PlannerServiceTestSuite) TestGenerateMealPlan() {
	suite.Run("ValidProfile_ShouldStoreAndPublish", func() {
		// Act
		plan, err := suite.service.GenerateMealPlan(suite.ctx, inbound.GeneratePlanCommand{UserID: suite.user.ID, Days: 3})

		// Assert
		require.NoError(suite.T(), err)
		assert.Len(suite.T(), plan.Days, 3)
		assert.Equal(suite.T(), suite.user.ID, plan.UserID)
		assert.Contains(suite.T(), suite.publisher.Names(), "mealplan.generated")

		latest, err := suite.service.LatestMealPlan(suite.ctx, suite.user.ID)
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), plan.ID, latest.ID)
	})

	suite.Run("ZeroDays_ShouldUseDefault", func() {
		// Act
		plan, err := suite.service.GenerateMealPlan(suite.ctx, inbound.GeneratePlanCommand{UserID: suite.user.ID})

		// Assert
		require.NoError(suite.T(), err)
		assert.Len(suite.T(), plan.Days, 7)
	})

	suite.Run("TooManyDays_ShouldReturnValidationError", func() {
		// Act
		_, err := suite.service.GenerateMealPlan(suite.ctx, inbound.GeneratePlanCommand{UserID: suite.user.ID, Days: 15})

		// Assert
		assert.True(suite.T(), errors.Is(err, errors.CodeValidationFailed))
	})

	suite.Run("SaveFailure_ShouldStillReturnPlan", func() {
		// Arrange
		core, logs := observer.New(zap.ErrorLevel)
		plans := &testutils.MockMealPlanRepository{}
		plans.On("Save", mock.Anything, mock.Anything).Return(assert.AnError)
		service := suite.newService(testutils.SampleCatalog(), plans, nil, zap.New(core))

		// Act
		plan, err := service.GenerateMealPlan(suite.ctx, inbound.GeneratePlanCommand{UserID: suite.user.ID, Days: 2})

		// Assert
		require.NoError(suite.T(), err)
		assert.Len(suite.T(), plan.Days, 2)
		assert.Equal(suite.T(), 1, logs.FilterMessage("Failed to save meal plan").Len())
		plans.AssertExpectations(suite.T())
	})
}

func (suite *PlannerServiceTestSuite) TestPlanFailures() {
	tests := []struct {
		name    string
		catalog *catalog.Catalog
		input   inbound.ProfileInput
		code    errors.ErrorCode
	}{
		{
			name:    "EmptyCatalog_ShouldReturnCatalogUnavailable",
			catalog: catalog.New(nil, nil, nil, nil),
			input:   testutils.NewProfileBuilder().Input(),
			code:    errors.CodeCatalogUnavailable,
		},
		{
			name:    "NoCuisineMatch_ShouldReturnNoMatchingRecipes",
			catalog: testutils.SampleCatalog(),
			input:   testutils.NewProfileBuilder().WithCuisines("martian").Input(),
			code:    errors.CodeNoMatchingRecipes,
		},
		{
			name:    "MissingSlot_ShouldReturnEmptyMealSlot",
			catalog: testutils.SampleCatalog(),
			input:   testutils.NewProfileBuilder().WithCuisines("italian").Input(),
			code:    errors.CodeEmptyMealSlot,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			// Arrange
			service := suite.newService(tt.catalog, suite.plans, nil, zap.NewNop())

			// Act
			plan, err := service.PlanForProfile(suite.ctx, tt.input, 3)

			// Assert
			assert.Nil(suite.T(), plan)
			assert.True(suite.T(), errors.Is(err, tt.code), "got %v", err)
		})
	}
}

func (suite *PlannerServiceTestSuite) TestPlanForProfile() {
	suite.Run("InlineProfile_ShouldNotStore", func() {
		// Act
		plan, err := suite.service.PlanForProfile(suite.ctx, testutils.NewProfileBuilder().Input(), 2)

		// Assert
		require.NoError(suite.T(), err)
		assert.Len(suite.T(), plan.Days, 2)
		assert.Empty(suite.T(), plan.Events())
		assert.Empty(suite.T(), suite.publisher.Names())
	})
}

func (suite *PlannerServiceTestSuite) TestSetDayLogged() {
	suite.Run("ValidDay_ShouldPersistFlag", func() {
		// Arrange
		_, err := suite.service.GenerateMealPlan(suite.ctx, inbound.GeneratePlanCommand{UserID: suite.user.ID, Days: 3})
		require.NoError(suite.T(), err)

		// Act
		plan, err := suite.service.SetDayLogged(suite.ctx, inbound.SetDayLoggedCommand{UserID: suite.user.ID, Day: 2, Logged: true})

		// Assert
		require.NoError(suite.T(), err)
		assert.True(suite.T(), plan.Days[1].Logged)
		latest, err := suite.service.LatestMealPlan(suite.ctx, suite.user.ID)
		require.NoError(suite.T(), err)
		assert.True(suite.T(), latest.Days[1].Logged)
		assert.Contains(suite.T(), suite.publisher.Names(), "mealplan.day.logged")
	})

	suite.Run("DayOutOfRange_ShouldReturnError", func() {
		// Act
		_, err := suite.service.SetDayLogged(suite.ctx, inbound.SetDayLoggedCommand{UserID: suite.user.ID, Day: 9, Logged: true})

		// Assert
		assert.True(suite.T(), errors.Is(err, errors.CodeDayOutOfRange))
	})

	suite.Run("NoPlan_ShouldReturnMealPlanNotFound", func() {
		// Arrange
		other := testutils.NewProfileBuilder().BuildStored(time.Now())
		require.NoError(suite.T(), suite.profiles.Create(suite.ctx, other))

		// Act
		_, err := suite.service.SetDayLogged(suite.ctx, inbound.SetDayLoggedCommand{UserID: other.ID, Day: 1, Logged: true})

		// Assert
		assert.True(suite.T(), errors.Is(err, errors.CodeMealPlanNotFound))
	})
}

func (suite *PlannerServiceTestSuite) TestLatestMealPlanCache() {
	suite.Run("CacheMiss_ShouldLoadAndStore", func() {
		// Arrange
		cache := &testutils.MockCacheRepository{}
		cache.On("Delete", mock.Anything, mock.Anything).Return(nil)
		cache.On("Get", mock.Anything, mock.Anything).Return(nil, outbound.ErrCacheMiss)
		cache.On("Set", mock.Anything, "mealplan:latest:"+suite.user.ID.String(), mock.Anything, 10*time.Minute).Return(nil)
		service := suite.newService(testutils.SampleCatalog(), suite.plans, cache, zap.NewNop())
		generated, err := service.GenerateMealPlan(suite.ctx, inbound.GeneratePlanCommand{UserID: suite.user.ID, Days: 1})
		require.NoError(suite.T(), err)

		// Act
		latest, err := service.LatestMealPlan(suite.ctx, suite.user.ID)

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), generated.ID, latest.ID)
		cache.AssertExpectations(suite.T())
	})
}

func (suite *PlannerServiceTestSuite) TestShoppingListAndExport() {
	suite.Run("LatestPlan_ShouldGroupFoodsAndRenderOwner", func() {
		// Arrange
		_, err := suite.service.GenerateMealPlan(suite.ctx, inbound.GeneratePlanCommand{UserID: suite.user.ID, Days: 2})
		require.NoError(suite.T(), err)

		// Act
		groups, err := suite.service.ShoppingList(suite.ctx, suite.user.ID)
		require.NoError(suite.T(), err)
		text, err := suite.service.ExportMealPlan(suite.ctx, suite.user.ID)

		// Assert
		require.NoError(suite.T(), err)
		assert.NotEmpty(suite.T(), groups)
		assert.Contains(suite.T(), text, suite.user.Name)
	})
}

func (suite *PlannerServiceTestSuite) TestRecommendRecipes() {
	suite.Run("DefaultLimit_ShouldReturnRankedRecipes", func() {
		// Act
		recipes, err := suite.service.RecommendRecipes(suite.ctx, suite.user.ID, 0)

		// Assert
		require.NoError(suite.T(), err)
		require.NotEmpty(suite.T(), recipes)
		for i := 1; i < len(recipes); i++ {
			assert.GreaterOrEqual(suite.T(), recipes[i-1].Score, recipes[i].Score)
		}
	})

	suite.Run("EmptyCatalog_ShouldReturnCatalogUnavailable", func() {
		// Arrange
		service := suite.newService(catalog.New(nil, nil, nil, nil), suite.plans, nil, zap.NewNop())

		// Act
		_, err := service.RecommendRecipes(suite.ctx, suite.user.ID, 3)

		// Assert
		assert.True(suite.T(), errors.Is(err, errors.CodeCatalogUnavailable))
	})
}

func (suite *PlannerServiceTestSuite) TestRecommendExercises() {
	suite.Run("NoRatings_ShouldUseCatalogRatings", func() {
		// Act
		rec, err := suite.service.RecommendExercises(suite.ctx, suite.user.ID, 6)

		// Assert
		require.NoError(suite.T(), err)
		assert.False(suite.T(), rec.UsedHistory)
		assert.NotEmpty(suite.T(), rec.Tier)
		assert.NotEmpty(suite.T(), rec.Categories)
	})

	suite.Run("NeighbourRatings_ShouldUseHistory", func() {
		// Arrange
		factory := testutils.NewRatingFactory(7)
		titles := []string{"Treadmill Run", "Rowing", "Bench Press", "Squat", "Child Pose"}
		for _, r := range factory.RandomRatings([]uuid.UUID{uuid.New(), uuid.New()}, titles) {
			require.NoError(suite.T(), suite.ratings.Upsert(suite.ctx, r))
		}
		require.NoError(suite.T(), suite.service.RecordRating(suite.ctx, inbound.RecordRatingCommand{
			UserID: suite.user.ID, ExerciseTitle: "Squat", Rating: 5,
		}))

		// Act
		rec, err := suite.service.RecommendExercises(suite.ctx, suite.user.ID, 6)

		// Assert
		require.NoError(suite.T(), err)
		assert.True(suite.T(), rec.UsedHistory)
	})
}

func (suite *PlannerServiceTestSuite) TestRecordRating() {
	suite.Run("SameExerciseTwice_ShouldKeepLatest", func() {
		// Act
		for _, v := range []int{2, 4} {
			require.NoError(suite.T(), suite.service.RecordRating(suite.ctx, inbound.RecordRatingCommand{
				UserID: suite.user.ID, ExerciseTitle: "Plank", Rating: v,
			}))
		}

		// Assert
		all, err := suite.ratings.ListAll(suite.ctx)
		require.NoError(suite.T(), err)
		require.Len(suite.T(), all, 1)
		assert.Equal(suite.T(), 4, all[0].Value)
	})

	suite.Run("OutOfRange_ShouldReturnInvalidRating", func() {
		// Act
		err := suite.service.RecordRating(suite.ctx, inbound.RecordRatingCommand{
			UserID: suite.user.ID, ExerciseTitle: "Plank", Rating: 6,
		})

		// Assert
		assert.True(suite.T(), errors.Is(err, errors.CodeInvalidRating))
	})

	suite.Run("UnknownUser_ShouldReturnProfileNotFound", func() {
		// Act
		err := suite.service.RecordRating(suite.ctx, inbound.RecordRatingCommand{
			UserID: uuid.New(), ExerciseTitle: "Plank", Rating: 3,
		})

		// Assert
		assert.True(suite.T(), errors.Is(err, errors.CodeProfileNotFound))
	})
}

func (suite *PlannerServiceTestSuite) TestSearchFoods() {
	suite.Run("Query_ShouldMatchCaseInsensitively", func() {
		// Act
		foods, err := suite.service.SearchFoods(suite.ctx, inbound.FoodSearchQuery{Query: "CHICKEN"})

		// Assert
		require.NoError(suite.T(), err)
		require.Len(suite.T(), foods, 1)
		assert.Equal(suite.T(), "Chicken Breast", foods[0].Name)
	})

	suite.Run("VeganDiet_ShouldDropAnimalProducts", func() {
		// Act
		foods, err := suite.service.SearchFoods(suite.ctx, inbound.FoodSearchQuery{Diet: "vegan"})

		// Assert
		require.NoError(suite.T(), err)
		names := make([]string, len(foods))
		for i, f := range foods {
			names[i] = f.Name
		}
		assert.ElementsMatch(suite.T(), []string{"Apple", "Tofu"}, names)
	})

	suite.Run("Limit_ShouldTruncate", func() {
		// Act
		foods, err := suite.service.SearchFoods(suite.ctx, inbound.FoodSearchQuery{Limit: 2})

		// Assert
		require.NoError(suite.T(), err)
		assert.Len(suite.T(), foods, 2)
	})
}

func TestPlannerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PlannerServiceTestSuite))
}
