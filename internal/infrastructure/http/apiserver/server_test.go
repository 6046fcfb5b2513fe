package apiserver_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/smartmeals/v2/internal/domain/mealplan"
	"github.com/smartmeals/v2/internal/infrastructure/config"
	"github.com/smartmeals/v2/internal/infrastructure/http/apiserver"
	"github.com/smartmeals/v2/internal/ports/inbound"
	"github.com/smartmeals/v2/pkg/errors"
	"github.com/smartmeals/v2/pkg/healthcheck"
	"github.com/smartmeals/v2/test/testutils"
)

type envelope struct {
	Success bool                  `json:"success"`
	Data    json.RawMessage       `json:"data"`
	Error   *errors.ErrorResponse `json:"error"`
	Message string                `json:"message"`
}

// APIServerTestSuite exercises routing, decoding and error mapping
type APIServerTestSuite struct {
	suite.Suite
	planner  *testutils.MockPlannerService
	profiles *testutils.MockProfileService
	handler  http.Handler
}

func (suite *APIServerTestSuite) SetupTest() {
	suite.planner = &testutils.MockPlannerService{}
	suite.profiles = &testutils.MockProfileService{}

	cfg := &config.Config{
		App:        config.AppConfig{Name: "SmartMeals"},
		Server:     config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		Monitoring: config.MonitoringConfig{HealthCheckPath: "/health"},
	}
	health := healthcheck.New("test", zap.NewNop())
	server := apiserver.NewAPIServer(cfg, zap.NewNop(), suite.planner, suite.profiles, nil, health, nil)
	suite.handler = server.Handler()
}

func (suite *APIServerTestSuite) do(method, path, body string) (*httptest.ResponseRecorder, envelope) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	suite.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func (suite *APIServerTestSuite) TestPreviewTargets() {
	suite.Run("ValidProfile_ShouldReturnTargets", func() {
		// Arrange
		suite.planner.On("TargetsForProfile", mock.Anything, mock.MatchedBy(func(in inbound.ProfileInput) bool {
			return in.Weight == 70 && in.Goal == "weight loss"
		})).Return(&inbound.TargetsDTO{DailyCalories: 2100, Protein: 183.75}, nil).Once()

		// Act
		rec, env := suite.do(http.MethodPost, "/api/v1/targets/preview",
			`{"weight":70,"height":175,"age":25,"sex":"male","goal":"weight loss"}`)

		// Assert
		assert.Equal(suite.T(), http.StatusOK, rec.Code)
		assert.True(suite.T(), env.Success)
		var targets inbound.TargetsDTO
		require.NoError(suite.T(), json.Unmarshal(env.Data, &targets))
		assert.Equal(suite.T(), 2100.0, targets.DailyCalories)
	})

	suite.Run("MissingMetrics_ShouldReturn400", func() {
		// Act
		rec, env := suite.do(http.MethodPost, "/api/v1/targets/preview", `{"name":"no metrics"}`)

		// Assert
		assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
		require.NotNil(suite.T(), env.Error)
		assert.Equal(suite.T(), errors.CodeValidationFailed, env.Error.Code)
	})

	suite.Run("UnknownField_ShouldReturn400", func() {
		// Act
		rec, env := suite.do(http.MethodPost, "/api/v1/targets/preview", `{"weight":70,"colour":"red"}`)

		// Assert
		assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
		assert.Equal(suite.T(), errors.CodeBadRequest, env.Error.Code)
	})

	suite.Run("WrongContentType_ShouldReturn415", func() {
		// Arrange
		req := httptest.NewRequest(http.MethodPost, "/api/v1/targets/preview", strings.NewReader("weight=70"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()

		// Act
		suite.handler.ServeHTTP(rec, req)

		// Assert
		assert.Equal(suite.T(), http.StatusUnsupportedMediaType, rec.Code)
	})
}

func (suite *APIServerTestSuite) TestGenerateMealPlan() {
	id := uuid.New()

	suite.Run("EmptyBody_ShouldUseDefaultDays", func() {
		// Arrange
		plan := &mealplan.MealPlan{ID: uuid.New(), UserID: id, DailyCalories: 2600}
		suite.planner.On("GenerateMealPlan", mock.Anything, inbound.GeneratePlanCommand{UserID: id}).Return(plan, nil).Once()

		// Act
		rec, env := suite.do(http.MethodPost, "/api/v1/profiles/"+id.String()+"/meal-plans", "")

		// Assert
		assert.Equal(suite.T(), http.StatusCreated, rec.Code)
		assert.Equal(suite.T(), "Meal plan generated", env.Message)
	})

	suite.Run("DaysAboveLimit_ShouldReturn400", func() {
		// Act
		rec, env := suite.do(http.MethodPost, "/api/v1/profiles/"+id.String()+"/meal-plans", `{"days":40}`)

		// Assert
		assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
		assert.Equal(suite.T(), errors.CodeValidationFailed, env.Error.Code)
	})

	suite.Run("EmptySlot_ShouldReturn422", func() {
		// Arrange
		suite.planner.On("GenerateMealPlan", mock.Anything, inbound.GeneratePlanCommand{UserID: id, Days: 2}).
			Return(nil, errors.NewEmptyMealSlotError("dinner", nil)).Once()

		// Act
		rec, env := suite.do(http.MethodPost, "/api/v1/profiles/"+id.String()+"/meal-plans", `{"days":2}`)

		// Assert
		assert.Equal(suite.T(), http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(suite.T(), errors.CodeEmptyMealSlot, env.Error.Code)
		assert.Equal(suite.T(), "No dinner recipes found. Adjust preferences.", env.Error.Message)
	})

	suite.Run("InvalidID_ShouldReturn400", func() {
		// Act
		rec, _ := suite.do(http.MethodPost, "/api/v1/profiles/not-a-uuid/meal-plans", "")

		// Assert
		assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	})
}

func (suite *APIServerTestSuite) TestSetDayLogged() {
	id := uuid.New()

	suite.Run("ValidDay_ShouldForwardCommand", func() {
		// Arrange
		suite.planner.On("SetDayLogged", mock.Anything, inbound.SetDayLoggedCommand{UserID: id, Day: 3, Logged: true}).
			Return(&mealplan.MealPlan{ID: uuid.New()}, nil).Once()

		// Act
		rec, _ := suite.do(http.MethodPut, "/api/v1/profiles/"+id.String()+"/meal-plans/latest/days/3/logged", `{"logged":true}`)

		// Assert
		assert.Equal(suite.T(), http.StatusOK, rec.Code)
	})

	suite.Run("NonNumericDay_ShouldReturn400", func() {
		// Act
		rec, _ := suite.do(http.MethodPut, "/api/v1/profiles/"+id.String()+"/meal-plans/latest/days/first/logged", `{"logged":true}`)

		// Assert
		assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	})
}

func (suite *APIServerTestSuite) TestExport() {
	suite.Run("LatestPlan_ShouldDownloadText", func() {
		// Arrange
		id := uuid.New()
		suite.planner.On("ExportMealPlan", mock.Anything, id).Return("Meal Plan for Alex\n", nil).Once()

		// Act
		rec, _ := suite.do(http.MethodGet, "/api/v1/profiles/"+id.String()+"/meal-plans/latest/export", "")

		// Assert
		assert.Equal(suite.T(), http.StatusOK, rec.Code)
		assert.Contains(suite.T(), rec.Header().Get("Content-Disposition"), "meal_plan.txt")
		assert.Equal(suite.T(), "Meal Plan for Alex\n", rec.Body.String())
	})
}

func (suite *APIServerTestSuite) TestRateExercise() {
	id := uuid.New()

	suite.Run("InvalidRating_ShouldReturn400", func() {
		// Arrange
		cmd := inbound.RecordRatingCommand{UserID: id, ExerciseTitle: "Squat", Rating: 9}
		suite.planner.On("RecordRating", mock.Anything, cmd).Return(errors.NewInvalidRatingError(9)).Once()

		// Act
		rec, env := suite.do(http.MethodPut, "/api/v1/profiles/"+id.String()+"/ratings", `{"exercise_title":"Squat","rating":9}`)

		// Assert
		assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
		assert.Equal(suite.T(), errors.CodeInvalidRating, env.Error.Code)
	})

	suite.Run("MissingTitle_ShouldFailValidation", func() {
		// Act
		rec, env := suite.do(http.MethodPut, "/api/v1/profiles/"+id.String()+"/ratings", `{"rating":4}`)

		// Assert
		assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
		assert.Equal(suite.T(), errors.CodeValidationFailed, env.Error.Code)
	})
}

func (suite *APIServerTestSuite) TestSearchFoods() {
	suite.Run("QueryParameters_ShouldBeForwarded", func() {
		// Arrange
		suite.planner.On("SearchFoods", mock.Anything, inbound.FoodSearchQuery{Query: "tofu", Diet: "vegan", Limit: 5}).
			Return([]inbound.FoodDTO{{Name: "Tofu", Calories: 144}}, nil).Once()

		// Act
		rec, env := suite.do(http.MethodGet, "/api/v1/foods?q=tofu&diet=vegan&limit=5", "")

		// Assert
		assert.Equal(suite.T(), http.StatusOK, rec.Code)
		var foods []inbound.FoodDTO
		require.NoError(suite.T(), json.Unmarshal(env.Data, &foods))
		assert.Equal(suite.T(), "Tofu", foods[0].Name)
	})

	suite.Run("NegativeLimit_ShouldReturn400", func() {
		// Act
		rec, _ := suite.do(http.MethodGet, "/api/v1/foods?limit=-1", "")

		// Assert
		assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	})
}

func (suite *APIServerTestSuite) TestProfiles() {
	suite.Run("Create_ShouldReturn201", func() {
		// Arrange
		dto := &inbound.ProfileDTO{ID: uuid.New(), Name: "Alex", Weight: 70}
		suite.profiles.On("CreateProfile", mock.Anything, mock.Anything).Return(dto, nil).Once()

		// Act
		rec, env := suite.do(http.MethodPost, "/api/v1/profiles", `{"name":"Alex","weight":70,"height":175,"age":25}`)

		// Assert
		assert.Equal(suite.T(), http.StatusCreated, rec.Code)
		assert.Equal(suite.T(), "Profile created successfully", env.Message)
	})

	suite.Run("UnknownProfile_ShouldReturn404", func() {
		// Arrange
		id := uuid.New()
		suite.profiles.On("GetProfile", mock.Anything, id).Return(nil, errors.NewProfileNotFoundError(id.String())).Once()

		// Act
		rec, env := suite.do(http.MethodGet, "/api/v1/profiles/"+id.String(), "")

		// Assert
		assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
		assert.Equal(suite.T(), errors.CodeProfileNotFound, env.Error.Code)
	})

	suite.Run("Progress_ShouldRejectZeroWeight", func() {
		// Act
		rec, _ := suite.do(http.MethodPost, "/api/v1/profiles/"+uuid.New().String()+"/progress", `{"weight":0}`)

		// Assert
		assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	})

	suite.Run("InternalFailure_ShouldHideCause", func() {
		// Arrange
		id := uuid.New()
		suite.profiles.On("ProgressReport", mock.Anything, id).Return(nil, assert.AnError).Once()

		// Act
		rec, env := suite.do(http.MethodGet, "/api/v1/profiles/"+id.String()+"/progress", "")

		// Assert
		assert.Equal(suite.T(), http.StatusInternalServerError, rec.Code)
		assert.NotContains(suite.T(), env.Error.Message, assert.AnError.Error())
	})
}

func (suite *APIServerTestSuite) TestHealth() {
	suite.Run("NoCheckers_ShouldBeHealthy", func() {
		// Act
		rec, _ := suite.do(http.MethodGet, "/health/live", "")

		// Assert
		assert.Equal(suite.T(), http.StatusOK, rec.Code)
	})
}

func TestAPIServerTestSuite(t *testing.T) {
	suite.Run(t, new(APIServerTestSuite))
}
