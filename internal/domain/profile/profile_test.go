package profile

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ProfileTestSuite provides a test suite for the Profile aggregate
type ProfileTestSuite struct {
	suite.Suite
	now time.Time
}

func (suite *ProfileTestSuite) SetupTest() {
	suite.now = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
}

func (suite *ProfileTestSuite) TestNew() {
	suite.Run("ValidProfile_ShouldDeriveBMIAndEmitEvent", func() {
		// Arrange
		in := Profile{Name: "Sam", Weight: 70, Height: 175, Age: 25, Sex: "Male", Goal: "Weight Loss"}

		// Act
		p := New(in, suite.now)

		// Assert
		assert.NotEqual(suite.T(), uuid.Nil, p.ID)
		assert.Equal(suite.T(), 22.9, p.BMI)
		assert.Equal(suite.T(), StatusHealthy, p.HealthStatus)
		assert.Equal(suite.T(), GoalWeightLoss, p.Goal)
		assert.Equal(suite.T(), suite.now, p.CreatedAt)

		events := p.Events()
		require.Len(suite.T(), events, 1)
		created, ok := events[0].(ProfileCreatedEvent)
		require.True(suite.T(), ok)
		assert.Equal(suite.T(), p.ID, created.UserID)
		assert.Equal(suite.T(), "profile.created", created.EventName())
	})

	suite.Run("ExistingID_ShouldBeKept", func() {
		id := uuid.New()
		p := New(Profile{ID: id}, suite.now)
		assert.Equal(suite.T(), id, p.ID)
	})
}

func (suite *ProfileTestSuite) TestNormalize() {
	suite.Run("EmptyProfile_ShouldApplyDefaults", func() {
		// Act
		p := Normalize(Profile{})

		// Assert
		assert.Equal(suite.T(), DefaultWeightKg, p.Weight)
		assert.Equal(suite.T(), DefaultHeightCm, p.Height)
		assert.Equal(suite.T(), DefaultAge, p.Age)
		assert.Equal(suite.T(), SexMale, p.Sex)
		assert.Equal(suite.T(), ActivityModeratelyActive, p.ActivityLevel)
		assert.Equal(suite.T(), GoalMaintainWeight, p.Goal)
		assert.Equal(suite.T(), DietBoth, p.DietPreference)
	})

	suite.Run("UnknownGoal_ShouldBecomeUnspecified", func() {
		p := Normalize(Profile{Goal: "get huge"})
		assert.Equal(suite.T(), GoalUnspecified, p.Goal)
	})

	suite.Run("Terms_ShouldBeTrimmedAndDeduplicated", func() {
		p := Normalize(Profile{Allergies: []string{" Peanut ", "peanut", "", "Milk"}})
		assert.Equal(suite.T(), []string{"Peanut", "Milk"}, p.Allergies)
	})

	suite.Run("Input_ShouldNotBeMutated", func() {
		in := Profile{Allergies: []string{"egg"}, ProgressHistory: []ProgressEntry{{Weight: 70}}}
		out := Normalize(in)
		out.ProgressHistory[0].Weight = 1
		assert.Equal(suite.T(), 70.0, in.ProgressHistory[0].Weight)
	})
}

func (suite *ProfileTestSuite) TestParsing() {
	suite.Run("Goals_ShouldAcceptSpacesAndCase", func() {
		for in, want := range map[string]Goal{
			"Weight Loss":     GoalWeightLoss,
			"weight-gain":     GoalWeightGain,
			"MAINTAIN":        GoalMaintainWeight,
			"muscle_gain":     GoalMuscleGain,
			"Not Specified":   GoalUnspecified,
			"maintain weight": GoalMaintainWeight,
		} {
			got, ok := ParseGoal(in)
			assert.True(suite.T(), ok, in)
			assert.Equal(suite.T(), want, got, in)
		}
	})

	suite.Run("UnknownDiet_ShouldFallBackToBoth", func() {
		got, ok := ParseDietPreference("carnivore")
		assert.False(suite.T(), ok)
		assert.Equal(suite.T(), DietBoth, got)
	})

	suite.Run("NonVegAliases_ShouldMatch", func() {
		a, _ := ParseDietPreference("Non-Veg")
		b, _ := ParseDietPreference("non vegetarian")
		assert.Equal(suite.T(), DietNonVegetarian, a)
		assert.Equal(suite.T(), a, b)
	})
}

func (suite *ProfileTestSuite) TestHealthStatus() {
	cases := []struct {
		bmi  float64
		want string
	}{
		{17.0, StatusUnderweight},
		{18.5, StatusHealthy},
		{24.9, StatusHealthy},
		{25.0, StatusOverweight},
		{29.9, StatusOverweight},
		{30.0, StatusObese},
	}
	for _, c := range cases {
		assert.Equal(suite.T(), c.want, HealthStatusFor(c.bmi), "bmi %.1f", c.bmi)
	}
	assert.Equal(suite.T(), 0.0, ComputeBMI(0, 170))
}

func (suite *ProfileTestSuite) TestUpdateMetrics() {
	suite.Run("DerivedStatus_ShouldFollowNewBMI", func() {
		// Arrange
		p := New(Profile{Weight: 70, Height: 175}, suite.now)

		// Act
		p.UpdateMetrics(95, 0, suite.now)

		// Assert
		assert.Equal(suite.T(), 31.0, p.BMI)
		assert.Equal(suite.T(), StatusObese, p.HealthStatus)
	})

	suite.Run("SuppliedStatus_ShouldBeKept", func() {
		// Arrange
		p := New(Profile{Weight: 70, Height: 175, HealthStatus: "Recovering"}, suite.now)

		// Act
		p.UpdateMetrics(95, 0, suite.now)
		_, err := p.RecordProgress(50, suite.now.Add(time.Hour))

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), 16.3, p.BMI)
		assert.Equal(suite.T(), "Recovering", p.HealthStatus)
	})
}

func (suite *ProfileTestSuite) TestRecordProgress() {
	suite.Run("ValidWeight_ShouldAppendAndUpdate", func() {
		// Arrange
		p := New(Profile{Weight: 80, Height: 180}, suite.now)
		p.ClearEvents()
		at := suite.now.Add(24 * time.Hour)

		// Act
		entry, err := p.RecordProgress(78, at)

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), 78.0, p.Weight)
		assert.Equal(suite.T(), 24.1, entry.BMI)
		assert.Len(suite.T(), p.ProgressHistory, 1)
		assert.Equal(suite.T(), at, p.UpdatedAt)
		require.Len(suite.T(), p.Events(), 1)
		assert.Equal(suite.T(), "profile.progress.recorded", p.Events()[0].EventName())
	})

	suite.Run("NonPositiveWeight_ShouldFail", func() {
		p := New(Profile{}, suite.now)
		_, err := p.RecordProgress(0, suite.now)
		assert.ErrorIs(suite.T(), err, ErrInvalidWeight)
		assert.Empty(suite.T(), p.ProgressHistory)
	})
}

func (suite *ProfileTestSuite) TestTrend() {
	suite.Run("SingleEntry_ShouldBeInsufficient", func() {
		_, ok := WeeklyChange([]ProgressEntry{{Timestamp: suite.now, Weight: 80}})
		assert.False(suite.T(), ok)
	})

	suite.Run("TwoWeeks_ShouldAverageWeekly", func() {
		history := []ProgressEntry{
			{Timestamp: suite.now, Weight: 80},
			{Timestamp: suite.now.AddDate(0, 0, 14), Weight: 79},
		}
		weekly, ok := WeeklyChange(history)
		require.True(suite.T(), ok)
		assert.InDelta(suite.T(), -0.5, weekly, 1e-9)
		assert.Equal(suite.T(), TrendOnTrack, AdviseTrend(GoalWeightLoss, weekly).Status)
		assert.Equal(suite.T(), TrendOffTrack, AdviseTrend(GoalWeightGain, weekly).Status)
	})

	suite.Run("FastLoss_ShouldBeTooFast", func() {
		assert.Equal(suite.T(), TrendTooFast, AdviseTrend(GoalWeightLoss, -1.5).Status)
	})

	suite.Run("GoalProgress_ShouldClamp", func() {
		assert.Equal(suite.T(), 50.0, GoalProgress(80, 75, 70))
		assert.Equal(suite.T(), 100.0, GoalProgress(80, 65, 70))
		assert.Equal(suite.T(), 0.0, GoalProgress(80, 82, 70))
	})

	suite.Run("EstimateCompletion_WrongDirection_ShouldFail", func() {
		_, ok := EstimateCompletion(80, 70, 0.5, suite.now)
		assert.False(suite.T(), ok)

		eta, ok := EstimateCompletion(80, 70, -1, suite.now)
		require.True(suite.T(), ok)
		assert.Equal(suite.T(), suite.now.AddDate(0, 0, 70), eta)
	})
}

func TestProfileTestSuite(t *testing.T) {
	suite.Run(t, new(ProfileTestSuite))
}
