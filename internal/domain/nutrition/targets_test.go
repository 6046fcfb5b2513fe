package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/smartmeals/v2/internal/domain/profile"
)

// TargetsTestSuite provides a test suite for calorie and macro targets
type TargetsTestSuite struct {
	suite.Suite
	base profile.Profile
}

func (suite *TargetsTestSuite) SetupTest() {
	suite.base = profile.Profile{
		Weight:        70,
		Height:        175,
		Age:           25,
		Sex:           profile.SexMale,
		ActivityLevel: profile.ActivityModeratelyActive,
		Goal:          profile.GoalMaintainWeight,
	}
}

func (suite *TargetsTestSuite) TestBMR() {
	suite.Run("Male_ShouldAddFive", func() {
		assert.InDelta(suite.T(), 1673.75, BMR(70, 175, 25, profile.SexMale), 1e-9)
	})

	suite.Run("Female_ShouldSubtract161", func() {
		assert.InDelta(suite.T(), 1507.75, BMR(70, 175, 25, profile.SexFemale), 1e-9)
	})

	suite.Run("Other_ShouldUseFemaleOffset", func() {
		assert.Equal(suite.T(), BMR(60, 160, 40, profile.SexFemale), BMR(60, 160, 40, profile.SexOther))
	})
}

func (suite *TargetsTestSuite) TestDailyCalories() {
	suite.Run("Maintain_ShouldRoundToNearestFifty", func() {
		// 1673.75 * 1.55 = 2594.3
		assert.Equal(suite.T(), 2600.0, DailyCalories(suite.base))
	})

	suite.Run("WeightLoss_ShouldSubtract500", func() {
		p := suite.base
		p.Goal = profile.GoalWeightLoss
		assert.Equal(suite.T(), 2100.0, DailyCalories(p))
	})

	suite.Run("MuscleGain_ShouldAdd300", func() {
		p := suite.base
		p.Goal = profile.GoalMuscleGain
		assert.Equal(suite.T(), 2900.0, DailyCalories(p))
	})

	suite.Run("MissingMetrics_ShouldUseDefaults", func() {
		// Arrange
		p := profile.Profile{}
		want := roundTo(BMR(profile.DefaultWeightKg, profile.DefaultHeightCm, profile.DefaultAge, profile.SexMale)*1.55, 50)

		// Act
		got := DailyCalories(p)

		// Assert
		assert.Equal(suite.T(), want, got)
	})
}

func (suite *TargetsTestSuite) TestComputeTargets() {
	suite.Run("WeightLoss_ShouldSplit35_30_35", func() {
		// Arrange
		p := suite.base
		p.Goal = profile.GoalWeightLoss

		// Act
		t := ComputeTargets(p)

		// Assert
		assert.Equal(suite.T(), Target{Calories: 2100, Protein: 184, Carbs: 184, Fat: 70}, t)
	})

	suite.Run("EveryGoal_ShouldStayCloseToCalories", func() {
		for _, goal := range profile.AllGoals {
			p := suite.base
			p.Goal = goal
			t := ComputeTargets(p)
			assert.InDelta(suite.T(), t.Calories, t.MacroCalories(), 15, "goal %s", goal)
		}
	})

	suite.Run("UnknownActivity_ShouldUseModerate", func() {
		p := suite.base
		p.ActivityLevel = "couch"
		assert.Equal(suite.T(), ComputeTargets(suite.base), ComputeTargets(p))
	})
}

func (suite *TargetsTestSuite) TestSplits() {
	suite.Run("EverySplit_ShouldSumToOne", func() {
		for _, goal := range profile.AllGoals {
			s := SplitFor(goal)
			assert.InDelta(suite.T(), 1.0, s.Protein+s.Fat+s.Carbs, 1e-9, "goal %s", goal)
		}
	})

	suite.Run("ActivityMultipliers_ShouldIncrease", func() {
		prev := 0.0
		for _, level := range profile.AllActivityLevels {
			m := ActivityMultiplier(level)
			assert.Greater(suite.T(), m, prev)
			prev = m
		}
	})
}

func TestTargetsTestSuite(t *testing.T) {
	suite.Run(t, new(TargetsTestSuite))
}
