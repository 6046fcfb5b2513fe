package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/smartmeals/v2/internal/ports/inbound"
)

type CLITestSuite struct {
	suite.Suite
	configPath string
}

func (suite *CLITestSuite) SetupTest() {
	dir := suite.T().TempDir()
	suite.configPath = filepath.Join(dir, "config.yaml")
	content := "app:\n  environment: test\n" +
		"database:\n  driver: sqlite\n  path: " + filepath.Join(dir, "planctl.db") + "\n  auto_migrate: true\n"
	require.NoError(suite.T(), os.WriteFile(suite.configPath, []byte(content), 0o600))
}

func (suite *CLITestSuite) run(args ...string) (string, error) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", suite.configPath, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

var metrics = []string{"--weight", "70", "--height", "175", "--age", "25"}

func (suite *CLITestSuite) TestTargets() {
	suite.Run("ProfileFlags_ShouldPrintTargets", func() {
		// Act
		out, err := suite.run(append(metrics, "--goal", "weight loss", "--json", "targets")...)

		// Assert
		require.NoError(suite.T(), err)
		var targets inbound.TargetsDTO
		require.NoError(suite.T(), json.Unmarshal([]byte(out), &targets))
		assert.InDelta(suite.T(), 1673.75, targets.BMR, 0.01)
		assert.Equal(suite.T(), 2100.0, targets.CalorieGoal)
		assert.Equal(suite.T(), "Healthy", targets.HealthStatus)
	})

	suite.Run("TableOutput_ShouldListMacros", func() {
		// Act
		out, err := suite.run(append(metrics, "targets")...)

		// Assert
		require.NoError(suite.T(), err)
		assert.Contains(suite.T(), out, "BMR")
		assert.Contains(suite.T(), out, "Protein")
	})

	suite.Run("MissingMetrics_ShouldFail", func() {
		// Act
		_, err := suite.run("targets")

		// Assert
		require.Error(suite.T(), err)
		assert.Contains(suite.T(), err.Error(), "--weight")
	})
}

func (suite *CLITestSuite) TestPlan() {
	suite.Run("ShoppingList_ShouldGroupIngredients", func() {
		// Act
		out, err := suite.run(append(metrics, "plan", "--days", "2", "--shopping-list")...)

		// Assert
		require.NoError(suite.T(), err)
		assert.NotEmpty(suite.T(), strings.TrimSpace(out))
	})

	suite.Run("JSONPlan_ShouldHaveRequestedDays", func() {
		// Act
		out, err := suite.run(append(metrics, "--json", "plan", "--days", "3")...)

		// Assert
		require.NoError(suite.T(), err)
		var plan struct {
			Days []json.RawMessage `json:"days"`
		}
		require.NoError(suite.T(), json.Unmarshal([]byte(out), &plan))
		assert.Len(suite.T(), plan.Days, 3)
	})
}

func (suite *CLITestSuite) TestStoredProfile() {
	suite.Run("CreateThenReport_ShouldUseStore", func() {
		// Arrange
		out, err := suite.run(append(metrics, "--name", "Sam", "profile", "create")...)
		require.NoError(suite.T(), err)
		id := strings.TrimSpace(out)

		// Act
		_, err = suite.run("--user", id, "profile", "progress", "69.5")
		require.NoError(suite.T(), err)
		report, err := suite.run("--user", id, "profile", "report")

		// Assert
		require.NoError(suite.T(), err)
		assert.Contains(suite.T(), report, "69.5 kg")
	})

	suite.Run("RateWithoutUser_ShouldFail", func() {
		// Act
		_, err := suite.run("rate", "Push-Up", "4")

		// Assert
		require.Error(suite.T(), err)
		assert.Contains(suite.T(), err.Error(), "--user")
	})

	suite.Run("InvalidUser_ShouldFail", func() {
		// Act
		_, err := suite.run("--user", "not-a-uuid", "targets")

		// Assert
		require.Error(suite.T(), err)
		assert.Contains(suite.T(), err.Error(), "invalid --user")
	})
}

func (suite *CLITestSuite) TestFoodsAndVersion() {
	suite.Run("Query_ShouldListMatchingFoods", func() {
		// Act
		out, err := suite.run("foods", "apple", "--limit", "3")

		// Assert
		require.NoError(suite.T(), err)
		assert.Contains(suite.T(), out, "Apple")
	})

	suite.Run("Version_ShouldPrintBuildVersion", func() {
		// Act
		out, err := suite.run("version")

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), "planctl dev\n", out)
	})
}

func TestCLITestSuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}
