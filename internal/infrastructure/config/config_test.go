package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
	dir string
}

func (suite *ConfigTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

func (suite *ConfigTestSuite) writeConfig(body string) string {
	path := filepath.Join(suite.dir, "config.yaml")
	require.NoError(suite.T(), os.WriteFile(path, []byte(body), 0o600))
	return path
}

func (suite *ConfigTestSuite) TestLoad() {
	suite.Run("DefaultsOnly_ShouldBeValid", func() {
		// Arrange
		path := suite.writeConfig("app:\n  environment: test\n")

		// Act
		cfg, err := Load(path)

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), "SmartMeals", cfg.App.Name)
		assert.Equal(suite.T(), DriverSQLite, cfg.Database.Driver)
		assert.Equal(suite.T(), 15*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(suite.T(), 7, cfg.Planner.DefaultDays)
		assert.Equal(suite.T(), 5, cfg.Exercise.KNNNeighbors)
		assert.Equal(suite.T(), 3.0, cfg.Exercise.DefaultRating)
		assert.Equal(suite.T(), "0.0.0.0:8080", cfg.ListenAddr())
	})

	suite.Run("FileValues_ShouldOverrideDefaults", func() {
		// Arrange
		path := suite.writeConfig(`
database:
  driver: memory
planner:
  default_days: 3
  max_days: 5
redis:
  host: cache.internal
  port: 6380
`)

		// Act
		cfg, err := Load(path)

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), DriverMemory, cfg.Database.Driver)
		assert.Equal(suite.T(), 3, cfg.Planner.DefaultDays)
		assert.Equal(suite.T(), "cache.internal:6380", cfg.RedisAddr())
	})

	suite.Run("Environment_ShouldOverrideFile", func() {
		// Arrange
		path := suite.writeConfig("server:\n  port: 9000\n")
		suite.T().Setenv("SMARTMEALS_SERVER_PORT", "9100")

		// Act
		cfg, err := Load(path)

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), 9100, cfg.Server.Port)
	})

	suite.Run("UnknownDriver_ShouldFail", func() {
		// Arrange
		path := suite.writeConfig("database:\n  driver: oracle\n")

		// Act
		_, err := Load(path)

		// Assert
		assert.ErrorContains(suite.T(), err, "database.driver")
	})
}

func (suite *ConfigTestSuite) TestValidate() {
	valid := func() Config {
		return Config{
			App:      AppConfig{Name: "SmartMeals"},
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Driver: DriverMemory},
			Planner:  PlannerConfig{MinFraction: 0.4, DefaultDays: 7, MaxDays: 14},
			Exercise: ExerciseConfig{KNNNeighbors: 5, DefaultRating: 3},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"MissingSQLitePath_ShouldFail", func(c *Config) { c.Database.Driver = DriverSQLite }, "database.path"},
		{"MongoWithoutURI_ShouldFail", func(c *Config) { c.Database.Driver = DriverMongo }, "mongo.uri"},
		{"DefaultDaysAboveMax_ShouldFail", func(c *Config) { c.Planner.DefaultDays = 20 }, "planner.default_days"},
		{"ZeroNeighbours_ShouldFail", func(c *Config) { c.Exercise.KNNNeighbors = 0 }, "knn_neighbors"},
		{"DefaultRatingOutOfScale_ShouldFail", func(c *Config) { c.Exercise.DefaultRating = 6 }, "default_rating"},
		{"RateLimitWithoutBurst_ShouldFail", func(c *Config) {
			c.RateLimit = RateLimitConfig{Enable: true, RequestsPerSecond: 1}
		}, "rate_limit"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			cfg := valid()
			tt.mutate(&cfg)
			assert.ErrorContains(suite.T(), cfg.Validate(), tt.errMsg)
		})
	}

	suite.Run("Valid_ShouldPass", func() {
		cfg := valid()
		assert.NoError(suite.T(), cfg.Validate())
	})
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}
