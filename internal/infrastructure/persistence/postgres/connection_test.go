package postgres_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/smartmeals/v2/internal/infrastructure/config"
	gormrepo "github.com/smartmeals/v2/internal/infrastructure/persistence/gorm"
	"github.com/smartmeals/v2/internal/infrastructure/persistence/migrations"
	"github.com/smartmeals/v2/internal/infrastructure/persistence/postgres"
	"github.com/smartmeals/v2/test/testutils"
)

type PostgresRepositoriesTestSuite struct {
	testutils.RepositoryContractSuite
}

func connect(t *testing.T, td *testutils.TestDatabase) *postgres.ConnectionManager {
	ctx := context.Background()
	defaults := testutils.DefaultDatabaseConfig()

	host, err := td.Container.Host(ctx)
	require.NoError(t, err)
	port, err := td.Container.MappedPort(ctx, nat.Port(defaults.Port))
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	cfg := &config.Config{Database: config.DatabaseConfig{
		Driver:       config.DriverPostgres,
		Host:         host,
		Port:         portNum,
		Database:     defaults.Database,
		Username:     defaults.Username,
		Password:     defaults.Password,
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
		LogLevel:     "silent",
	}}
	cm, err := postgres.NewConnectionManager(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cm.Close() })
	return cm
}

func TestPostgresRepositoriesTestSuite(t *testing.T) {
	td := testutils.SetupTestDatabase(t)
	cm := connect(t, td)

	migrator, err := migrations.New(cm.SQLDB(), testutils.DefaultDatabaseConfig().Database, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Up())

	status, err := migrator.Status()
	require.NoError(t, err)
	assert.Equal(t, uint(3), status.Version)
	assert.Empty(t, status.Pending)
	require.NoError(t, cm.HealthCheck(context.Background()))

	s := new(PostgresRepositoriesTestSuite)
	s.NewStores = func() testutils.Stores {
		require.NoError(t, td.TruncateAllTables())
		db := cm.GetDB()
		return testutils.Stores{
			Profiles:  gormrepo.NewProfileRepository(db),
			MealPlans: gormrepo.NewMealPlanRepository(db),
			Ratings:   gormrepo.NewRatingRepository(db),
		}
	}
	suite.Run(t, s)
}
