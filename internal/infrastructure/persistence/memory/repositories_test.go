package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/smartmeals/v2/internal/ports/outbound"
	"github.com/smartmeals/v2/test/testutils"
)

type MemoryRepositoriesTestSuite struct {
	testutils.RepositoryContractSuite
}

func TestMemoryRepositoriesTestSuite(t *testing.T) {
	s := new(MemoryRepositoriesTestSuite)
	s.NewStores = func() testutils.Stores {
		return testutils.Stores{
			Profiles:  NewProfileRepository(),
			MealPlans: NewMealPlanRepository(),
			Ratings:   NewRatingRepository(),
		}
	}
	suite.Run(t, s)
}

type CacheRepositoryTestSuite struct {
	suite.Suite
	ctx   context.Context
	cache *CacheRepository
	clock time.Time
}

func (suite *CacheRepositoryTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.clock = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	suite.cache = NewCacheRepository(0)
	suite.cache.now = func() time.Time { return suite.clock }
}

func (suite *CacheRepositoryTestSuite) TearDownTest() {
	_ = suite.cache.Close()
}

func (suite *CacheRepositoryTestSuite) TestGetSet() {
	suite.Run("StoredValue_ShouldBeCopied", func() {
		// Arrange
		value := []byte("plan")
		require.NoError(suite.T(), suite.cache.Set(suite.ctx, "k", value, time.Minute))
		value[0] = 'X'

		// Act
		got, err := suite.cache.Get(suite.ctx, "k")

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), "plan", string(got))
	})

	suite.Run("Expired_ShouldMiss", func() {
		// Arrange
		require.NoError(suite.T(), suite.cache.Set(suite.ctx, "short", []byte("v"), time.Second))
		suite.clock = suite.clock.Add(2 * time.Second)

		// Act
		_, err := suite.cache.Get(suite.ctx, "short")
		exists, _ := suite.cache.Exists(suite.ctx, "short")

		// Assert
		assert.ErrorIs(suite.T(), err, outbound.ErrCacheMiss)
		assert.False(suite.T(), exists)
	})

	suite.Run("ZeroTTL_ShouldUseDefault", func() {
		// Arrange
		require.NoError(suite.T(), suite.cache.Set(suite.ctx, "long", []byte("v"), 0))
		suite.clock = suite.clock.Add(DefaultTTL - time.Second)

		// Act
		exists, err := suite.cache.Exists(suite.ctx, "long")

		// Assert
		require.NoError(suite.T(), err)
		assert.True(suite.T(), exists)
	})
}

func (suite *CacheRepositoryTestSuite) TestEviction() {
	suite.Run("DeletePrefix_ShouldOnlyRemoveMatches", func() {
		// Arrange
		for _, k := range []string{"profile:1", "profile:2", "mealplan:latest:1"} {
			require.NoError(suite.T(), suite.cache.Set(suite.ctx, k, []byte("v"), time.Minute))
		}

		// Act
		removed := suite.cache.DeletePrefix("profile:")

		// Assert
		assert.Equal(suite.T(), 2, removed)
		assert.Equal(suite.T(), 1, suite.cache.Len())
	})

	suite.Run("EvictExpired_ShouldDropStaleEntries", func() {
		// Arrange
		require.NoError(suite.T(), suite.cache.Delete(suite.ctx, "mealplan:latest:1"))
		require.NoError(suite.T(), suite.cache.Set(suite.ctx, "stale", []byte("v"), time.Second))
		require.NoError(suite.T(), suite.cache.Set(suite.ctx, "fresh", []byte("v"), time.Hour))
		suite.clock = suite.clock.Add(time.Minute)

		// Act
		suite.cache.evictExpired()

		// Assert
		assert.Equal(suite.T(), 1, suite.cache.Len())
	})
}

func TestCacheRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(CacheRepositoryTestSuite))
}
