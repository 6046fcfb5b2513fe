package container

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smartmeals/v2/internal/domain/catalog"
	"github.com/smartmeals/v2/internal/infrastructure/config"
	gormrepo "github.com/smartmeals/v2/internal/infrastructure/persistence/gorm"
	"github.com/smartmeals/v2/internal/infrastructure/persistence/memory"
	"github.com/smartmeals/v2/internal/infrastructure/persistence/migrations"
	mongorepo "github.com/smartmeals/v2/internal/infrastructure/persistence/mongo"
	"github.com/smartmeals/v2/internal/infrastructure/persistence/postgres"
	redisrepo "github.com/smartmeals/v2/internal/infrastructure/persistence/redis"
	"github.com/smartmeals/v2/internal/infrastructure/persistence/sqlite"
	"github.com/smartmeals/v2/internal/ports/outbound"
	"github.com/smartmeals/v2/pkg/healthcheck"
)

// Repositories groups the repositories of the configured store
type Repositories struct {
	Profiles  outbound.ProfileRepository
	MealPlans outbound.MealPlanRepository
	Ratings   outbound.RatingRepository

	// Health is nil for stores without a connection to check
	Health healthcheck.Checker
}

// NewRepositories opens the store selected by database.driver and closes it
// when the application stops
func NewRepositories(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*Repositories, error) {
	ctx := context.Background()

	switch cfg.Database.Driver {
	case config.DriverMemory:
		log.Info("Using in-memory repositories")
		return &Repositories{
			Profiles:  memory.NewProfileRepository(),
			MealPlans: memory.NewMealPlanRepository(),
			Ratings:   memory.NewRatingRepository(),
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.SetupDatabase(sqlite.Options{
			Path:               cfg.Database.Path,
			LogLevel:           cfg.Database.LogLevel,
			SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
			AutoMigrate:        cfg.Database.AutoMigrate,
		}, log)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return sqlDB.Close() }})

		return &Repositories{
			Profiles:  gormrepo.NewProfileRepository(db),
			MealPlans: gormrepo.NewMealPlanRepository(db),
			Ratings:   gormrepo.NewRatingRepository(db),
			Health:    healthcheck.NewSQLChecker(sqlDB),
		}, nil

	case config.DriverPostgres:
		cm, err := postgres.NewConnectionManager(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return cm.Close() }})

		if cfg.Database.AutoMigrate {
			if err := runMigrations(cm, cfg, log); err != nil {
				_ = cm.Close()
				return nil, err
			}
		}

		db := cm.GetDB()
		return &Repositories{
			Profiles:  gormrepo.NewProfileRepository(db),
			MealPlans: gormrepo.NewMealPlanRepository(db),
			Ratings:   gormrepo.NewRatingRepository(db),
			Health:    healthcheck.NewSQLChecker(cm.SQLDB()),
		}, nil

	case config.DriverMongo:
		client, err := mongorepo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.ConnectTimeout, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: client.Disconnect})

		db := client.Database(cfg.Mongo.Database)
		if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}

		return &Repositories{
			Profiles:  mongorepo.NewProfileRepository(db),
			MealPlans: mongorepo.NewMealPlanRepository(db),
			Ratings:   mongorepo.NewRatingRepository(db),
			Health: healthcheck.NewPingChecker(func(ctx context.Context) error {
				return client.Ping(ctx, nil)
			}),
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func runMigrations(cm *postgres.ConnectionManager, cfg *config.Config, log *zap.Logger) error {
	m, err := migrations.New(cm.SQLDB(), cfg.Database.Database, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared pool.
	if err := m.Up(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Cache is the selected cache implementation
type Cache struct {
	Repository outbound.CacheRepository

	// Health is nil for the in-process cache
	Health healthcheck.Checker
}

// NewCache connects to Redis when enabled. The in-process cache is used
// otherwise.
func NewCache(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*Cache, error) {
	if !cfg.Redis.Enabled {
		log.Info("Using in-memory cache")
		repo := memory.NewCacheRepository(time.Minute)
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return repo.Close() }})
		return &Cache{Repository: repo}, nil
	}

	client, err := redisrepo.NewClient(context.Background(), cfg.Redis, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return client.Close() }})

	return &Cache{
		Repository: redisrepo.NewCacheRepository(client, cfg.Redis.KeyPrefix, cfg.Redis.TTL, log),
		Health:     healthcheck.NewRedisChecker(client),
	}, nil
}

// NewHealthCheck registers checks for the catalog, the store and the cache
func NewHealthCheck(cfg *config.Config, log *zap.Logger, cat *catalog.Catalog, repos *Repositories, cache *Cache) *healthcheck.HealthCheck {
	hc := healthcheck.New(cfg.App.Version, log.Named("health"))

	hc.Register("catalog", healthcheck.CheckerFunc(func(ctx context.Context) healthcheck.Check {
		stats := cat.Stats()
		check := healthcheck.Check{Status: healthcheck.StatusHealthy, Metadata: stats}
		if stats.Meals == 0 {
			check.Status = healthcheck.StatusUnhealthy
			check.Message = "meal catalog is empty"
		} else if stats.Exercises == 0 || stats.Recipes == 0 {
			check.Status = healthcheck.StatusDegraded
			check.Message = "some datasets are empty"
		}
		return check
	}))
	if repos.Health != nil {
		hc.Register("database", repos.Health)
	}
	if cache.Health != nil {
		hc.Register("cache", cache.Health)
	}
	return hc
}
