// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smartmeals/v2/internal/application/planner"
	profileapp "github.com/smartmeals/v2/internal/application/profile"
	"github.com/smartmeals/v2/internal/domain/catalog"
	"github.com/smartmeals/v2/internal/domain/exercise"
	"github.com/smartmeals/v2/internal/domain/mealplan"
	catalogloader "github.com/smartmeals/v2/internal/infrastructure/catalog"
	"github.com/smartmeals/v2/internal/infrastructure/config"
	"github.com/smartmeals/v2/internal/infrastructure/events"
	"github.com/smartmeals/v2/internal/infrastructure/http/apiserver"
	"github.com/smartmeals/v2/internal/infrastructure/http/middleware"
	"github.com/smartmeals/v2/internal/infrastructure/monitoring"
	"github.com/smartmeals/v2/internal/ports/inbound"
	"github.com/smartmeals/v2/internal/ports/outbound"
	"github.com/smartmeals/v2/pkg/healthcheck"
	"github.com/smartmeals/v2/pkg/logger"
)

// Module wires the API server
var Module = fx.Options(
	ConfigModule,
	CoreModule,
	HTTPModule,
	LifecycleModule,
)

// CoreModule provides everything below the transport layer. Callers supply
// *config.Config.
var CoreModule = fx.Options(
	LoggerModule,
	CatalogModule,
	DatabaseModule,
	CacheModule,
	EventModule,
	MonitoringModule,
	ServiceModule,
)

// ConfigModule provides configuration. SMARTMEALS_CONFIG names an explicit
// config file.
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load(os.Getenv("SMARTMEALS_CONFIG"))
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			Development: cfg.IsDevelopment(),
			OutputPaths: cfg.Logging.OutputPaths,
			InitialFields: map[string]interface{}{
				"service":     cfg.App.Name,
				"environment": cfg.App.Environment,
			},
		})
	},
)

// CatalogModule loads the reference datasets once at startup
var CatalogModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*catalog.Catalog, error) {
		loader := catalogloader.NewLoader(catalogloader.Paths{
			Meals:     cfg.Catalog.MealsPath,
			Foods:     cfg.Catalog.FoodsPath,
			Recipes:   cfg.Catalog.RecipesPath,
			Exercises: cfg.Catalog.ExercisesPath,
		}, log)
		cat, err := loader.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		return cat, nil
	},
)

// DatabaseModule opens the configured store and exposes its repositories
var DatabaseModule = fx.Provide(
	NewRepositories,
	func(r *Repositories) outbound.ProfileRepository { return r.Profiles },
	func(r *Repositories) outbound.MealPlanRepository { return r.MealPlans },
	func(r *Repositories) outbound.RatingRepository { return r.Ratings },
)

// CacheModule provides Redis when enabled and an in-process cache otherwise
var CacheModule = fx.Provide(
	NewCache,
	func(c *Cache) outbound.CacheRepository { return c.Repository },
)

// EventModule provides event handling
var EventModule = fx.Provide(
	func(log *zap.Logger) *events.Dispatcher {
		d := events.NewDispatcher(log)
		audit := events.LogHandler(log.Named("audit"))
		for _, name := range []string{
			"profile.created",
			"profile.updated",
			"profile.progress.recorded",
			"mealplan.generated",
			"mealplan.day.logged",
		} {
			d.Register(name, audit)
		}
		return d
	},
	func(d *events.Dispatcher) outbound.EventPublisher { return d },
)

// MonitoringModule provides metrics, tracing and health checks
var MonitoringModule = fx.Provide(
	monitoring.NewMetricsCollector,
	func(m *monitoring.MetricsCollector) outbound.MetricsRecorder { return m },
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		tp, err := monitoring.NewTracingProvider(context.Background(), monitoring.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			Insecure:       cfg.Monitoring.OTLPInsecure,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			Enabled:        cfg.Monitoring.EnableTracing,
		}, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: tp.Shutdown})
		return tp, nil
	},
	NewHealthCheck,
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	func(cfg *config.Config) *mealplan.Assembler {
		return mealplan.NewAssembler(mealplan.Config{
			CalorieTolerance: cfg.Planner.CalorieTolerance,
			MinFraction:      cfg.Planner.MinFraction,
		})
	},
	func(cfg *config.Config) *exercise.Recommender {
		return exercise.NewRecommender(exercise.Config{
			Neighbors:     cfg.Exercise.KNNNeighbors,
			OlderAge:      cfg.Exercise.OlderAge,
			DefaultRating: cfg.Exercise.DefaultRating,
		})
	},
	func(cfg *config.Config) planner.Options {
		return planner.Options{
			DefaultDays:     cfg.Planner.DefaultDays,
			MaxDays:         cfg.Planner.MaxDays,
			RecipeLimit:     cfg.Planner.RecommendedRecipes,
			ExerciseCount:   cfg.Exercise.DefaultCount,
			FoodSearchLimit: cfg.Planner.FoodSearchLimit,
		}
	},
	fx.Annotate(
		planner.NewPlannerService,
		fx.As(new(inbound.PlannerService)),
	),
	fx.Annotate(
		profileapp.NewProfileService,
		fx.As(new(inbound.ProfileService)),
	),
)

// HTTPModule provides the HTTP server
var HTTPModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) *middleware.RateLimiter {
		if !cfg.RateLimit.Enable {
			return nil
		}
		return middleware.NewRateLimiter(
			cfg.RateLimit.RequestsPerSecond,
			cfg.RateLimit.BurstSize,
			cfg.RateLimit.CleanupInterval,
			log,
		)
	},
	func(
		cfg *config.Config,
		log *zap.Logger,
		plannerService inbound.PlannerService,
		profileService inbound.ProfileService,
		metrics *monitoring.MetricsCollector,
		health *healthcheck.HealthCheck,
		limiter *middleware.RateLimiter,
	) *apiserver.APIServer {
		return apiserver.NewAPIServer(cfg, log, plannerService, profileService, metrics, health, limiter)
	},
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks starts and stops the HTTP server and its helpers
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	server *apiserver.APIServer,
	limiter *middleware.RateLimiter,
) {
	stop := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting SmartMeals",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("database", cfg.Database.Driver),
			)

			if limiter != nil && cfg.RateLimit.CleanupInterval > 0 {
				go limiter.Run(cfg.RateLimit.CleanupInterval, stop)
			}

			go func() {
				if err := server.Start(); err != nil {
					log.Error("HTTP server stopped unexpectedly", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down SmartMeals")
			close(stop)

			if err := server.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}
