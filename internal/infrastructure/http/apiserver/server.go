// Package apiserver provides the JSON API HTTP server
package apiserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/smartmeals/v2/internal/infrastructure/config"
	"github.com/smartmeals/v2/internal/infrastructure/http/handlers"
	"github.com/smartmeals/v2/internal/infrastructure/http/middleware"
	"github.com/smartmeals/v2/internal/infrastructure/monitoring"
	"github.com/smartmeals/v2/internal/ports/inbound"
	"github.com/smartmeals/v2/pkg/healthcheck"
)

// APIServer serves the planner API
type APIServer struct {
	config      *config.Config
	logger      *zap.Logger
	server      *http.Server
	router      *chi.Mux
	planner     *handlers.PlannerAPIHandlers
	profiles    *handlers.ProfileAPIHandlers
	metrics     *monitoring.MetricsCollector
	health      *healthcheck.HealthCheck
	rateLimiter *middleware.RateLimiter
}

// NewAPIServer creates a new API server instance. metrics and rateLimiter
// may be nil.
func NewAPIServer(
	cfg *config.Config,
	log *zap.Logger,
	plannerService inbound.PlannerService,
	profileService inbound.ProfileService,
	metrics *monitoring.MetricsCollector,
	health *healthcheck.HealthCheck,
	rateLimiter *middleware.RateLimiter,
) *APIServer {
	s := &APIServer{
		config:      cfg,
		logger:      log.Named("api-server"),
		planner:     handlers.NewPlannerAPIHandlers(plannerService, log),
		profiles:    handlers.NewProfileAPIHandlers(profileService, log),
		metrics:     metrics,
		health:      health,
		rateLimiter: rateLimiter,
	}

	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s
}

// setupRoutes configures API routes
func (s *APIServer) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	if s.config.Server.EnableCORS {
		r.Use(middleware.CORS(s.config.Server.AllowedOrigins))
	}
	if s.config.Monitoring.EnableTracing {
		r.Use(middleware.Tracing(s.config.App.Name))
	}
	if s.metrics != nil {
		r.Use(s.metrics.HTTPMiddleware)
	}

	// Operational endpoints
	healthPath := s.config.Monitoring.HealthCheckPath
	if healthPath == "" {
		healthPath = "/health"
	}
	r.Get(healthPath, s.health.Handler())
	r.Get(healthPath+"/live", s.health.LivenessHandler())
	r.Get(healthPath+"/ready", s.health.ReadinessHandler())
	if s.metrics != nil && s.config.Monitoring.EnableMetrics {
		r.Handle(s.config.Monitoring.MetricsPath, s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		if s.rateLimiter != nil {
			r.Use(s.rateLimiter.Middleware)
		}
		if s.config.Server.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(s.config.Server.RequestTimeout))
		}
		if s.config.Server.EnableCompression {
			r.Use(middleware.Compression(middleware.DefaultCompressionConfig()))
		}
		r.Use(middleware.JSONOnly())
		s.setupAPIV1Routes(r)
	})

	return r
}

// setupAPIV1Routes configures API v1 endpoints
func (s *APIServer) setupAPIV1Routes(r chi.Router) {
	// Anonymous previews
	r.Post("/targets/preview", s.planner.PreviewTargets)
	r.Post("/plans/preview", s.planner.PreviewPlan)

	r.Get("/foods", s.planner.SearchFoods)

	r.Route("/profiles", func(r chi.Router) {
		r.Post("/", s.profiles.CreateProfile)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.profiles.GetProfile)
			r.Put("/", s.profiles.UpdateProfile)
			r.Post("/progress", s.profiles.RecordProgress)
			r.Get("/progress", s.profiles.ProgressReport)

			r.Get("/targets", s.planner.Targets)

			r.Route("/meal-plans", func(r chi.Router) {
				r.Post("/", s.planner.GenerateMealPlan)
				r.Get("/latest", s.planner.LatestMealPlan)
				r.Put("/latest/days/{day}/logged", s.planner.SetDayLogged)
				r.Get("/latest/shopping-list", s.planner.ShoppingList)
				r.Get("/latest/export", s.planner.ExportMealPlan)
			})

			r.Get("/recipes/recommended", s.planner.RecommendRecipes)
			r.Get("/exercises/recommended", s.planner.RecommendExercises)
			r.Put("/ratings", s.planner.RateExercise)
		})
	})
}

// Handler exposes the router, mainly for tests
func (s *APIServer) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops
func (s *APIServer) Start() error {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Server returns the underlying HTTP server instance
func (s *APIServer) Server() *http.Server {
	return s.server
}

// Shutdown gracefully shuts down the server
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.server.Shutdown(ctx)
}
