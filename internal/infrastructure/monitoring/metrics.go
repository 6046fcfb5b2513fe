// Package monitoring provides Prometheus metrics and OpenTelemetry tracing
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/smartmeals/v2/internal/ports/outbound"
)

const namespace = "smartmeals"

// MetricsCollector handles Prometheus metrics collection. Each collector
// owns its registry so several can coexist in tests.
type MetricsCollector struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// Planner metrics
	mealPlansTotal       *prometheus.CounterVec
	mealPlanDays         prometheus.Histogram
	topUpPortions        prometheus.Histogram
	recommendationsTotal *prometheus.CounterVec
	recommendationSize   *prometheus.HistogramVec
	ratingsTotal         prometheus.Counter

	// Cache metrics
	cacheLookups *prometheus.CounterVec

	errorRateTotal *prometheus.CounterVec
}

var _ outbound.MetricsRecorder = (*MetricsCollector)(nil)

// NewMetricsCollector creates a new metrics collector with Go runtime and
// process collectors registered
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &MetricsCollector{
		logger:   logger.Named("metrics"),
		registry: registry,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status_code"},
		),
		httpResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "route"},
		),

		mealPlansTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "meal_plans_total",
				Help:      "Meal plan generations by outcome",
			},
			[]string{"outcome"},
		),
		mealPlanDays: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "meal_plan_days",
				Help:      "Number of days per generated meal plan",
				Buckets:   []float64{1, 3, 7, 14},
			},
		),
		topUpPortions: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "meal_plan_top_up_portions",
				Help:      "Portions added to reach the calorie band per plan",
				Buckets:   []float64{0, 1, 3, 7, 15, 30, 60},
			},
		),
		recommendationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recommendations_total",
				Help:      "Recommendation requests by kind and whether rating history was used",
			},
			[]string{"kind", "used_history"},
		),
		recommendationSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "recommendation_items",
				Help:      "Items returned per recommendation request",
				Buckets:   []float64{0, 1, 3, 5, 10, 20},
			},
			[]string{"kind"},
		),
		ratingsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exercise_ratings_total",
				Help:      "Total number of exercise ratings recorded",
			},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Cache lookups by result",
			},
			[]string{"result"},
		),
		errorRateTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of errors by class",
			},
			[]string{"service", "error_type"},
		),
	}
}

// RecordMealPlan records a meal plan generation
func (m *MetricsCollector) RecordMealPlan(outcome string, days, topUpPortions int) {
	m.mealPlansTotal.WithLabelValues(outcome).Inc()
	if days > 0 {
		m.mealPlanDays.Observe(float64(days))
		m.topUpPortions.Observe(float64(topUpPortions))
	}
}

// RecordRecommendation records a recipe or exercise recommendation
func (m *MetricsCollector) RecordRecommendation(kind string, count int, usedHistory bool) {
	m.recommendationsTotal.WithLabelValues(kind, strconv.FormatBool(usedHistory)).Inc()
	m.recommendationSize.WithLabelValues(kind).Observe(float64(count))
}

// RecordRating records a stored exercise rating
func (m *MetricsCollector) RecordRating() {
	m.ratingsTotal.Inc()
}

// RecordCacheLookup records a cache hit or miss
func (m *MetricsCollector) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RecordError counts an error by service and class
func (m *MetricsCollector) RecordError(service, errorType string) {
	m.errorRateTotal.WithLabelValues(service, errorType).Inc()
}

// HTTPMiddleware records request counts, latency and response size. The
// route label is the chi route pattern so path parameters do not explode
// cardinality.
func (m *MetricsCollector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		statusCode := strconv.Itoa(status)
		duration := time.Since(start).Seconds()

		m.httpRequestsTotal.WithLabelValues(r.Method, route, statusCode).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route, statusCode).Observe(duration)
		m.httpResponseSize.WithLabelValues(r.Method, route).Observe(float64(ww.BytesWritten()))

		if status >= 400 {
			errorType := "client_error"
			if status >= 500 {
				errorType = "server_error"
			}
			m.RecordError("http", errorType)
		}
	})
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}
