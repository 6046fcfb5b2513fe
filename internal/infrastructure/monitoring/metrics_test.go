package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type MetricsTestSuite struct {
	suite.Suite
	metrics *MetricsCollector
}

func (suite *MetricsTestSuite) SetupTest() {
	suite.metrics = NewMetricsCollector(zap.NewNop())
}

func (suite *MetricsTestSuite) TestPlannerMetrics() {
	suite.Run("MealPlan_ShouldCountOutcome", func() {
		// Act
		suite.metrics.RecordMealPlan("success", 7, 4)
		suite.metrics.RecordMealPlan("no_matching_recipes", 0, 0)

		// Assert
		suite.Equal(1.0, testutil.ToFloat64(suite.metrics.mealPlansTotal.WithLabelValues("success")))
		suite.Equal(1.0, testutil.ToFloat64(suite.metrics.mealPlansTotal.WithLabelValues("no_matching_recipes")))
		suite.Equal(1, testutil.CollectAndCount(suite.metrics.mealPlanDays))
	})

	suite.Run("Recommendation_ShouldLabelHistoryUse", func() {
		// Act
		suite.metrics.RecordRecommendation("exercise", 5, true)

		// Assert
		suite.Equal(1.0, testutil.ToFloat64(suite.metrics.recommendationsTotal.WithLabelValues("exercise", "true")))
	})

	suite.Run("CacheLookup_ShouldSplitHitsAndMisses", func() {
		// Act
		suite.metrics.RecordCacheLookup(true)
		suite.metrics.RecordCacheLookup(false)
		suite.metrics.RecordCacheLookup(false)

		// Assert
		suite.Equal(1.0, testutil.ToFloat64(suite.metrics.cacheLookups.WithLabelValues("hit")))
		suite.Equal(2.0, testutil.ToFloat64(suite.metrics.cacheLookups.WithLabelValues("miss")))
	})
}

func (suite *MetricsTestSuite) TestHTTPMiddleware() {
	// Arrange
	r := chi.NewRouter()
	r.Use(suite.metrics.HTTPMiddleware)
	r.Get("/api/v1/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", suite.metrics.Handler())

	// Act
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/abc", nil))

	// Assert
	suite.Equal(http.StatusNotFound, rec.Code)
	suite.Equal(1.0, testutil.ToFloat64(
		suite.metrics.httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/users/{id}", "404"),
	))
	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.errorRateTotal.WithLabelValues("http", "client_error")))

	metricsRec := httptest.NewRecorder()
	r.ServeHTTP(metricsRec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	suite.Equal(http.StatusOK, metricsRec.Code)
	suite.True(strings.Contains(metricsRec.Body.String(), "smartmeals_http_requests_total"))
}

func (suite *MetricsTestSuite) TestTracingDisabled() {
	// Act
	tp, err := NewTracingProvider(context.Background(), TracingConfig{Enabled: false}, zap.NewNop())

	// Assert
	suite.Require().NoError(err)
	suite.False(tp.Enabled())
	suite.NoError(tp.Shutdown(context.Background()))
}

func TestMetricsTestSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}
