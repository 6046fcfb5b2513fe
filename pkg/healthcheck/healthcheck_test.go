package healthcheck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type HealthCheckTestSuite struct {
	suite.Suite
	hc *HealthCheck
}

func (suite *HealthCheckTestSuite) SetupTest() {
	suite.hc = New("test", zap.NewNop())
	suite.hc.SetCacheTTL(0)
}

func staticChecker(status Status) Checker {
	return CheckerFunc(func(ctx context.Context) Check {
		return Check{Status: status, LastChecked: time.Now()}
	})
}

func (suite *HealthCheckTestSuite) TestCheck() {
	suite.Run("NoCheckers_ShouldBeHealthy", func() {
		// Act
		resp := suite.hc.Check(context.Background())

		// Assert
		suite.Equal(StatusHealthy, resp.Status)
		suite.Empty(resp.Checks)
	})

	suite.Run("DegradedChecker_ShouldDegradeOverall", func() {
		// Arrange
		suite.hc.Register("catalog", staticChecker(StatusHealthy))
		suite.hc.Register("cache", staticChecker(StatusDegraded))

		// Act
		resp := suite.hc.Check(context.Background())

		// Assert
		suite.Equal(StatusDegraded, resp.Status)
		suite.Require().Len(resp.Checks, 2)
		suite.Equal("cache", resp.Checks[0].Name)
		suite.Equal("catalog", resp.Checks[1].Name)
	})

	suite.Run("FailingPing_ShouldBeUnhealthy", func() {
		// Arrange
		suite.hc.Register("database", NewPingChecker(func(ctx context.Context) error {
			return errors.New("connection refused")
		}))

		// Act
		resp := suite.hc.Check(context.Background())

		// Assert
		suite.Equal(StatusUnhealthy, resp.Status)
	})
}

func (suite *HealthCheckTestSuite) TestHandlers() {
	suite.Run("Unhealthy_ShouldReturn503", func() {
		// Arrange
		suite.hc.Register("database", staticChecker(StatusUnhealthy))
		rec := httptest.NewRecorder()

		// Act
		suite.hc.Handler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		// Assert
		suite.Equal(http.StatusServiceUnavailable, rec.Code)
		var body Response
		suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		suite.Equal(StatusUnhealthy, body.Status)
	})

	suite.Run("Liveness_ShouldAlwaysBeOK", func() {
		// Arrange
		rec := httptest.NewRecorder()

		// Act
		suite.hc.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

		// Assert
		suite.Equal(http.StatusOK, rec.Code)
	})
}

func (suite *HealthCheckTestSuite) TestReadiness() {
	// Arrange
	suite.hc.Register("cache", staticChecker(StatusDegraded))
	rec := httptest.NewRecorder()

	// Act
	suite.hc.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	// Assert
	suite.Equal(http.StatusServiceUnavailable, rec.Code)
}

func TestHealthCheckTestSuite(t *testing.T) {
	suite.Run(t, new(HealthCheckTestSuite))
}
