package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MiddlewareTestSuite struct {
	suite.Suite
	ok http.Handler
}

func (suite *MiddlewareTestSuite) SetupTest() {
	suite.ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func (suite *MiddlewareTestSuite) TestRateLimiter() {
	suite.Run("BurstExceeded_ShouldReturn429", func() {
		// Arrange
		rl := NewRateLimiter(0.001, 2, time.Minute, zap.NewNop())
		h := rl.Middleware(suite.ok)

		// Act
		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/foods", nil)
			req.RemoteAddr = "10.0.0.1:5000"
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			codes = append(codes, rec.Code)
		}

		// Assert
		suite.Equal([]int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})

	suite.Run("DifferentClients_ShouldHaveSeparateBudgets", func() {
		// Arrange
		rl := NewRateLimiter(0.001, 1, time.Minute, zap.NewNop())
		h := rl.Middleware(suite.ok)

		// Act
		first := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1"
		h.ServeHTTP(first, req)

		second := httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.2:1"
		h.ServeHTTP(second, req)

		// Assert
		suite.Equal(http.StatusOK, first.Code)
		suite.Equal(http.StatusOK, second.Code)
	})

	suite.Run("Cleanup_ShouldEvictIdleClients", func() {
		// Arrange
		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		rl := NewRateLimiter(1, 1, time.Minute, zap.NewNop())
		rl.now = func() time.Time { return now }
		rl.limiter("10.0.0.1")
		now = now.Add(2 * time.Minute)
		rl.limiter("10.0.0.2")

		// Act
		removed := rl.Cleanup()

		// Assert
		suite.Equal(1, removed)
		suite.Len(rl.visitors, 1)
	})
}

func (suite *MiddlewareTestSuite) TestCORS() {
	suite.Run("AllowedOrigin_ShouldBeEchoed", func() {
		// Arrange
		h := CORS([]string{"https://app.example.com"})(suite.ok)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()

		// Act
		h.ServeHTTP(rec, req)

		// Assert
		suite.Equal("https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	suite.Run("UnknownOrigin_ShouldNotBeAllowed", func() {
		// Arrange
		h := CORS([]string{"https://app.example.com"})(suite.ok)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()

		// Act
		h.ServeHTTP(rec, req)

		// Assert
		suite.Empty(rec.Header().Get("Access-Control-Allow-Origin"))
	})

	suite.Run("Preflight_ShouldShortCircuit", func() {
		// Arrange
		h := CORS(nil)(suite.ok)
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://any.example.com")
		rec := httptest.NewRecorder()

		// Act
		h.ServeHTTP(rec, req)

		// Assert
		suite.Equal(http.StatusNoContent, rec.Code)
		suite.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func (suite *MiddlewareTestSuite) TestJSONOnly() {
	// Arrange
	h := JSONOnly()(suite.ok)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("weight=70"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	// Act
	h.ServeHTTP(rec, req)

	// Assert
	suite.Equal(http.StatusUnsupportedMediaType, rec.Code)
}

func (suite *MiddlewareTestSuite) TestLogger() {
	// Arrange
	core, logs := observer.New(zap.InfoLevel)
	h := Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	// Act
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	// Assert
	suite.Require().Equal(1, logs.Len())
	entry := logs.All()[0]
	suite.Equal(zap.WarnLevel, entry.Level)
	suite.EqualValues(http.StatusNotFound, entry.ContextMap()["status_code"])
}

func TestMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}
