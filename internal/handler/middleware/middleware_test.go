//go:build unit

package middleware_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"service-marketplace/internal/domain/user"
	"service-marketplace/internal/handler/httperr"
	"service-marketplace/internal/handler/middleware"
	"service-marketplace/internal/pkg/config"
	"service-marketplace/internal/pkg/metrics"
	"service-marketplace/tests/common/httptest"
	usecasemock "service-marketplace/tests/mock/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// echoActor writes the actor the middleware chain resolved.
func echoActor(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.Status(http.StatusTeapot)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": actor.ID.String(), "role": actor.Role.String()})
}

// =============================================================================
// Auth
// =============================================================================

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()

	newRouter := func(t *testing.T, setup func(*usecasemock.MockTokenValidator)) *gin.Engine {
		ctrl := gomock.NewController(t)
		validator := usecasemock.NewMockTokenValidator(ctrl)
		if setup != nil {
			setup(validator)
		}
		auth := middleware.NewAuthMiddleware(validator, zap.NewNop())

		r := gin.New()
		r.GET("/me", auth.RequireAuth(), echoActor)
		r.GET("/providers-only", auth.RequireAuth(), auth.RequireRole(user.RoleProvider), echoActor)
		return r
	}

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.PerformRequest(t, newRouter(t, nil), http.MethodGet, "/me", nil, "")
		httptest.AssertErrorResponse(t, rec, http.StatusUnauthorized, httperr.CodeUnauthorized)
	})

	t.Run("non bearer scheme", func(t *testing.T) {
		rec := httptest.PerformRequestWithHeaders(t, newRouter(t, nil), http.MethodGet, "/me", nil, "",
			map[string]string{"Authorization": "Basic dXNlcjpwYXNz"})
		httptest.AssertErrorResponse(t, rec, http.StatusUnauthorized, httperr.CodeUnauthorized)
	})

	t.Run("rejected token", func(t *testing.T) {
		router := newRouter(t, func(v *usecasemock.MockTokenValidator) {
			v.EXPECT().ValidateToken("expired").Return(uuid.Nil, user.Role(""), errors.New("token is expired")).Times(1)
		})
		rec := httptest.PerformRequest(t, router, http.MethodGet, "/me", nil, "expired")
		httptest.AssertErrorResponse(t, rec, http.StatusUnauthorized, httperr.CodeUnauthorized)
	})

	t.Run("valid token sets the actor", func(t *testing.T) {
		router := newRouter(t, func(v *usecasemock.MockTokenValidator) {
			v.EXPECT().ValidateToken("good").Return(userID, user.RoleClient, nil).Times(1)
		})
		rec := httptest.PerformRequest(t, router, http.MethodGet, "/me", nil, "good")

		var body map[string]string
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &body)
		assert.Equal(t, userID.String(), body["id"])
		assert.Equal(t, "client", body["role"])
	})

	t.Run("role gate", func(t *testing.T) {
		router := newRouter(t, func(v *usecasemock.MockTokenValidator) {
			v.EXPECT().ValidateToken("client").Return(userID, user.RoleClient, nil).Times(1)
			v.EXPECT().ValidateToken("provider").Return(userID, user.RoleProvider, nil).Times(1)
		})

		rec := httptest.PerformRequest(t, router, http.MethodGet, "/providers-only", nil, "client")
		httptest.AssertErrorResponse(t, rec, http.StatusForbidden, httperr.CodeForbidden)

		rec = httptest.PerformRequest(t, router, http.MethodGet, "/providers-only", nil, "provider")
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, nil)
	})

	t.Run("role gate without auth", func(t *testing.T) {
		auth := middleware.NewAuthMiddleware(nil, zap.NewNop())
		r := gin.New()
		r.GET("/x", auth.RequireRole(user.RoleProvider), echoActor)

		rec := httptest.PerformRequest(t, r, http.MethodGet, "/x", nil, "")
		httptest.AssertErrorResponse(t, rec, http.StatusUnauthorized, httperr.CodeUnauthorized)
	})
}

// =============================================================================
// Errors and recovery
// =============================================================================

func TestErrorHandling(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CustomRecovery(zap.NewNop()), middleware.ErrorHandler(zap.NewNop()))
	r.GET("/panic", func(*gin.Context) { panic("boom") })
	r.GET("/unhandled", func(c *gin.Context) { _ = c.Error(errors.New("lost connection")) })
	r.GET("/public", func(c *gin.Context) {
		httperr.AbortWithError(c, http.StatusConflict, errors.New("taken"), httperr.CodeConflict, "Slot taken", nil)
	})

	t.Run("panic becomes 500", func(t *testing.T) {
		rec := httptest.PerformRequest(t, r, http.MethodGet, "/panic", nil, "")
		body := httptest.AssertErrorResponse(t, rec, http.StatusInternalServerError, httperr.CodeInternal)
		assert.Equal(t, "Internal server error", body.Error.Message)
	})

	t.Run("error without a response becomes 500", func(t *testing.T) {
		rec := httptest.PerformRequest(t, r, http.MethodGet, "/unhandled", nil, "")
		httptest.AssertErrorResponse(t, rec, http.StatusInternalServerError, httperr.CodeInternal)
	})

	t.Run("public errors are written once", func(t *testing.T) {
		rec := httptest.PerformRequest(t, r, http.MethodGet, "/public", nil, "")
		body := httptest.AssertErrorResponse(t, rec, http.StatusConflict, httperr.CodeConflict)
		assert.Equal(t, "Slot taken", body.Error.Message)
		assert.Equal(t, 1, strings.Count(rec.Body.String(), `"error"`))
	})
}

// =============================================================================
// Request logging
// =============================================================================

func TestRequestLogger(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestLogger(zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, middleware.GetRequestID(c)) })

	t.Run("reuses the caller's request id", func(t *testing.T) {
		rec := httptest.PerformRequestWithHeaders(t, r, http.MethodGet, "/ping", nil, "",
			map[string]string{middleware.HeaderRequestID: "req-42"})
		assert.Equal(t, "req-42", rec.Body.String())
		assert.Equal(t, "req-42", rec.Header().Get(middleware.HeaderRequestID))
	})

	t.Run("generates one otherwise", func(t *testing.T) {
		rec := httptest.PerformRequest(t, r, http.MethodGet, "/ping", nil, "")
		id := rec.Header().Get(middleware.HeaderRequestID)
		assert.NotEmpty(t, id)
		assert.Equal(t, id, rec.Body.String())
	})
}

// =============================================================================
// Rate limiting
// =============================================================================

func TestRateLimiter(t *testing.T) {
	rl := middleware.NewRateLimiter(config.RateLimitConfig{RPS: 0.01, Burst: 2}, zap.NewNop())
	r := gin.New()
	r.POST("/write", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	from := func(ip string) map[string]string {
		return map[string]string{"X-Forwarded-For": ip}
	}

	for i := 0; i < 2; i++ {
		rec := httptest.PerformRequestWithHeaders(t, r, http.MethodPost, "/write", nil, "", from("203.0.113.1"))
		require.Equal(t, http.StatusNoContent, rec.Code, "request %d", i)
	}

	rec := httptest.PerformRequestWithHeaders(t, r, http.MethodPost, "/write", nil, "", from("203.0.113.1"))
	httptest.AssertErrorResponse(t, rec, http.StatusTooManyRequests, httperr.CodeRateLimited)

	rec = httptest.PerformRequestWithHeaders(t, r, http.MethodPost, "/write", nil, "", from("203.0.113.2"))
	assert.Equal(t, http.StatusNoContent, rec.Code, "other clients keep their own budget")
}

// =============================================================================
// Metrics
// =============================================================================

func TestMetricsMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := gin.New()
	r.Use(middleware.Metrics(metrics.New(reg)))
	r.GET("/api/bookings/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	httptest.PerformRequest(t, r, http.MethodGet, "/api/bookings/"+uuid.NewString(), nil, "")
	httptest.PerformRequest(t, r, http.MethodGet, "/api/bookings/"+uuid.NewString(), nil, "")
	httptest.PerformRequest(t, r, http.MethodGet, "/nowhere", nil, "")

	expected := `
# HELP marketplace_http_requests_total HTTP requests by method, route and status code.
# TYPE marketplace_http_requests_total counter
marketplace_http_requests_total{method="GET",route="/api/bookings/:id",status="200"} 2
marketplace_http_requests_total{method="GET",route="unmatched",status="404"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "marketplace_http_requests_total"))
}
