package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRateLimiterAllow(t *testing.T) {
	limiter := NewRateLimiter(rate.Limit(1), 2)

	require.True(t, limiter.Allow("10.0.0.1"))
	require.True(t, limiter.Allow("10.0.0.1"))
	require.False(t, limiter.Allow("10.0.0.1"))

	// Budgets are tracked per key.
	require.True(t, limiter.Allow("10.0.0.2"))
}

func TestRateLimiterMinimumBurst(t *testing.T) {
	// A zero burst would reject everything.
	limiter := NewRateLimiter(rate.Limit(1), 0)
	require.True(t, limiter.Allow("10.0.0.1"))
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimiter(rate.Limit(1), 1)
	handler := RateLimit(limiter)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	newContext := func() echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/api/creators", nil)
		return echo.New().NewContext(req, httptest.NewRecorder())
	}

	require.NoError(t, handler(newContext()))

	err := handler(newContext())
	require.Error(t, err)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusTooManyRequests, httpErr.Code)
}

func TestRateLimitWithKey(t *testing.T) {
	limiter := NewRateLimiter(rate.Limit(1), 1)
	keyedByUser := RateLimitWithKey(limiter, func(c echo.Context) string {
		return c.Request().Header.Get("X-User")
	})
	handler := keyedByUser(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	newContext := func(user string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/api/creators", nil)
		req.Header.Set("X-User", user)
		return echo.New().NewContext(req, httptest.NewRecorder())
	}

	require.NoError(t, handler(newContext("alice")))
	require.Error(t, handler(newContext("alice")))

	// A different key has its own budget.
	require.NoError(t, handler(newContext("bob")))
}
