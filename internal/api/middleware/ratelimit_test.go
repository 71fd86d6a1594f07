package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/KXX-Hub/kxx-digital-album/internal/ratelimit"
)

type fakeLimiter struct {
	decision ratelimit.Decision
	err      error
	keys     []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (ratelimit.Decision, error) {
	f.keys = append(f.keys, key)
	return f.decision, f.err
}

func (f *fakeLimiter) Close() error { return nil }

func setupRateLimitRouter(limiter ratelimit.Limiter, withCaller bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if withCaller {
		router.Use(func(c *gin.Context) {
			c.Set(CALLER_KEY, caller)
			c.Next()
		})
	}
	router.Use(RateLimit(limiter))
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name          string
		limiter       *fakeLimiter
		withCaller    bool
		expectedCode  int
		expectedKey   string
		expectedRetry string
	}{
		{
			name:         "allowed by ip",
			limiter:      &fakeLimiter{decision: ratelimit.Decision{Allowed: true, Remaining: 4}},
			expectedCode: http.StatusNoContent,
			expectedKey:  "ip:192.0.2.1",
		},
		{
			name:         "allowed by caller",
			limiter:      &fakeLimiter{decision: ratelimit.Decision{Allowed: true}},
			withCaller:   true,
			expectedCode: http.StatusNoContent,
			expectedKey:  "caller:" + caller.Hex(),
		},
		{
			name:          "rejected",
			limiter:       &fakeLimiter{decision: ratelimit.Decision{Allowed: false, RetryAfter: 1500 * time.Millisecond}},
			expectedCode:  http.StatusTooManyRequests,
			expectedKey:   "ip:192.0.2.1",
			expectedRetry: "2",
		},
		{
			name:          "rejected with sub-second wait",
			limiter:       &fakeLimiter{decision: ratelimit.Decision{Allowed: false, RetryAfter: 10 * time.Millisecond}},
			expectedCode:  http.StatusTooManyRequests,
			expectedKey:   "ip:192.0.2.1",
			expectedRetry: "1",
		},
		{
			name:         "limiter error fails open",
			limiter:      &fakeLimiter{err: errors.New("redis down")},
			expectedCode: http.StatusNoContent,
			expectedKey:  "ip:192.0.2.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRateLimitRouter(tt.limiter, tt.withCaller)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, []string{tt.expectedKey}, tt.limiter.keys)
			assert.Equal(t, tt.expectedRetry, w.Header().Get("Retry-After"))
			if tt.expectedCode == http.StatusTooManyRequests {
				assert.Contains(t, w.Body.String(), `"code":"rate_limited"`)
			}
		})
	}
}

func TestRateLimit_NilLimiter(t *testing.T) {
	router := setupRateLimitRouter(nil, false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
