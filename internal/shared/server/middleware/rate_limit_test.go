package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inreader-backend/internal/shared/telemetry"
)

func TestRateLimitGroupsAreIndependent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })

	groupFor := func(c *gin.Context) string {
		if c.FullPath() == "/auth/login" {
			return "AUTH"
		}
		return "DEFAULT"
	}

	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		DefaultGroup: "DEFAULT",
		GroupFor:     groupFor,
		Limiter:      limiter,
		Rules: map[string]RateLimitRule{
			"DEFAULT": {Rate: 5, Burst: 10},
			"AUTH":    {Rate: 1, Burst: 2},
		},
	}))
	r.POST("/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, resp.Code, "health request %d", i+1)
	}
	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		require.Equal(t, http.StatusOK, resp.Code, "login request %d", i+1)
	}

	telemetry.SetOutput(io.Discard)
	t.Cleanup(func() { telemetry.Setup("info", "json") })
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
}

func TestRateLimit429IncludesRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	telemetry.SetOutput(io.Discard)
	t.Cleanup(func() { telemetry.Setup("info", "json") })
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })

	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		Limiter: limiter,
		Rules: map[string]RateLimitRule{
			"DEFAULT": {Rate: 1, Burst: 1},
		},
	}))
	r.GET("/limited", func(c *gin.Context) { c.Status(http.StatusOK) })

	resp1 := httptest.NewRecorder()
	r.ServeHTTP(resp1, httptest.NewRequest(http.MethodGet, "/limited", nil))
	require.Equal(t, http.StatusOK, resp1.Code)

	resp2 := httptest.NewRecorder()
	r.ServeHTTP(resp2, httptest.NewRequest(http.MethodGet, "/limited", nil))
	require.Equal(t, http.StatusTooManyRequests, resp2.Code)
	assert.Equal(t, "1", resp2.Header().Get("Retry-After"))

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&payload))
	assert.EqualValues(t, http.StatusTooManyRequests, payload["statusCode"])
	assert.Equal(t, "Too Many Requests", payload["error"])
}

func TestRateLimiterRefills(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 2, Burst: 1}

	ok, _ := limiter.Allow("k", rule)
	require.True(t, ok)
	ok, wait := limiter.Allow("k", rule)
	require.False(t, ok)
	assert.Equal(t, 500*time.Millisecond, wait)

	now = now.Add(500 * time.Millisecond)
	ok, _ = limiter.Allow("k", rule)
	assert.True(t, ok)
}

func TestRateLimiterSweepsIdleBuckets(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := PerMinute(60)

	for i := 0; i < sweepEveryCall-1; i++ {
		limiter.Allow("user-"+strconv.Itoa(i), rule)
	}
	require.Equal(t, sweepEveryCall-1, limiter.Size())

	now = now.Add(bucketIdleTTL + time.Second)
	limiter.Allow("fresh", rule)
	assert.Equal(t, 1, limiter.Size())
}

func TestPerMinute(t *testing.T) {
	rule := PerMinute(30)
	assert.Equal(t, 30, rule.Burst)
	assert.InDelta(t, 0.5, rule.Rate, 1e-9)
}
