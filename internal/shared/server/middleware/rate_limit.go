package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"inreader-backend/internal/shared/server/respond"
	"inreader-backend/internal/shared/telemetry"
)

const (
	defaultRateLimitGroup = "DEFAULT"

	// buckets untouched for this long are dropped on the next sweep
	bucketIdleTTL  = 10 * time.Minute
	sweepEveryCall = 1024
)

// RateLimitRule is a token bucket: Rate tokens per second up to Burst.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

// PerMinute builds a rule allowing n requests per minute with a burst of n.
func PerMinute(n int) RateLimitRule {
	return RateLimitRule{Rate: float64(n) / 60, Burst: n}
}

// RateLimitConfig maps request groups to rules. Requests whose group has no
// rule are not limited.
type RateLimitConfig struct {
	Rules        map[string]RateLimitRule
	DefaultGroup string
	GroupFor     func(*gin.Context) string
	Limiter      *RateLimiter
}

// RateLimiter keeps one token bucket per principal and group.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
	calls   int
	now     func() time.Time
}

type rateBucket struct {
	tokens float64
	last   time.Time
}

// NewRateLimiter builds a limiter; now defaults to time.Now.
func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{buckets: make(map[string]*rateBucket), now: now}
}

// RateLimit throttles per principal (user ID, else client IP) and group.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = defaultRateLimitGroup
	}
	return func(c *gin.Context) {
		group := cfg.DefaultGroup
		if cfg.GroupFor != nil {
			if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
				group = g
			}
		}
		rule, ok := cfg.Rules[group]
		if !ok {
			c.Next()
			return
		}

		principal := UserIDFromContext(c)
		if principal == "" {
			principal = c.ClientIP()
		}
		allowed, retryAfter := cfg.Limiter.Allow(principal+"|"+group, rule)
		if allowed {
			c.Next()
			return
		}

		seconds := int(math.Ceil(retryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		telemetry.Warn("rate_limit.exceeded", map[string]any{
			"group":       group,
			"principal":   principal,
			"path":        c.Request.URL.Path,
			"retry_after": seconds,
		})
		c.Header("Retry-After", strconv.Itoa(seconds))
		respond.Error(c, http.StatusTooManyRequests, "Too many requests, retry in "+strconv.Itoa(seconds)+"s")
	}
}

// Allow takes a token for key. When none is left it reports how long until
// the next one.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if l.calls%sweepEveryCall == 0 {
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &rateBucket{tokens: float64(rule.Burst), last: now}
		l.buckets[key] = b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = math.Min(float64(rule.Burst), b.tokens+elapsed*rule.Rate)
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	wait := (1 - b.tokens) / rule.Rate
	return false, time.Duration(math.Ceil(wait*1000)) * time.Millisecond
}

// Size reports the number of live buckets.
func (l *RateLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *RateLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.last) > bucketIdleTTL {
			delete(l.buckets, key)
		}
	}
}
