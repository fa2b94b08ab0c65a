package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitRule describes a token bucket refilled PerMinute times a minute.
type RateLimitRule struct {
	PerMinute float64
	Burst     int
}

// RateLimitConfig binds a rule to a scope name shared by the routes it guards.
type RateLimitConfig struct {
	Scope   string
	Rule    RateLimitRule
	Limiter *RateLimiter
}

// sweepInterval bounds how often idle buckets are scanned for eviction.
const sweepInterval = time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	// refill is how long an untouched bucket takes to become full again.
	refill time.Duration
}

// RateLimiter keeps one token bucket per principal and scope.
// Buckets idle long enough to have refilled are dropped on a later insert.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		limiters: make(map[string]*bucket),
		now:      now,
	}
}

// RateLimit rejects requests with 429 once the caller's bucket is empty.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.Scope == "" {
		cfg.Scope = "default"
	}
	return func(c *gin.Context) {
		principal := strings.TrimSpace(UserIDFromContext(c))
		if principal == "" {
			principal = strings.TrimSpace(c.ClientIP())
		}
		allowed, retryAfter := cfg.Limiter.Allow(principal+"|"+cfg.Scope, cfg.Rule)
		if allowed {
			c.Next()
			return
		}
		retryAfterSeconds := int(math.Ceil(retryAfter.Seconds()))
		if retryAfterSeconds <= 0 {
			retryAfterSeconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": gin.H{
				"code":    "rate_limited",
				"message": "too many requests",
				"details": gin.H{"retryAfterMs": retryAfter.Milliseconds()},
			},
		})
	}
}

// Allow consumes one token for key and reports how long to wait when none is left.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || rule.PerMinute <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	now := l.now()
	limiter := l.limiterFor(key, rule, now)

	reservation := limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, time.Minute
	}
	delay := reservation.DelayFrom(now)
	if delay <= 0 {
		return true, 0
	}
	reservation.CancelAt(now)
	return false, delay
}

func (l *RateLimiter) limiterFor(key string, rule RateLimitRule, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.limiters[key]; ok {
		b.lastSeen = now
		return b.limiter
	}

	l.sweep(now)
	b := &bucket{
		limiter:  rate.NewLimiter(rate.Limit(rule.PerMinute/60.0), rule.Burst),
		lastSeen: now,
		refill:   time.Duration(float64(rule.Burst) / rule.PerMinute * float64(time.Minute)),
	}
	l.limiters[key] = b
	return b.limiter
}

// sweep drops buckets that are full again. Caller holds l.mu.
func (l *RateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < sweepInterval {
		return
	}
	l.lastSweep = now
	for key, b := range l.limiters {
		if now.Sub(b.lastSeen) > b.refill {
			delete(l.limiters, key)
		}
	}
}
