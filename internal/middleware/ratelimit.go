package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/service"
	appErrors "github.com/noah-isme/tennis-lesson-scheduler/pkg/errors"
	"github.com/noah-isme/tennis-lesson-scheduler/pkg/response"
)

const minIdleEviction = 10 * time.Minute

// RateLimiter hands out one token bucket per caller. Buckets idle for longer
// than a full refill are dropped, since a fresh bucket behaves identically.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     rate.Limit
	burst     int
	idleAfter time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per caller with the given burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	if burst <= 0 {
		burst = 1
	}
	interval := time.Minute / time.Duration(perMinute)
	idleAfter := interval * time.Duration(burst)
	if idleAfter < minIdleEviction {
		idleAfter = minIdleEviction
	}
	return &RateLimiter{
		buckets:   make(map[string]*bucket),
		limit:     rate.Every(interval),
		burst:     burst,
		idleAfter: idleAfter,
		now:       time.Now,
	}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.lastSweep.IsZero() {
		l.lastSweep = now
	}
	if now.Sub(l.lastSweep) >= l.idleAfter {
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

func (l *RateLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.idleAfter {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

func (l *RateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Middleware rejects callers that exhausted their bucket with 429. Callers are
// keyed by user id when authenticated, otherwise by client IP.
func (l *RateLimiter) Middleware(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if claims, ok := CurrentClaims(c); ok && claims.UserID != "" {
			key = "user:" + claims.UserID
		}

		reservation := l.limiter(key).Reserve()
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			metrics.RecordRateLimited()
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			response.Error(c, appErrors.ErrTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}
