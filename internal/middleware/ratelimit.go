// Package middleware provides HTTP middleware for the namedgraph server.
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/persistorai/namedgraph/internal/httputil"
)

const (
	// maxLimiters caps the number of tracked client addresses.
	maxLimiters = 100_000
	// limiterIdle is how long an unused limiter is kept.
	limiterIdle = 10 * time.Minute
)

// RateLimiter applies a token bucket per client address.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

// NewRateLimiter creates a RateLimiter allowing ratePerSec requests per
// second with the given burst for each client.
func NewRateLimiter(ratePerSec, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](maxLimiters, nil, limiterIdle),
		limit:    rate.Limit(ratePerSec),
		burst:    burst,
	}
}

func (rl *RateLimiter) limiter(client string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters.Get(client)
	if !ok {
		l = rate.NewLimiter(rl.limit, rl.burst)
	}

	// Re-adding refreshes the idle TTL.
	rl.limiters.Add(client, l)

	return l
}

// Handler returns Gin middleware that applies rate limiting per client IP.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// c.ClientIP() ignores X-Forwarded-For because the router trusts no proxies.
		r := rl.limiter(c.ClientIP()).Reserve()
		if delay := r.Delay(); delay > 0 {
			r.Cancel()
			c.Header("Retry-After", retryAfter(delay))
			httputil.RespondError(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")

			return
		}

		c.Next()
	}
}

// retryAfter renders d as whole seconds, rounded up.
func retryAfter(d time.Duration) string {
	return strconv.Itoa(int(math.Ceil(d.Seconds())))
}
