package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/httputil"
)

const (
	bruteForceMaxAttempts = 5
	bruteForceWindow      = 15 * time.Minute
	bruteForceLockout     = 5 * time.Minute
	bruteForceMaxClients  = 10000
)

type failureRecord struct {
	attempts  int
	firstFail time.Time
	lockedAt  time.Time
}

// BruteForceGuard counts rejected API keys per client address and locks a
// client out once it reaches the failure threshold within the window.
// Records expire with the window; the oldest are evicted past the cap.
type BruteForceGuard struct {
	mu      sync.Mutex
	records *expirable.LRU[string, *failureRecord]
	log     *logrus.Logger
	now     func() time.Time
}

// NewBruteForceGuard creates a guard.
func NewBruteForceGuard(log *logrus.Logger) *BruteForceGuard {
	return &BruteForceGuard{
		records: expirable.NewLRU[string, *failureRecord](bruteForceMaxClients, nil, bruteForceWindow),
		log:     log,
		now:     time.Now,
	}
}

// IsBlocked reports whether client is currently locked out.
func (g *BruteForceGuard) IsBlocked(client string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records.Peek(client)
	if !ok || rec.lockedAt.IsZero() {
		return false
	}

	return g.now().Sub(rec.lockedAt) < bruteForceLockout
}

// RecordFailure counts one rejected key from client.
func (g *BruteForceGuard) RecordFailure(client string) {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records.Get(client)
	if !ok || now.Sub(rec.firstFail) > bruteForceWindow {
		g.records.Add(client, &failureRecord{attempts: 1, firstFail: now})
		return
	}

	rec.attempts++
	if rec.attempts >= bruteForceMaxAttempts && rec.lockedAt.IsZero() {
		rec.lockedAt = now
		g.records.Add(client, rec)
		g.log.WithField("client", client).Warn("client locked out after repeated auth failures")
	}
}

// Reset clears the failures recorded for client after a successful auth.
func (g *BruteForceGuard) Reset(client string) {
	g.mu.Lock()
	g.records.Remove(client)
	g.mu.Unlock()
}

// BruteForceMiddleware rejects requests from locked-out clients before
// their key is checked.
func BruteForceMiddleware(guard *BruteForceGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		if guard.IsBlocked(c.ClientIP()) {
			c.Header("Retry-After", retryAfter(bruteForceLockout))
			httputil.RespondError(c, http.StatusTooManyRequests, "rate_limited", "too many failed authentication attempts")
			return
		}

		c.Next()
	}
}
