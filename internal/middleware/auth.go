package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/httputil"
)

// authTimingFloor is the minimum response time for rejected requests so a
// caller cannot tell a malformed header from a wrong key.
const authTimingFloor = 50 * time.Millisecond

// KeySet holds the accepted API keys as SHA-256 digests so raw keys are
// never kept in memory after startup.
type KeySet struct {
	digests [][sha256.Size]byte
}

// NewKeySet builds a KeySet. Empty keys are ignored.
func NewKeySet(keys ...string) *KeySet {
	ks := &KeySet{digests: make([][sha256.Size]byte, 0, len(keys))}
	for _, k := range keys {
		if k == "" {
			continue
		}
		ks.digests = append(ks.digests, sha256.Sum256([]byte(k)))
	}

	return ks
}

// Len returns the number of accepted keys.
func (ks *KeySet) Len() int {
	return len(ks.digests)
}

// ValidKey reports whether apiKey is accepted. Every configured key is
// compared in constant time.
func (ks *KeySet) ValidKey(apiKey string) bool {
	d := sha256.Sum256([]byte(apiKey))
	match := 0

	for i := range ks.digests {
		match |= subtle.ConstantTimeCompare(d[:], ks.digests[i][:])
	}

	return match == 1
}

// truncateKey returns at most the first 4 characters of key followed by "...".
func truncateKey(key string) string {
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return key
}

// enforceTimingFloor sleeps if needed so the response takes at least authTimingFloor.
func enforceTimingFloor(start time.Time) {
	if elapsed := time.Since(start); elapsed < authTimingFloor {
		time.Sleep(authTimingFloor - elapsed)
	}
}

// AuthMiddleware returns Gin middleware that authenticates requests via Bearer token.
// An empty KeySet disables authentication.
// If a BruteForceGuard is provided, rejected keys are counted per client address.
func AuthMiddleware(keys *KeySet, log *logrus.Logger, guards ...*BruteForceGuard) gin.HandlerFunc {
	var guard *BruteForceGuard
	if len(guards) > 0 {
		guard = guards[0]
	}

	return func(c *gin.Context) {
		if keys == nil || keys.Len() == 0 {
			c.Next()
			return
		}

		start := time.Now()
		defer func() {
			if c.Writer.Status() == http.StatusUnauthorized {
				enforceTimingFloor(start)
			}
		}()

		apiKey := ExtractBearerToken(c)
		if apiKey == "" {
			httputil.RespondError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization header")
			return
		}

		if !keys.ValidKey(apiKey) {
			logAuthFailure(log, c, apiKey)

			if guard != nil {
				guard.RecordFailure(c.ClientIP())
			}

			httputil.RespondError(c, http.StatusUnauthorized, "unauthorized", "invalid api key")
			return
		}

		if guard != nil {
			guard.Reset(c.ClientIP())
		}

		c.Next()
	}
}

// ExtractBearerToken extracts the API key from the Authorization header.
func ExtractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// logAuthFailure logs a failed authentication attempt.
func logAuthFailure(log *logrus.Logger, c *gin.Context, apiKey string) {
	log.WithFields(logrus.Fields{
		"client_ip":  c.ClientIP(),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"user_agent": c.Request.UserAgent(),
		"request_id": c.GetString(RequestIDKey),
		"key_prefix": truncateKey(apiKey),
	}).Warn("authentication failed: invalid api key")
}
