package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/middleware"
)

// testClient is the address httptest.NewRequest reports.
const testClient = "192.0.2.1"

func newTestGuard() *middleware.BruteForceGuard {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return middleware.NewBruteForceGuard(log)
}

func TestBruteForce_SuccessfulAuthResetsCount(t *testing.T) {
	guard := newTestGuard()

	for range 4 {
		guard.RecordFailure("10.0.0.1")
	}
	guard.Reset("10.0.0.1")
	guard.RecordFailure("10.0.0.1")

	if guard.IsBlocked("10.0.0.1") {
		t.Fatal("client should not be blocked after reset")
	}
}

func TestBruteForce_FailureIncrementsAndBlocks(t *testing.T) {
	guard := newTestGuard()

	for range 5 {
		guard.RecordFailure("10.0.0.2")
	}

	if !guard.IsBlocked("10.0.0.2") {
		t.Fatal("client should be blocked after max failures")
	}

	if guard.IsBlocked("10.0.0.3") {
		t.Fatal("other clients must not be affected")
	}
}

func TestBruteForce_NotBlockedBeforeMax(t *testing.T) {
	guard := newTestGuard()

	for range 4 {
		guard.RecordFailure("10.0.0.4")
	}

	if guard.IsBlocked("10.0.0.4") {
		t.Fatal("client should not be blocked before max failures")
	}
}

func serveGuarded(guard *middleware.BruteForceGuard, authHeader string) *httptest.ResponseRecorder {
	r := gin.New()
	r.Use(middleware.BruteForceMiddleware(guard))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)

	return w
}

func TestBruteForce_MiddlewareBlocksClient(t *testing.T) {
	guard := newTestGuard()

	for range 5 {
		guard.RecordFailure(testClient)
	}

	// A locked-out client is refused whatever key it presents.
	for _, header := range []string{"", "Bearer another-key"} {
		w := serveGuarded(guard, header)
		if w.Code != http.StatusTooManyRequests {
			t.Fatalf("header %q: expected 429, got %d", header, w.Code)
		}
		if w.Header().Get("Retry-After") == "" {
			t.Error("expected Retry-After header")
		}
	}
}

func TestBruteForce_MiddlewareAllowsUnblockedClient(t *testing.T) {
	guard := newTestGuard()

	if w := serveGuarded(guard, "Bearer goodtoken"); w.Code != http.StatusOK {
		t.Fatalf("unblocked client should pass, got %d", w.Code)
	}
}
