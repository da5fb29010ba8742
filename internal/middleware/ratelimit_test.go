package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/namedgraph/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func limitedRouter(rl *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	return r
}

func sendFrom(r http.Handler, addr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.RemoteAddr = addr
	r.ServeHTTP(w, req)

	return w
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	r := limitedRouter(middleware.NewRateLimiter(10, 5))

	if w := sendFrom(r, "1.2.3.4:1234"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRateLimiter_BlocksExceedingLimit(t *testing.T) {
	r := limitedRouter(middleware.NewRateLimiter(1, 2))

	for i := range 3 {
		w := sendFrom(r, "1.2.3.4:1234")

		if i < 2 && w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
		if i == 2 {
			if w.Code != http.StatusTooManyRequests {
				t.Fatalf("request %d: expected 429, got %d", i, w.Code)
			}
			if w.Header().Get("Retry-After") != "1" {
				t.Errorf("Retry-After = %q, want 1", w.Header().Get("Retry-After"))
			}
		}
	}
}

func TestRateLimiter_IndependentBuckets(t *testing.T) {
	r := limitedRouter(middleware.NewRateLimiter(1, 1))

	sendFrom(r, "1.1.1.1:1000")

	if w := sendFrom(r, "2.2.2.2:1000"); w.Code != http.StatusOK {
		t.Fatalf("different IP should not be rate limited, got %d", w.Code)
	}
}

func TestRateLimiter_TokensRefillOverTime(t *testing.T) {
	// High rate so even tiny elapsed time refills tokens
	r := limitedRouter(middleware.NewRateLimiter(1000000, 2))

	for range 2 {
		sendFrom(r, "5.5.5.5:1000")
	}

	if w := sendFrom(r, "5.5.5.5:1000"); w.Code != http.StatusOK {
		t.Fatalf("expected tokens to refill, got %d", w.Code)
	}
}
