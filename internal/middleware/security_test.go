package middleware_test

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/namedgraph/internal/middleware"
)

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(middleware.SecurityHeaders())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))

	expected := map[string]string{
		"X-Content-Type-Options":       "nosniff",
		"X-Frame-Options":              "DENY",
		"Referrer-Policy":              "no-referrer",
		"Content-Security-Policy":      "default-src 'none'; frame-ancestors 'none'",
		"Cross-Origin-Resource-Policy": "same-origin",
		"Cache-Control":                "no-store",
	}

	for header, want := range expected {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}

	if got := w.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("HSTS on plain HTTP: %q", got)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.TLS = &tls.ConnectionState{}
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Strict-Transport-Security"); got == "" {
		t.Error("expected HSTS on TLS")
	}
}

func TestMaxBodySize(t *testing.T) {
	r := gin.New()
	r.Use(middleware.MaxBodySize(8))
	r.POST("/test", func(c *gin.Context) {
		var v map[string]any
		if err := c.ShouldBindJSON(&v); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"a":1}`)))
	if w.Code != http.StatusOK {
		t.Errorf("small body: got %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"a":"too long"}`)))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("declared oversize: got %d, want 413", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(middleware.RequestIDKey))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))
	generated := w.Header().Get(middleware.RequestIDHeader)
	if len(generated) != 36 || w.Body.String() != generated {
		t.Errorf("generated id %q, body %q", generated, w.Body.String())
	}

	const client = "6f1c2b3a-1d2e-4f50-8a9b-0c1d2e3f4a5b"
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set(middleware.RequestIDHeader, client)
	r.ServeHTTP(w, req)
	if got := w.Header().Get(middleware.RequestIDHeader); got != client {
		t.Errorf("client uuid not kept: %q", got)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set(middleware.RequestIDHeader, "<script>")
	r.ServeHTTP(w, req)
	if got := w.Header().Get(middleware.RequestIDHeader); got == "<script>" || len(got) != 36 {
		t.Errorf("non-uuid id should be replaced, got %q", got)
	}
}
