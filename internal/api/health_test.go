package api_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/persistorai/namedgraph/internal/api"
)

func TestLiveness_ReturnsOK(t *testing.T) {
	t.Parallel()

	h := api.NewHealthHandler(&mockPinger{}, nil, testLogger(), "test-v1", "memory")

	r := newTestRouter()
	r.GET("/health", h.Liveness)

	w := doRequest(r, http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	decode(t, w, &body)

	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", body["status"])
	}

	if body["version"] != "test-v1" {
		t.Errorf("expected version 'test-v1', got %v", body["version"])
	}

	if body["storage"] != "connected" || body["driver"] != "memory" {
		t.Errorf("unexpected storage fields: %v %v", body["storage"], body["driver"])
	}
}

func TestLiveness_StorageDownStillOK(t *testing.T) {
	t.Parallel()

	h := api.NewHealthHandler(&mockPinger{err: errors.New("down")}, nil, testLogger(), "v", "postgres")

	r := newTestRouter()
	r.GET("/health", h.Liveness)

	w := doRequest(r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	decode(t, w, &body)

	if body["storage"] != "disconnected" {
		t.Errorf("expected disconnected, got %v", body["storage"])
	}
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pinger   api.Pinger
		wantCode int
	}{
		{"ready", &mockPinger{}, http.StatusOK},
		{"storage error", &mockPinger{err: errors.New("down")}, http.StatusServiceUnavailable},
		{"no backend", nil, http.StatusServiceUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := api.NewHealthHandler(tc.pinger, nil, testLogger(), "v", "memory")

			r := newTestRouter()
			r.GET("/ready", h.Readiness)

			if w := doRequest(r, http.MethodGet, "/ready", ""); w.Code != tc.wantCode {
				t.Errorf("expected %d, got %d", tc.wantCode, w.Code)
			}
		})
	}
}
