package api_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/persistorai/namedgraph/internal/api"
	"github.com/persistorai/namedgraph/internal/domain"
	"github.com/persistorai/namedgraph/internal/models"
)

func edgeRouter(repo *mockEdgeRepo) http.Handler {
	h := api.NewEdgeHandler(repo, testLogger())
	r := newTestRouter()
	r.GET("/graphs/:name/edges", h.Query)
	r.POST("/graphs/:name/edges", h.Find)

	return r
}

func TestEdgesFind_Success(t *testing.T) {
	t.Parallel()

	repo := &mockEdgeRepo{
		findFn: func(context.Context, domain.EdgeRequest) ([]models.Document, error) {
			return []models.Document{{
				ID: "knows/e1", Collection: "knows", Key: "e1",
				From: "people/alice", To: "people/bob",
				Attributes: map[string]any{"since": 2020.0},
			}}, nil
		},
	}

	body := `{"vertex":"people/alice","direction":"outbound","examples":"knows/e1","collections":"knows"}`
	w := doRequest(edgeRouter(repo), http.MethodPost, "/graphs/social/edges", body)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	req := repo.last
	if req == nil {
		t.Fatal("service not called")
	}

	if req.Graph != "social" || req.Vertex != "people/alice" || req.Direction != "outbound" {
		t.Errorf("unexpected request: %+v", req)
	}

	if len(req.Examples) != 1 || len(req.Collections) != 1 || req.Collections[0] != "knows" {
		t.Errorf("arguments not decoded: %+v", req)
	}

	var resp map[string][]map[string]any
	decode(t, w, &resp)

	edges := resp["edges"]
	if len(edges) != 1 || edges[0]["_from"] != "people/alice" || edges[0]["since"] != 2020.0 {
		t.Errorf("unexpected edges: %v", edges)
	}
}

func TestEdgesFind_EmptyResultIsArray(t *testing.T) {
	t.Parallel()

	repo := &mockEdgeRepo{
		findFn: func(context.Context, domain.EdgeRequest) ([]models.Document, error) {
			return []models.Document{}, nil
		},
	}

	w := doRequest(edgeRouter(repo), http.MethodPost, "/graphs/g/edges", `{"vertex":"V/v1","direction":"any"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	if !strings.Contains(w.Body.String(), `"edges":[]`) {
		t.Errorf("expected empty array, got %s", w.Body.String())
	}
}

func TestEdges_MissingDirectionRejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"post without direction", http.MethodPost, "/graphs/g/edges", `{"vertex":"V/v1"}`},
		{"post empty direction", http.MethodPost, "/graphs/g/edges", `{"vertex":"V/v1","direction":""}`},
		{"get without direction", http.MethodGet, "/graphs/g/edges?vertex=V/v1", ""},
		{"get wrong case", http.MethodGet, "/graphs/g/edges?vertex=V/v1&direction=Any", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			called := false
			repo := &mockEdgeRepo{
				findFn: func(context.Context, domain.EdgeRequest) ([]models.Document, error) {
					called = true
					return []models.Document{}, nil
				},
			}

			w := doRequest(edgeRouter(repo), tc.method, tc.path, tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}

			resp := decodeError(t, w.Body.Bytes())
			if resp["code"] != api.ErrCodeInvalidArgument {
				t.Errorf("expected code %q, got %v", api.ErrCodeInvalidArgument, resp["code"])
			}

			if msg, _ := resp["message"].(string); !strings.Contains(msg, "EDGES()") {
				t.Errorf("message %q should name the function", msg)
			}

			if called {
				t.Error("service should not be called without a valid direction")
			}
		})
	}
}

func TestEdgesFind_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"bad json", `[`, nil, http.StatusBadRequest, api.ErrCodeInvalidRequest},
		{"missing vertex", `{}`, nil, http.StatusBadRequest, api.ErrCodeValidationError},
		{"bad examples", `{"vertex":"V/v1","direction":"any","examples":42}`, nil, http.StatusBadRequest, api.ErrCodeInvalidArgument},
		{"bad collections", `{"vertex":"V/v1","direction":"any","collections":[1]}`, nil, http.StatusBadRequest, api.ErrCodeInvalidArgument},
		{
			"bad direction", `{"vertex":"V/v1","direction":"sideways"}`,
			&models.InvalidDirectionError{Function: "EDGES", Value: "sideways"},
			http.StatusBadRequest, api.ErrCodeInvalidArgument,
		},
		{"graph missing", `{"vertex":"V/v1","direction":"any"}`, models.ErrGraphNotFound, http.StatusNotFound, api.ErrCodeGraphNotFound},
		{"vertex missing", `{"vertex":"V/v1","direction":"any"}`, models.ErrVertexNotFound, http.StatusNotFound, api.ErrCodeDocumentNotFound},
		{"storage down", `{"vertex":"V/v1","direction":"any"}`, models.Unavailable("scan", context.DeadlineExceeded), http.StatusServiceUnavailable, api.ErrCodeUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := &mockEdgeRepo{
				findFn: func(context.Context, domain.EdgeRequest) ([]models.Document, error) {
					return nil, tc.err
				},
			}

			w := doRequest(edgeRouter(repo), http.MethodPost, "/graphs/g/edges", tc.body)
			if w.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d: %s", tc.wantCode, w.Code, w.Body.String())
			}

			if resp := decodeError(t, w.Body.Bytes()); resp["code"] != tc.wantErr {
				t.Errorf("expected code %q, got %v", tc.wantErr, resp["code"])
			}
		})
	}
}

func TestEdgesFind_InvalidDirectionMessage(t *testing.T) {
	t.Parallel()

	repo := &mockEdgeRepo{
		findFn: func(context.Context, domain.EdgeRequest) ([]models.Document, error) {
			return nil, &models.InvalidDirectionError{Function: "EDGES", Value: "up"}
		},
	}

	w := doRequest(edgeRouter(repo), http.MethodPost, "/graphs/g/edges", `{"vertex":"V/v1","direction":"up"}`)

	resp := decodeError(t, w.Body.Bytes())
	msg, _ := resp["message"].(string)
	if !strings.Contains(msg, "EDGES()") {
		t.Errorf("message %q should name the function", msg)
	}
}

func TestEdgesQuery(t *testing.T) {
	t.Parallel()

	repo := &mockEdgeRepo{
		findFn: func(context.Context, domain.EdgeRequest) ([]models.Document, error) {
			return []models.Document{}, nil
		},
	}

	w := doRequest(edgeRouter(repo), http.MethodGet,
		"/graphs/g/edges?vertex=V/v1&direction=inbound&collection=E1&collection=E2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	req := repo.last
	if req.Vertex != "V/v1" || req.Direction != "inbound" {
		t.Errorf("unexpected request: %+v", req)
	}

	if len(req.Collections) != 2 || req.Collections[1] != "E2" {
		t.Errorf("collections = %v", req.Collections)
	}

	if req.Examples != nil {
		t.Errorf("examples = %v, want nil", req.Examples)
	}
}

func TestEdgesQuery_MissingVertex(t *testing.T) {
	t.Parallel()

	w := doRequest(edgeRouter(&mockEdgeRepo{}), http.MethodGet, "/graphs/g/edges", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
