package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/persistorai/namedgraph/internal/domain"
	"github.com/persistorai/namedgraph/internal/models"
)

func TestEdgeService_FindEdges(t *testing.T) {
	want := []models.Document{{ID: "E/1", Key: "1", From: "V/a", To: "V/b"}}

	finder := &mockFinder{
		findEdges: func(_ context.Context, req domain.EdgeRequest) ([]models.Document, error) {
			if req.Graph != "g" || req.Vertex != "V/a" {
				return nil, fmt.Errorf("unexpected request %+v", req)
			}
			return want, nil
		},
	}

	svc := NewEdgeService(finder, testLogger())

	got, err := svc.FindEdges(context.Background(), domain.EdgeRequest{Graph: "g", Vertex: "V/a", Direction: "any"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 1 || got[0].ID != "E/1" {
		t.Errorf("edges = %+v, want %+v", got, want)
	}
}

func TestEdgeService_FindEdgesPassesErrorsThrough(t *testing.T) {
	boom := models.Unavailable("scanning E", errors.New("connection reset"))

	finder := &mockFinder{
		findEdges: func(context.Context, domain.EdgeRequest) ([]models.Document, error) {
			return []models.Document{{ID: "partial/1"}}, boom
		},
	}

	got, err := NewEdgeService(finder, testLogger()).FindEdges(context.Background(), domain.EdgeRequest{Graph: "g"})
	if err != boom { //nolint:errorlint // identity is the point.
		t.Fatalf("error = %v, want the finder's error unchanged", err)
	}

	if got != nil {
		t.Errorf("edges = %+v, want nil on error", got)
	}
}

func TestEdgeOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{&models.InvalidDirectionError{Function: "EDGES", Value: "up"}, "invalid_direction"},
		{models.ErrGraphNotFound, "graph_not_found"},
		{fmt.Errorf("loading: %w", models.ErrVertexNotFound), "vertex_not_found"},
		{context.Canceled, "cancelled"},
		{errors.New("boom"), "error"},
	}

	for _, tc := range tests {
		if got := edgeOutcome(tc.err); got != tc.want {
			t.Errorf("edgeOutcome(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
