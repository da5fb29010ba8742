package client

import (
	"context"
	"net/http"
	"net/url"
)

// GraphService manages named graph definitions.
type GraphService struct {
	c *Client
}

// Create stores a new named graph.
func (s *GraphService) Create(ctx context.Context, req CreateGraphRequest) (*Graph, error) {
	var g Graph
	if err := s.c.call(ctx, http.MethodPost, "/graphs", req, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Get fetches a named graph by name.
func (s *GraphService) Get(ctx context.Context, name string) (*Graph, error) {
	var g Graph
	if err := s.c.call(ctx, http.MethodGet, "/graphs/"+url.PathEscape(name), nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// List returns every named graph ordered by name.
func (s *GraphService) List(ctx context.Context) ([]Graph, error) {
	var resp struct {
		Graphs []Graph `json:"graphs"`
	}
	if err := s.c.call(ctx, http.MethodGet, "/graphs", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Graphs, nil
}

// Drop removes a named graph definition. Its collections are untouched.
func (s *GraphService) Drop(ctx context.Context, name string) error {
	return s.c.call(ctx, http.MethodDelete, "/graphs/"+url.PathEscape(name), nil, nil)
}
