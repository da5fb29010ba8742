package client

import (
	"context"
	"net/http"
	"net/url"
)

// EdgeService runs EDGES against a named graph.
type EdgeService struct {
	c *Client
}

// Find returns the edges of graph incident to req.Vertex.
func (s *EdgeService) Find(ctx context.Context, graph string, req FindEdgesRequest) ([]Document, error) {
	var resp struct {
		Edges []Document `json:"edges"`
	}
	if err := s.c.call(ctx, http.MethodPost, "/graphs/"+url.PathEscape(graph)+"/edges", req, &resp); err != nil {
		return nil, err
	}
	if resp.Edges == nil {
		resp.Edges = []Document{}
	}
	return resp.Edges, nil
}
