package client

import (
	"context"
	"net/http"
	"net/url"
)

// DocumentService bulk-loads documents.
type DocumentService struct {
	c *Client
}

// Import upserts docs into collection. Documents are keyed by _key.
func (s *DocumentService) Import(ctx context.Context, collection string, docs []Document) (*ImportResult, error) {
	body := map[string]any{"documents": docs}
	var result ImportResult
	if err := s.c.call(ctx, http.MethodPost, "/collections/"+url.PathEscape(collection)+"/documents", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
