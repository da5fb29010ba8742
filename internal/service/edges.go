package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/domain"
	"github.com/persistorai/namedgraph/internal/metrics"
	"github.com/persistorai/namedgraph/internal/models"
)

// EdgeFinder runs a single EDGES call. *traversal.Executor satisfies it.
type EdgeFinder = domain.EdgeService

// Compile-time check: *EdgeService must satisfy domain.EdgeService.
var _ domain.EdgeService = (*EdgeService)(nil)

// EdgeService wraps an EdgeFinder with tracing and metrics.
type EdgeService struct {
	finder EdgeFinder
	log    *logrus.Logger
}

// NewEdgeService creates an EdgeService.
func NewEdgeService(finder EdgeFinder, log *logrus.Logger) *EdgeService {
	return &EdgeService{finder: finder, log: log}
}

// FindEdges returns the edges incident to req.Vertex within req.Graph.
func (s *EdgeService) FindEdges(ctx context.Context, req domain.EdgeRequest) ([]models.Document, error) {
	start := time.Now()

	edges, err := s.finder.FindEdges(ctx, req)

	outcome := edgeOutcome(err)
	metrics.EdgeQueryDuration.WithLabelValues(req.Direction, outcome).Observe(time.Since(start).Seconds())

	s.log.WithFields(logrus.Fields{
		"graph":       req.Graph,
		"vertex":      req.Vertex,
		"direction":   req.Direction,
		"examples":    len(req.Examples),
		"collections": len(req.Collections),
		"outcome":     outcome,
		"edges":       len(edges),
	}).Debug("graph.edges")

	if err != nil {
		return nil, err
	}

	metrics.EdgesReturned.Observe(float64(len(edges)))

	return edges, nil
}

// edgeOutcome labels an EDGES result for metrics and logs.
func edgeOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrInvalidDirection):
		return "invalid_direction"
	case errors.Is(err, models.ErrGraphNotFound):
		return "graph_not_found"
	case errors.Is(err, models.ErrVertexNotFound):
		return "vertex_not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
