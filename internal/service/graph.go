// Package service provides business logic between API handlers and data stores.
package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/domain"
	"github.com/persistorai/namedgraph/internal/metrics"
	"github.com/persistorai/namedgraph/internal/models"
)

// Compile-time check: *GraphService must satisfy domain.GraphService.
var _ domain.GraphService = (*GraphService)(nil)

// GraphService wraps a GraphDefinitionStore with logging and change events.
type GraphService struct {
	store  domain.GraphDefinitionStore
	events EventEnqueuer
	log    *logrus.Logger
}

// NewGraphService creates a GraphService. events may be nil.
func NewGraphService(store domain.GraphDefinitionStore, events EventEnqueuer, log *logrus.Logger) *GraphService {
	return &GraphService{store: store, events: events, log: log}
}

// CreateGraph validates and stores a new graph definition.
func (s *GraphService) CreateGraph(ctx context.Context, req models.CreateGraphRequest) (*models.GraphDefinition, error) {
	def, err := req.Definition()
	if err != nil {
		return nil, err
	}

	created, err := s.store.CreateGraph(ctx, def)
	if err != nil {
		return nil, err
	}

	metrics.GraphDefinitions.Inc()

	s.log.WithFields(logrus.Fields{
		"graph":     created.Name,
		"relations": len(created.EdgeDefinitions),
	}).Info("graph created")

	enqueue(s.events, EventGraphCreated, map[string]any{
		"name":        created.Name,
		"collections": created.EdgeCollections(),
	})

	return created, nil
}

// GetGraph returns a graph definition by name.
func (s *GraphService) GetGraph(ctx context.Context, name string) (*models.GraphDefinition, error) {
	s.log.WithField("graph", name).Debug("graph.get")

	return s.store.GetGraph(ctx, name)
}

// DropGraph removes a graph definition. Its collections are not touched.
func (s *GraphService) DropGraph(ctx context.Context, name string) error {
	if err := s.store.DropGraph(ctx, name); err != nil {
		return err
	}

	metrics.GraphDefinitions.Dec()
	s.log.WithField("graph", name).Info("graph dropped")
	enqueue(s.events, EventGraphDropped, map[string]any{"name": name})

	return nil
}

// ListGraphs returns all graph definitions ordered by name.
func (s *GraphService) ListGraphs(ctx context.Context) ([]models.GraphDefinition, error) {
	graphs, err := s.store.ListGraphs(ctx)
	if err != nil {
		return nil, err
	}

	metrics.GraphDefinitions.Set(float64(len(graphs)))

	return graphs, nil
}
