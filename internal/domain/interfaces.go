// Package domain defines the canonical interfaces shared across layers
// (storage backends, traversal, services, REST). Consumers should depend on
// these interfaces rather than re-declaring equivalent ones.
package domain

import (
	"context"

	"github.com/persistorai/namedgraph/internal/example"
	"github.com/persistorai/namedgraph/internal/models"
)

// GraphDefinitionStore persists named graph definitions in the reserved
// _graphs metadata collection.
type GraphDefinitionStore interface {
	CreateGraph(ctx context.Context, def models.GraphDefinition) (*models.GraphDefinition, error)
	GetGraph(ctx context.Context, name string) (*models.GraphDefinition, error)
	DropGraph(ctx context.Context, name string) error
	ListGraphs(ctx context.Context) ([]models.GraphDefinition, error)
}

// DocumentAccessor is the read side of the document storage engine.
// ScanByEndpoint returns the edges of collection whose _from (Outbound),
// _to (Inbound) or either (Any) equals vertexID, in a deterministic order.
type DocumentAccessor interface {
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	ScanByEndpoint(ctx context.Context, collection string, side models.Direction, vertexID string) ([]models.Document, error)
}

// DocumentWriter bulk-loads documents into a collection, replacing existing
// documents with the same key.
type DocumentWriter interface {
	PutDocuments(ctx context.Context, collection string, docs []models.Document) (int, error)
}

// DocumentStore combines read and write access.
type DocumentStore interface {
	DocumentAccessor
	DocumentWriter
}

// Backend is everything a storage driver provides.
type Backend interface {
	GraphDefinitionStore
	DocumentStore
	Ping(ctx context.Context) error
	Close()
}

// GraphService defines graph definition management.
type GraphService interface {
	CreateGraph(ctx context.Context, req models.CreateGraphRequest) (*models.GraphDefinition, error)
	GetGraph(ctx context.Context, name string) (*models.GraphDefinition, error)
	DropGraph(ctx context.Context, name string) error
	ListGraphs(ctx context.Context) ([]models.GraphDefinition, error)
}

// EdgeRequest is one EDGES call. Examples and Collections are already
// decoded from their shorthand forms; Direction is still the raw literal.
type EdgeRequest struct {
	Graph       string
	Vertex      string
	Direction   string
	Examples    []example.Pattern
	Collections []string
}

// EdgeService runs EDGES.
type EdgeService interface {
	FindEdges(ctx context.Context, req EdgeRequest) ([]models.Document, error)
}

// DocumentService defines bulk document loading.
type DocumentService interface {
	ImportDocuments(ctx context.Context, collection string, req models.ImportDocumentsRequest) (*models.ImportResult, error)
}
