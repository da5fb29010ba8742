package api

import (
	"context"

	"github.com/persistorai/namedgraph/internal/domain"
)

// GraphRepository defines graph definition operations used by GraphHandler.
type GraphRepository = domain.GraphService

// EdgeRepository defines the EDGES operation used by EdgeHandler.
type EdgeRepository = domain.EdgeService

// DocumentRepository defines bulk import used by DocumentHandler.
type DocumentRepository = domain.DocumentService

// Pinger checks storage connectivity for the health endpoints.
type Pinger interface {
	Ping(ctx context.Context) error
}
