package traversal

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/persistorai/namedgraph/internal/domain"
	"github.com/persistorai/namedgraph/internal/example"
	"github.com/persistorai/namedgraph/internal/metrics"
	"github.com/persistorai/namedgraph/internal/models"
)

// DefaultScanConcurrency bounds parallel collection scans per EDGES call.
const DefaultScanConcurrency = 8

// GraphLoader loads a graph definition by name.
type GraphLoader interface {
	GetGraph(ctx context.Context, name string) (*models.GraphDefinition, error)
}

// Executor runs EDGES against a graph definition source and a document accessor.
type Executor struct {
	graphs      GraphLoader
	docs        domain.DocumentAccessor
	log         *logrus.Logger
	concurrency int
}

// NewExecutor creates an Executor. A concurrency below 1 uses DefaultScanConcurrency.
func NewExecutor(graphs GraphLoader, docs domain.DocumentAccessor, log *logrus.Logger, concurrency int) *Executor {
	if concurrency < 1 {
		concurrency = DefaultScanConcurrency
	}

	return &Executor{graphs: graphs, docs: docs, log: log, concurrency: concurrency}
}

// FindEdges returns the edges incident to req.Vertex in graph req.Graph.
//
// Errors: an unknown direction literal matches models.ErrInvalidDirection,
// an unknown graph models.ErrGraphNotFound, and a malformed or missing start
// vertex models.ErrVertexNotFound. Storage failures are returned unchanged
// and abort the call; no partial result is ever returned.
//
// The result holds each matching edge once. Order follows the resolved scan
// order and, inside one scan, the order the accessor returned.
func (e *Executor) FindEdges(ctx context.Context, req domain.EdgeRequest) ([]models.Document, error) {
	dir, err := models.ParseDirection(models.EdgesFunction, req.Direction)
	if err != nil {
		return nil, err
	}

	def, err := e.graphs.GetGraph(ctx, req.Graph)
	if err != nil {
		return nil, err
	}

	startCollection, err := e.checkVertex(ctx, req.Vertex)
	if err != nil {
		return nil, err
	}

	targets := Restrict(Resolve(def, startCollection, dir), req.Collections)

	e.log.WithFields(logrus.Fields{
		"graph":     req.Graph,
		"vertex":    req.Vertex,
		"direction": dir.String(),
		"scans":     len(targets),
	}).Debug("traversal.edges.resolved")

	batches, err := e.scan(ctx, targets, req.Vertex)
	if err != nil {
		return nil, err
	}

	return collect(batches, req.Examples), nil
}

// checkVertex verifies the start vertex exists and returns its collection.
func (e *Executor) checkVertex(ctx context.Context, id string) (string, error) {
	collection, _, err := models.ParseDocumentID(id)
	if err != nil {
		return "", fmt.Errorf("%w: %s", models.ErrVertexNotFound, id)
	}

	if _, err := e.docs.GetDocument(ctx, id); err != nil {
		if errors.Is(err, models.ErrDocumentNotFound) {
			return "", fmt.Errorf("%w: %s", models.ErrVertexNotFound, id)
		}

		return "", err
	}

	return collection, nil
}

// scan runs every target concurrently. The first failure cancels the rest.
// Batches are slotted by target index so callers see resolver order.
func (e *Executor) scan(ctx context.Context, targets []ScanTarget, vertexID string) ([][]models.Document, error) {
	batches := make([][]models.Document, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, t := range targets {
		g.Go(func() error {
			metrics.CollectionScans.WithLabelValues(t.Side.String()).Inc()

			docs, err := e.docs.ScanByEndpoint(gctx, t.Collection, t.Side, vertexID)
			if err != nil {
				return err
			}

			batches[i] = docs

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		e.log.WithError(err).WithField("vertex", vertexID).Warn("edge collection scan failed")

		return nil, err
	}

	return batches, nil
}

// collect flattens batches, keeps documents matching any example, and drops
// repeated ids keeping the first occurrence.
func collect(batches [][]models.Document, examples []example.Pattern) []models.Document {
	out := make([]models.Document, 0)
	seen := make(map[string]struct{})

	for _, batch := range batches {
		for i := range batch {
			doc := &batch[i]

			if _, dup := seen[doc.ID]; dup {
				continue
			}

			if !example.Matches(doc, examples) {
				continue
			}

			seen[doc.ID] = struct{}{}
			out = append(out, *doc)
		}
	}

	return out
}
