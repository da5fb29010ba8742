package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/domain"
	"github.com/persistorai/namedgraph/internal/metrics"
	"github.com/persistorai/namedgraph/internal/models"
)

var _ domain.DocumentService = (*DocumentService)(nil)

// DocumentService bulk-loads documents into collections.
type DocumentService struct {
	writer domain.DocumentWriter
	events EventEnqueuer
	log    *logrus.Logger
}

// NewDocumentService creates a DocumentService. events may be nil.
func NewDocumentService(writer domain.DocumentWriter, events EventEnqueuer, log *logrus.Logger) *DocumentService {
	return &DocumentService{writer: writer, events: events, log: log}
}

// ImportDocuments validates req and upserts its documents into collection.
func (s *DocumentService) ImportDocuments(
	ctx context.Context, collection string, req models.ImportDocumentsRequest,
) (*models.ImportResult, error) {
	if err := req.Validate(collection); err != nil {
		return nil, err
	}

	n, err := s.writer.PutDocuments(ctx, collection, req.Documents)
	if err != nil {
		return nil, err
	}

	metrics.DocumentsImported.Add(float64(n))

	s.log.WithFields(logrus.Fields{
		"collection": collection,
		"imported":   n,
	}).Info("documents imported")

	enqueue(s.events, EventDocumentsImported, map[string]any{
		"collection": collection,
		"imported":   n,
	})

	return &models.ImportResult{Collection: collection, Imported: n}, nil
}
