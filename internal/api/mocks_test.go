package api_test

import (
	"context"
	"errors"

	"github.com/persistorai/namedgraph/internal/domain"
	"github.com/persistorai/namedgraph/internal/models"
)

var errMockNotConfigured = errors.New("mock not configured")

type mockGraphRepo struct {
	createFn func(ctx context.Context, req models.CreateGraphRequest) (*models.GraphDefinition, error)
	getFn    func(ctx context.Context, name string) (*models.GraphDefinition, error)
	dropFn   func(ctx context.Context, name string) error
	listFn   func(ctx context.Context) ([]models.GraphDefinition, error)
}

func (m *mockGraphRepo) CreateGraph(ctx context.Context, req models.CreateGraphRequest) (*models.GraphDefinition, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}

	return nil, errMockNotConfigured
}

func (m *mockGraphRepo) GetGraph(ctx context.Context, name string) (*models.GraphDefinition, error) {
	if m.getFn != nil {
		return m.getFn(ctx, name)
	}

	return nil, errMockNotConfigured
}

func (m *mockGraphRepo) DropGraph(ctx context.Context, name string) error {
	if m.dropFn != nil {
		return m.dropFn(ctx, name)
	}

	return errMockNotConfigured
}

func (m *mockGraphRepo) ListGraphs(ctx context.Context) ([]models.GraphDefinition, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}

	return nil, errMockNotConfigured
}

type mockEdgeRepo struct {
	findFn func(ctx context.Context, req domain.EdgeRequest) ([]models.Document, error)
	last   *domain.EdgeRequest
}

func (m *mockEdgeRepo) FindEdges(ctx context.Context, req domain.EdgeRequest) ([]models.Document, error) {
	m.last = &req
	if m.findFn != nil {
		return m.findFn(ctx, req)
	}

	return nil, errMockNotConfigured
}

type mockDocumentRepo struct {
	importFn func(ctx context.Context, collection string, req models.ImportDocumentsRequest) (*models.ImportResult, error)
}

func (m *mockDocumentRepo) ImportDocuments(
	ctx context.Context, collection string, req models.ImportDocumentsRequest,
) (*models.ImportResult, error) {
	if m.importFn != nil {
		return m.importFn(ctx, collection, req)
	}

	return nil, errMockNotConfigured
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }
