package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/domain"
	"github.com/persistorai/namedgraph/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

// mockGraphStore records calls and returns configured responses.
type mockGraphStore struct {
	mu    sync.Mutex
	calls []string

	createGraph func(ctx context.Context, def models.GraphDefinition) (*models.GraphDefinition, error)
	getGraph    func(ctx context.Context, name string) (*models.GraphDefinition, error)
	dropGraph   func(ctx context.Context, name string) error
	listGraphs  func(ctx context.Context) ([]models.GraphDefinition, error)
}

func (m *mockGraphStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockGraphStore) CreateGraph(ctx context.Context, def models.GraphDefinition) (*models.GraphDefinition, error) {
	m.record("CreateGraph")
	return m.createGraph(ctx, def)
}

func (m *mockGraphStore) GetGraph(ctx context.Context, name string) (*models.GraphDefinition, error) {
	m.record("GetGraph")
	return m.getGraph(ctx, name)
}

func (m *mockGraphStore) DropGraph(ctx context.Context, name string) error {
	m.record("DropGraph")
	return m.dropGraph(ctx, name)
}

func (m *mockGraphStore) ListGraphs(ctx context.Context) ([]models.GraphDefinition, error) {
	m.record("ListGraphs")
	return m.listGraphs(ctx)
}

// mockFinder returns a configured EDGES response.
type mockFinder struct {
	findEdges func(ctx context.Context, req domain.EdgeRequest) ([]models.Document, error)
}

func (m *mockFinder) FindEdges(ctx context.Context, req domain.EdgeRequest) ([]models.Document, error) {
	return m.findEdges(ctx, req)
}

// mockWriter returns a configured PutDocuments response.
type mockWriter struct {
	putDocuments func(ctx context.Context, collection string, docs []models.Document) (int, error)
}

func (m *mockWriter) PutDocuments(ctx context.Context, collection string, docs []models.Document) (int, error) {
	return m.putDocuments(ctx, collection, docs)
}

// recordingQueue captures enqueued events synchronously.
type recordingQueue struct {
	mu   sync.Mutex
	jobs []*EventJob
}

func (q *recordingQueue) Enqueue(job *EventJob) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
}

func (q *recordingQueue) types() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]string, 0, len(q.jobs))
	for _, j := range q.jobs {
		out = append(out, j.Type)
	}

	return out
}

type publishedEvent struct {
	Type string
	Data json.RawMessage
}

// mockPublisher records broadcast events.
type mockPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (m *mockPublisher) BroadcastEvent(eventType string, data json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, publishedEvent{Type: eventType, Data: data})
}

func (m *mockPublisher) getEvents() []publishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]publishedEvent, len(m.events))
	copy(out, m.events)

	return out
}
