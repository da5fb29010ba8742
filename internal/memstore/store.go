// Package memstore is an in-memory storage backend: graph definitions plus
// document collections with ordered endpoint indexes. It backs tests and
// the "memory" storage driver.
package memstore

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/tidwall/btree"

	"github.com/persistorai/namedgraph/internal/domain"
	"github.com/persistorai/namedgraph/internal/models"
)

var _ domain.Backend = (*Store)(nil)

// endpointEntry indexes one edge under one of its endpoint vertex ids.
type endpointEntry struct {
	vertex string
	key    string
}

func endpointLess(a, b endpointEntry) bool {
	if a.vertex != b.vertex {
		return a.vertex < b.vertex
	}

	return a.key < b.key
}

func documentLess(a, b *models.Document) bool {
	return a.Key < b.Key
}

// collection holds documents ordered by key and the _from/_to indexes.
type collection struct {
	docs   *btree.BTreeG[*models.Document]
	byFrom *btree.BTreeG[endpointEntry]
	byTo   *btree.BTreeG[endpointEntry]
}

func newCollection() *collection {
	opts := btree.Options{NoLocks: true}

	return &collection{
		docs:   btree.NewBTreeGOptions(documentLess, opts),
		byFrom: btree.NewBTreeGOptions(endpointLess, opts),
		byTo:   btree.NewBTreeGOptions(endpointLess, opts),
	}
}

// Store is safe for concurrent use: writers are exclusive, readers share.
type Store struct {
	mu          sync.RWMutex
	graphs      btree.Map[string, *models.GraphDefinition]
	collections map[string]*collection
	now         func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		collections: make(map[string]*collection),
		now:         time.Now,
	}
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// CreateGraph validates and stores def.
func (s *Store) CreateGraph(ctx context.Context, def models.GraphDefinition) (*models.GraphDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.graphs.Get(def.Name); ok {
		return nil, models.ErrDuplicateGraphName
	}

	stored := def.Clone()
	stored.CreatedAt = s.now().UTC()
	s.graphs.Set(stored.Name, stored)

	return stored.Clone(), nil
}

// GetGraph returns a copy of the named definition.
func (s *Store) GetGraph(ctx context.Context, name string) (*models.GraphDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.graphs.Get(name)
	if !ok {
		return nil, models.ErrGraphNotFound
	}

	return def.Clone(), nil
}

// DropGraph removes a definition. Documents are untouched.
func (s *Store) DropGraph(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.graphs.Delete(name); !ok {
		return models.ErrGraphNotFound
	}

	return nil
}

// ListGraphs returns every definition ordered by name.
func (s *Store) ListGraphs(ctx context.Context) ([]models.GraphDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.GraphDefinition, 0, s.graphs.Len())
	s.graphs.Scan(func(_ string, def *models.GraphDefinition) bool {
		out = append(out, *def.Clone())
		return true
	})

	return out, nil
}

// GetDocument returns the document with the given id.
func (s *Store) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	collName, key, err := models.ParseDocumentID(id)
	if err != nil {
		return nil, models.ErrDocumentNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[collName]
	if !ok {
		return nil, models.ErrDocumentNotFound
	}

	doc, ok := coll.docs.Get(&models.Document{Key: key})
	if !ok {
		return nil, models.ErrDocumentNotFound
	}

	cp := copyDocument(doc)

	return &cp, nil
}

// ScanByEndpoint returns the edges of collection incident to vertexID on
// side, ordered by key. An unknown collection is empty.
func (s *Store) ScanByEndpoint(ctx context.Context, collName string, side models.Direction, vertexID string) ([]models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[collName]
	if !ok {
		return []models.Document{}, nil
	}

	var keys []string

	switch side {
	case models.DirectionOutbound:
		keys = endpointKeys(coll.byFrom, vertexID)
	case models.DirectionInbound:
		keys = endpointKeys(coll.byTo, vertexID)
	default:
		keys = mergeKeys(endpointKeys(coll.byFrom, vertexID), endpointKeys(coll.byTo, vertexID))
	}

	out := make([]models.Document, 0, len(keys))
	for _, key := range keys {
		if doc, ok := coll.docs.Get(&models.Document{Key: key}); ok {
			out = append(out, copyDocument(doc))
		}
	}

	return out, nil
}

// PutDocuments upserts docs into collName. Documents must already carry
// their key; ids are derived from the collection.
func (s *Store) PutDocuments(ctx context.Context, collName string, docs []models.Document) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := models.ValidateCollectionName(collName); err != nil {
		return 0, err
	}

	prepared := make([]models.Document, len(docs))
	for i := range docs {
		prepared[i] = copyDocument(&docs[i])
		if err := prepared[i].PrepareForCollection(collName); err != nil {
			return 0, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collName]
	if !ok {
		coll = newCollection()
		s.collections[collName] = coll
	}

	for i := range prepared {
		doc := &prepared[i]

		if old, replaced := coll.docs.Set(doc); replaced {
			unindex(coll, old)
		}

		if doc.IsEdge() {
			coll.byFrom.Set(endpointEntry{vertex: doc.From, key: doc.Key})
			coll.byTo.Set(endpointEntry{vertex: doc.To, key: doc.Key})
		}
	}

	return len(prepared), nil
}

func unindex(coll *collection, doc *models.Document) {
	if !doc.IsEdge() {
		return
	}

	coll.byFrom.Delete(endpointEntry{vertex: doc.From, key: doc.Key})
	coll.byTo.Delete(endpointEntry{vertex: doc.To, key: doc.Key})
}

func endpointKeys(index *btree.BTreeG[endpointEntry], vertexID string) []string {
	var keys []string

	index.Ascend(endpointEntry{vertex: vertexID}, func(e endpointEntry) bool {
		if e.vertex != vertexID {
			return false
		}

		keys = append(keys, e.key)

		return true
	})

	return keys
}

// mergeKeys merges two sorted key lists, dropping the duplicate a self-loop
// contributes to both.
func mergeKeys(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}

	out = append(out, a[i:]...)

	return append(out, b[j:]...)
}

func copyDocument(d *models.Document) models.Document {
	cp := *d
	cp.Attributes = maps.Clone(d.Attributes)

	if cp.Attributes == nil {
		cp.Attributes = map[string]any{}
	}

	return cp
}
