// Package cache provides a read-through cache of graph definitions.
package cache

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/persistorai/namedgraph/internal/domain"
	"github.com/persistorai/namedgraph/internal/metrics"
	"github.com/persistorai/namedgraph/internal/models"
)

var _ domain.GraphDefinitionStore = (*GraphCache)(nil)

// GraphCache wraps a GraphDefinitionStore with a bounded LRU of definitions.
// Concurrent misses for one name share a single backend read.
//
// A load only fills the cache if no invalidation happened while it was in
// flight, so a definition dropped during a slow read is never cached.
type GraphCache struct {
	next  domain.GraphDefinitionStore
	lru   *lru.Cache[string, *models.GraphDefinition]
	group singleflight.Group

	mu    sync.Mutex
	epoch uint64 // bumped by every invalidation, guarded by mu
}

// NewGraphCache wraps next. A size below 1 disables caching and every call
// goes straight to next.
func NewGraphCache(next domain.GraphDefinitionStore, size int) (*GraphCache, error) {
	c := &GraphCache{next: next}

	if size < 1 {
		return c, nil
	}

	l, err := lru.New[string, *models.GraphDefinition](size)
	if err != nil {
		return nil, fmt.Errorf("creating graph cache: %w", err)
	}

	c.lru = l

	return c, nil
}

// GetGraph returns a copy of the cached definition, loading it on a miss.
// Misses for unknown graphs are not cached.
func (c *GraphCache) GetGraph(ctx context.Context, name string) (*models.GraphDefinition, error) {
	if c.lru == nil {
		return c.next.GetGraph(ctx, name)
	}

	if def, ok := c.lru.Get(name); ok {
		metrics.GraphCacheLookups.WithLabelValues("hit").Inc()
		return def.Clone(), nil
	}

	metrics.GraphCacheLookups.WithLabelValues("miss").Inc()

	val, err, _ := c.group.Do(name, func() (any, error) {
		epoch := c.currentEpoch()

		def, err := c.next.GetGraph(ctx, name)
		if err != nil {
			return nil, err
		}

		c.fill(name, def, epoch)

		return def, nil
	})
	if err != nil {
		return nil, err
	}

	def, ok := val.(*models.GraphDefinition)
	if !ok {
		return nil, fmt.Errorf("cache: unexpected singleflight result type %T", val)
	}

	return def.Clone(), nil
}

// CreateGraph delegates and drops any stale entry for the name.
func (c *GraphCache) CreateGraph(ctx context.Context, def models.GraphDefinition) (*models.GraphDefinition, error) {
	created, err := c.next.CreateGraph(ctx, def)
	c.Invalidate(def.Name)

	return created, err
}

// DropGraph delegates and evicts the name.
func (c *GraphCache) DropGraph(ctx context.Context, name string) error {
	err := c.next.DropGraph(ctx, name)
	c.Invalidate(name)

	return err
}

// ListGraphs always reads the backend.
func (c *GraphCache) ListGraphs(ctx context.Context) ([]models.GraphDefinition, error) {
	return c.next.ListGraphs(ctx)
}

// Invalidate evicts name. It is called for changes made by other instances.
// Loads already in flight are not cached and later callers start a fresh read.
func (c *GraphCache) Invalidate(name string) {
	if c.lru == nil {
		return
	}

	c.mu.Lock()
	c.epoch++
	c.lru.Remove(name)
	c.mu.Unlock()

	c.group.Forget(name)
}

// Purge empties the cache.
func (c *GraphCache) Purge() {
	if c.lru == nil {
		return
	}

	c.mu.Lock()
	c.epoch++
	c.lru.Purge()
	c.mu.Unlock()
}

func (c *GraphCache) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.epoch
}

// fill caches def unless an invalidation ran since epoch was read.
func (c *GraphCache) fill(name string, def *models.GraphDefinition, epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		return
	}

	c.lru.Add(name, def.Clone())
}

// Len returns the number of cached definitions.
func (c *GraphCache) Len() int {
	if c.lru == nil {
		return 0
	}

	return c.lru.Len()
}
