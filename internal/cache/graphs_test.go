package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/persistorai/namedgraph/internal/memstore"
	"github.com/persistorai/namedgraph/internal/models"
)

// countingStore counts backend GetGraph calls.
type countingStore struct {
	*memstore.Store
	gets atomic.Int32
}

func (s *countingStore) GetGraph(ctx context.Context, name string) (*models.GraphDefinition, error) {
	s.gets.Add(1)
	return s.Store.GetGraph(ctx, name)
}

func newBackend(t *testing.T) *countingStore {
	t.Helper()

	s := &countingStore{Store: memstore.New()}
	_, err := s.Store.CreateGraph(context.Background(), models.GraphDefinition{
		Name:            "g",
		EdgeDefinitions: []models.EdgeDefinition{models.UndirectedRelation("E", "V")},
	})
	require.NoError(t, err)

	return s
}

func TestGetGraphCachesHits(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)

	c, err := NewGraphCache(backend, 4)
	require.NoError(t, err)

	for range 3 {
		def, err := c.GetGraph(ctx, "g")
		require.NoError(t, err)
		assert.Equal(t, "g", def.Name)
	}

	assert.Equal(t, int32(1), backend.gets.Load())
	assert.Equal(t, 1, c.Len())
}

func TestGetGraphReturnsIndependentCopies(t *testing.T) {
	ctx := context.Background()

	c, err := NewGraphCache(newBackend(t), 4)
	require.NoError(t, err)

	first, err := c.GetGraph(ctx, "g")
	require.NoError(t, err)
	first.EdgeDefinitions[0].From[0] = "mutated"

	second, err := c.GetGraph(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, "V", second.EdgeDefinitions[0].From[0])
}

func TestMissesAreNotCached(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)

	c, err := NewGraphCache(backend, 4)
	require.NoError(t, err)

	_, err = c.GetGraph(ctx, "missing")
	require.ErrorIs(t, err, models.ErrGraphNotFound)

	_, err = c.GetGraph(ctx, "missing")
	require.ErrorIs(t, err, models.ErrGraphNotFound)

	assert.Equal(t, int32(2), backend.gets.Load())
	assert.Equal(t, 0, c.Len())
}

func TestDropInvalidates(t *testing.T) {
	ctx := context.Background()

	c, err := NewGraphCache(newBackend(t), 4)
	require.NoError(t, err)

	_, err = c.GetGraph(ctx, "g")
	require.NoError(t, err)

	require.NoError(t, c.DropGraph(ctx, "g"))

	_, err = c.GetGraph(ctx, "g")
	require.ErrorIs(t, err, models.ErrGraphNotFound)
}

func TestInvalidateForcesReload(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)

	c, err := NewGraphCache(backend, 4)
	require.NoError(t, err)

	_, err = c.GetGraph(ctx, "g")
	require.NoError(t, err)

	// Another instance drops and recreates the graph with a new shape.
	require.NoError(t, backend.Store.DropGraph(ctx, "g"))
	_, err = backend.Store.CreateGraph(ctx, models.GraphDefinition{
		Name:            "g",
		EdgeDefinitions: []models.EdgeDefinition{models.UndirectedRelation("F", "W")},
	})
	require.NoError(t, err)

	stale, err := c.GetGraph(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, "E", stale.EdgeDefinitions[0].Collection)

	c.Invalidate("g")

	fresh, err := c.GetGraph(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, "F", fresh.EdgeDefinitions[0].Collection)
}

func TestDisabledCachePassesThrough(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)

	c, err := NewGraphCache(backend, 0)
	require.NoError(t, err)

	for range 3 {
		_, err := c.GetGraph(ctx, "g")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(3), backend.gets.Load())
	c.Invalidate("g")
	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestConcurrentGets(t *testing.T) {
	ctx := context.Background()

	c, err := NewGraphCache(newBackend(t), 4)
	require.NoError(t, err)

	var wg sync.WaitGroup

	for range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			def, err := c.GetGraph(ctx, "g")
			assert.NoError(t, err)
			assert.Equal(t, "g", def.Name)
		}()
	}

	wg.Wait()
}

// gatedStore holds its first GetGraph after the backend read until release
// is closed.
type gatedStore struct {
	*memstore.Store
	loaded  chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *gatedStore) GetGraph(ctx context.Context, name string) (*models.GraphDefinition, error) {
	def, err := s.Store.GetGraph(ctx, name)
	s.once.Do(func() {
		close(s.loaded)
		<-s.release
	})

	return def, err
}

func TestSlowLoadDoesNotResurrectDroppedGraph(t *testing.T) {
	tests := []struct {
		name string
		drop func(ctx context.Context, c *GraphCache, backend *gatedStore) error
	}{
		{
			name: "drop through cache",
			drop: func(ctx context.Context, c *GraphCache, _ *gatedStore) error {
				return c.DropGraph(ctx, "g")
			},
		},
		{
			name: "drop on another instance",
			drop: func(ctx context.Context, c *GraphCache, backend *gatedStore) error {
				if err := backend.Store.DropGraph(ctx, "g"); err != nil {
					return err
				}
				c.Invalidate("g")

				return nil
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			backend := &gatedStore{
				Store:   newBackend(t).Store,
				loaded:  make(chan struct{}),
				release: make(chan struct{}),
			}

			c, err := NewGraphCache(backend, 4)
			require.NoError(t, err)

			done := make(chan error, 1)
			go func() {
				_, err := c.GetGraph(ctx, "g")
				done <- err
			}()

			<-backend.loaded
			require.NoError(t, tc.drop(ctx, c, backend))
			close(backend.release)

			// The in-flight read started before the drop and may still see it.
			require.NoError(t, <-done)

			_, err = c.GetGraph(ctx, "g")
			require.ErrorIs(t, err, models.ErrGraphNotFound)
			assert.Equal(t, 0, c.Len())
		})
	}
}

func TestPurgeDiscardsInFlightLoad(t *testing.T) {
	ctx := context.Background()
	backend := &gatedStore{
		Store:   newBackend(t).Store,
		loaded:  make(chan struct{}),
		release: make(chan struct{}),
	}

	c, err := NewGraphCache(backend, 4)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := c.GetGraph(ctx, "g")
		done <- err
	}()

	<-backend.loaded
	c.Purge()
	close(backend.release)
	require.NoError(t, <-done)

	assert.Equal(t, 0, c.Len())
}
