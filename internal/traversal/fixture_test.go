package traversal

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/persistorai/namedgraph/internal/memstore"
	"github.com/persistorai/namedgraph/internal/models"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}

// seedMixedGraph loads graph bla3: undirected Edge1 over Vertex1 and directed
// Edge2 from Vertex1/Vertex2 to Vertex3/Vertex4.
func seedMixedGraph(ctx context.Context, s *memstore.Store) error {
	vertices := map[string][]string{
		"Vertex1": {"v1", "v2"},
		"Vertex2": {"v3", "v4"},
		"Vertex3": {"v5", "v6"},
		"Vertex4": {"v7"},
	}

	for coll, keys := range vertices {
		docs := make([]models.Document, 0, len(keys))
		for _, k := range keys {
			docs = append(docs, models.Document{Key: k})
		}

		if _, err := s.PutDocuments(ctx, coll, docs); err != nil {
			return err
		}
	}

	edges := map[string][][3]string{
		"Edge1": {
			{"e1", "Vertex1/v1", "Vertex1/v2"},
			{"e2", "Vertex1/v2", "Vertex1/v1"},
		},
		"Edge2": {
			{"e1", "Vertex1/v1", "Vertex3/v5"},
			{"e2", "Vertex1/v2", "Vertex3/v5"},
			{"e3", "Vertex2/v3", "Vertex3/v6"},
			{"e4", "Vertex2/v4", "Vertex4/v7"},
			{"e5", "Vertex2/v3", "Vertex3/v5"},
		},
	}

	for coll, list := range edges {
		docs := make([]models.Document, 0, len(list))
		for _, e := range list {
			docs = append(docs, models.Document{
				Key:        e[0],
				From:       e[1],
				To:         e[2],
				Attributes: map[string]any{"what": shortID(e[1]) + "->" + shortID(e[2])},
			})
		}

		if _, err := s.PutDocuments(ctx, coll, docs); err != nil {
			return err
		}
	}

	_, err := s.CreateGraph(ctx, models.GraphDefinition{Name: "bla3", EdgeDefinitions: []models.EdgeDefinition{
		models.UndirectedRelation("Edge1", "Vertex1"),
		models.DirectedRelation("Edge2", []string{"Vertex1", "Vertex2"}, []string{"Vertex3", "Vertex4"}),
	}})

	return err
}

func shortID(id string) string {
	_, key, _ := models.ParseDocumentID(id)

	return key
}

func newSeededStore(t *testing.T) *memstore.Store {
	t.Helper()

	s := memstore.New()
	require.NoError(t, seedMixedGraph(context.Background(), s))

	return s
}

func whats(docs []models.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		s, _ := d.Attributes["what"].(string)
		out = append(out, s)
	}

	return out
}
