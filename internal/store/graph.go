package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/persistorai/namedgraph/internal/models"
)

// GraphStore persists graph definitions.
type GraphStore struct {
	Base
}

// NewGraphStore creates a GraphStore with the given shared base.
func NewGraphStore(base Base) *GraphStore {
	return &GraphStore{Base: base}
}

// CreateGraph validates def and inserts it. The primary key on name turns a
// concurrent duplicate into ErrDuplicateGraphName.
func (s *GraphStore) CreateGraph(ctx context.Context, def models.GraphDefinition) (*models.GraphDefinition, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	defsJSON, err := json.Marshal(def.EdgeDefinitions)
	if err != nil {
		return nil, fmt.Errorf("marshalling edge definitions: %w", err)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		`INSERT INTO graph_definitions (name, edge_definitions) VALUES ($1, $2)
		RETURNING `+graphColumns,
		def.Name, defsJSON,
	)

	created, err := scanGraph(row.Scan)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrDuplicateGraphName
		}

		return nil, unavailable("creating graph", err)
	}

	s.notify("created", created.Name)

	return created, nil
}

// GetGraph loads a definition by name.
func (s *GraphStore) GetGraph(ctx context.Context, name string) (*models.GraphDefinition, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx, `SELECT `+graphColumns+` FROM graph_definitions WHERE name = $1`, name)

	def, err := scanGraph(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrGraphNotFound
		}

		return nil, unavailable("getting graph", err)
	}

	return def, nil
}

// DropGraph deletes a definition. Documents are left alone.
func (s *GraphStore) DropGraph(ctx context.Context, name string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.Pool.Exec(ctx, `DELETE FROM graph_definitions WHERE name = $1`, name)
	if err != nil {
		return unavailable("dropping graph", err)
	}

	if tag.RowsAffected() == 0 {
		return models.ErrGraphNotFound
	}

	s.notify("dropped", name)

	return nil
}

// ListGraphs returns all definitions ordered by name.
func (s *GraphStore) ListGraphs(ctx context.Context) ([]models.GraphDefinition, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx, `SELECT `+graphColumns+` FROM graph_definitions ORDER BY name`)
	if err != nil {
		return nil, unavailable("listing graphs", err)
	}
	defer rows.Close()

	graphs := make([]models.GraphDefinition, 0, 8)

	for rows.Next() {
		g, err := scanGraph(rows.Scan)
		if err != nil {
			return nil, unavailable("scanning graph row", err)
		}

		graphs = append(graphs, *g)
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating graph rows", err)
	}

	return graphs, nil
}
