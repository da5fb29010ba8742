package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/persistorai/namedgraph/internal/models"
)

const graphColumns = `name, edge_definitions, created_at`

func scanGraph(scan func(dest ...any) error) (*models.GraphDefinition, error) {
	var g models.GraphDefinition
	var defs, created string

	if err := scan(&g.Name, &defs, &created); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(defs), &g.EdgeDefinitions); err != nil {
		return nil, fmt.Errorf("unmarshalling edge definitions: %w", err)
	}

	if g.EdgeDefinitions == nil {
		g.EdgeDefinitions = []models.EdgeDefinition{}
	}

	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	g.CreatedAt = t

	return &g, nil
}

// CreateGraph validates def and inserts it.
func (s *Store) CreateGraph(ctx context.Context, def models.GraphDefinition) (*models.GraphDefinition, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	defsJSON, err := json.Marshal(def.EdgeDefinitions)
	if err != nil {
		return nil, fmt.Errorf("marshalling edge definitions: %w", err)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	def.CreatedAt = s.now().UTC()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO graph_definitions (name, edge_definitions, created_at) VALUES (?, ?, ?)`,
		def.Name, string(defsJSON), def.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return nil, models.ErrDuplicateGraphName
		}

		return nil, unavailable("creating graph", err)
	}

	return def.Clone(), nil
}

// GetGraph loads a definition by name.
func (s *Store) GetGraph(ctx context.Context, name string) (*models.GraphDefinition, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `SELECT `+graphColumns+` FROM graph_definitions WHERE name = ?`, name)

	def, err := scanGraph(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrGraphNotFound
		}

		return nil, unavailable("getting graph", err)
	}

	return def, nil
}

// DropGraph deletes a definition. Documents are left alone.
func (s *Store) DropGraph(ctx context.Context, name string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM graph_definitions WHERE name = ?`, name)
	if err != nil {
		return unavailable("dropping graph", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("dropping graph", err)
	}

	if n == 0 {
		return models.ErrGraphNotFound
	}

	return nil
}

// ListGraphs returns all definitions ordered by name.
func (s *Store) ListGraphs(ctx context.Context) ([]models.GraphDefinition, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT `+graphColumns+` FROM graph_definitions ORDER BY name`)
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
