package store

import (
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/persistorai/namedgraph/internal/models"
)

// documentColumns lists the columns selected for document queries.
const documentColumns = `collection, key, from_id, to_id, attributes`

// graphColumns lists the columns selected for graph definition queries.
const graphColumns = `name, edge_definitions, created_at`

// scanDocument scans a single row into a models.Document.
func scanDocument(scan func(dest ...any) error) (*models.Document, error) {
	var d models.Document
	var from, to *string
	var attrs []byte

	if err := scan(&d.Collection, &d.Key, &from, &to, &attrs); err != nil {
		return nil, err
	}

	d.ID = models.DocumentID(d.Collection, d.Key)

	if from != nil {
		d.From = *from
	}

	if to != nil {
		d.To = *to
	}

	decoded, err := models.DecodeAttributes(attrs)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling document attributes: %w", err)
	}

	d.Attributes = decoded

	if d.Attributes == nil {
		d.Attributes = map[string]any{}
	}

	return &d, nil
}

// collectDocuments scans all rows into a document slice.
func collectDocuments(rows pgx.Rows) ([]models.Document, error) {
	docs := make([]models.Document, 0, 16)

	for rows.Next() {
		d, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}

		docs = append(docs, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document rows: %w", err)
	}

	return docs, nil
}

// scanGraph scans a single row into a models.GraphDefinition.
func scanGraph(scan func(dest ...any) error) (*models.GraphDefinition, error) {
	var g models.GraphDefinition
	var defs []byte

	if err := scan(&g.Name, &defs, &g.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(defs, &g.EdgeDefinitions); err != nil {
		return nil, fmt.Errorf("unmarshalling edge definitions: %w", err)
	}

	if g.EdgeDefinitions == nil {
		g.EdgeDefinitions = []models.EdgeDefinition{}
	}

	return &g, nil
}

// nullable maps an empty endpoint to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
