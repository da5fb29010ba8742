package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/persistorai/namedgraph/internal/models"
)

// maxBulkBatchSize limits the number of rows per INSERT statement to stay
// well inside PostgreSQL's parameter limit (65535 params).
const maxBulkBatchSize = 500

// DocumentStore reads and writes vertex and edge documents.
type DocumentStore struct {
	Base
}

// NewDocumentStore creates a DocumentStore with the given shared base.
func NewDocumentStore(base Base) *DocumentStore {
	return &DocumentStore{Base: base}
}

// GetDocument loads a document by id. Malformed ids are reported as not found.
func (s *DocumentStore) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	collection, key, err := models.ParseDocumentID(id)
	if err != nil {
		return nil, models.ErrDocumentNotFound
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE collection = $1 AND key = $2`,
		collection, key,
	)

	doc, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDocumentNotFound
		}

		return nil, unavailable("getting document", err)
	}

	return doc, nil
}

// endpointFilter returns the WHERE fragment matching $2 against the endpoint(s) for side.
func endpointFilter(side models.Direction) string {
	switch side {
	case models.DirectionOutbound:
		return `from_id = $2`
	case models.DirectionInbound:
		return `to_id = $2`
	default:
		return `(from_id = $2 OR to_id = $2)`
	}
}

// ScanByEndpoint returns the edges of collection incident to vertexID on side,
// in insertion order.
func (s *DocumentStore) ScanByEndpoint(ctx context.Context, collection string, side models.Direction, vertexID string) ([]models.Document, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, unavailable("scanning "+collection, err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // read-only, nothing to keep.

	rows, err := tx.Query(ctx,
		`SELECT `+documentColumns+` FROM documents
		WHERE collection = $1 AND `+endpointFilter(side)+`
		ORDER BY seq`,
		collection, vertexID,
	)
	if err != nil {
		return nil, unavailable("scanning "+collection, err)
	}
	defer rows.Close()

	docs, err := collectDocuments(rows)
	if err != nil {
		return nil, unavailable("scanning "+collection, err)
	}

	return docs, nil
}

// PutDocuments upserts docs into collection in one transaction using
// multi-row INSERT ... ON CONFLICT. A key repeated in docs keeps its last value.
func (s *DocumentStore) PutDocuments(ctx context.Context, collection string, docs []models.Document) (int, error) {
	if err := models.ValidateCollectionName(collection); err != nil {
		return 0, err
	}

	prepared, err := prepareDocuments(collection, docs)
	if err != nil {
		return 0, err
	}

	if len(prepared) == 0 {
		return 0, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return 0, unavailable("importing documents", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	for i := 0; i < len(prepared); i += maxBulkBatchSize {
		end := min(i+maxBulkBatchSize, len(prepared))
		batch := prepared[i:end]

		valueParts := make([]string, 0, len(batch))
		args := make([]any, 0, len(batch)*5)

		for j, d := range batch {
			attrs, err := json.Marshal(d.Attributes)
			if err != nil {
				return 0, fmt.Errorf("marshalling attributes of %s: %w", d.ID, err)
			}

			base := j*5 + 1
			valueParts = append(valueParts, fmt.Sprintf(
				"($%d, $%d, $%d, $%d, $%d)",
				base, base+1, base+2, base+3, base+4,
			))
			args = append(args, collection, d.Key, nullable(d.From), nullable(d.To), attrs)
		}

		sql := `INSERT INTO documents (collection, key, from_id, to_id, attributes)
			VALUES ` + strings.Join(valueParts, ", ") + `
			ON CONFLICT (collection, key) DO UPDATE
			SET from_id = EXCLUDED.from_id,
				to_id = EXCLUDED.to_id,
				attributes = EXCLUDED.attributes,
				updated_at = NOW()`

		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return 0, unavailable("importing documents", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, unavailable("committing import", err)
	}

	return len(prepared), nil
}

// prepareDocuments validates docs for collection and collapses repeated keys,
// keeping the position of the first occurrence and the value of the last.
func prepareDocuments(collection string, docs []models.Document) ([]models.Document, error) {
	out := make([]models.Document, 0, len(docs))
	index := make(map[string]int, len(docs))

	for i := range docs {
		d := docs[i]
		if err := d.PrepareForCollection(collection); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}

		if pos, ok := index[d.Key]; ok {
			out[pos] = d
			continue
		}

		index[d.Key] = len(out)
		out = append(out, d)
	}

	return out, nil
}
