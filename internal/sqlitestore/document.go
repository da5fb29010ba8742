package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/models"
)

const documentColumns = `collection, key, from_id, to_id, attributes`

func scanDocument(scan func(dest ...any) error) (*models.Document, error) {
	var d models.Document
	var from, to sql.NullString
	var attrs string

	if err := scan(&d.Collection, &d.Key, &from, &to, &attrs); err != nil {
		return nil, err
	}

	d.ID = models.DocumentID(d.Collection, d.Key)
	d.From = from.String
	d.To = to.String

	decoded, err := models.DecodeAttributes([]byte(attrs))
	if err != nil {
		return nil, fmt.Errorf("unmarshalling document attributes: %w", err)
	}

	d.Attributes = decoded

	if d.Attributes == nil {
		d.Attributes = map[string]any{}
	}

	return &d, nil
}

// GetDocument loads a document by id. Malformed ids are reported as not found.
func (s *Store) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	collection, key, err := models.ParseDocumentID(id)
	if err != nil {
		return nil, models.ErrDocumentNotFound
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE collection = ? AND key = ?`,
		collection, key,
	)

	doc, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrDocumentNotFound
		}

		return nil, unavailable("getting document", err)
	}

	return doc, nil
}

func endpointFilter(side models.Direction) string {
	switch side {
	case models.DirectionOutbound:
		return `from_id = ?2`
	case models.DirectionInbound:
		return `to_id = ?2`
	default:
		return `(from_id = ?2 OR to_id = ?2)`
	}
}

// ScanByEndpoint returns the edges of collection incident to vertexID on side,
// in insertion order.
func (s *Store) ScanByEndpoint(ctx context.Context, collection string, side models.Direction, vertexID string) ([]models.Document, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents
		WHERE collection = ?1 AND `+endpointFilter(side)+`
		ORDER BY seq`,
		collection, vertexID,
	)
	if err != nil {
		return nil, unavailable("scanning "+collection, err)
	}
	defer rows.Close()

	docs := make([]models.Document, 0, 16)

	for rows.Next() {
		d, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, unavailable("scanning "+collection, err)
		}

		docs = append(docs, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable("scanning "+collection, err)
	}

	return docs, nil
}

// PutDocuments upserts docs into collection in one transaction. An existing
// key keeps its scan position.
func (s *Store) PutDocuments(ctx context.Context, collection string, docs []models.Document) (int, error) {
	if err := models.ValidateCollectionName(collection); err != nil {
		return 0, err
	}

	prepared := make([]models.Document, len(docs))
	for i := range docs {
		prepared[i] = docs[i]
		if err := prepared[i].PrepareForCollection(collection); err != nil {
			return 0, fmt.Errorf("document %d: %w", i, err)
		}
	}

	if len(prepared) == 0 {
		return 0, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, unavailable("importing documents", err)
	}

	defer tx.Rollback() //nolint:errcheck // no-op after commit.

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO documents (collection, key, from_id, to_id, attributes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, key) DO UPDATE
		SET from_id = excluded.from_id,
			to_id = excluded.to_id,
			attributes = excluded.attributes,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`,
	)
	if err != nil {
		return 0, unavailable("importing documents", err)
	}
	defer stmt.Close()

	seen := make(map[string]struct{}, len(prepared))

	for _, d := range prepared {
		attrs, err := json.Marshal(d.Attributes)
		if err != nil {
			return 0, fmt.Errorf("marshalling attributes of %s: %w", d.ID, err)
		}

		if _, err := stmt.ExecContext(ctx, collection, d.Key, nullable(d.From), nullable(d.To), string(attrs)); err != nil {
			return 0, unavailable("importing documents", err)
		}

		seen[d.Key] = struct{}{}
	}

	if err := tx.Commit(); err != nil {
		return 0, unavailable("committing import", err)
	}

	s.log.WithFields(logrus.Fields{"collection": collection, "count": len(seen)}).Debug("documents imported")

	return len(seen), nil
}
