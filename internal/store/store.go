// Package store is the PostgreSQL storage backend for namedgraph.
//
// GraphStore owns the graph_definitions table (the reserved _graphs
// metadata collection) and DocumentStore owns the documents table that
// holds vertex and edge documents. Both embed the shared Base; they never
// call each other.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/db"
	"github.com/persistorai/namedgraph/internal/dbpool"
	"github.com/persistorai/namedgraph/internal/domain"
	"github.com/persistorai/namedgraph/internal/models"
)

const defaultQueryTimeout = 30 * time.Second

// pgUniqueViolation is the SQLSTATE for unique constraint violations.
const pgUniqueViolation = "23505"

// Base contains shared dependencies for all stores.
// Instance tags NOTIFY payloads so the bridge can tell local changes apart.
type Base struct {
	Pool     *dbpool.Pool
	Log      *logrus.Logger
	Instance string
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// beginTx starts a read-write transaction.
func (b *Base) beginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return tx, nil
}

// beginReadTx starts a read-only transaction.
func (b *Base) beginReadTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("beginning read transaction: %w", err)
	}

	return tx, nil
}

// notify publishes a graph change on the graph_changes channel (best-effort, post-commit).
func (b *Base) notify(op, graph string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payload, _ := json.Marshal(db.GraphChange{Op: op, Graph: graph, Origin: b.Instance}) //nolint:errcheck // plain strings, cannot fail.
	if _, err := b.Pool.Exec(ctx, "SELECT pg_notify($1, $2)", db.GraphChangesChannel, string(payload)); err != nil {
		b.Log.WithError(err).Warn("failed to send " + op + " graph notification")
	}
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// unavailable wraps backend errors so callers can match ErrStorageUnavailable.
// Context cancellation is returned as is.
func unavailable(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	return models.Unavailable(op, err)
}

// Backend combines the PostgreSQL graph and document stores.
type Backend struct {
	*GraphStore
	*DocumentStore
	pool *dbpool.Pool
}

var _ domain.Backend = (*Backend)(nil)

// NewBackend creates the PostgreSQL backend over base.
func NewBackend(base Base) *Backend {
	return &Backend{
		GraphStore:    NewGraphStore(base),
		DocumentStore: NewDocumentStore(base),
		pool:          base.Pool,
	}
}

// Ping verifies database connectivity.
func (b *Backend) Ping(ctx context.Context) error {
	return b.pool.HealthCheck(ctx)
}

// Close closes the connection pool.
func (b *Backend) Close() {
	b.pool.Close()
}
