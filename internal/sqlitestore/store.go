// Package sqlitestore is the single-file SQLite storage backend.
//
// It stores the same two tables as the PostgreSQL backend (documents and
// graph_definitions) through database/sql and mattn/go-sqlite3. There is no
// change notification channel; a process owns its database file.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/db"
	"github.com/persistorai/namedgraph/internal/domain"
	"github.com/persistorai/namedgraph/internal/models"
)

const defaultQueryTimeout = 30 * time.Second

// timeLayout is the text layout of created_at columns.
const timeLayout = time.RFC3339Nano

// Store is the SQLite implementation of domain.Backend.
type Store struct {
	db  *sql.DB
	log *logrus.Logger
	now func() time.Time
}

var _ domain.Backend = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(ctx context.Context, path string, log *logrus.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := db.RunSQLiteMigrations(ctx, sqlDB, log); err != nil {
		sqlDB.Close()
		return nil, err
	}

	log.WithField("path", path).Info("sqlite store opened")

	return &Store{db: sqlDB, log: log, now: time.Now}, nil
}

// Ping verifies the database handle.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle.
func (s *Store) Close() {
	if err := s.db.Close(); err != nil {
		s.log.WithError(err).Warn("closing sqlite store")
	}
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// isConstraintViolation reports whether err is a SQLite constraint failure.
func isConstraintViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.Code == sqlite3.ErrConstraint
}

// unavailable wraps driver errors as storage errors. Context cancellation is
// returned as is.
func unavailable(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	return models.Unavailable(op, err)
}

// nullable maps an empty endpoint to SQL NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
