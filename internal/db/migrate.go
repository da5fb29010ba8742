// Package db provides migrations and the PostgreSQL change notification bridge.
//
// Migrations use goose (github.com/pressly/goose/v3). Up and down steps live
// in the same file (-- +goose Up / -- +goose Down) and are embedded per
// backend in internal/db/migrations.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/db/migrations"
	"github.com/persistorai/namedgraph/internal/dbpool"
)

// RunPostgresMigrations applies pending PostgreSQL migrations through a
// database/sql handle opened on the pool's connection string.
func RunPostgresMigrations(ctx context.Context, pool *dbpool.Pool, log *logrus.Logger) error {
	sqlDB, err := sql.Open("pgx", pool.ConnString())
	if err != nil {
		return fmt.Errorf("opening sql.DB for migrations: %w", err)
	}
	defer sqlDB.Close()

	return RunMigrations(ctx, sqlDB, goose.DialectPostgres, log, migrations.Postgres())
}

// RunSQLiteMigrations applies pending SQLite migrations on sqlDB.
func RunSQLiteMigrations(ctx context.Context, sqlDB *sql.DB, log *logrus.Logger) error {
	return RunMigrations(ctx, sqlDB, goose.DialectSQLite3, log, migrations.SQLite())
}

// RunMigrations applies all pending migrations from fsys, which should hold
// goose-annotated SQL files (e.g. "001_documents.sql").
func RunMigrations(ctx context.Context, sqlDB *sql.DB, dialect goose.Dialect, log *logrus.Logger, fsys fs.FS) error {
	provider, err := goose.NewProvider(dialect, sqlDB, fsys)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	for _, r := range results {
		if r.Error != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", r.Source.Version, r.Source.Path, r.Error)
		}

		log.WithFields(logrus.Fields{
			"version":  r.Source.Version,
			"file":     r.Source.Path,
			"duration": r.Duration,
			"dialect":  string(dialect),
		}).Info("migration applied")
	}

	if len(results) == 0 {
		log.Debug("all migrations already applied")
	}

	return nil
}
