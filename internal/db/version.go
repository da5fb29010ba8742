package db

import (
	"io/fs"

	"github.com/persistorai/namedgraph/internal/db/migrations"
)

// SchemaVersion returns the number of migration files in fsys, which equals
// the schema version those migrations produce.
func SchemaVersion(fsys fs.FS) int {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return 0
	}

	count := 0
	for _, e := range entries {
		if !e.IsDir() {
			count++
		}
	}

	return count
}

// SchemaVersionFor returns the schema version shipped for a storage driver,
// or 0 for drivers without a SQL schema.
func SchemaVersionFor(driver string) int {
	switch driver {
	case "postgres":
		return SchemaVersion(migrations.Postgres())
	case "sqlite":
		return SchemaVersion(migrations.SQLite())
	default:
		return 0
	}
}
