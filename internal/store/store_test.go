package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/db"
	"github.com/persistorai/namedgraph/internal/dbpool"
	"github.com/persistorai/namedgraph/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dbURL, 0)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	if err := db.RunPostgresMigrations(ctx, pool, log); err != nil {
		t.Fatalf("migrating test DB: %v", err)
	}

	sharedEnv = &testEnv{
		pool: pool,
		log:  log,
	}

	return sharedEnv
}

// setupTestBase creates a Base plus a unique name prefix. Rows created under
// the prefix are removed after the test.
func setupTestBase(t *testing.T) (_ store.Base, prefix string) {
	t.Helper()

	env := getTestEnv(t)
	prefix = "t" + uuid.New().String()[:8] + "_"

	t.Cleanup(func() {
		cleanCtx := context.Background()
		env.pool.Exec(cleanCtx, "DELETE FROM documents WHERE collection LIKE $1", prefix+"%")   //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM graph_definitions WHERE name LIKE $1", prefix+"%") //nolint:errcheck // best-effort cleanup
	})

	return store.Base{Pool: env.pool, Log: env.log, Instance: "test"}, prefix
}
