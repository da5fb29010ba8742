package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/cache"
	"github.com/persistorai/namedgraph/internal/config"
	"github.com/persistorai/namedgraph/internal/db"
	"github.com/persistorai/namedgraph/internal/dbpool"
	"github.com/persistorai/namedgraph/internal/domain"
	"github.com/persistorai/namedgraph/internal/memstore"
	"github.com/persistorai/namedgraph/internal/sqlitestore"
	"github.com/persistorai/namedgraph/internal/store"
)

// openStorage opens the configured backend and wraps its graph definitions
// in the LRU cache. For PostgreSQL it also starts the NOTIFY bridge so the
// cache follows changes made by other instances.
func openStorage(
	ctx context.Context, log *logrus.Logger, cfg *config.Config, hub db.Broadcaster,
) (*cache.GraphCache, domain.Backend, error) {
	var (
		backend  domain.Backend
		pool     *dbpool.Pool
		instance = uuid.NewString()
	)

	switch cfg.StorageDriver {
	case config.DriverPostgres:
		p, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), cfg.DBMaxConns)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}

		if err := db.RunPostgresMigrations(ctx, p, log); err != nil {
			p.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}

		if err := prometheus.Register(p.Collector()); err != nil {
			log.WithError(err).Warn("pool metrics not registered")
		}

		pool = p
		backend = store.NewBackend(store.Base{Pool: p, Log: log, Instance: instance})
	case config.DriverSQLite:
		s, err := sqlitestore.Open(ctx, cfg.SQLitePath, log)
		if err != nil {
			return nil, nil, err
		}

		backend = s
	case config.DriverMemory:
		log.Warn("memory storage driver: data is lost on restart")
		backend = memstore.New()
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	graphCache, err := cache.NewGraphCache(backend, cfg.GraphCacheSize)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	if pool != nil {
		bridge := db.NewNotifyBridge(log, pool, graphCache, hub, instance)
		if err := bridge.Start(ctx); err != nil {
			backend.Close()
			return nil, nil, fmt.Errorf("starting notify bridge: %w", err)
		}
	}

	return graphCache, backend, nil
}
