// Command namedgraph serves named graph definitions and the EDGES
// incident-edge query over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/namedgraph/internal/api"
	"github.com/persistorai/namedgraph/internal/config"
	"github.com/persistorai/namedgraph/internal/middleware"
	"github.com/persistorai/namedgraph/internal/service"
	"github.com/persistorai/namedgraph/internal/traversal"
	"github.com/persistorai/namedgraph/internal/ws"
)

const (
	eventQueueSize  = 1024
	shutdownTimeout = 10 * time.Second
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("loading config")
	}

	configureLogger(log, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, cfg); err != nil {
		log.WithError(err).Error("server exited")
		os.Exit(1)
	}
}

func configureLogger(log *logrus.Logger, cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
}

func run(ctx context.Context, log *logrus.Logger, cfg *config.Config) error {
	hub := ws.NewHub(log)
	go hub.Run(ctx)

	graphCache, backend, err := openStorage(ctx, log, cfg, hub)
	if err != nil {
		return err
	}
	defer backend.Close()

	events := service.NewEventWorker(hub, log, eventQueueSize)
	go events.Run(ctx)

	executor := traversal.NewExecutor(graphCache, backend, log, cfg.ScanConcurrency)

	keys := make([]string, 0, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		keys = append(keys, k.Value())
	}
	if len(keys) == 0 {
		log.Warn("no API_KEYS configured: authentication is disabled")
	}

	handler := api.NewRouter(ctx, &api.RouterDeps{
		Log:         log,
		Backend:     backend,
		Hub:         hub,
		Graphs:      service.NewGraphService(graphCache, events, log),
		Edges:       service.NewEdgeService(executor, log),
		Documents:   service.NewDocumentService(backend, events, log),
		Keys:        middleware.NewKeySet(keys...),
		CORSOrigins: cfg.CORSOrigins,
		Version:     config.Version,
		Driver:      cfg.StorageDriver,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":    cfg.Addr(),
			"driver":  cfg.StorageDriver,
			"version": config.Version,
		}).Info("namedgraph listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	hub.Shutdown()

	return srv.Shutdown(shutdownCtx)
}
