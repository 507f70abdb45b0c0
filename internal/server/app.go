package server

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/rpattn/liftdesk/internal/config"
	"github.com/rpattn/liftdesk/internal/db"
	"github.com/rpattn/liftdesk/internal/ingestion"
	"github.com/rpattn/liftdesk/internal/records"
	"github.com/rpattn/liftdesk/internal/sequence"
	"github.com/rpattn/liftdesk/internal/store/sqlite"
)

// App is the wired import service with its backing stores.
type App struct {
	Stores   Stores
	Service  *ingestion.Service
	Registry *prometheus.Registry
	Logger   logrus.FieldLogger

	cleanup []func() error
}

// OpenStores connects to SQLite when cfg.SQLitePath is set and to
// PostgreSQL otherwise. PostgreSQL migrations are applied first.
func OpenStores(ctx context.Context, cfg config.Config) (Stores, error) {
	if cfg.SQLitePath != "" {
		store, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return Stores{}, err
		}
		return SQLiteStores(store), nil
	}

	if err := db.RunMigrations(cfg.Database); err != nil {
		return Stores{}, err
	}
	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		return Stores{}, err
	}
	return PostgresStores(conn), nil
}

// NewApp wires the import service on top of stores. Previews live in Redis
// when it is configured and in memory otherwise.
func NewApp(ctx context.Context, cfg config.Config, stores Stores, logger logrus.FieldLogger) (*App, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics, err := ingestion.NewMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	app := &App{Stores: stores, Registry: registry, Logger: logger}
	app.cleanup = append(app.cleanup, stores.Close)

	var previews ingestion.PreviewStore = ingestion.NewMemoryPreviewStore(cfg.Import.PreviewTTL)
	if cfg.Redis.Enabled() {
		client, err := db.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		app.cleanup = append(app.cleanup, client.Close)
		previews = ingestion.NewRedisPreviewStore(client, cfg.Import.PreviewTTL)
		logger.WithField("addr", cfg.Redis.Addr).Info("storing import previews in redis")
	}

	allocator := sequence.NewAllocator(stores.Sequences, registry)
	app.Service = ingestion.NewService(ingestion.Dependencies{
		Lookups:         stores.Lookups,
		Writer:          records.NewWriter(stores.UnitOfWork, allocator, stores.Records),
		Runs:            stores.Runs,
		Previews:        previews,
		Metrics:         metrics,
		Logger:          logger,
		PreviewRowLimit: cfg.Import.PreviewRowLimit,
	})
	return app, nil
}

// Close releases every connection opened for the app, newest first.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		if err := a.cleanup[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
