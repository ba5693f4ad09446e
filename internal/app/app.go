// Package app wires storage, the live source and the services from a Config.
// Both binaries build their shell on top of an App.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/usercache/internal/config"
	"github.com/dmitrijs2005/usercache/internal/database"
	"github.com/dmitrijs2005/usercache/internal/logging"
	"github.com/dmitrijs2005/usercache/internal/metrics"
	"github.com/dmitrijs2005/usercache/internal/remote"
	"github.com/dmitrijs2005/usercache/internal/repositories/cache"
	"github.com/dmitrijs2005/usercache/internal/repositories/users"
	"github.com/dmitrijs2005/usercache/internal/services"
	"github.com/prometheus/client_golang/prometheus"
)

type App struct {
	Config  *config.Config
	Logger  logging.Logger
	Metrics *metrics.Metrics
	Users   *users.Observable
	Cache   cache.Repository
	Source  remote.Source
	Sync    *services.SyncService
	Query   *services.QueryService

	closers []func() error
}

// New opens the stores named by cfg and builds the services. reg may be nil.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger, reg prometheus.Registerer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a := &App{Config: cfg, Logger: logger, Metrics: metrics.New(reg)}

	db, err := database.Open(ctx, cfg.DatabaseDSN, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	switch cfg.CacheBackend {
	case config.BackendBadger:
		b, err := cache.OpenBadger(cfg.BadgerDir, logger)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("cache init error: %w", err)
		}
		a.closers = append(a.closers, b.Close)
		a.Cache = b
	default:
		a.Cache = cache.NewSQLRepository(db, db.Dialect)
	}

	a.Users = users.NewObservable(
		users.NewSQLRepository(db, db.Dialect),
		logger.With("component", "users"),
		users.WithSubscriberGauge(a.Metrics.Subscribers),
	)
	a.closers = append(a.closers, func() error { a.Users.Close(); return nil })

	a.Source = remote.NewStub()

	opts := []services.Option{
		services.WithCacheSize(cfg.CacheSize),
		services.WithLogger(logger.With("component", "sync")),
		services.WithMetrics(a.Metrics),
	}
	a.Sync = services.NewSyncService(a.Users, a.Cache, a.Source, opts...)
	a.Query = services.NewQueryService(a.Users, a.Cache, a.Source)

	logger.Info(ctx, "app ready", "cache_backend", cfg.CacheBackend, "cache_size", cfg.CacheSize)
	return a, nil
}

// Close releases everything New opened, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
