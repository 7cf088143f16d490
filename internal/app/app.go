// Package app assembles the store, cache, metrics and composition service
// from configuration. Both binaries start here.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/kutbudev/decktree/internal/cache"
	"github.com/kutbudev/decktree/internal/deck"
	"github.com/kutbudev/decktree/internal/logger"
	"github.com/kutbudev/decktree/internal/metrics"
	"github.com/kutbudev/decktree/internal/traversal"
	"github.com/kutbudev/decktree/pkg/config"
	"github.com/kutbudev/decktree/pkg/repository"
	"github.com/prometheus/client_golang/prometheus"
)

type App struct {
	Config   *config.Config
	Log      *logger.Logger
	DB       *repository.Database
	Cache    *cache.ClosureCache
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	Service  *deck.Service
}

// New opens the database, runs the migration and wires the service.
// The closure cache is enabled only when redis.addr is set, and an
// unreachable redis at startup disables it rather than failing.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	db, err := repository.NewDatabase(cfg.Database, cfg.Debug, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Log:      log,
		DB:       db,
		Registry: prometheus.NewRegistry(),
	}
	a.Metrics = metrics.New(a.Registry)

	opts := []deck.Option{
		deck.WithTraversalOptions(
			traversal.WithMaxDepth(cfg.Traversal.MaxDepth),
			traversal.WithRecorder(a.Metrics),
		),
	}
	if cfg.Redis.Addr != "" {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cache.WithTTL(cfg.Redis.TTL))
		if err := c.Ping(ctx); err != nil {
			log.Warn("Closure cache disabled", "addr", cfg.Redis.Addr, "error", err)
			_ = c.Close()
		} else {
			a.Cache = c
			opts = append(opts, deck.WithCache(c, a.Metrics))
		}
	}

	a.Service = deck.NewService(db, log, opts...)
	return a, nil
}

// Health reports whether the store, and the cache when enabled, respond.
func (a *App) Health(ctx context.Context) error {
	if err := a.DB.Health(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if a.Cache != nil {
		if err := a.Cache.Ping(ctx); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
	}
	return nil
}

func (a *App) Close() error {
	var errs []error
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	errs = append(errs, a.DB.Close())
	return errors.Join(errs...)
}
