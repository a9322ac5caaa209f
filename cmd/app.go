package cmd

import (
	"context"
	"fmt"

	"medifinder-ingestor/core/config"
	"medifinder-ingestor/core/database"
	"medifinder-ingestor/core/lock"
	"medifinder-ingestor/core/logger"
	"medifinder-ingestor/core/tunnel"
	"medifinder-ingestor/feature/inventory/models"
	"medifinder-ingestor/feature/inventory/store"

	"go.uber.org/zap"
)

// app holds the components shared by every command that touches the store.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *store.Store
	runLock *lock.RunLock

	closers []func()
}

// bootstrap loads configuration, builds the logger, opens the optional SSH
// tunnel, connects to the database and verifies the schema. The caller must
// Close the returned app, also when an error is returned alongside it.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	a := &app{cfg: cfg, logger: l}
	a.closers = append(a.closers, func() { _ = l.Sync() })

	a.runLock, err = lock.New(ctx, cfg.Lock, l)
	if err != nil {
		return a, err
	}
	a.closers = append(a.closers, func() { _ = a.runLock.Close() })

	dbCfg := cfg.Database
	if cfg.Tunnel.Enabled {
		t, err := tunnel.Open(cfg.Tunnel, dbCfg.Host, dbCfg.Port, l)
		if err != nil {
			return a, fmt.Errorf("%w: %w", database.ErrUnavailable, err)
		}
		a.closers = append(a.closers, func() { _ = t.Close() })
		dbCfg.Host, dbCfg.Port = t.LocalAddr()
	}

	db, err := database.Connect(dbCfg, l)
	if err != nil {
		return a, fmt.Errorf("failed to connect to database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, func() { _ = sqlDB.Close() })
	}

	if err := database.VerifySchema(db, models.All()...); err != nil {
		return a, err
	}

	pool := database.NewPool(db, dbCfg, l)
	a.store = store.New(pool, l)
	return a, nil
}

// Close releases everything bootstrap opened, in reverse order.
func (a *app) Close() {
	if a == nil {
		return
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
