package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/vocab-tracker/internal/platform/logging"
	"github.com/example/vocab-tracker/services/tracker/internal/catalog"
	"github.com/example/vocab-tracker/services/tracker/internal/config"
	"github.com/example/vocab-tracker/services/tracker/internal/engine"
)

// app is what every subcommand needs: config, logger and a live engine.
type app struct {
	cfg     config.Config
	log     *zap.Logger
	eng     *engine.Engine
	res     *engine.Resources
	catalog *catalog.Source
}

// openApp loads config, builds the logger (optionally writing to logOutputs
// instead of stderr) and initializes the engine.
func openApp(ctx context.Context, logOutputs ...string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.App.LogLevel, logOutputs...)
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("service", cfg.App.ServiceName))

	src, err := catalog.Open(cfg.CatalogPath, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	eng, res, err := engine.Open(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return &app{cfg: cfg, log: log, eng: eng, res: res, catalog: src}, nil
}

// close tears the engine down, making the final flush attempt.
func (a *app) close(ctx context.Context) {
	_, _ = a.eng.Teardown(ctx)
	a.res.Close()
	_ = a.log.Sync()
}
