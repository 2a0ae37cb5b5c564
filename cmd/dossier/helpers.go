package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/Veraticus/dossier/internal/common"
	"github.com/Veraticus/dossier/internal/config"
	"github.com/Veraticus/dossier/internal/engine"
	"github.com/Veraticus/dossier/internal/metrics"
	"github.com/Veraticus/dossier/internal/ocr"
	"github.com/Veraticus/dossier/internal/readiness"
	"github.com/Veraticus/dossier/internal/rules"
	"github.com/Veraticus/dossier/internal/service"
	"github.com/Veraticus/dossier/internal/storage"
)

// loadConfig reads the global viper state into a validated Config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("Invalid configuration", err)
	}
	return cfg, nil
}

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func buildMatcher(cfg *config.Config) (*rules.Matcher, error) {
	set, err := rules.Load(cfg.Rules.File)
	if err != nil {
		return nil, common.NewUserError("Could not load category rules", err)
	}
	return rules.NewMatcher(set), nil
}

func buildAggregator(cfg *config.Config) (*readiness.Aggregator, error) {
	criteria, err := readiness.LoadCriteriaFile(cfg.Criteria.File)
	if err != nil {
		return nil, common.NewUserError("Could not load award criteria", err)
	}

	agg, err := readiness.NewAggregator(criteria, readiness.Thresholds(cfg.Readiness.Thresholds),
		readiness.WithDefaultThreshold(cfg.Readiness.DefaultThreshold))
	if err != nil {
		return nil, common.NewUserError("Invalid readiness thresholds", err)
	}
	return agg, nil
}

// app bundles what most commands need.
type app struct {
	cfg     *config.Config
	store   *storage.SQLiteStorage
	engine  *engine.Engine
	metrics *metrics.Recorder
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// flushMetrics writes the textfile if one is configured.
func (a *app) flushMetrics() {
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		slog.Warn("Failed to write metrics textfile", "path", a.cfg.Metrics.Textfile, "error", err)
	}
}

// newApp loads configuration and wires storage, rules, analyzer and
// aggregator into an engine. Callers must Close the result.
func newApp(ctx context.Context, opts ...engine.Option) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	matcher, err := buildMatcher(cfg)
	if err != nil {
		return nil, err
	}
	analyzer, err := ocr.NewDefaultAnalyzer()
	if err != nil {
		return nil, err
	}
	aggregator, err := buildAggregator(cfg)
	if err != nil {
		return nil, err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	kind, err := service.ParseUploadKind(cfg.Ingest.Kind)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	recorder := metrics.New()
	base := []engine.Option{
		engine.WithMetrics(recorder),
		engine.WithWorkers(cfg.Ingest.Workers),
		engine.WithKind(kind),
		engine.WithExtractor(engine.SidecarExtractor{}),
	}

	eng, err := engine.New(store, matcher, analyzer, aggregator, append(base, opts...)...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &app{cfg: cfg, store: store, engine: eng, metrics: recorder}, nil
}
