package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gisdx/catalog-core/internal/application/handlers"
	"github.com/gisdx/catalog-core/internal/domain/services"
	"github.com/gisdx/catalog-core/internal/infrastructure/catalogdb/sqlite"
	"github.com/gisdx/catalog-core/internal/infrastructure/config"
	"github.com/gisdx/catalog-core/internal/infrastructure/manifest"
	"github.com/gisdx/catalog-core/internal/infrastructure/overrides"
	"github.com/gisdx/catalog-core/internal/infrastructure/report"
	"github.com/gisdx/catalog-core/internal/infrastructure/schemaprobe"
	"github.com/gisdx/catalog-core/internal/infrastructure/urlcheck"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config           *config.Config
	ReconcileHandler *handlers.ReconcileHandler
	InferHandler     *handlers.InferHandler
}

// withDeps loads config and builds dependencies, then calls the provided
// function. It handles cleanup automatically.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := sqlite.NewRepository(cfg.SQLite)
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	comments, err := manifest.Load(cfg.Catalog.ManifestFile)
	if err != nil {
		return fmt.Errorf("loading layer manifest: %w", err)
	}

	checker := urlcheck.NewChecker(
		time.Duration(cfg.HTTP.TimeoutSeconds)*time.Second,
		cfg.HTTP.RetryCount,
	)
	overrideStore := overrides.NewStore(cfg.Catalog.ManualFile)
	sink := report.NewCSVSink(cfg.Reports.Dir)

	reconciler := services.NewReconciler(store, checker, comments, cfg.Catalog.DataRoot)
	inferencer := services.NewInferencer(store, schemaprobe.NewIntrospector())

	deps := &Deps{
		Config:           cfg,
		ReconcileHandler: handlers.NewReconcileHandler(reconciler, store, overrideStore, sink),
		InferHandler:     handlers.NewInferHandler(inferencer, store, sink),
	}

	return fn(deps)
}
