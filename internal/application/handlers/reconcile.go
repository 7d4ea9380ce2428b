// Package handlers orchestrates the reconciliation and inference services
// for the CLI: run the service, persist reports, merge the overrides file
// and settle the run transaction.
package handlers

import (
	"context"
	"fmt"

	"github.com/gisdx/catalog-core/internal/domain/entities"
	"github.com/gisdx/catalog-core/internal/domain/ports"
	"github.com/gisdx/catalog-core/internal/domain/services"
)

// ReconcileHandler handles the detect, fill and create run modes.
type ReconcileHandler struct {
	reconciler *services.Reconciler
	store      ports.CatalogStore
	overrides  ports.OverrideStore
	sink       ports.ReportSink
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(reconciler *services.Reconciler, store ports.CatalogStore, overrides ports.OverrideStore, sink ports.ReportSink) *ReconcileHandler {
	return &ReconcileHandler{
		reconciler: reconciler,
		store:      store,
		overrides:  overrides,
		sink:       sink,
	}
}

// DetectResult contains the result of a detect run.
type DetectResult struct {
	Report     *entities.DetectReport
	ReportPath string
}

// Detect runs duplicate detection for a layer and writes the report.
func (h *ReconcileHandler) Detect(ctx context.Context, layer string, filter services.EntityFilter) (*DetectResult, error) {
	rep, err := h.reconciler.Detect(ctx, layer, filter)
	if err != nil {
		return nil, fmt.Errorf("detecting duplicates: %w", err)
	}

	path, err := h.sink.WriteDetect(rep)
	if err != nil {
		return nil, fmt.Errorf("writing detect report: %w", err)
	}

	return &DetectResult{Report: rep, ReportPath: path}, nil
}

// FillOptions controls a fill run.
type FillOptions struct {
	Filter      services.EntityFilter
	AllFields   bool // also check the optional condition set
	ApplyAuto   bool // write derived corrections
	ApplyManual bool // write manual-class corrections
}

// FillResult contains the result of a fill run.
type FillResult struct {
	Report     *entities.FillReport
	Stats      services.ApplyStats
	ReportPath string
	Committed  bool
}

// Fill health-checks a layer, writes the report and the merged overrides
// file, and commits any requested corrections.
func (h *ReconcileHandler) Fill(ctx context.Context, layer string, opts FillOptions) (*FillResult, error) {
	rep, missing, err := h.reconciler.Fill(ctx, layer, opts.Filter, opts.AllFields)
	if err != nil {
		return nil, fmt.Errorf("checking field health: %w", err)
	}

	path, err := h.sink.WriteFill(rep)
	if err != nil {
		return nil, fmt.Errorf("writing fill report: %w", err)
	}

	if len(missing) > 0 {
		if err := h.overrides.Merge(missing); err != nil {
			return nil, fmt.Errorf("merging overrides file: %w", err)
		}
	}

	result := &FillResult{Report: rep, ReportPath: path}
	if !opts.ApplyAuto && !opts.ApplyManual {
		return result, nil
	}

	stats, err := h.reconciler.ApplyFill(ctx, rep, opts.ApplyAuto, opts.ApplyManual)
	if err != nil {
		if rbErr := h.store.Rollback(); rbErr != nil {
			return nil, fmt.Errorf("rolling back after apply failure: %w (apply: %w)", rbErr, err)
		}
		return nil, fmt.Errorf("applying corrections: %w", err)
	}
	if err := h.store.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing corrections: %w", err)
	}

	result.Stats = stats
	result.Committed = true
	return result, nil
}

// CreateOptions controls a create run.
type CreateOptions struct {
	Entities []string
	Apply    bool
}

// CreateResult contains the result of a create run.
type CreateResult struct {
	Report     *entities.CreateReport
	ReportPath string
	Committed  bool
}

// Create synthesizes records for the requested entities, merging in the
// overrides file, and commits inserts under apply. Blocked entities are
// folded back into the overrides file for a human to complete.
func (h *ReconcileHandler) Create(ctx context.Context, layer string, opts CreateOptions) (*CreateResult, error) {
	overrides, err := h.overrides.Load()
	if err != nil {
		return nil, fmt.Errorf("loading overrides file: %w", err)
	}

	rep, missing, err := h.reconciler.Create(ctx, layer, opts.Entities, overrides, opts.Apply)
	if err != nil {
		if rbErr := h.store.Rollback(); rbErr != nil {
			return nil, fmt.Errorf("rolling back after create failure: %w (create: %w)", rbErr, err)
		}
		return nil, fmt.Errorf("creating records: %w", err)
	}

	path, err := h.sink.WriteCreate(rep)
	if err != nil {
		return nil, fmt.Errorf("writing create report: %w", err)
	}

	if len(missing) > 0 {
		if err := h.overrides.Merge(missing); err != nil {
			return nil, fmt.Errorf("merging overrides file: %w", err)
		}
	}

	result := &CreateResult{Report: rep, ReportPath: path}
	if opts.Apply && rep.Created > 0 {
		if err := h.store.Commit(ctx); err != nil {
			return nil, fmt.Errorf("committing created records: %w", err)
		}
		result.Committed = true
	}
	return result, nil
}
