package handlers

import (
	"context"
	"fmt"

	"github.com/gisdx/catalog-core/internal/domain/entities"
	"github.com/gisdx/catalog-core/internal/domain/ports"
	"github.com/gisdx/catalog-core/internal/domain/services"
)

// InferHandler handles transform-inference runs.
type InferHandler struct {
	inferencer *services.Inferencer
	store      ports.CatalogStore
	sink       ports.ReportSink
}

// NewInferHandler creates a new infer handler.
func NewInferHandler(inferencer *services.Inferencer, store ports.CatalogStore, sink ports.ReportSink) *InferHandler {
	return &InferHandler{
		inferencer: inferencer,
		store:      store,
		sink:       sink,
	}
}

// InferResult contains the result of an inference run.
type InferResult struct {
	Report     *entities.InferReport
	ReportPath string
	Committed  bool
}

// Handle runs transform inference, writes the report and commits any
// applied proposals.
func (h *InferHandler) Handle(ctx context.Context, opts services.InferOptions) (*InferResult, error) {
	rep, err := h.inferencer.Run(ctx, opts)
	if err != nil {
		if rbErr := h.store.Rollback(); rbErr != nil {
			return nil, fmt.Errorf("rolling back after inference failure: %w (inference: %w)", rbErr, err)
		}
		return nil, fmt.Errorf("inferring transforms: %w", err)
	}

	path, err := h.sink.WriteInfer(rep)
	if err != nil {
		return nil, fmt.Errorf("writing inference report: %w", err)
	}

	result := &InferResult{Report: rep, ReportPath: path}
	if opts.Apply && rep.Updated > 0 {
		if err := h.store.Commit(ctx); err != nil {
			return nil, fmt.Errorf("committing inferred transforms: %w", err)
		}
		result.Committed = true
	}
	return result, nil
}
