package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gisdx/catalog-core/internal/domain/entities"
	"github.com/gisdx/catalog-core/internal/domain/mocks"
	"github.com/gisdx/catalog-core/internal/domain/ports"
	"github.com/gisdx/catalog-core/internal/domain/services"
)

func newTestHandler(store *mocks.CatalogStore) (*ReconcileHandler, *mocks.OverrideStore, *mocks.ReportSink) {
	urls := &mocks.URLChecker{Default: ports.URLOK}
	reconciler := services.NewReconciler(store, urls, &mocks.CommentSource{}, "/srv/datascrub")
	overrides := mocks.NewOverrideStore()
	sink := &mocks.ReportSink{Path: "reports/out.csv"}
	return NewReconcileHandler(reconciler, store, overrides, sink), overrides, sink
}

func TestReconcileHandler_Detect(t *testing.T) {
	store := mocks.NewCatalogStore(
		entities.CatalogRecord{ID: "1", Title: "Zoning - Duval Unified", State: "FL", County: "Duval"},
	)
	h, _, sink := newTestHandler(store)

	result, err := h.Detect(context.Background(), "zoning", services.EntityFilter{})
	require.NoError(t, err)
	assert.Equal(t, "reports/out.csv", result.ReportPath)
	require.NotNil(t, sink.Detect)
	assert.Len(t, sink.Detect.Unique, 1)
}

func TestReconcileHandler_Fill(t *testing.T) {
	record := entities.CatalogRecord{
		ID: "r1", Title: "Zoning - City of Largo", County: "Pinellas", City: "Largo",
	}

	t.Run("dry run merges overrides, never commits", func(t *testing.T) {
		store := mocks.NewCatalogStore(record)
		h, overrides, sink := newTestHandler(store)

		result, err := h.Fill(context.Background(), "zoning", FillOptions{})
		require.NoError(t, err)

		assert.False(t, result.Committed)
		assert.False(t, store.Committed)
		assert.Empty(t, store.Updates)
		require.NotNil(t, sink.Fill)

		// The missing src_url_file sentinel landed in the overrides file.
		assert.Equal(t, 1, overrides.MergeCallCount)
		assert.Equal(t, entities.ManualRequiredValue,
			overrides.Stored["zoning_fl_pinellas_largo"]["src_url_file"])
	})

	t.Run("apply commits staged corrections", func(t *testing.T) {
		store := mocks.NewCatalogStore(record)
		h, _, _ := newTestHandler(store)

		result, err := h.Fill(context.Background(), "zoning", FillOptions{ApplyAuto: true})
		require.NoError(t, err)

		assert.True(t, result.Committed)
		assert.True(t, store.Committed)
		assert.Equal(t, "FL", store.Updates["r1"]["state"])
	})
}

func TestReconcileHandler_Create(t *testing.T) {
	t.Run("overrides file feeds the synthesized record", func(t *testing.T) {
		store := mocks.NewCatalogStore()
		h, overrides, _ := newTestHandler(store)
		overrides.Stored.Add("fl_duval_jacksonville", "format", "AGS")

		result, err := h.Create(context.Background(), "zoning", CreateOptions{
			Entities: []string{"fl_duval_jacksonville"},
			Apply:    true,
		})
		require.NoError(t, err)

		assert.True(t, result.Committed)
		require.Len(t, store.Inserted, 1)
		assert.Equal(t, "AGS", store.Inserted[0].Format)
	})

	t.Run("blocked entity lands in overrides, nothing committed", func(t *testing.T) {
		store := mocks.NewCatalogStore()
		h, overrides, _ := newTestHandler(store)

		result, err := h.Create(context.Background(), "zoning", CreateOptions{
			Entities: []string{"fl_duval_jacksonville"},
			Apply:    true,
		})
		require.NoError(t, err)

		assert.False(t, result.Committed)
		assert.Empty(t, store.Inserted)
		assert.Equal(t, entities.ManualRequiredValue,
			overrides.Stored["fl_duval_jacksonville"]["format"])
	})
}
