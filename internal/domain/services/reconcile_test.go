package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gisdx/catalog-core/internal/domain/entities"
	"github.com/gisdx/catalog-core/internal/domain/mocks"
	"github.com/gisdx/catalog-core/internal/domain/ports"
)

func newTestReconciler(store *mocks.CatalogStore) *Reconciler {
	urls := &mocks.URLChecker{Default: ports.URLOK}
	return NewReconciler(store, urls, &mocks.CommentSource{}, "/srv/datascrub")
}

func TestReconciler_Detect(t *testing.T) {
	store := mocks.NewCatalogStore(
		entities.CatalogRecord{
			ID: "1", Title: "Zoning - City of Gainesville FL",
			State: "FL", County: "Alachua",
		},
		entities.CatalogRecord{
			ID: "2", Title: "Zoning - City of Gainesville - SHP",
			State: "FL", County: "Alachua",
		},
		entities.CatalogRecord{
			ID: "3", Title: "Zoning - Duval Unified",
			State: "FL", County: "Duval",
		},
		entities.CatalogRecord{
			ID: "4", Title: "Zoning misc upload",
		},
	)
	r := newTestReconciler(store)

	rep, err := r.Detect(context.Background(), "zoning", EntityFilter{})
	require.NoError(t, err)

	assert.Equal(t, 4, rep.Total)

	require.Len(t, rep.Unique, 1)
	assert.Equal(t, "zoning_fl_duval_unified", rep.Unique[0].Entity)

	require.Len(t, rep.Duplicates, 1)
	assert.Equal(t, "zoning_fl_alachua_gainesville", rep.Duplicates[0].Entity)
	assert.Len(t, rep.Duplicates[0].Records, 2)

	require.Len(t, rep.Errors, 1)
	assert.Equal(t, "Zoning misc upload", rep.Errors[0].Values["title"])
}

func TestReconciler_Detect_Filter(t *testing.T) {
	store := mocks.NewCatalogStore(
		entities.CatalogRecord{ID: "1", Title: "Zoning - City of Gainesville FL", State: "FL", County: "Alachua"},
		entities.CatalogRecord{ID: "2", Title: "Zoning - Duval Unified", State: "FL", County: "Duval"},
	)
	r := newTestReconciler(store)

	rep, err := r.Detect(context.Background(), "zoning", EntityFilter{Include: []string{"duval"}})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Total)
	require.Len(t, rep.Unique, 1)
	assert.Equal(t, "zoning_fl_duval_unified", rep.Unique[0].Entity)
}

func TestReconciler_Detect_UnknownLayer(t *testing.T) {
	r := newTestReconciler(mocks.NewCatalogStore())
	_, err := r.Detect(context.Background(), "wetlands", EntityFilter{})
	assert.Error(t, err)
}

// healthyRecord carries exactly the values fill mode derives for
// zoning_fl_alachua_gainesville.
func healthyRecord() entities.CatalogRecord {
	return entities.CatalogRecord{
		ID:                 "r1",
		Title:              "Zoning - City of Gainesville FL",
		State:              "FL",
		County:             "Alachua",
		City:               "Gainesville",
		SrcURLFile:         "https://gis.example.gov/arcgis/rest/services/Zoning/MapServer/0",
		Format:             "AGS",
		Download:           entities.DownloadAuto,
		LayerGroup:         "flu_zoning",
		LayerSubgroup:      "zoning",
		Category:           "08_Land_Use_and_Zoning",
		SysRawFolder:       "/srv/datascrub/08_Land_Use_and_Zoning/zoning/florida/alachua/gainesville",
		TableName:          "zoning_fl_alachua_gainesville",
		FieldsObjTransform: "zoning:ZONE_CODE",
	}
}

func TestReconciler_Fill_HealthyRecord(t *testing.T) {
	store := mocks.NewCatalogStore(healthyRecord())
	r := newTestReconciler(store)

	rep, missing, err := r.Fill(context.Background(), "zoning", EntityFilter{}, false)
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)
	assert.Empty(t, missing)

	row := rep.Rows[0]
	assert.Equal(t, "zoning_fl_alachua_gainesville", row.Entity)
	for field, check := range row.Cells {
		assert.Equal(t, entities.FieldHealthy, check.Status, "field %s: %+v", field, check)
	}
}

func TestReconciler_Fill_Corrections(t *testing.T) {
	store := mocks.NewCatalogStore(entities.CatalogRecord{
		ID:     "r2",
		Title:  "Zoning - City of Largo",
		County: "Pinellas",
		City:   "Largo",
	})
	r := newTestReconciler(store)

	rep, missing, err := r.Fill(context.Background(), "zoning", EntityFilter{}, false)
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)

	row := rep.Rows[0]
	assert.Equal(t, "zoning_fl_pinellas_largo", row.Entity)

	assert.Equal(t, entities.FieldCorrected, row.Cells["new_title"].Status)
	assert.Equal(t, "Zoning - City of Largo FL", row.Cells["new_title"].Value)

	assert.Equal(t, entities.FieldCorrected, row.Cells["state"].Status)
	assert.Equal(t, "FL", row.Cells["state"].Value)

	assert.Equal(t, entities.FieldHealthy, row.Cells["county"].Status)

	assert.Equal(t, entities.FieldManualRequired, row.Cells["src_url_file"].Status)
	assert.Equal(t, entities.MissingCell, row.Cells["src_url_file"].Value)

	assert.Equal(t, entities.FieldManualRequired, row.Cells["format"].Status)

	assert.Equal(t, entities.FieldCorrected, row.Cells["resource"].Status)
	assert.Equal(t, "/data/zoning/pinellas/largo", row.Cells["resource"].Value)

	assert.Equal(t, entities.FieldCorrected, row.Cells["table_name"].Status)
	assert.Equal(t, "zoning_fl_pinellas_largo", row.Cells["table_name"].Value)

	require.Contains(t, missing, "zoning_fl_pinellas_largo")
	assert.Equal(t, entities.ManualRequiredValue, missing["zoning_fl_pinellas_largo"]["src_url_file"])
	assert.Equal(t, entities.ManualRequiredValue, missing["zoning_fl_pinellas_largo"]["format"])
}

func TestReconciler_Fill_DeprecatedURL(t *testing.T) {
	rec := healthyRecord()
	store := mocks.NewCatalogStore(rec)
	urls := &mocks.URLChecker{Statuses: map[string]ports.URLStatus{
		rec.SrcURLFile: ports.URLDeprecated,
	}}
	r := NewReconciler(store, urls, &mocks.CommentSource{}, "/srv/datascrub")

	rep, missing, err := r.Fill(context.Background(), "zoning", EntityFilter{}, false)
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)

	check := rep.Rows[0].Cells["src_url_file"]
	assert.Equal(t, entities.FieldManualRequired, check.Status)
	assert.Equal(t, entities.DeprecatedCell, check.Value)
	assert.Equal(t, entities.URLDeprecatedValue,
		missing["zoning_fl_alachua_gainesville"]["src_url_file"])
}

func TestReconciler_Fill_SkipsDuplicatesAndErrors(t *testing.T) {
	store := mocks.NewCatalogStore(
		entities.CatalogRecord{ID: "1", Title: "Zoning - City of Gainesville FL", State: "FL", County: "Alachua"},
		entities.CatalogRecord{ID: "2", Title: "Zoning - City of Gainesville - SHP", State: "FL", County: "Alachua"},
		entities.CatalogRecord{ID: "3", Title: "Zoning misc upload"},
	)
	r := newTestReconciler(store)

	rep, _, err := r.Fill(context.Background(), "zoning", EntityFilter{}, false)
	require.NoError(t, err)
	assert.Empty(t, rep.Rows)
	assert.Equal(t, 3, rep.Skipped)
}

func TestReconciler_ApplyFill(t *testing.T) {
	store := mocks.NewCatalogStore(entities.CatalogRecord{
		ID:     "r2",
		Title:  "Zoning - City of Largo",
		County: "Pinellas",
		City:   "Largo",
	})
	r := newTestReconciler(store)

	rep, _, err := r.Fill(context.Background(), "zoning", EntityFilter{}, false)
	require.NoError(t, err)

	t.Run("no flags stages nothing", func(t *testing.T) {
		stats, err := r.ApplyFill(context.Background(), rep, false, false)
		require.NoError(t, err)
		assert.Zero(t, stats.AppliedAuto)
		assert.Empty(t, store.Updates)
	})

	t.Run("apply auto writes derived corrections only", func(t *testing.T) {
		stats, err := r.ApplyFill(context.Background(), rep, true, false)
		require.NoError(t, err)
		assert.Greater(t, stats.AppliedAuto, 0)
		assert.Zero(t, stats.AppliedManual)

		updates := store.Updates["r2"]
		require.NotNil(t, updates)
		assert.Equal(t, "Zoning - City of Largo FL", updates["title"])
		assert.Equal(t, "FL", updates["state"])
		// Manual-required sentinels are never written.
		assert.NotContains(t, updates, "src_url_file")
	})
}

func TestReconciler_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("missing format blocks creation even under apply", func(t *testing.T) {
		store := mocks.NewCatalogStore()
		r := newTestReconciler(store)

		rep, missing, err := r.Create(ctx, "zoning", []string{"fl_duval_jacksonville"}, nil, true)
		require.NoError(t, err)

		assert.Equal(t, 1, rep.Blocked)
		assert.Zero(t, rep.Created)
		assert.Empty(t, store.Inserted)
		require.Len(t, rep.Outcomes, 1)
		assert.Equal(t, CreateStatusManualRequired, rep.Outcomes[0].Status)
		assert.Contains(t, rep.Outcomes[0].MissingFields, "format")
		assert.Equal(t, entities.ManualRequiredValue, missing["fl_duval_jacksonville"]["format"])
	})

	t.Run("non-ags format requires resource or url", func(t *testing.T) {
		store := mocks.NewCatalogStore()
		r := newTestReconciler(store)
		overrides := entities.MissingFields{
			"fl_duval_jacksonville": {"format": "SHP"},
		}

		rep, missing, err := r.Create(ctx, "zoning", []string{"fl_duval_jacksonville"}, overrides, true)
		require.NoError(t, err)
		assert.Equal(t, 1, rep.Blocked)
		assert.Empty(t, store.Inserted)
		assert.Equal(t, entities.ManualRequiredValue, missing["fl_duval_jacksonville"]["resource"])
	})

	t.Run("ags format with derived table name inserts", func(t *testing.T) {
		store := mocks.NewCatalogStore()
		r := newTestReconciler(store)
		overrides := entities.MissingFields{
			"fl_duval_jacksonville": {"format": "AGS"},
		}

		rep, _, err := r.Create(ctx, "zoning", []string{"fl_duval_jacksonville"}, overrides, true)
		require.NoError(t, err)
		assert.Equal(t, 1, rep.Created)
		require.Len(t, store.Inserted, 1)

		rec := store.Inserted[0]
		assert.Equal(t, "Zoning - City of Jacksonville FL", rec.Title)
		assert.Equal(t, "zoning_fl_duval_jacksonville", rec.TableName)
		assert.Equal(t, entities.StatusActive, rec.Status)
		assert.Equal(t, entities.DownloadAuto, rec.Download)
		assert.NotEmpty(t, rec.PublishDate)
	})

	t.Run("dry run never inserts", func(t *testing.T) {
		store := mocks.NewCatalogStore()
		r := newTestReconciler(store)
		overrides := entities.MissingFields{
			"fl_duval_jacksonville": {"format": "AGS"},
		}

		rep, _, err := r.Create(ctx, "zoning", []string{"fl_duval_jacksonville"}, overrides, false)
		require.NoError(t, err)
		assert.Zero(t, rep.Created)
		assert.Empty(t, store.Inserted)
		require.Len(t, rep.Outcomes, 1)
		assert.Equal(t, CreateStatusPending, rep.Outcomes[0].Status)
	})

	t.Run("existing title is skipped", func(t *testing.T) {
		store := mocks.NewCatalogStore(entities.CatalogRecord{
			ID: "e1", Title: "Zoning - City of Jacksonville FL",
		})
		r := newTestReconciler(store)

		rep, _, err := r.Create(ctx, "zoning", []string{"fl_duval_jacksonville"}, nil, true)
		require.NoError(t, err)
		assert.Equal(t, 1, rep.Skipped)
		assert.Empty(t, store.Inserted)
		require.Len(t, rep.Outcomes, 1)
		assert.Equal(t, CreateStatusExists, rep.Outcomes[0].Status)
	})

	t.Run("unsplittable entity is invalid", func(t *testing.T) {
		store := mocks.NewCatalogStore()
		r := newTestReconciler(store)

		rep, _, err := r.Create(ctx, "zoning", []string{"fl_duval"}, nil, true)
		require.NoError(t, err)
		require.Len(t, rep.Outcomes, 1)
		assert.Equal(t, CreateStatusInvalid, rep.Outcomes[0].Status)
	})
}
