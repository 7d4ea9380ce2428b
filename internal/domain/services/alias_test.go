package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gisdx/catalog-core/internal/domain/entities"
	"github.com/gisdx/catalog-core/internal/domain/mocks"
)

func TestNormalizeFieldName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ZONE_CODE", "zone_code"},
		{"Zone Code", "zone_code"},
		{"zone-code", "zone_code"},
		{"  Zone__Code  ", "zone_code"},
		{"ZONE.CODE", "zone_code"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeFieldName(tt.in), "input %q", tt.in)
	}
}

func TestParseTransform(t *testing.T) {
	t.Run("well formed", func(t *testing.T) {
		got := ParseTransform("zoning:ZONE_CODE, flu:FLU_CAT")
		assert.Equal(t, map[string]string{"zoning": "ZONE_CODE", "flu": "FLU_CAT"}, got)
	})

	t.Run("malformed pairs skipped", func(t *testing.T) {
		got := ParseTransform("zoning:ZONE, badpair, :orphan, empty:")
		assert.Equal(t, map[string]string{"zoning": "ZONE"}, got)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, ParseTransform(""))
	})
}

func TestValidTransformPattern(t *testing.T) {
	assert.True(t, ValidTransformPattern("zoning:ZONE"))
	assert.False(t, ValidTransformPattern("zoning"))
	assert.False(t, ValidTransformPattern(""))
}

func TestFormatTransform(t *testing.T) {
	got := FormatTransform(map[string]string{"zoning": "ZONE", "flu": "FLU_CAT"})
	assert.Equal(t, "flu:FLU_CAT, zoning:ZONE", got)
	assert.Equal(t, "", FormatTransform(nil))
}

func TestBuildAliasIndex(t *testing.T) {
	rows := []entities.CatalogRecord{
		{LayerSubgroup: "zoning", FieldsObjTransform: "zoning:ZONE_CODE"},
		{LayerSubgroup: "zoning", FieldsObjTransform: "zoning:ZONING"},
		{LayerSubgroup: "flu", FieldsObjTransform: "flu:FLU_CAT"},
		{LayerSubgroup: "", FieldsObjTransform: "zoning:IGNORED"},
	}
	idx := BuildAliasIndex(rows)

	require.Contains(t, idx, "zoning")
	assert.True(t, idx["zoning"]["zoning"]["zone_code"])
	assert.True(t, idx["zoning"]["zoning"]["zoning"])
	assert.True(t, idx["flu"]["flu"]["flu_cat"])
	assert.Len(t, idx, 2)
}

func TestValidFieldNamesJSON(t *testing.T) {
	names, ok := ValidFieldNamesJSON(`["ZONE", "OBJECTID"]`)
	require.True(t, ok)
	assert.Equal(t, []string{"ZONE", "OBJECTID"}, names)

	_, ok = ValidFieldNamesJSON("not json")
	assert.False(t, ok)
	_, ok = ValidFieldNamesJSON("[]")
	assert.False(t, ok)
	_, ok = ValidFieldNamesJSON("")
	assert.False(t, ok)
}

func TestProposeTransform(t *testing.T) {
	t.Run("unique match accepted", func(t *testing.T) {
		aliases := map[string]map[string]bool{
			"zoning": {"zone_code": true, "zoning": true},
		}
		proposed, confidence, reasons := ProposeTransform(aliases, []string{"Zone_Code", "OBJECTID"})
		assert.Equal(t, ConfidenceUnique, confidence)
		assert.Empty(t, reasons)
		assert.Equal(t, map[string]string{"zoning": "Zone_Code"}, proposed)
	})

	t.Run("multiple matches are ambiguous", func(t *testing.T) {
		aliases := map[string]map[string]bool{
			"zoning": {"zone_code": true, "zoning": true},
		}
		_, confidence, reasons := ProposeTransform(aliases, []string{"ZONE_CODE", "ZONING"})
		assert.Equal(t, ConfidenceAmbiguous, confidence)
		assert.NotEmpty(t, reasons)
	})

	t.Run("claimed field is a conflict", func(t *testing.T) {
		aliases := map[string]map[string]bool{
			"flu":    {"code": true},
			"zoning": {"code": true},
		}
		_, confidence, reasons := ProposeTransform(aliases, []string{"CODE"})
		assert.Equal(t, ConfidenceConflict, confidence)
		assert.NotEmpty(t, reasons)
	})

	t.Run("no alias evidence", func(t *testing.T) {
		aliases := map[string]map[string]bool{
			"zoning": {"zone_code": true},
		}
		_, confidence, _ := ProposeTransform(aliases, []string{"OBJECTID", "SHAPE"})
		assert.Equal(t, ConfidenceNoMatch, confidence)
	})

	t.Run("no ground truth", func(t *testing.T) {
		_, confidence, _ := ProposeTransform(nil, []string{"ZONE"})
		assert.Equal(t, ConfidenceNoMatch, confidence)
	})
}

func TestInferencer_Run(t *testing.T) {
	truth := entities.CatalogRecord{
		ID: "t1", Title: "Zoning - City of Gainesville FL",
		LayerSubgroup: "zoning", FieldsObjTransform: "zoning:ZONE",
	}
	candidate := entities.CatalogRecord{
		ID: "c1", Title: "Zoning - City of Largo FL",
		State: "FL", County: "Pinellas", City: "Largo",
		LayerSubgroup: "zoning",
		FieldNames:    `["ZONE", "OBJECTID"]`,
	}

	t.Run("unique proposal applied", func(t *testing.T) {
		store := mocks.NewCatalogStore(truth, candidate)
		inf := NewInferencer(store, &mocks.SchemaIntrospector{})

		rep, err := inf.Run(context.Background(), InferOptions{RestrictMissing: true, Apply: true})
		require.NoError(t, err)

		assert.Equal(t, 1, rep.Processed)
		assert.Equal(t, 1, rep.Updated)
		require.Len(t, rep.Rows, 1)
		row := rep.Rows[0]
		assert.Equal(t, "zoning_fl_pinellas_largo", row.Entity)
		assert.Equal(t, ConfidenceUnique, row.Confidence)
		assert.Equal(t, "zoning:ZONE", row.Proposed)
		assert.True(t, row.Applied)
		assert.Equal(t, "zoning:ZONE", store.Updates["c1"]["fields_obj_transform"])
	})

	t.Run("dry run proposes without writing", func(t *testing.T) {
		store := mocks.NewCatalogStore(truth, candidate)
		inf := NewInferencer(store, &mocks.SchemaIntrospector{})

		rep, err := inf.Run(context.Background(), InferOptions{RestrictMissing: true})
		require.NoError(t, err)
		assert.Equal(t, 0, rep.Updated)
		assert.Empty(t, store.Updates)
	})

	t.Run("ambiguous candidate never written", func(t *testing.T) {
		truth2 := truth
		truth2.ID = "t2"
		truth2.FieldsObjTransform = "zoning:ZONE_CODE"
		ambiguous := candidate
		ambiguous.ID = "c2"
		ambiguous.FieldNames = `["ZONE", "ZONE_CODE"]`

		store := mocks.NewCatalogStore(truth, truth2, ambiguous)
		inf := NewInferencer(store, &mocks.SchemaIntrospector{})

		rep, err := inf.Run(context.Background(), InferOptions{RestrictMissing: true, Apply: true})
		require.NoError(t, err)
		assert.Equal(t, 0, rep.Updated)
		assert.Empty(t, store.Updates)
		require.Len(t, rep.Rows, 1)
		assert.Equal(t, ConfidenceAmbiguous, rep.Rows[0].Confidence)
	})

	t.Run("glob filter", func(t *testing.T) {
		store := mocks.NewCatalogStore(truth, candidate)
		inf := NewInferencer(store, &mocks.SchemaIntrospector{})

		rep, err := inf.Run(context.Background(), InferOptions{
			RestrictMissing: true,
			Exclude:         []string{"zoning_fl_pinellas_*"},
		})
		require.NoError(t, err)
		assert.Equal(t, 0, rep.Processed)
	})

	t.Run("missing field names falls back to introspector", func(t *testing.T) {
		noNames := candidate
		noNames.ID = "c3"
		noNames.FieldNames = ""
		noNames.SysRawFolder = "/data/zoning/largo"

		store := mocks.NewCatalogStore(truth, noNames)
		inf := NewInferencer(store, &mocks.SchemaIntrospector{
			Fields: map[string][]string{"/data/zoning/largo": {"ZONE", "SHAPE"}},
		})

		rep, err := inf.Run(context.Background(), InferOptions{RestrictMissing: true, Apply: true})
		require.NoError(t, err)
		require.Len(t, rep.Rows, 1)
		assert.Equal(t, "zoning:ZONE", rep.Rows[0].Proposed)
	})
}
