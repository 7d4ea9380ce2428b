package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"empty", "", ""},
		{"feature server", "https://gis.example.gov/arcgis/rest/services/Zoning/FeatureServer/0", "AGS"},
		{"map server", "https://maps.example.gov/server/rest/services/FLU/MapServer/2", "AGS"},
		{"wms capabilities", "https://gis.example.gov/wms?request=GetCapabilities", "WMS"},
		{"csv download", "https://example.gov/data/parcels.csv", "CSV"},
		{"kmz download", "https://example.gov/data/zones.kmz", "KML"},
		{"geotiff", "https://example.gov/data/dem.tif", "GeoTIFF"},
		{"zip defaults to shp", "https://example.gov/data/zoning.zip", "SHP"},
		{"bare page defaults to shp", "https://example.gov/downloads", "SHP"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFromURL(tt.url))
		})
	}
}

func TestFormatFromFiles(t *testing.T) {
	dir := t.TempDir()
	touch := func(name string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	t.Run("empty dir", func(t *testing.T) {
		assert.Equal(t, "", FormatFromFiles(dir))
	})

	t.Run("shapefile set", func(t *testing.T) {
		touch("zoning.shp")
		touch("zoning.dbf")
		assert.Equal(t, "SHP", FormatFromFiles(dir))
	})

	t.Run("geojson marks an ags extraction", func(t *testing.T) {
		touch("zoning.geojson")
		assert.Equal(t, "AGS", FormatFromFiles(dir))
	})
}

func TestBestFormat(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.csv"), []byte("a,b"), 0o644))

	t.Run("ags url wins", func(t *testing.T) {
		got := BestFormat("https://gis.example.gov/arcgis/rest/services/X/MapServer/0", dir)
		assert.Equal(t, "AGS", got)
	})

	t.Run("specific file format beats url default", func(t *testing.T) {
		got := BestFormat("https://example.gov/data/download.zip", dir)
		assert.Equal(t, "CSV", got)
	})

	t.Run("no evidence defaults to shp", func(t *testing.T) {
		assert.Equal(t, "SHP", BestFormat("", ""))
	})
}
