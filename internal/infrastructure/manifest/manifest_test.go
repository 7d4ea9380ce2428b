package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layer_manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFile(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	source, processing := m.Commands("zoning", "fl_alachua_gainesville")
	assert.Empty(t, source)
	assert.Empty(t, processing)
}

func TestLoad_Malformed(t *testing.T) {
	path := writeManifest(t, "{oops")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestManifest_Commands(t *testing.T) {
	path := writeManifest(t, `{
		"zoning": {
			"alachua_gainesville": [
				"wget https://example.gov/zoning.zip",
				"unzip zoning.zip",
				"ogrinfo -so zoning.shp",
				"ogr2ogr -f PostgreSQL PG: zoning.shp",
				"UPDATE m_gis_data_catalog_main SET data_date = now()"
			]
		}
	}`)
	m, err := Load(path)
	require.NoError(t, err)

	t.Run("bare county_city key", func(t *testing.T) {
		source, processing := m.Commands("zoning", "alachua_gainesville")
		assert.Equal(t, "[wget https://example.gov/zoning.zip]\n[unzip zoning.zip]", source)
		assert.Equal(t, "[ogrinfo -so zoning.shp]\n[ogr2ogr -f PostgreSQL PG: zoning.shp]", processing)
	})

	t.Run("full entity key converts to county_city", func(t *testing.T) {
		source, _ := m.Commands("zoning", "zoning_fl_alachua_gainesville")
		assert.Contains(t, source, "wget")
	})

	t.Run("unknown entity", func(t *testing.T) {
		source, processing := m.Commands("zoning", "fl_duval_jacksonville")
		assert.Empty(t, source)
		assert.Empty(t, processing)
	})

	t.Run("unknown layer", func(t *testing.T) {
		source, _ := m.Commands("flu", "alachua_gainesville")
		assert.Empty(t, source)
	})
}

func TestManifest_CommandsStopAtUpdate(t *testing.T) {
	path := writeManifest(t, `{
		"flu": {
			"duval_unincorporated": [
				"curl -O https://example.gov/flu.zip",
				"UPDATE m_gis_data_catalog_main SET status = 'ACTIVE'",
				"ogr2ogr flu.shp"
			]
		}
	}`)
	m, err := Load(path)
	require.NoError(t, err)

	source, processing := m.Commands("flu", "duval_unincorporated")
	assert.Equal(t, "[curl -O https://example.gov/flu.zip]", source)
	assert.Empty(t, processing, "commands after an UPDATE are never quoted")
}
