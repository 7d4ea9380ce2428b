package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gisdx/catalog-core/internal/domain/entities"
)

func TestExpectedValues_CityEntity(t *testing.T) {
	zoning := entities.Layers["zoning"]
	values := ExpectedValues("/srv/datascrub", zoning, "fl", "duval", "jacksonville", "")

	assert.Equal(t, "Zoning - City of Jacksonville FL", values["title"])
	assert.Equal(t, "FL", values["state"])
	assert.Equal(t, "Duval", values["county"])
	assert.Equal(t, "Jacksonville", values["city"])
	assert.Equal(t, "zoning_fl_duval_jacksonville", values["table_name"])
	assert.Equal(t, "/srv/datascrub/08_Land_Use_and_Zoning/zoning/florida/duval/jacksonville", values["sys_raw_folder"])
	assert.Equal(t, "flu_zoning", values["layer_group"])
	assert.Equal(t, "zoning", values["layer_subgroup"])
	assert.Equal(t, entities.DownloadAuto, values["download"])
}

func TestExpectedValues_CountySuffix(t *testing.T) {
	flu := entities.Layers["flu"]

	t.Run("unincorporated", func(t *testing.T) {
		values := ExpectedValues("/srv/datascrub", flu, "fl", "palm_beach", "unincorporated", "unincorporated")
		assert.Equal(t, "Future Land Use - Palm Beach County Unincorporated FL", values["title"])
		assert.Equal(t, "flu_fl_palm_beach_unincorporated", values["table_name"])
	})

	t.Run("countywide stored as unified", func(t *testing.T) {
		values := ExpectedValues("/srv/datascrub", flu, "fl", "orange", "countywide", "countywide")
		assert.Equal(t, "Future Land Use - Orange County Unified FL", values["title"])
		assert.Equal(t, "flu_fl_orange_unified", values["table_name"])
		assert.Equal(t, "Unified", values["city"])
	})
}

func TestExpectedValues_CountyLevel(t *testing.T) {
	parcelGeo := entities.Layers["parcel_geo"]
	values := ExpectedValues("/srv/datascrub", parcelGeo, "fl", "miami_dade", "", "")

	assert.Equal(t, "Parcel Geometry - Miami-Dade County FL", values["title"])
	assert.Equal(t, "parcel_geo_fl_miami_dade", values["table_name"])
	assert.Equal(t, "", values["city"])
	assert.Equal(t, "/srv/datascrub/05_Parcels/parcel_geo/florida/miami_dade", values["sys_raw_folder"])
}

func TestExpectedValues_PinnedLevels(t *testing.T) {
	t.Run("state", func(t *testing.T) {
		sunbiz := entities.Layers["sunbiz"]
		values := ExpectedValues("/srv/datascrub", sunbiz, "fl", "", "", "state")
		assert.Equal(t, "SunBiz", values["title"])
		assert.Equal(t, "sunbiz_fl", values["table_name"])
		assert.Equal(t, "FL", values["state"])
		assert.Equal(t, "", values["county"])
	})

	t.Run("national blanks location columns", func(t *testing.T) {
		fema := entities.Layers["fema_flood"]
		values := ExpectedValues("/srv/datascrub", fema, "", "", "", "national")
		assert.Equal(t, "FEMA Flood", values["title"])
		assert.Equal(t, "fema_flood", values["table_name"])
		assert.Equal(t, "", values["state"])
		assert.Equal(t, "", values["county"])
		assert.Equal(t, "", values["city"])
	})
}

func TestExpectedTitle_PreservesTownPrefix(t *testing.T) {
	zoning := entities.Layers["zoning"]
	p := entityParts{Layer: zoning, State: "fl", County: "clay", City: "orange_park", EntityType: "city"}

	assert.Equal(t, "Zoning - Town of Orange Park FL", expectedTitle(p, "Town"))
	assert.Equal(t, "Zoning - City of Orange Park FL", expectedTitle(p, ""))
}

func TestExpectedResource(t *testing.T) {
	zoning := entities.Layers["zoning"]
	parcelGeo := entities.Layers["parcel_geo"]

	p := entityParts{Layer: zoning, State: "fl", County: "duval", City: "jacksonville", EntityType: "city"}
	assert.Equal(t, "/data/zoning/duval/jacksonville", expectedResource(p))

	p = entityParts{Layer: parcelGeo, State: "fl", County: "duval"}
	assert.Equal(t, "/data/parcel_geo/duval", expectedResource(p))
}

func TestIsAGSFormat(t *testing.T) {
	assert.True(t, IsAGSFormat("AGS"))
	assert.True(t, IsAGSFormat("ags_extract"))
	assert.True(t, IsAGSFormat(" Esri "))
	assert.False(t, IsAGSFormat("SHP"))
	assert.False(t, IsAGSFormat(""))
}

func TestDeriveEntityType(t *testing.T) {
	zoning := entities.Layers["zoning"]
	require.Equal(t, "city", deriveEntityType(zoning, "duval", "jacksonville"))
	require.Equal(t, "unified", deriveEntityType(zoning, "duval", "unified"))
	require.Equal(t, "county", deriveEntityType(zoning, "duval", ""))
	require.Equal(t, "county", deriveEntityType(entities.Layers["parcel_geo"], "duval", "x"))
	require.Equal(t, "state", deriveEntityType(entities.Layers["sunbiz"], "", ""))
	require.Equal(t, "national", deriveEntityType(entities.Layers["fema_flood"], "", ""))
}
