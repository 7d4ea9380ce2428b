// Package entities contains the core domain data structures: the layer
// registry, state gazetteers, catalog records and reconciliation reports.
package entities

import (
	"sort"

	"github.com/gisdx/catalog-core/internal/domain/naming"
)

// Level is the geographic granularity of a layer. It dictates how many
// components the layer's entity keys carry.
type Level string

// Granularity levels.
const (
	LevelNational        Level = "national"
	LevelState           Level = "state"
	LevelStateCounty     Level = "state_county"
	LevelStateCountyCity Level = "state_county_city"
)

// LayerDescriptor describes one known layer type. The set is fixed at
// process start and never mutated.
type LayerDescriptor struct {
	// Name is the internal layer name, e.g. "zoning".
	Name string
	// External is the display name, e.g. "Future Land Use".
	External string
	// Level determines the entity key shape.
	Level Level
	// Category is the storage category directory, e.g. "08_Land_Use_and_Zoning".
	Category string
	// Group and Subgroup classify the layer in the catalog.
	Group    string
	Subgroup string
	// Entity pins a fixed entity key for national and state level layers.
	Entity string
}

// Layers is the registry of known layer types.
var Layers = map[string]LayerDescriptor{
	"zoning": {
		Name: "zoning", External: "Zoning", Level: LevelStateCountyCity,
		Category: "08_Land_Use_and_Zoning", Group: "flu_zoning", Subgroup: "zoning",
	},
	"flu": {
		Name: "flu", External: "Future Land Use", Level: LevelStateCountyCity,
		Category: "08_Land_Use_and_Zoning", Group: "flu_zoning", Subgroup: "flu",
	},
	"fema_flood": {
		Name: "fema_flood", External: "FEMA Flood", Level: LevelNational,
		Category: "12_Hazards", Group: "hazards", Subgroup: "fema_flood",
		Entity: "fema_flood",
	},
	"parcel_geo": {
		Name: "parcel_geo", External: "Parcel Geometry", Level: LevelStateCounty,
		Category: "05_Parcels", Group: "parcels", Subgroup: "parcel_geo",
	},
	"streets": {
		Name: "streets", External: "Streets", Level: LevelStateCounty,
		Category: "03_Transportation", Group: "base_map_overlay", Subgroup: "streets",
	},
	"address_points": {
		Name: "address_points", External: "Address Points", Level: LevelStateCounty,
		Category: "05_Parcels", Group: "parcels", Subgroup: "address_points",
	},
	"subdivisions": {
		Name: "subdivisions", External: "Subdivisions", Level: LevelStateCounty,
		Category: "05_Parcels", Group: "parcels", Subgroup: "subdivisions",
	},
	"buildings": {
		Name: "buildings", External: "Buildings", Level: LevelStateCounty,
		Category: "05_Parcels", Group: "parcels", Subgroup: "buildings",
	},
	"traffic_counts": {
		Name: "traffic_counts", External: "Traffic Counts FDOT", Level: LevelState,
		Category: "03_Transportation", Group: "base_map_overlay", Subgroup: "traffic_counts",
		Entity: "traffic_counts_fl",
	},
	"sunbiz": {
		Name: "sunbiz", External: "SunBiz", Level: LevelState,
		Category: "21_Misc", Group: "misc", Subgroup: "sunbiz",
		Entity: "sunbiz_fl",
	},
}

// layerAliases maps retired layer names onto their current registry entries.
var layerAliases = map[string]string{
	"flood_zones": "fema_flood",
	"addr_pnts":   "address_points",
	"subdiv":      "subdivisions",
	"bldg_ftpr":   "buildings",
	"fdot_tc":     "traffic_counts",
}

// LayerByName resolves a layer name, following retired-name aliases.
func LayerByName(name string) (LayerDescriptor, bool) {
	internal := naming.Format(name, naming.KindLayer, false)
	if canonical, ok := layerAliases[internal]; ok {
		internal = canonical
	}
	l, ok := Layers[internal]
	return l, ok
}

// LayerNames returns all registry names in alphabetical order.
func LayerNames() []string {
	names := make([]string, 0, len(Layers))
	for name := range Layers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LayerNamesByLength returns registry names longest first, so prefix scans
// over compound strings always take the longest matching layer name.
func LayerNamesByLength() []string {
	names := LayerNames()
	sort.SliceStable(names, func(i, j int) bool {
		return len(names[i]) > len(names[j])
	})
	return names
}
