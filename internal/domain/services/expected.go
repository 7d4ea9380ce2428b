// Package services implements the reconciliation engine (detect, fill and
// create modes), deterministic expected-value generation, the alias index
// and conservative field-transform inference.
package services

import (
	"fmt"
	"path"
	"strings"

	"github.com/gisdx/catalog-core/internal/domain/entities"
	"github.com/gisdx/catalog-core/internal/domain/naming"
)

// agsFamily are format spellings that denote an ArcGIS-family source and
// therefore require a table name instead of a download resource.
var agsFamily = map[string]bool{
	"ags":         true,
	"arcgis":      true,
	"esri":        true,
	"ags_extract": true,
}

// IsAGSFormat reports whether format denotes an ArcGIS-family source.
func IsAGSFormat(format string) bool {
	return agsFamily[strings.ToLower(strings.TrimSpace(format))]
}

// entityParts carries the internal-format components of one entity key
// while expected values are derived.
type entityParts struct {
	Layer      entities.LayerDescriptor
	State      string
	County     string
	City       string
	EntityType string
}

// cityStd resolves the countywide alias: countywide datasets are stored
// under the unified suffix.
func (p entityParts) cityStd() string {
	if p.EntityType == "countywide" {
		return "unified"
	}
	return p.City
}

func (p entityParts) entityTypeStd() string {
	if p.EntityType == "countywide" {
		return "unified"
	}
	return p.EntityType
}

// deriveEntityType classifies the city slot of a parsed entity.
func deriveEntityType(layer entities.LayerDescriptor, county, city string) string {
	switch layer.Level {
	case entities.LevelNational:
		return "national"
	case entities.LevelState:
		return "state"
	case entities.LevelStateCounty:
		return "county"
	}
	if city == "" {
		return "county"
	}
	if entities.IsCountySuffix(city) {
		return strings.ToLower(city)
	}
	return "city"
}

// expectedTitle derives the canonical catalog title. titlePrefix preserves
// a Town/Village designation taken from the existing title; it defaults
// to City.
func expectedTitle(p entityParts, titlePrefix string) string {
	layerExt := naming.Format(p.Layer.Name, naming.KindLayer, true)
	stateExt, ok := entities.ValidState(p.State)
	if !ok {
		stateExt = "FL"
	}

	switch p.entityTypeStd() {
	case "state", "national":
		return layerExt
	case "city":
		if titlePrefix == "" {
			titlePrefix = "City"
		}
		cityExt := naming.Format(p.cityStd(), naming.KindCity, true)
		return fmt.Sprintf("%s - %s of %s %s", layerExt, titlePrefix, cityExt, stateExt)
	case "unincorporated", "unified", "incorporated":
		countyExt := naming.Format(p.County, naming.KindCounty, true)
		suffix := capitalize(p.entityTypeStd())
		return fmt.Sprintf("%s - %s County %s %s", layerExt, countyExt, suffix, stateExt)
	default:
		countyExt := naming.Format(p.County, naming.KindCounty, true)
		return fmt.Sprintf("%s - %s County %s", layerExt, countyExt, stateExt)
	}
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// expectedTableName derives the canonical table name, state-qualified for
// uniqueness across states.
func expectedTableName(p entityParts) string {
	layer := p.Layer.Name
	state := p.State
	if state == "" {
		state = "fl"
	}
	county := naming.Format(p.County, naming.KindCounty, false)
	city := naming.Format(p.cityStd(), naming.KindCity, false)

	switch p.Layer.Level {
	case entities.LevelNational:
		return layer
	case entities.LevelState:
		return layer + "_" + state
	case entities.LevelStateCounty:
		return layer + "_" + state + "_" + county
	}
	switch p.entityTypeStd() {
	case "city":
		return layer + "_" + state + "_" + county + "_" + city
	case "unincorporated", "unified", "incorporated":
		return layer + "_" + state + "_" + county + "_" + p.entityTypeStd()
	case "county":
		return layer + "_" + state + "_" + county
	}
	if city != "" {
		return layer + "_" + state + "_" + county + "_" + city
	}
	if county != "" {
		return layer + "_" + state + "_" + county
	}
	return layer + "_" + state
}

// expectedResource derives the download resource path for non-AGS sources.
func expectedResource(p entityParts) string {
	county := naming.Format(p.County, naming.KindCounty, false)
	city := naming.Format(p.cityStd(), naming.KindCity, false)
	switch p.Layer.Level {
	case entities.LevelNational, entities.LevelState:
		return "/data/" + p.Layer.Name
	case entities.LevelStateCounty:
		return path.Join("/data", p.Layer.Name, county)
	}
	if p.entityTypeStd() == "county" {
		return path.Join("/data", p.Layer.Name, county)
	}
	return path.Join("/data", p.Layer.Name, county, city)
}

// resolveRawFolder derives the standardized raw-data directory:
// <root>/<category>/<subgroup>/<state name>/<county>/<city>.
func resolveRawFolder(dataRoot string, p entityParts) string {
	parts := []string{dataRoot, p.Layer.Category, p.Layer.Subgroup}
	if p.State != "" && p.Layer.Level != entities.LevelNational {
		parts = append(parts, entities.StateName(p.State))
		county := naming.Format(p.County, naming.KindCounty, false)
		if county != "" && p.Layer.Level != entities.LevelState {
			parts = append(parts, county)
			city := naming.Format(p.cityStd(), naming.KindCity, false)
			if city != "" && p.Layer.Level == entities.LevelStateCountyCity {
				parts = append(parts, city)
			}
		}
	}
	return path.Join(parts...)
}

// ExpectedValues synthesizes the full deterministic record for an entity,
// keyed by catalog column name. State, county and city are stored in
// external format; table and subgroup names in internal format.
func ExpectedValues(dataRoot string, layer entities.LayerDescriptor, state, county, city, entityType string) map[string]string {
	if entityType == "" {
		entityType = deriveEntityType(layer, county, city)
	}
	p := entityParts{Layer: layer, State: state, County: county, City: city, EntityType: entityType}

	stateExt, ok := entities.ValidState(state)
	if !ok {
		stateExt = "FL"
	}
	values := map[string]string{
		"title":          expectedTitle(p, ""),
		"state":          stateExt,
		"county":         naming.Format(county, naming.KindCounty, true),
		"city":           naming.Format(p.cityStd(), naming.KindCity, true),
		"layer_subgroup": layer.Subgroup,
		"layer_group":    layer.Group,
		"category":       layer.Category,
		"table_name":     expectedTableName(p),
		"sys_raw_folder": resolveRawFolder(dataRoot, p),
		"download":       entities.DownloadAuto,
	}
	if layer.Level == entities.LevelNational {
		values["state"] = ""
		values["county"] = ""
		values["city"] = ""
	}
	if layer.Level == entities.LevelState {
		values["county"] = ""
		values["city"] = ""
	}
	return values
}
