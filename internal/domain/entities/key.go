package entities

import "strings"

// ErrorEntity is the bucket for rows whose entity key cannot be derived.
const ErrorEntity = "ERROR"

// CountySuffixes are the pseudo-city tokens marking county-scope datasets.
var CountySuffixes = map[string]bool{
	"unincorporated": true,
	"incorporated":   true,
	"unified":        true,
	"countywide":     true,
}

// IsCountySuffix reports whether token is one of the county-scope suffixes.
func IsCountySuffix(token string) bool {
	return CountySuffixes[strings.ToLower(token)]
}

// BuildEntityKey composes the canonical entity key for a layer from
// internal-format components. The layer's granularity level dictates how
// many components the key carries; pinned national/state keys win outright.
func BuildEntityKey(layer LayerDescriptor, state, county, city string) string {
	if layer.Entity != "" {
		return layer.Entity
	}
	switch layer.Level {
	case LevelNational:
		return layer.Name
	case LevelState:
		return layer.Name + "_" + state
	case LevelStateCounty:
		return layer.Name + "_" + state + "_" + county
	default:
		if city == "" {
			city = "countywide"
		}
		return layer.Name + "_" + state + "_" + county + "_" + city
	}
}
