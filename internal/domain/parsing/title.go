package parsing

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gisdx/catalog-core/internal/domain/entities"
	"github.com/gisdx/catalog-core/internal/domain/naming"
)

// TitleMatch is the result of parsing a catalog title. OK is false for
// unparseable titles; the zero values carry no meaning in that case.
type TitleMatch struct {
	Layer      string
	County     string
	City       string
	EntityType string
	OK         bool
}

// Entity types reported outside the county-suffix set.
const (
	TypeCity     = "city"
	TypeState    = "state"
	TypeNational = "national"
)

var (
	// reCityOf matches "City of X", "Town of X", "Village of X".
	reCityOf = regexp.MustCompile(`(?i)^(?:city|town|village) of\s+(.+)$`)
	// reCountySuffix matches "X [County] Unincorporated" and friends.
	// The optional dangling "County" token is absorbed, not captured.
	reCountySuffix = regexp.MustCompile(`(?i)^([A-Za-z\s\-\.]+?)(?:\s+county)?\s+(unincorporated|incorporated|unified|countywide)$`)
	// reCountyOnly matches a bare "X County".
	reCountyOnly = regexp.MustCompile(`(?i)^([A-Za-z\s\-\.]+?)\s+county$`)
)

// descriptorTokens are trailing format markers dropped before matching.
var descriptorTokens = map[string]bool{
	"ags": true,
	"pdf": true,
	"shp": true,
	"zip": true,
}

// ParseTitle extracts (layer, county, city, entity type) from a free-text
// catalog title. Titles for pinned state/national layers match by layer
// name alone; everything else requires the "Layer - Location" shape.
// Unrecognized titles return OK=false, never a guess.
func ParseTitle(title string) TitleMatch {
	lower := strings.ToLower(strings.TrimSpace(title))

	// State and national layers have no location component.
	switch {
	case strings.Contains(lower, "traffic counts fdot"):
		return TitleMatch{Layer: "traffic_counts", EntityType: TypeState, OK: true}
	case strings.Contains(lower, "sunbiz"):
		return TitleMatch{Layer: "sunbiz", EntityType: TypeState, OK: true}
	case strings.Contains(lower, "flood zones") || strings.Contains(lower, "fema flood"):
		return TitleMatch{Layer: "fema_flood", EntityType: TypeNational, OK: true}
	}

	layerPart, rest, found := strings.Cut(title, " - ")
	if !found {
		return TitleMatch{}
	}
	layer := naming.Format(strings.TrimSpace(layerPart), naming.KindLayer, false)

	restParts := strings.Split(rest, " - ")
	if len(restParts) > 1 && descriptorTokens[strings.ToLower(restParts[len(restParts)-1])] {
		restParts = restParts[:len(restParts)-1]
	}
	restMain := stripTrailingState(strings.TrimSpace(strings.Join(restParts, " ")))

	if m := reCityOf.FindStringSubmatch(restMain); m != nil {
		city := naming.Format(strings.TrimSpace(m[1]), naming.KindCity, false)
		return TitleMatch{Layer: layer, City: city, EntityType: TypeCity, OK: true}
	}

	if m := reCountySuffix.FindStringSubmatch(restMain); m != nil {
		county := naming.Format(strings.TrimSpace(m[1]), naming.KindCounty, false)
		suffix := strings.ToLower(strings.TrimSpace(m[2]))
		return TitleMatch{Layer: layer, County: county, City: suffix, EntityType: suffix, OK: true}
	}

	if m := reCountyOnly.FindStringSubmatch(restMain); m != nil {
		county := naming.Format(strings.TrimSpace(m[1]), naming.KindCounty, false)
		return TitleMatch{Layer: layer, County: county, OK: true}
	}

	return TitleMatch{}
}

// stripTrailingState drops the trailing state abbreviation canonical
// titles carry ("City of Gainesville FL").
func stripTrailingState(s string) string {
	if i := strings.LastIndexByte(s, ' '); i > 0 {
		if _, ok := entities.ValidState(strings.ToLower(s[i+1:])); ok {
			return strings.TrimSpace(s[:i])
		}
	}
	return s
}

// EntityFromTitleParse composes the state_county_city portion of an entity
// key from parsed title components. A county-only match defaults the city
// to "unincorporated". Component combinations that cannot form a key
// return an error so callers fall back to the record's stored columns.
func EntityFromTitleParse(county, city, entityType, state string) (string, error) {
	switch entityType {
	case TypeState:
		return state, nil
	case TypeNational:
		return "", nil
	}

	switch {
	case county != "" && city != "":
		county = naming.Format(county, naming.KindCounty, false)
		if entities.IsCountySuffix(entityType) {
			return fmt.Sprintf("%s_%s_%s", state, county, entityType), nil
		}
		city = naming.Format(city, naming.KindCity, false)
		return fmt.Sprintf("%s_%s_%s", state, county, city), nil
	case county != "":
		county = naming.Format(county, naming.KindCounty, false)
		return fmt.Sprintf("%s_%s_unincorporated", state, county), nil
	}
	return "", errors.New("title components do not form an entity key")
}
