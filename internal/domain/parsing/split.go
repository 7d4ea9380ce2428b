package parsing

import (
	"fmt"
	"strings"

	"github.com/gisdx/catalog-core/internal/domain/entities"
)

// SplitEntity decomposes a state_county_city entity string (create-mode
// input) into its components. Both the current 3-part form
// ("fl_st_lucie_port_st_lucie") and the legacy 2-part form without a state
// token are accepted; the state is inferred from the county in the latter.
//
// A trailing county-scope suffix claims the city slot outright; otherwise
// the longest gazetteer prefix wins, with "first token is the county" as
// the last resort for counties outside the gazetteer.
func SplitEntity(entity string) (state, county, city string, err error) {
	tokens := strings.Split(strings.TrimSpace(entity), "_")
	if len(tokens) < 2 {
		return "", "", "", fmt.Errorf("invalid entity format: %q", entity)
	}

	first := strings.ToLower(tokens[0])
	rest := tokens
	if _, ok := entities.ValidState(first); ok {
		if len(tokens) < 3 {
			return "", "", "", fmt.Errorf("invalid 3-part entity format: %q", entity)
		}
		state = first
		rest = tokens[1:]
	}

	if entities.IsCountySuffix(rest[len(rest)-1]) {
		county = strings.Join(rest[:len(rest)-1], "_")
		city = rest[len(rest)-1]
	} else {
		if isCountyAnywhere(state, strings.Join(rest, "_")) {
			return "", "", "", fmt.Errorf("entity %q has a county but no city part", entity)
		}
		county, city = splitCountyCity(state, rest)
		if county == "" {
			if len(rest) < 2 {
				return "", "", "", fmt.Errorf("cannot split county and city in entity: %q", entity)
			}
			county = rest[0]
			city = strings.Join(rest[1:], "_")
		}
		if city == "" {
			return "", "", "", fmt.Errorf("entity %q has a county but no city part", entity)
		}
	}

	if state == "" {
		inferred, ok := entities.StateForCounty(county)
		if !ok {
			return "", "", "", fmt.Errorf("county %q not in any gazetteer, cannot infer state for entity %q", county, entity)
		}
		state = inferred
	}
	return state, county, city, nil
}

// isCountyAnywhere checks candidate against one state's gazetteer, or all
// of them when the state is unknown.
func isCountyAnywhere(state, candidate string) bool {
	if state != "" {
		return entities.IsCounty(state, candidate)
	}
	_, ok := entities.StateForCounty(candidate)
	return ok
}

// splitCountyCity tries progressively shorter leading token joins against
// the gazetteer, longest first, leaving at least one token for the city.
func splitCountyCity(state string, tokens []string) (county, city string) {
	states := entities.StateAbbrevs()
	if state != "" {
		states = []string{state}
	}
	for i := len(tokens) - 1; i >= 1; i-- {
		candidate := strings.Join(tokens[:i], "_")
		for _, s := range states {
			if entities.IsCounty(s, candidate) {
				return candidate, strings.Join(tokens[i:], "_")
			}
		}
	}
	return "", ""
}
