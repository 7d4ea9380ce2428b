// Package parsing extracts (layer, state, county, city) tuples from
// compound entity strings and free-text catalog titles. Unparseable input
// is an expected outcome, reported through result values rather than
// errors; only irreconcilable component combinations are errors.
package parsing

import (
	"strings"

	"github.com/gisdx/catalog-core/internal/domain/entities"
)

// EntityParts is the result of parsing a compound entity pattern.
// Empty fields are unresolved; callers decide whether a partial result is
// acceptable for the layer's granularity.
type EntityParts struct {
	Layer  string
	State  string
	County string
	City   string
}

// ParseEntityPattern greedily decomposes a compound internal-format string
// such as "zoning_fl_palm_beach_west_palm_beach".
//
// The scan consumes, in order: a known layer name, a state abbreviation,
// the longest matching county from that state's gazetteer, and finally the
// city verbatim. When the state token is absent, every gazetteer is
// scanned and the state is inferred from the matching county.
func ParseEntityPattern(pattern string) EntityParts {
	var parts EntityParts
	remaining := strings.TrimSpace(pattern)
	if remaining == "" {
		return parts
	}

	for _, layerName := range entities.LayerNamesByLength() {
		if consumePrefix(&remaining, layerName) {
			parts.Layer = layerName
			break
		}
	}
	if remaining == "" {
		return parts
	}

	for _, abbrev := range entities.StateAbbrevs() {
		if consumePrefix(&remaining, abbrev) {
			parts.State = abbrev
			break
		}
	}
	if remaining == "" {
		return parts
	}

	if parts.State != "" {
		for _, county := range entities.CountiesByLength(parts.State) {
			if consumePrefix(&remaining, county) {
				parts.County = county
				break
			}
		}
	} else {
		for _, state := range entities.StateAbbrevs() {
			for _, county := range entities.CountiesByLength(state) {
				if consumePrefix(&remaining, county) {
					parts.County = county
					parts.State = state
					break
				}
			}
			if parts.County != "" {
				break
			}
		}
	}

	parts.City = remaining
	return parts
}

// consumePrefix strips token (plus a following underscore) from *s when
// *s starts with it on a token boundary.
func consumePrefix(s *string, token string) bool {
	if !strings.HasPrefix(*s, token) {
		return false
	}
	rest := (*s)[len(token):]
	if rest != "" && !strings.HasPrefix(rest, "_") {
		return false
	}
	*s = strings.TrimPrefix(rest, "_")
	return true
}
