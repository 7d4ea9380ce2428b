// Package naming converts layer, county, city and state names between the
// internal (lowercase_underscore) spelling used in entity keys and table
// names, and the external (human-readable) spelling used in catalog titles.
//
// Lookup order is always: kind-specific irregular map first, generic
// normalization second. Internal-format normalization is idempotent; the
// generic external fallback is lossy for unusual spellings, which is why
// the irregular maps exist.
package naming

import (
	"regexp"
	"strings"
)

// Kind identifies which irregular map applies to a name.
type Kind string

// Name kinds.
const (
	KindLayer  Kind = "layer"
	KindCounty Kind = "county"
	KindCity   Kind = "city"
	KindState  Kind = "state"
)

var (
	// reStrip matches characters that survive neither format.
	reStrip = regexp.MustCompile(`[^a-zA-Z0-9_\s-]`)
	// reSeparators matches runs of spaces and hyphens.
	reSeparators = regexp.MustCompile(`[\s-]+`)
	// reUnderscores matches consecutive underscores.
	reUnderscores = regexp.MustCompile(`_+`)
)

// layerExternal maps internal layer names to their display spelling.
// Only spellings the generic rule cannot produce (or reverse) need entries.
var layerExternal = map[string]string{
	"flu":            "Future Land Use",
	"fema_flood":     "FEMA Flood",
	"parcel_geo":     "Parcel Geometry",
	"address_points": "Address Points",
	"buildings":      "Buildings",
	"subdivisions":   "Subdivisions",
	"streets":        "Streets",
	"traffic_counts": "Traffic Counts FDOT",
	"sunbiz":         "SunBiz",
	"zoning":         "Zoning",
}

// countyExternal maps internal county names with irregular punctuation.
var countyExternal = map[string]string{
	"miami_dade":   "Miami-Dade",
	"st_johns":     "St. Johns",
	"st_lucie":     "St. Lucie",
	"desoto":       "DeSoto",
	"palm_beach":   "Palm Beach",
	"santa_rosa":   "Santa Rosa",
	"indian_river": "Indian River",
}

// cityExternal maps internal city names with irregular punctuation.
var cityExternal = map[string]string{
	"howey_in_the_hills": "Howey-in-the-Hills",
	"st_petersburg":      "St. Petersburg",
	"west_palm_beach":    "West Palm Beach",
	"coral_springs":      "Coral Springs",
	"boca_raton":         "Boca Raton",
	"fort_lauderdale":    "Fort Lauderdale",
	"fort_myers":         "Fort Myers",
	"fort_pierce":        "Fort Pierce",
	"cape_coral":         "Cape Coral",
}

// cityInternal holds external spellings the generic rule cannot reverse,
// including historical aliases that map onto one internal name.
var cityInternal = map[string]string{
	"howey-in-the-hills": "howey_in_the_hills",
	"st. petersburg":     "st_petersburg",
	"saint petersburg":   "st_petersburg",
}

var (
	layerInternal  = reverseLower(layerExternal)
	countyInternal = reverseLower(countyExternal)
)

func reverseLower(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for internal, external := range m {
		out[strings.ToLower(external)] = internal
	}
	return out
}

// stopWords are kept lowercase inside multi-word external names.
var stopWords = map[string]bool{
	"of":  true,
	"the": true,
	"in":  true,
	"on":  true,
	"at":  true,
}

// abbreviations expand leading tokens to their dotted external form.
var abbreviations = map[string]string{
	"st": "St.",
	"ft": "Ft.",
	"mt": "Mt.",
}

// Format converts a name between internal and external spellings.
// Empty or whitespace-only input returns an empty string.
func Format(name string, kind Kind, external bool) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	if kind == KindState {
		if external {
			return strings.ToUpper(name)
		}
		return strings.ToLower(name)
	}

	lower := strings.ToLower(name)
	if external {
		if v, ok := irregularExternal(kind)[lower]; ok {
			return v
		}
		return Externalize(name)
	}
	if v, ok := irregularInternal(kind)[lower]; ok {
		return v
	}
	return Internalize(name)
}

func irregularExternal(kind Kind) map[string]string {
	switch kind {
	case KindLayer:
		return layerExternal
	case KindCounty:
		return countyExternal
	case KindCity:
		return cityExternal
	}
	return nil
}

func irregularInternal(kind Kind) map[string]string {
	switch kind {
	case KindLayer:
		return layerInternal
	case KindCounty:
		return countyInternal
	case KindCity:
		return cityInternal
	}
	return nil
}

// Internalize applies the generic internal normalization: lowercase, strip
// punctuation, collapse separators to single underscores, trim the edges.
// Applying it to an already-internal name is a no-op.
func Internalize(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}
	s := strings.ToLower(name)
	s = reStrip.ReplaceAllString(s, "")
	s = reSeparators.ReplaceAllString(s, "_")
	s = reUnderscores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// Externalize applies the generic external rule: underscores become word
// separators, words are title-cased except stop words, a leading st/ft/mt
// token expands to its dotted abbreviation, and names carrying an "in the"
// or "on the" infix are joined with hyphens instead of spaces.
func Externalize(name string) string {
	words := strings.Split(Internalize(name), "_")
	if len(words) == 1 && words[0] == "" {
		return ""
	}

	hyphenate := hasLocativeInfix(words)
	out := make([]string, 0, len(words))
	for i, w := range words {
		switch {
		case i == 0 && abbreviations[w] != "":
			out = append(out, abbreviations[w])
		case i > 0 && stopWords[w]:
			out = append(out, w)
		default:
			out = append(out, titleWord(w))
		}
	}
	if hyphenate {
		return strings.Join(out, "-")
	}
	return strings.Join(out, " ")
}

// hasLocativeInfix reports whether the word sequence contains "in the" or
// "on the", the marker for hyphenated place names.
func hasLocativeInfix(words []string) bool {
	for i := 0; i+1 < len(words); i++ {
		if (words[i] == "in" || words[i] == "on") && words[i+1] == "the" {
			return true
		}
	}
	return false
}

func titleWord(w string) string {
	if w == "" {
		return ""
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
