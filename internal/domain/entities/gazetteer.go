package entities

import "sort"

// States maps internal state abbreviations to their external spelling.
var States = map[string]string{
	"fl": "FL",
	"ga": "GA",
	"de": "DE",
}

// stateNames maps state abbreviations to directory-friendly full names.
var stateNames = map[string]string{
	"fl": "florida",
	"ga": "georgia",
	"de": "delaware",
}

// countiesByState holds the per-state county gazetteers in internal format.
// Only Florida is populated today; the scan logic is state-agnostic.
var countiesByState = map[string][]string{
	"fl": {
		"alachua", "baker", "bay", "bradford", "brevard", "broward", "calhoun",
		"charlotte", "citrus", "clay", "collier", "columbia", "desoto", "dixie",
		"duval", "escambia", "flagler", "franklin", "gadsden", "gilchrist",
		"glades", "gulf", "hamilton", "hardee", "hendry", "hernando",
		"highlands", "hillsborough", "holmes", "indian_river", "jackson",
		"jefferson", "lafayette", "lake", "lee", "leon", "levy", "liberty",
		"madison", "manatee", "marion", "martin", "miami_dade", "monroe",
		"nassau", "okaloosa", "okeechobee", "orange", "osceola", "palm_beach",
		"pasco", "pinellas", "polk", "putnam", "santa_rosa", "sarasota",
		"seminole", "st_johns", "st_lucie", "sumter", "suwannee", "taylor",
		"union", "volusia", "wakulla", "walton", "washington",
	},
}

// countiesByLength caches each gazetteer sorted longest name first, so
// prefix matching never lets a short county shadow a longer one
// (palm_beach before palm, indian_river before indian).
var countiesByLength = func() map[string][]string {
	out := make(map[string][]string, len(countiesByState))
	for state, counties := range countiesByState {
		sorted := make([]string, len(counties))
		copy(sorted, counties)
		sort.SliceStable(sorted, func(i, j int) bool {
			if len(sorted[i]) != len(sorted[j]) {
				return len(sorted[i]) > len(sorted[j])
			}
			return sorted[i] < sorted[j]
		})
		out[state] = sorted
	}
	return out
}()

// countySets supports O(1) membership checks.
var countySets = func() map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(countiesByState))
	for state, counties := range countiesByState {
		set := make(map[string]bool, len(counties))
		for _, c := range counties {
			set[c] = true
		}
		out[state] = set
	}
	return out
}()

// ValidState reports whether abbrev is a known state, returning its
// external spelling.
func ValidState(abbrev string) (string, bool) {
	ext, ok := States[abbrev]
	return ext, ok
}

// StateName returns the directory-friendly full state name.
func StateName(abbrev string) string {
	if name, ok := stateNames[abbrev]; ok {
		return name
	}
	return abbrev
}

// StateAbbrevs returns known state abbreviations in stable order.
func StateAbbrevs() []string {
	abbrevs := make([]string, 0, len(States))
	for a := range States {
		abbrevs = append(abbrevs, a)
	}
	sort.Strings(abbrevs)
	return abbrevs
}

// CountiesByLength returns the state's gazetteer sorted longest name first.
func CountiesByLength(state string) []string {
	return countiesByLength[state]
}

// IsCounty reports whether name is a county of the given state.
func IsCounty(state, name string) bool {
	return countySets[state][name]
}

// StateForCounty finds the state owning the given county, scanning all
// gazetteers. Used when an entity key omits its state token.
func StateForCounty(county string) (string, bool) {
	for _, state := range StateAbbrevs() {
		if countySets[state][county] {
			return state, true
		}
	}
	return "", false
}
