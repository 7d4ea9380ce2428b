package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/gisdx/catalog-core/internal/domain/entities"
	"github.com/gisdx/catalog-core/internal/domain/naming"
	"github.com/gisdx/catalog-core/internal/domain/parsing"
	"github.com/gisdx/catalog-core/internal/domain/ports"
)

var nonFieldChars = regexp.MustCompile(`[^A-Za-z0-9_]+`)
var underscoreRuns = regexp.MustCompile(`_+`)

// NormalizeFieldName canonicalizes a source field name for alias matching:
// non-word characters become underscores, runs collapse, case folds down.
func NormalizeFieldName(name string) string {
	n := nonFieldChars.ReplaceAllString(strings.TrimSpace(name), "_")
	n = underscoreRuns.ReplaceAllString(n, "_")
	return strings.ToLower(strings.Trim(n, "_"))
}

// ParseTransform splits a "target:source, target:source" transform string
// into its mapping. Malformed pairs are skipped.
func ParseTransform(transform string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(transform, ",") {
		target, source, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		target = strings.TrimSpace(target)
		source = strings.TrimSpace(source)
		if target == "" || source == "" {
			continue
		}
		out[target] = source
	}
	return out
}

// FormatTransform renders a mapping back into the canonical transform
// string, targets sorted.
func FormatTransform(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	targets := make([]string, 0, len(m))
	for t := range m {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	parts := make([]string, 0, len(targets))
	for _, t := range targets {
		parts = append(parts, t+":"+m[t])
	}
	return strings.Join(parts, ", ")
}

// ValidTransformPattern reports whether a stored transform string carries
// at least one well-formed target:source pair.
func ValidTransformPattern(transform string) bool {
	return len(ParseTransform(transform)) > 0
}

// AliasIndex maps layer subgroup -> target field -> the set of normalized
// source field names observed for it across the live catalog.
type AliasIndex map[string]map[string]map[string]bool

// Add records one observed source alias for a target field of a subgroup.
func (a AliasIndex) Add(subgroup, target, source string) {
	source = NormalizeFieldName(source)
	if source == "" {
		return
	}
	if a[subgroup] == nil {
		a[subgroup] = make(map[string]map[string]bool)
	}
	if a[subgroup][target] == nil {
		a[subgroup][target] = make(map[string]bool)
	}
	a[subgroup][target][source] = true
}

// BuildAliasIndex folds every valid transform of the given rows into an
// alias index.
func BuildAliasIndex(rows []entities.CatalogRecord) AliasIndex {
	idx := make(AliasIndex)
	for i := range rows {
		rec := &rows[i]
		if rec.LayerSubgroup == "" {
			continue
		}
		for target, source := range ParseTransform(rec.FieldsObjTransform) {
			idx.Add(rec.LayerSubgroup, target, source)
		}
	}
	return idx
}

// ValidFieldNamesJSON parses a stored field_names column: a JSON list of
// strings. Anything else is invalid.
func ValidFieldNamesJSON(raw string) ([]string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, false
	}
	if len(names) == 0 {
		return nil, false
	}
	return names, true
}

// Inference confidence labels.
const (
	ConfidenceUnique    = "UNIQUE"
	ConfidenceAmbiguous = "AMBIGUOUS"
	ConfidenceConflict  = "CONFLICT"
	ConfidenceNoMatch   = "NO_MATCH"
)

// InferOptions controls a transform-inference run.
type InferOptions struct {
	// Include and Exclude are shell-style entity glob patterns.
	Include []string
	Exclude []string
	// RestrictMissing limits the run to rows without a valid transform.
	RestrictMissing bool
	// Apply stages accepted proposals as store updates.
	Apply bool
}

// Inferencer proposes field transforms from the alias index, accepting
// only aliases with exactly one unclaimed match among a record's fields.
type Inferencer struct {
	store  ports.CatalogStore
	schema ports.SchemaIntrospector
}

// NewInferencer creates an Inferencer over the given collaborators.
func NewInferencer(store ports.CatalogStore, schema ports.SchemaIntrospector) *Inferencer {
	return &Inferencer{store: store, schema: schema}
}

// Run builds the alias index from the live catalog, then walks every
// subgroup row in scope and proposes a transform for it. Proposals are
// written only under Apply, and only UNIQUE-confidence ones.
func (inf *Inferencer) Run(ctx context.Context, opts InferOptions) (*entities.InferReport, error) {
	truth, err := inf.store.FetchTransformRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching transform rows: %w", err)
	}
	idx := BuildAliasIndex(truth)

	rows, err := inf.store.FetchSubgroupRows(ctx, opts.RestrictMissing)
	if err != nil {
		return nil, fmt.Errorf("fetching subgroup rows: %w", err)
	}

	filter := GlobFilter{Include: opts.Include, Exclude: opts.Exclude}
	rep := &entities.InferReport{}

	for i := range rows {
		rec := &rows[i]
		layer, ok := entities.LayerByName(rec.LayerSubgroup)
		if !ok {
			continue
		}
		entity := inferEntity(layer, rec)
		if !filter.Match(entity) {
			continue
		}
		rep.Processed++

		row := entities.InferRow{
			Entity:   entity,
			Layer:    layer.Name,
			State:    strings.ToLower(cleanValue(rec.State)),
			County:   naming.Format(rec.County, naming.KindCounty, false),
			City:     naming.Format(rec.City, naming.KindCity, false),
			Existing: cleanValue(rec.FieldsObjTransform),
		}

		fields, ok := inf.fieldNamesFor(ctx, rec)
		if !ok {
			row.Confidence = ConfidenceNoMatch
			row.Reasons = append(row.Reasons, "no readable field names")
			rep.Rows = append(rep.Rows, row)
			continue
		}

		proposed, confidence, reasons := ProposeTransform(idx[rec.LayerSubgroup], fields)
		row.Proposed = FormatTransform(proposed)
		row.Confidence = confidence
		row.Reasons = reasons

		if opts.Apply && confidence == ConfidenceUnique && row.Proposed != "" && row.Proposed != row.Existing {
			updates := map[string]string{"fields_obj_transform": row.Proposed}
			if err := inf.store.Update(ctx, rec.ID, updates); err != nil {
				return nil, fmt.Errorf("updating record %s: %w", rec.ID, err)
			}
			row.Applied = true
			rep.Updated++
		}
		rep.Rows = append(rep.Rows, row)
	}
	return rep, nil
}

// fieldNamesFor resolves a record's source field names: the stored
// field_names column when valid, otherwise the schema introspector.
func (inf *Inferencer) fieldNamesFor(ctx context.Context, rec *entities.CatalogRecord) ([]string, bool) {
	if names, ok := ValidFieldNamesJSON(rec.FieldNames); ok {
		return names, true
	}
	if inf.schema == nil {
		return nil, false
	}
	names, err := inf.schema.FieldNames(ctx, rec.SysRawFolder, rec.SysRawFile)
	if err != nil || len(names) == 0 {
		return nil, false
	}
	return names, true
}

// inferEntity derives a level-aware entity key for an inference row from
// its stored columns.
func inferEntity(layer entities.LayerDescriptor, rec *entities.CatalogRecord) string {
	state := recordState(rec)
	county := naming.Format(rec.County, naming.KindCounty, false)
	city := naming.Format(rec.City, naming.KindCity, false)
	if layer.Level == entities.LevelStateCountyCity && county != "" && city == "" {
		if suffix, err := parsing.EntityFromTitleParse(county, "", "", state); err == nil {
			return layer.Name + "_" + suffix
		}
	}
	return entities.BuildEntityKey(layer, state, county, city)
}

// ProposeTransform maps each target field of the subgroup's alias table
// onto the record's fields. A target is accepted only when exactly one of
// its aliases matches exactly one unclaimed field; multiple matches mark
// the proposal AMBIGUOUS and an already-claimed match marks it CONFLICT.
// Targets are visited in sorted order so claims are deterministic.
func ProposeTransform(aliases map[string]map[string]bool, fields []string) (map[string]string, string, []string) {
	if len(aliases) == 0 {
		return nil, ConfidenceNoMatch, []string{"no alias ground truth for subgroup"}
	}

	normalized := make(map[string]string, len(fields))
	for _, f := range fields {
		n := NormalizeFieldName(f)
		if n != "" {
			if _, dup := normalized[n]; !dup {
				normalized[n] = f
			}
		}
	}

	targets := make([]string, 0, len(aliases))
	for t := range aliases {
		targets = append(targets, t)
	}
	sort.Strings(targets)

	proposed := make(map[string]string)
	used := make(map[string]bool)
	var reasons []string
	confidence := ConfidenceUnique

	for _, target := range targets {
		var matches []string
		for norm := range normalized {
			if aliases[target][norm] {
				matches = append(matches, norm)
			}
		}
		sort.Strings(matches)

		switch {
		case len(matches) == 0:
			// No evidence; leave the target unmapped.
		case len(matches) > 1:
			confidence = ConfidenceAmbiguous
			reasons = append(reasons, fmt.Sprintf("target %s matches %d fields", target, len(matches)))
		case used[matches[0]]:
			confidence = ConfidenceConflict
			reasons = append(reasons, fmt.Sprintf("target %s would reuse field %s", target, normalized[matches[0]]))
		default:
			proposed[target] = normalized[matches[0]]
			used[matches[0]] = true
		}
	}

	if len(proposed) == 0 && confidence == ConfidenceUnique {
		return nil, ConfidenceNoMatch, []string{"no alias matched any field"}
	}
	return proposed, confidence, reasons
}
