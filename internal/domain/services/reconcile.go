package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"dario.cat/mergo"

	"github.com/gisdx/catalog-core/internal/domain/entities"
	"github.com/gisdx/catalog-core/internal/domain/naming"
	"github.com/gisdx/catalog-core/internal/domain/parsing"
	"github.com/gisdx/catalog-core/internal/domain/ports"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// DetectHeaders is the detect-mode report column set, entity first.
var DetectHeaders = []string{
	"entity", "title", "state", "county", "city", "source_org", "data_date",
	"publish_date", "src_url_file", "format", "format_subtype", "download",
	"resource", "layer_group", "layer_subgroup", "category", "sub_category",
	"sys_raw_folder", "table_name", "fields_obj_transform",
	"source_comments", "processing_comments",
}

// FillCoreHeaders is the fill-mode tracked field set. og_title displays the
// stored title; new_title carries its correction.
var FillCoreHeaders = []string{
	"entity", "og_title", "new_title", "state", "county", "city",
	"src_url_file", "format", "download", "resource", "layer_group",
	"category", "sys_raw_folder", "table_name", "fields_obj_transform",
	"layer_subgroup", "source_comments", "processing_comments",
	"distrib_comments",
}

// FillOptionalHeaders are checked only when the caller asks for all
// conditions.
var FillOptionalHeaders = []string{"sub_category", "source_org", "format_subtype"}

// manualFields are applied only under the apply-manual flag; their
// corrections originate from humans, not derivation.
var manualFields = map[string]bool{
	"src_url_file":         true,
	"fields_obj_transform": true,
	"source_org":           true,
}

// Create-mode outcome statuses.
const (
	CreateStatusCreated        = "CREATED"
	CreateStatusPending        = "PENDING"
	CreateStatusExists         = "EXISTS"
	CreateStatusManualRequired = "MANUAL_REQUIRED"
	CreateStatusInvalid        = "INVALID"
)

// Reconciler diffs the live catalog against computed expected values.
// Each run mode is a pure transformation of the catalog snapshot; writes
// happen only in the explicit apply passes.
type Reconciler struct {
	store    ports.CatalogStore
	urls     ports.URLChecker
	comments ports.CommentSource
	dataRoot string
}

// NewReconciler creates a Reconciler over the given collaborators.
func NewReconciler(store ports.CatalogStore, urls ports.URLChecker, comments ports.CommentSource, dataRoot string) *Reconciler {
	return &Reconciler{
		store:    store,
		urls:     urls,
		comments: comments,
		dataRoot: dataRoot,
	}
}

// fetchGrouped loads the layer's live rows and groups them by derived
// entity key, applying the entity filter.
func (r *Reconciler) fetchGrouped(ctx context.Context, layer entities.LayerDescriptor, filter EntityFilter) (map[string][]entities.CatalogRecord, int, error) {
	patterns := []string{
		layer.Name,
		strings.ToLower(naming.Format(layer.Name, naming.KindLayer, true)),
	}
	rows, err := r.store.FetchLayerRows(ctx, patterns)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching rows for layer %s: %w", layer.Name, err)
	}

	groups := make(map[string][]entities.CatalogRecord)
	total := 0
	for _, rec := range rows {
		entity := r.entityForRecord(layer, &rec)
		if !filter.Empty() && !filter.Match(entity) {
			continue
		}
		groups[entity] = append(groups[entity], rec)
		total++
	}
	return groups, total, nil
}

// entityForRecord derives a row's entity key: title parse first, then a
// hybrid of title city and stored county, then the stored county/city
// columns, and finally the ERROR bucket.
func (r *Reconciler) entityForRecord(layer entities.LayerDescriptor, rec *entities.CatalogRecord) string {
	if layer.Entity != "" {
		return layer.Entity
	}

	state := recordState(rec)
	tm := parsing.ParseTitle(rec.Title)

	if tm.OK && tm.County != "" && tm.City != "" {
		if suffix, err := parsing.EntityFromTitleParse(tm.County, tm.City, tm.EntityType, state); err == nil {
			return layerPrefix(tm.Layer, layer) + "_" + suffix
		}
	}

	if tm.OK && tm.City != "" && tm.County == "" && rec.County != "" {
		county := naming.Format(rec.County, naming.KindCounty, false)
		if suffix, err := parsing.EntityFromTitleParse(county, tm.City, tm.EntityType, state); err == nil {
			return layerPrefix(tm.Layer, layer) + "_" + suffix
		}
	}

	if rec.County != "" {
		county := naming.Format(rec.County, naming.KindCounty, false)
		city := naming.Format(rec.City, naming.KindCity, false)
		if layer.Level == entities.LevelStateCountyCity && city == "" {
			city = "unincorporated"
		}
		return entities.BuildEntityKey(layer, state, county, city)
	}

	return entities.ErrorEntity
}

// layerPrefix prefers the layer parsed out of the title, falling back to
// the configured layer.
func layerPrefix(parsed string, layer entities.LayerDescriptor) string {
	if parsed != "" {
		return parsed
	}
	return layer.Name
}

// recordState reads a row's state column, inferring it from the county
// gazetteers when absent.
func recordState(rec *entities.CatalogRecord) string {
	s := strings.ToLower(strings.TrimSpace(rec.State))
	if s != "" && s != "null" && s != "none" {
		return s
	}
	if rec.County != "" {
		county := naming.Format(rec.County, naming.KindCounty, false)
		if state, ok := entities.StateForCounty(county); ok {
			return state
		}
	}
	return "fl"
}

// cleanValue filters stored NULL markers down to empty strings.
func cleanValue(v string) string {
	t := strings.TrimSpace(v)
	if strings.EqualFold(t, "null") || strings.EqualFold(t, "none") {
		return ""
	}
	return t
}

// Detect groups the layer's live rows by entity key and classifies each
// key as unique, duplicate or error. Read-only; every collision is
// surfaced, never merged.
func (r *Reconciler) Detect(ctx context.Context, layerName string, filter EntityFilter) (*entities.DetectReport, error) {
	layer, ok := entities.LayerByName(layerName)
	if !ok {
		return nil, fmt.Errorf("unknown layer %q", layerName)
	}

	groups, total, err := r.fetchGrouped(ctx, layer, filter)
	if err != nil {
		return nil, err
	}

	rep := &entities.DetectReport{
		Layer:       layer.Name,
		Headers:     DetectHeaders,
		FieldCounts: make(map[string]int),
		Total:       total,
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, entity := range keys {
		rows := make([]entities.DetectRow, 0, len(groups[entity]))
		for i := range groups[entity] {
			rows = append(rows, r.detectRow(entity, &groups[entity][i], rep.FieldCounts))
		}
		sort.Slice(rows, func(i, j int) bool {
			return rows[i].Values["title"] < rows[j].Values["title"]
		})

		switch {
		case entity == entities.ErrorEntity:
			rep.Errors = append(rep.Errors, rows...)
		case len(rows) == 1:
			rep.Unique = append(rep.Unique, rows[0])
		default:
			rep.Duplicates = append(rep.Duplicates, entities.DuplicateGroup{Entity: entity, Records: rows})
		}
	}
	return rep, nil
}

func (r *Reconciler) detectRow(entity string, rec *entities.CatalogRecord, counts map[string]int) entities.DetectRow {
	values := make(map[string]string, len(DetectHeaders)-1)
	for _, field := range DetectHeaders[1:] {
		v := cleanValue(rec.Field(field))
		if v != "" {
			counts[field]++
		}
		values[field] = v
	}
	return entities.DetectRow{Entity: entity, Values: values}
}

// Fill health-checks every unique entity of the layer and proposes
// corrections. Duplicate and error groups are skipped (and counted), not
// repaired. Fill itself never writes; ApplyFill performs the store
// updates under explicit flags.
func (r *Reconciler) Fill(ctx context.Context, layerName string, filter EntityFilter, fillAll bool) (*entities.FillReport, entities.MissingFields, error) {
	layer, ok := entities.LayerByName(layerName)
	if !ok {
		return nil, nil, fmt.Errorf("unknown layer %q", layerName)
	}

	groups, total, err := r.fetchGrouped(ctx, layer, filter)
	if err != nil {
		return nil, nil, err
	}

	headers := FillCoreHeaders
	if fillAll {
		headers = append(append([]string{}, FillCoreHeaders...), FillOptionalHeaders...)
	}

	rep := &entities.FillReport{
		Layer:         layer.Name,
		Headers:       headers,
		HealthyCounts: make(map[string]int),
		Total:         total,
	}
	missing := make(entities.MissingFields)
	st := &fillState{
		urlCache: make(map[string]ports.URLStatus),
		distrib:  make(map[string]string),
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, entity := range keys {
		rows := groups[entity]
		if entity == entities.ErrorEntity || len(rows) > 1 {
			rep.Skipped += len(rows)
			continue
		}
		rec := rows[0]
		row := entities.FillRow{
			Entity:   entity,
			RecordID: rec.ID,
			OgTitle:  rec.Title,
			Cells:    make(map[string]entities.FieldCheck, len(headers)-2),
		}
		parts := r.partsForEntity(layer, entity)
		for _, field := range headers[1:] {
			if field == "og_title" {
				rep.HealthyCounts[field]++
				continue
			}
			check := r.checkField(ctx, parts, entity, &rec, field, st, missing)
			row.Cells[field] = check
			if check.Status == entities.FieldHealthy {
				rep.HealthyCounts[field]++
			}
		}
		rep.Rows = append(rep.Rows, row)
	}
	return rep, missing, nil
}

// fillState carries per-run caches: URL probe results and the
// distrib-comment preservation buffer.
type fillState struct {
	urlCache map[string]ports.URLStatus
	distrib  map[string]string
}

// partsForEntity decomposes a derived entity key back into components for
// expected-value generation.
func (r *Reconciler) partsForEntity(layer entities.LayerDescriptor, entity string) entityParts {
	p := entityParts{Layer: layer}
	switch layer.Level {
	case entities.LevelNational:
		p.EntityType = "national"
		return p
	case entities.LevelState:
		p.State = "fl"
		p.EntityType = "state"
		return p
	}
	parsed := parsing.ParseEntityPattern(entity)
	p.State = parsed.State
	p.County = parsed.County
	p.City = parsed.City
	p.EntityType = deriveEntityType(layer, parsed.County, parsed.City)
	return p
}

func (r *Reconciler) checkURL(ctx context.Context, st *fillState, url string) ports.URLStatus {
	if status, ok := st.urlCache[url]; ok {
		return status
	}
	status := r.urls.Check(ctx, url)
	st.urlCache[url] = status
	return status
}

// checkField computes the fill-mode verdict for one tracked field.
func (r *Reconciler) checkField(ctx context.Context, p entityParts, entity string, rec *entities.CatalogRecord, field string, st *fillState, missing entities.MissingFields) entities.FieldCheck {
	current := cleanValue(rec.Field(fillColumn(field)))

	healthy := entities.FieldCheck{Status: entities.FieldHealthy}
	corrected := func(v string) entities.FieldCheck {
		if v == current {
			return healthy
		}
		return entities.FieldCheck{Status: entities.FieldCorrected, Value: v, Manual: manualFields[field]}
	}
	manual := func(cell, sentinel string) entities.FieldCheck {
		missing.Add(entity, fillColumn(field), sentinel)
		return entities.FieldCheck{Status: entities.FieldManualRequired, Value: cell, Manual: true}
	}

	switch field {
	case "new_title":
		return corrected(expectedTitle(p, titlePrefixFrom(rec.Title)))

	case "state":
		switch p.Layer.Level {
		case entities.LevelNational:
			return healthy
		case entities.LevelState:
			return corrected("FL")
		}
		if ext, ok := entities.ValidState(p.State); ok {
			return corrected(ext)
		}
		return manual(entities.MissingCell, entities.ManualRequiredValue)

	case "county":
		switch p.Layer.Level {
		case entities.LevelNational, entities.LevelState:
			return healthy
		}
		return corrected(naming.Format(p.County, naming.KindCounty, true))

	case "city":
		switch p.Layer.Level {
		case entities.LevelNational, entities.LevelState, entities.LevelStateCounty:
			return corrected("")
		}
		return corrected(naming.Format(p.cityStd(), naming.KindCity, true))

	case "src_url_file":
		if current == "" {
			return manual(entities.MissingCell, entities.ManualRequiredValue)
		}
		if r.checkURL(ctx, st, current) == ports.URLDeprecated {
			return manual(entities.DeprecatedCell, entities.URLDeprecatedValue)
		}
		return healthy

	case "format":
		if current == "" {
			if expected := FormatFromURL(rec.SrcURLFile); expected != "" {
				return corrected(expected)
			}
			return manual(entities.MissingCell, entities.ManualRequiredValue)
		}
		expected := BestFormat(rec.SrcURLFile, rec.SysRawFolder)
		if expected != "" && !strings.EqualFold(current, expected) {
			return corrected(expected)
		}
		return healthy

	case "download":
		return corrected(entities.DownloadAuto)

	case "resource":
		if IsAGSFormat(rec.Format) {
			return healthy
		}
		return corrected(expectedResource(p))

	case "layer_group":
		return corrected(p.Layer.Group)

	case "category":
		return corrected(p.Layer.Category)

	case "sys_raw_folder":
		return corrected(resolveRawFolder(r.dataRoot, p))

	case "table_name":
		return corrected(expectedTableName(p))

	case "fields_obj_transform":
		if !ValidTransformPattern(current) {
			return manual(entities.MissingCell, entities.ManualRequiredValue)
		}
		return healthy

	case "layer_subgroup":
		return corrected(p.Layer.Subgroup)

	case "source_comments", "processing_comments":
		if p.Layer.Group != "flu_zoning" || r.comments == nil {
			return healthy
		}
		source, processing := r.comments.Commands(p.Layer.Name, entity)
		expected := source
		if field == "processing_comments" {
			expected = processing
		}
		if expected == current {
			return healthy
		}
		if current != "" {
			label := "SOURCE COMMENTS"
			if field == "processing_comments" {
				label = "PROCESSING COMMENTS"
			}
			st.preserveDistrib(entity, rec, label, current)
		}
		return entities.FieldCheck{Status: entities.FieldCorrected, Value: expected}

	case "distrib_comments":
		if v, ok := st.distrib[entity]; ok && v != current {
			return entities.FieldCheck{Status: entities.FieldCorrected, Value: v}
		}
		return healthy

	case "source_org":
		if current == "" {
			return manual(entities.MissingCell, entities.ManualRequiredValue)
		}
		return healthy
	}

	// sub_category and format_subtype carry no derivation rule.
	return healthy
}

// fillColumn maps report headers onto catalog column names.
func fillColumn(field string) string {
	if field == "new_title" || field == "og_title" {
		return "title"
	}
	return field
}

// titlePrefixFrom preserves a Town/Village designation from the stored
// title when regenerating it.
func titlePrefixFrom(title string) string {
	switch {
	case strings.Contains(title, "Town of"):
		return "Town"
	case strings.Contains(title, "Village of"):
		return "Village"
	}
	return ""
}

// preserveDistrib appends an overwritten comment to the entity's
// distrib_comments buffer, seeding it from the stored column once.
func (s *fillState) preserveDistrib(entity string, rec *entities.CatalogRecord, label, value string) {
	if _, ok := s.distrib[entity]; !ok {
		s.distrib[entity] = strings.TrimSpace(rec.DistribComments)
	}
	block := label + ":\n" + value
	if s.distrib[entity] != "" {
		s.distrib[entity] = s.distrib[entity] + "\n\n" + block
	} else {
		s.distrib[entity] = block
	}
}

// ApplyStats summarizes an apply pass.
type ApplyStats struct {
	AppliedAuto   int
	AppliedManual int
	SkippedAuto   int
	SkippedManual int
}

// ApplyFill stages the report's corrections as store updates. Auto-derived
// corrections require applyAuto; manual-class fields require applyManual;
// manual-required sentinels are never written. The caller commits.
func (r *Reconciler) ApplyFill(ctx context.Context, rep *entities.FillReport, applyAuto, applyManual bool) (ApplyStats, error) {
	var stats ApplyStats
	for _, row := range rep.Rows {
		updates := make(map[string]string)
		for _, field := range rep.Headers[1:] {
			check, ok := row.Cells[field]
			if !ok || check.Status != entities.FieldCorrected {
				continue
			}
			switch {
			case check.Manual && applyManual:
				updates[fillColumn(field)] = check.Value
				stats.AppliedManual++
			case !check.Manual && applyAuto:
				updates[fillColumn(field)] = check.Value
				stats.AppliedAuto++
			case check.Manual:
				stats.SkippedManual++
			default:
				stats.SkippedAuto++
			}
		}
		if len(updates) == 0 {
			continue
		}
		if err := r.store.Update(ctx, row.RecordID, updates); err != nil {
			return stats, fmt.Errorf("updating record %s: %w", row.RecordID, err)
		}
	}
	return stats, nil
}

// Create synthesizes brand-new records for the requested entity keys.
// Records failing the mandatory-field gate are reported, recorded in the
// missing-fields map and never inserted, even under apply.
func (r *Reconciler) Create(ctx context.Context, layerName string, keys []string, overrides entities.MissingFields, apply bool) (*entities.CreateReport, entities.MissingFields, error) {
	layer, ok := entities.LayerByName(layerName)
	if !ok {
		return nil, nil, fmt.Errorf("unknown layer %q", layerName)
	}

	rep := &entities.CreateReport{Layer: layer.Name}
	missing := make(entities.MissingFields)

	for _, key := range keys {
		entity := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(key)), layer.Name+"_")

		state, county, city, err := parsing.SplitEntity(entity)
		if err != nil {
			rep.Outcomes = append(rep.Outcomes, entities.CreateOutcome{
				Entity: key,
				Status: CreateStatusInvalid,
			})
			rep.Skipped++
			continue
		}

		entityType := "city"
		if entities.IsCountySuffix(city) {
			entityType = strings.ToLower(city)
		}
		expected := ExpectedValues(r.dataRoot, layer, state, county, city, entityType)

		existing, err := r.store.FindByTitle(ctx, expected["title"])
		if err != nil {
			return nil, nil, fmt.Errorf("looking up title %q: %w", expected["title"], err)
		}
		if existing != nil {
			rep.Outcomes = append(rep.Outcomes, entities.CreateOutcome{
				Entity: key,
				Status: CreateStatusExists,
				Record: expected,
			})
			rep.Skipped++
			continue
		}

		if ov := overrides[entity]; ov != nil {
			if err := mergo.Merge(&expected, ov, mergo.WithOverride); err != nil {
				return nil, nil, fmt.Errorf("merging overrides for %s: %w", entity, err)
			}
		}

		if blocked := mandatoryGaps(expected); len(blocked) > 0 {
			for _, field := range blocked {
				missing.Add(entity, field, entities.ManualRequiredValue)
			}
			rep.Outcomes = append(rep.Outcomes, entities.CreateOutcome{
				Entity:        key,
				Status:        CreateStatusManualRequired,
				Record:        expected,
				MissingFields: blocked,
			})
			rep.Blocked++
			continue
		}

		status := CreateStatusPending
		if apply {
			rec := recordFromValues(expected)
			if err := r.store.Insert(ctx, rec); err != nil {
				return nil, nil, fmt.Errorf("inserting record for %s: %w", entity, err)
			}
			status = CreateStatusCreated
			rep.Created++
		}
		rep.Outcomes = append(rep.Outcomes, entities.CreateOutcome{
			Entity: key,
			Status: status,
			Record: expected,
		})
	}
	return rep, missing, nil
}

// mandatoryGaps returns the mandatory fields a synthesized record is
// missing: format always; table name for ArcGIS-family sources; a
// resource or source URL otherwise.
func mandatoryGaps(values map[string]string) []string {
	var gaps []string
	format := values["format"]
	if format == "" || format == entities.ManualRequiredValue {
		gaps = append(gaps, "format")
		return gaps
	}
	if IsAGSFormat(format) {
		if values["table_name"] == "" || values["table_name"] == entities.ManualRequiredValue {
			gaps = append(gaps, "table_name")
		}
	} else if values["resource"] == "" && values["src_url_file"] == "" {
		gaps = append(gaps, "resource")
	}
	return gaps
}

// recordFromValues builds the insertable record, stamping the defaults a
// new row carries.
func recordFromValues(values map[string]string) *entities.CatalogRecord {
	rec := &entities.CatalogRecord{
		Title:              values["title"],
		State:              values["state"],
		County:             values["county"],
		City:               values["city"],
		SrcURLFile:         values["src_url_file"],
		Format:             values["format"],
		Resource:           values["resource"],
		LayerGroup:         values["layer_group"],
		LayerSubgroup:      values["layer_subgroup"],
		Category:           values["category"],
		SysRawFolder:       values["sys_raw_folder"],
		TableName:          values["table_name"],
		FieldsObjTransform: values["fields_obj_transform"],
		SourceComments:     values["source_comments"],
		ProcessingComments: values["processing_comments"],
		PublishDate:        timeNow().UTC().Format("2006-01-02"),
		Download:           entities.DownloadAuto,
		Status:             entities.StatusActive,
	}
	return rec
}
