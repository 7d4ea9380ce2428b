package entities

// Classification of an entity key group in detect mode.
type Classification string

// Entity classifications.
const (
	ClassUnique    Classification = "unique"
	ClassDuplicate Classification = "duplicate"
	ClassError     Classification = "error"
)

// FieldStatus classifies one tracked field of one record in fill mode.
type FieldStatus string

// Field statuses.
const (
	FieldHealthy        FieldStatus = "healthy"
	FieldCorrected      FieldStatus = "corrected"
	FieldManualRequired FieldStatus = "manual_required"
)

// IssueKind is the recoverable failure taxonomy. Issues are reported,
// never raised; processing always continues for the remaining entities.
type IssueKind string

// Issue kinds.
const (
	IssueUnparseable      IssueKind = "unparseable"
	IssueDuplicate        IssueKind = "duplicate"
	IssueManualRequired   IssueKind = "manual_required"
	IssueAmbiguous        IssueKind = "ambiguous"
	IssueConflict         IssueKind = "conflict"
	IssueValidationFailed IssueKind = "validation_failed"
)

// Report cell sentinels for fields a human must supply.
const (
	ManualRequiredValue = "MANUAL_REQUIRED"
	URLDeprecatedValue  = "URL_DEPRECATED"
	MissingCell         = "***MISSING***"
	DeprecatedCell      = "***DEPRECATED***"
)

// DetectRow is one catalog record keyed by its derived entity.
type DetectRow struct {
	Entity string
	Values map[string]string
}

// DuplicateGroup collects every record colliding on one entity key.
type DuplicateGroup struct {
	Entity  string
	Records []DetectRow
}

// DetectReport is the outcome of a detect run for one layer.
type DetectReport struct {
	Layer       string
	Headers     []string
	Unique      []DetectRow
	Duplicates  []DuplicateGroup
	Errors      []DetectRow
	FieldCounts map[string]int
	Total       int
}

// FieldCheck is the fill-mode verdict for one field of one record.
type FieldCheck struct {
	Status FieldStatus
	// Value is the corrected value, or a sentinel cell for manual fields.
	Value string
	// Manual marks fields applied only under the apply-manual flag.
	Manual bool
}

// FillRow is the fill-mode verdict for one unique entity.
type FillRow struct {
	Entity   string
	RecordID string
	OgTitle  string
	Cells    map[string]FieldCheck
}

// FillReport is the outcome of a fill run for one layer.
type FillReport struct {
	Layer         string
	Headers       []string
	Rows          []FillRow
	HealthyCounts map[string]int
	Skipped       int
	Total         int
}

// CreateOutcome is the per-entity result of a create run.
type CreateOutcome struct {
	Entity string
	// Status is CREATED, PENDING, SKIPPED or MANUAL_REQUIRED.
	Status string
	Record map[string]string
	// MissingFields lists the mandatory fields that blocked creation.
	MissingFields []string
}

// CreateReport is the outcome of a create run for one layer.
type CreateReport struct {
	Layer    string
	Outcomes []CreateOutcome
	Created  int
	Skipped  int
	Blocked  int
}

// InferRow is one transform-inference verdict.
type InferRow struct {
	Entity     string
	Layer      string
	State      string
	County     string
	City       string
	Existing   string
	Proposed   string
	Confidence string
	Reasons    []string
	Applied    bool
}

// InferReport is the outcome of a transform-inference run.
type InferReport struct {
	Rows      []InferRow
	Processed int
	Updated   int
}

// MissingFields accumulates manual-required fields per entity, in the
// shape of the manual overrides file.
type MissingFields map[string]map[string]string

// Add records a manual-required sentinel for an entity field.
func (m MissingFields) Add(entity, field, sentinel string) {
	if m[entity] == nil {
		m[entity] = make(map[string]string)
	}
	m[entity][field] = sentinel
}
