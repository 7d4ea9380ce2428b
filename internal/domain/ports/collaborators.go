package ports

import (
	"context"

	"github.com/gisdx/catalog-core/internal/domain/entities"
)

// SchemaIntrospector reads the ordered field names of a dataset resolved to
// a local directory. Used by transform inference when a record's stored
// field-name metadata is missing or invalid.
type SchemaIntrospector interface {
	FieldNames(ctx context.Context, dir, file string) ([]string, error)
}

// URLStatus classifies a source URL health probe.
type URLStatus string

// URL statuses.
const (
	URLOK         URLStatus = "OK"
	URLMissing    URLStatus = "MISSING"
	URLDeprecated URLStatus = "DEPRECATED"
)

// URLChecker probes whether a source URL still serves accessible data.
type URLChecker interface {
	Check(ctx context.Context, url string) URLStatus
}

// CommentSource supplies the manifest-derived source and processing
// command comments for an entity.
type CommentSource interface {
	Commands(layer, entity string) (source, processing string)
}

// OverrideStore reads and writes the manual overrides file:
// entity -> field -> value (or a MANUAL_REQUIRED / URL_DEPRECATED
// sentinel awaiting a human-supplied value).
type OverrideStore interface {
	Load() (entities.MissingFields, error)
	Save(m entities.MissingFields) error
	// Merge folds new sentinel entries into the stored file, keeping any
	// values a human already filled in.
	Merge(m entities.MissingFields) error
}

// ReportSink renders per-run reports for human consumption. Writers return
// the location of the written artifact.
type ReportSink interface {
	WriteDetect(rep *entities.DetectReport) (string, error)
	WriteFill(rep *entities.FillReport) (string, error)
	WriteCreate(rep *entities.CreateReport) (string, error)
	WriteInfer(rep *entities.InferReport) (string, error)
}
