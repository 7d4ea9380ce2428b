package mocks

import (
	"context"

	"github.com/gisdx/catalog-core/internal/domain/entities"
	"github.com/gisdx/catalog-core/internal/domain/ports"
)

// SchemaIntrospector is a mock implementation of ports.SchemaIntrospector.
type SchemaIntrospector struct {
	// Fields maps a raw-folder dir to its field names.
	Fields map[string][]string
	Err    error
}

// FieldNames returns the configured field names for dir, or the error.
func (m *SchemaIntrospector) FieldNames(ctx context.Context, dir, file string) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Fields[dir], nil
}

// URLChecker is a mock implementation of ports.URLChecker.
type URLChecker struct {
	// Statuses maps URLs to probe results; unknown URLs return Default.
	Statuses map[string]ports.URLStatus
	Default  ports.URLStatus

	CheckCallCount int
}

// Check returns the configured status for the URL.
func (m *URLChecker) Check(ctx context.Context, url string) ports.URLStatus {
	m.CheckCallCount++
	if status, ok := m.Statuses[url]; ok {
		return status
	}
	if m.Default != "" {
		return m.Default
	}
	return ports.URLOK
}

// CommentSource is a mock implementation of ports.CommentSource.
type CommentSource struct {
	// Source and Processing map "layer/entity" keys to comment strings.
	Source     map[string]string
	Processing map[string]string
}

// Commands returns the configured comments for the layer entity.
func (m *CommentSource) Commands(layer, entity string) (string, string) {
	key := layer + "/" + entity
	return m.Source[key], m.Processing[key]
}

// ReportSink is a mock implementation of ports.ReportSink.
type ReportSink struct {
	Path string
	Err  error

	Detect *entities.DetectReport
	Fill   *entities.FillReport
	Create *entities.CreateReport
	Infer  *entities.InferReport
}

// WriteDetect records the report and returns the configured path.
func (m *ReportSink) WriteDetect(rep *entities.DetectReport) (string, error) {
	m.Detect = rep
	return m.Path, m.Err
}

// WriteFill records the report and returns the configured path.
func (m *ReportSink) WriteFill(rep *entities.FillReport) (string, error) {
	m.Fill = rep
	return m.Path, m.Err
}

// WriteCreate records the report and returns the configured path.
func (m *ReportSink) WriteCreate(rep *entities.CreateReport) (string, error) {
	m.Create = rep
	return m.Path, m.Err
}

// WriteInfer records the report and returns the configured path.
func (m *ReportSink) WriteInfer(rep *entities.InferReport) (string, error) {
	m.Infer = rep
	return m.Path, m.Err
}

// OverrideStore is a mock implementation of ports.OverrideStore.
type OverrideStore struct {
	Stored  entities.MissingFields
	LoadErr error
	SaveErr error

	SaveCallCount  int
	MergeCallCount int
}

// NewOverrideStore creates a new mock OverrideStore.
func NewOverrideStore() *OverrideStore {
	return &OverrideStore{Stored: make(entities.MissingFields)}
}

// Load returns the stored overrides or the configured error.
func (m *OverrideStore) Load() (entities.MissingFields, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Stored, nil
}

// Save replaces the stored overrides.
func (m *OverrideStore) Save(f entities.MissingFields) error {
	m.SaveCallCount++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Stored = f
	return nil
}

// Merge folds new entries into the stored overrides, keeping existing
// values.
func (m *OverrideStore) Merge(f entities.MissingFields) error {
	m.MergeCallCount++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	for entity, fields := range f {
		for field, value := range fields {
			if _, ok := m.Stored[entity][field]; !ok {
				m.Stored.Add(entity, field, value)
			}
		}
	}
	return nil
}
