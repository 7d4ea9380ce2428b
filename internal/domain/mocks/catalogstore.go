// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"sort"
	"strings"

	"github.com/gisdx/catalog-core/internal/domain/entities"
)

// CatalogStore is a mock implementation of ports.CatalogStore backed by an
// in-memory record slice.
type CatalogStore struct {
	Records []entities.CatalogRecord
	Err     error

	// Staged writes, visible for assertions.
	Inserted []entities.CatalogRecord
	Updates  map[string]map[string]string

	Committed  bool
	RolledBack bool
	Closed     bool
}

// NewCatalogStore creates a new mock CatalogStore.
func NewCatalogStore(records ...entities.CatalogRecord) *CatalogStore {
	return &CatalogStore{
		Records: records,
		Updates: make(map[string]map[string]string),
	}
}

// EnsureSchema returns the configured error.
func (m *CatalogStore) EnsureSchema(ctx context.Context) error {
	return m.Err
}

// Close marks the store closed.
func (m *CatalogStore) Close() error {
	m.Closed = true
	return nil
}

func (m *CatalogStore) live() []entities.CatalogRecord {
	var out []entities.CatalogRecord
	for _, rec := range m.Records {
		if rec.Status == entities.StatusDelete {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// FetchLayerRows returns live records whose lowercased title contains any
// of the given substrings, ordered by title.
func (m *CatalogStore) FetchLayerRows(ctx context.Context, titleSubstrings []string) ([]entities.CatalogRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []entities.CatalogRecord
	for _, rec := range m.live() {
		title := strings.ToLower(rec.Title)
		for _, sub := range titleSubstrings {
			if strings.Contains(title, strings.ToLower(sub)) {
				out = append(out, rec)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// FetchTransformRows returns live records carrying a subgroup and a
// non-empty transform.
func (m *CatalogStore) FetchTransformRows(ctx context.Context) ([]entities.CatalogRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []entities.CatalogRecord
	for _, rec := range m.live() {
		if rec.LayerSubgroup != "" && strings.TrimSpace(rec.FieldsObjTransform) != "" {
			out = append(out, rec)
		}
	}
	return out, nil
}

// FetchSubgroupRows returns live records carrying a subgroup, optionally
// restricted to rows without a transform.
func (m *CatalogStore) FetchSubgroupRows(ctx context.Context, missingTransformOnly bool) ([]entities.CatalogRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []entities.CatalogRecord
	for _, rec := range m.live() {
		if rec.LayerSubgroup == "" {
			continue
		}
		if missingTransformOnly && strings.TrimSpace(rec.FieldsObjTransform) != "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// FindByTitle returns the live record with the given title, or nil.
func (m *CatalogStore) FindByTitle(ctx context.Context, title string) (*entities.CatalogRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, rec := range m.live() {
		if strings.EqualFold(rec.Title, title) {
			found := rec
			return &found, nil
		}
	}
	return nil, nil
}

// Insert stages a new record.
func (m *CatalogStore) Insert(ctx context.Context, rec *entities.CatalogRecord) error {
	if m.Err != nil {
		return m.Err
	}
	m.Inserted = append(m.Inserted, *rec)
	return nil
}

// Update stages column updates for a record ID.
func (m *CatalogStore) Update(ctx context.Context, id string, fields map[string]string) error {
	if m.Err != nil {
		return m.Err
	}
	if m.Updates == nil {
		m.Updates = make(map[string]map[string]string)
	}
	if m.Updates[id] == nil {
		m.Updates[id] = make(map[string]string)
	}
	for k, v := range fields {
		m.Updates[id][k] = v
	}
	return nil
}

// Commit marks the transaction committed.
func (m *CatalogStore) Commit(ctx context.Context) error {
	m.Committed = true
	return m.Err
}

// Rollback marks the transaction rolled back.
func (m *CatalogStore) Rollback() error {
	m.RolledBack = true
	return nil
}
