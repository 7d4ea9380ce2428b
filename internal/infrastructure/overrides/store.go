// Package overrides persists the manual-overrides file: the JSON map of
// entity -> field -> value that humans complete between runs.
package overrides

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gisdx/catalog-core/internal/domain/entities"
)

// Store implements ports.OverrideStore on a JSON file.
type Store struct {
	path string
}

// NewStore creates a Store over the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the overrides file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the overrides file. A missing file yields an empty map; a
// malformed file is an error, since silently ignoring human input would
// lose work.
func (s *Store) Load() (entities.MissingFields, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(entities.MissingFields), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading overrides file: %w", err)
	}

	var m entities.MissingFields
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing overrides file %s: %w", s.path, err)
	}
	if m == nil {
		m = make(entities.MissingFields)
	}
	return m, nil
}

// Save writes the overrides file, creating its directory if needed.
func (s *Store) Save(m entities.MissingFields) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating overrides directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding overrides: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing overrides file: %w", err)
	}
	return nil
}

// Merge folds new sentinel entries into the stored file. Values a human
// already filled in are kept.
func (s *Store) Merge(m entities.MissingFields) error {
	stored, err := s.Load()
	if err != nil {
		return err
	}
	for entity, fields := range m {
		for field, value := range fields {
			if _, ok := stored[entity][field]; ok {
				continue
			}
			stored.Add(entity, field, value)
		}
	}
	return s.Save(stored)
}
