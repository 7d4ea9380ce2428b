// Package ports defines the interfaces through which the reconciliation
// core talks to its external collaborators: the catalog store, the schema
// introspector, the URL checker, the manifest, the overrides file and the
// report sink.
package ports

import (
	"context"

	"github.com/gisdx/catalog-core/internal/domain/entities"
)

// CatalogStore is the SQL-backed catalog. Every fetch excludes soft-deleted
// rows (status = DELETE). Writes accumulate in one transaction per run;
// Commit makes them durable, Rollback discards them. A fetch or write
// either fully succeeds or returns an error — there is no partial-result
// handling in the core.
type CatalogStore interface {
	// EnsureSchema creates the catalog schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the store, discarding any uncommitted writes.
	Close() error

	// FetchLayerRows returns live rows whose lowercased title contains any
	// of the given substrings, ordered by title.
	FetchLayerRows(ctx context.Context, titleSubstrings []string) ([]entities.CatalogRecord, error)

	// FetchTransformRows returns live rows carrying a layer subgroup and a
	// non-empty field-transform string, the alias index ground truth.
	FetchTransformRows(ctx context.Context) ([]entities.CatalogRecord, error)

	// FetchSubgroupRows returns live rows carrying a layer subgroup,
	// optionally restricted to rows with a missing field transform.
	FetchSubgroupRows(ctx context.Context, missingTransformOnly bool) ([]entities.CatalogRecord, error)

	// FindByTitle returns the live row with the given title
	// (case-insensitive), or nil when none exists.
	FindByTitle(ctx context.Context, title string) (*entities.CatalogRecord, error)

	// Insert stages a new record in the run transaction.
	Insert(ctx context.Context, rec *entities.CatalogRecord) error

	// Update stages column updates for the row with the given ID.
	Update(ctx context.Context, id string, fields map[string]string) error

	// Commit commits the run transaction, if any writes were staged.
	Commit(ctx context.Context) error

	// Rollback discards the run transaction.
	Rollback() error
}
