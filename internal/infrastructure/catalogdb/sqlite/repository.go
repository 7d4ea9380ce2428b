// Package sqlite provides a SQLite implementation of the CatalogStore
// interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/gisdx/catalog-core/internal/domain/entities"
	"github.com/gisdx/catalog-core/internal/infrastructure/config"
)

// generateUUID returns a new UUID string.
func generateUUID() string {
	return uuid.New().String()
}

// recordColumns is the column list of the catalog table, ID first, in
// scanRecord order.
var recordColumns = []string{
	"id", "title", "state", "county", "city", "source_org", "data_date",
	"publish_date", "src_url_file", "format", "format_subtype", "download",
	"resource", "layer_group", "layer_subgroup", "category", "sub_category",
	"sys_raw_folder", "sys_raw_file", "table_name", "fields_obj_transform",
	"field_names", "source_comments", "processing_comments",
	"distrib_comments", "status",
}

// liveFilter excludes soft-deleted rows from every fetch.
const liveFilter = "(status IS NULL OR status <> 'DELETE')"

// Repository implements ports.CatalogStore using SQLite. Writes accumulate
// in a lazily begun transaction settled by Commit or Rollback.
type Repository struct {
	db   *sql.DB
	tx   *sql.Tx
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection, discarding any uncommitted writes.
func (r *Repository) Close() error {
	if r.tx != nil {
		r.tx.Rollback()
		r.tx = nil
	}
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- GIS data catalog: one row per dataset source
	CREATE TABLE IF NOT EXISTS m_gis_data_catalog_main (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		state TEXT,
		county TEXT,
		city TEXT,
		source_org TEXT,
		data_date TEXT,
		publish_date TEXT,
		src_url_file TEXT,
		format TEXT,
		format_subtype TEXT,
		download TEXT,
		resource TEXT,
		layer_group TEXT,
		layer_subgroup TEXT,
		category TEXT,
		sub_category TEXT,
		sys_raw_folder TEXT,
		sys_raw_file TEXT,
		table_name TEXT,
		fields_obj_transform TEXT,
		field_names TEXT,
		source_comments TEXT,
		processing_comments TEXT,
		distrib_comments TEXT,
		status TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_catalog_title ON m_gis_data_catalog_main(title);
	CREATE INDEX IF NOT EXISTS idx_catalog_subgroup ON m_gis_data_catalog_main(layer_subgroup);
	CREATE INDEX IF NOT EXISTS idx_catalog_status ON m_gis_data_catalog_main(status);
	`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// writeTx lazily begins the run transaction.
func (r *Repository) writeTx(ctx context.Context) (*sql.Tx, error) {
	if r.tx != nil {
		return r.tx, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	r.tx = tx
	return tx, nil
}

// Commit commits the run transaction, if any writes were staged.
func (r *Repository) Commit(ctx context.Context) error {
	if r.tx == nil {
		return nil
	}
	err := r.tx.Commit()
	r.tx = nil
	if err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Rollback discards the run transaction.
func (r *Repository) Rollback() error {
	if r.tx == nil {
		return nil
	}
	err := r.tx.Rollback()
	r.tx = nil
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rolling back transaction: %w", err)
	}
	return nil
}

func (r *Repository) querier() interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// FetchLayerRows returns live rows whose lowercased title contains any of
// the given substrings, ordered by title.
func (r *Repository) FetchLayerRows(ctx context.Context, titleSubstrings []string) ([]entities.CatalogRecord, error) {
	if len(titleSubstrings) == 0 {
		return nil, errors.New("at least one title substring is required")
	}

	conds := make([]string, 0, len(titleSubstrings))
	args := make([]any, 0, len(titleSubstrings))
	for _, sub := range titleSubstrings {
		conds = append(conds, "lower(title) LIKE ?")
		args = append(args, "%"+strings.ToLower(sub)+"%")
	}

	query := fmt.Sprintf(
		"SELECT %s FROM m_gis_data_catalog_main WHERE (%s) AND %s ORDER BY title",
		strings.Join(recordColumns, ", "), strings.Join(conds, " OR "), liveFilter,
	)
	return r.queryRecords(ctx, query, args...)
}

// FetchTransformRows returns live rows carrying a layer subgroup and a
// non-empty field transform.
func (r *Repository) FetchTransformRows(ctx context.Context) ([]entities.CatalogRecord, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM m_gis_data_catalog_main
		 WHERE layer_subgroup IS NOT NULL AND layer_subgroup <> ''
		   AND fields_obj_transform IS NOT NULL AND trim(fields_obj_transform) <> ''
		   AND %s ORDER BY title`,
		strings.Join(recordColumns, ", "), liveFilter,
	)
	return r.queryRecords(ctx, query)
}

// FetchSubgroupRows returns live rows carrying a layer subgroup, optionally
// restricted to rows with a missing field transform.
func (r *Repository) FetchSubgroupRows(ctx context.Context, missingTransformOnly bool) ([]entities.CatalogRecord, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM m_gis_data_catalog_main
		 WHERE layer_subgroup IS NOT NULL AND layer_subgroup <> '' AND %s`,
		strings.Join(recordColumns, ", "), liveFilter,
	)
	if missingTransformOnly {
		query += " AND (fields_obj_transform IS NULL OR trim(fields_obj_transform) = '')"
	}
	query += " ORDER BY title"
	return r.queryRecords(ctx, query)
}

// FindByTitle returns the live row with the given title
// (case-insensitive), or nil when none exists.
func (r *Repository) FindByTitle(ctx context.Context, title string) (*entities.CatalogRecord, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM m_gis_data_catalog_main WHERE lower(title) = lower(?) AND %s LIMIT 1",
		strings.Join(recordColumns, ", "), liveFilter,
	)
	row := r.querier().QueryRowContext(ctx, query, title)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding record by title: %w", err)
	}
	return rec, nil
}

// Insert stages a new record in the run transaction.
func (r *Repository) Insert(ctx context.Context, rec *entities.CatalogRecord) error {
	tx, err := r.writeTx(ctx)
	if err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = generateUUID()
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(recordColumns)), ", ")
	query := fmt.Sprintf(
		"INSERT INTO m_gis_data_catalog_main (%s) VALUES (%s)",
		strings.Join(recordColumns, ", "), placeholders,
	)

	args := []any{
		rec.ID, rec.Title, rec.State, rec.County, rec.City, rec.SourceOrg,
		rec.DataDate, rec.PublishDate, rec.SrcURLFile, rec.Format,
		rec.FormatSubtype, rec.Download, rec.Resource, rec.LayerGroup,
		rec.LayerSubgroup, rec.Category, rec.SubCategory, rec.SysRawFolder,
		rec.SysRawFile, rec.TableName, rec.FieldsObjTransform,
		rec.FieldNames, rec.SourceComments, rec.ProcessingComments,
		rec.DistribComments, rec.Status,
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

// updatableColumns guards Update against writing unknown columns.
var updatableColumns = func() map[string]bool {
	m := make(map[string]bool, len(recordColumns))
	for _, c := range recordColumns[1:] {
		m[c] = true
	}
	return m
}()

// Update stages column updates for the row with the given ID.
func (r *Repository) Update(ctx context.Context, id string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	tx, err := r.writeTx(ctx)
	if err != nil {
		return err
	}

	cols := make([]string, 0, len(fields))
	for col := range fields {
		if !updatableColumns[col] {
			return fmt.Errorf("unknown catalog column %q", col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	sets := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)
	for _, col := range cols {
		sets = append(sets, col+" = ?")
		args = append(args, fields[col])
	}
	args = append(args, id)

	query := "UPDATE m_gis_data_catalog_main SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating record: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("record not found: %s", id)
	}
	return nil
}

func (r *Repository) queryRecords(ctx context.Context, query string, args ...any) ([]entities.CatalogRecord, error) {
	rows, err := r.querier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []entities.CatalogRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*entities.CatalogRecord, error) {
	var rec entities.CatalogRecord
	var (
		state, county, city, sourceOrg, dataDate, publishDate     sql.NullString
		srcURL, format, formatSubtype, download, resource         sql.NullString
		layerGroup, layerSubgroup, category, subCategory          sql.NullString
		sysRawFolder, sysRawFile, tableName, transform, fieldJSON sql.NullString
		sourceComments, processingComments, distribComments       sql.NullString
		status                                                    sql.NullString
	)

	err := s.Scan(
		&rec.ID, &rec.Title, &state, &county, &city, &sourceOrg, &dataDate,
		&publishDate, &srcURL, &format, &formatSubtype, &download, &resource,
		&layerGroup, &layerSubgroup, &category, &subCategory, &sysRawFolder,
		&sysRawFile, &tableName, &transform, &fieldJSON, &sourceComments,
		&processingComments, &distribComments, &status,
	)
	if err != nil {
		return nil, err
	}

	rec.State = state.String
	rec.County = county.String
	rec.City = city.String
	rec.SourceOrg = sourceOrg.String
	rec.DataDate = dataDate.String
	rec.PublishDate = publishDate.String
	rec.SrcURLFile = srcURL.String
	rec.Format = format.String
	rec.FormatSubtype = formatSubtype.String
	rec.Download = download.String
	rec.Resource = resource.String
	rec.LayerGroup = layerGroup.String
	rec.LayerSubgroup = layerSubgroup.String
	rec.Category = category.String
	rec.SubCategory = subCategory.String
	rec.SysRawFolder = sysRawFolder.String
	rec.SysRawFile = sysRawFile.String
	rec.TableName = tableName.String
	rec.FieldsObjTransform = transform.String
	rec.FieldNames = fieldJSON.String
	rec.SourceComments = sourceComments.String
	rec.ProcessingComments = processingComments.String
	rec.DistribComments = distribComments.String
	rec.Status = status.String
	return &rec, nil
}
