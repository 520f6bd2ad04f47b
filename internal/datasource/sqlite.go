package datasource

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/taxo/pkg/model"
)

// SQLiteReader provides read access to a SQLite catalog export
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite catalog export for reading
func NewSQLiteReader(source Source) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	// Read-only with a busy timeout so a concurrent export never wedges the
	// console.
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Best effort read tuning.
	pragmas := []string{
		"PRAGMA cache_size = -64000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		_, _ = db.Exec(pragma)
	}

	return &SQLiteReader{
		db:   db,
		path: source.Path,
	}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadCategories reads all live (non-retired) categories from the export
func (r *SQLiteReader) LoadCategories() ([]model.Category, error) {
	return r.LoadCategoriesFiltered(nil)
}

// LoadCategoriesFiltered reads live categories matching the filter function
func (r *SQLiteReader) LoadCategoriesFiltered(filter func(*model.Category) bool) ([]model.Category, error) {
	query := `
		SELECT
			id, parent_id, name, summary, status, sku_count,
			tags, created_at, updated_at
		FROM categories
		WHERE retired_at IS NULL
		ORDER BY updated_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		// Older exports carry fewer columns.
		return r.loadCategoriesSimple(filter)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		var parentID, summary, status, tagsJSON sql.NullString
		var skuCount sql.NullInt64
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&cat.ID, &parentID, &cat.Name, &summary, &status, &skuCount,
			&tagsJSON, &createdAt, &updatedAt,
		)
		if err != nil {
			continue
		}

		if parentID.Valid {
			cat.ParentID = parentID.String
		}
		if summary.Valid {
			cat.Summary = summary.String
		}
		if status.Valid {
			cat.Status = model.Status(strings.ToLower(strings.TrimSpace(status.String)))
		}
		if skuCount.Valid {
			cat.SKUCount = int(skuCount.Int64)
		}
		if createdAt.Valid {
			cat.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			cat.UpdatedAt = updatedAt.Time
		}
		if tagsJSON.Valid && tagsJSON.String != "" && tagsJSON.String != "null" {
			cat.Tags = parseJSONStringArray(tagsJSON.String)
		}

		// Same contract as the JSONL loader: bad records are skipped, never
		// fatal, so both flavors produce equivalent catalogs.
		if err := cat.Validate(); err != nil {
			continue
		}

		if filter != nil && !filter(&cat) {
			continue
		}

		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// loadCategoriesSimple is a fallback for exports with fewer columns
func (r *SQLiteReader) loadCategoriesSimple(filter func(*model.Category) bool) ([]model.Category, error) {
	query := `
		SELECT id, parent_id, name, status, created_at, updated_at
		FROM categories
		ORDER BY updated_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		var parentID, status sql.NullString
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&cat.ID, &parentID, &cat.Name, &status,
			&createdAt, &updatedAt,
		)
		if err != nil {
			continue
		}

		if parentID.Valid {
			cat.ParentID = parentID.String
		}
		if status.Valid {
			cat.Status = model.Status(strings.ToLower(strings.TrimSpace(status.String)))
		}
		if createdAt.Valid {
			cat.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			cat.UpdatedAt = updatedAt.Time
		}

		// Old exports keep SKU counts in a side table.
		cat.SKUCount = r.countSKUs(cat.ID)

		if err := cat.Validate(); err != nil {
			continue
		}

		if filter != nil && !filter(&cat) {
			continue
		}

		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// countSKUs counts SKUs assigned to a category from the skus side table.
// Best effort; returns 0 when the table is absent.
func (r *SQLiteReader) countSKUs(categoryID string) int {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM skus WHERE category_id = ?", categoryID).Scan(&count)
	if err != nil {
		return 0
	}
	return count
}

// LoadRetired reads retired categories, the SQLite counterpart of the
// JSONL archive file
func (r *SQLiteReader) LoadRetired() ([]model.Category, error) {
	query := `
		SELECT
			id, parent_id, name, summary, status, sku_count,
			tags, created_at, updated_at, retired_at
		FROM categories
		WHERE retired_at IS NOT NULL
		ORDER BY retired_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		// Older exports have no retired_at column and thus no retired rows.
		return nil, nil
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		var parentID, summary, status, tagsJSON sql.NullString
		var skuCount sql.NullInt64
		var createdAt, updatedAt, retiredAt sql.NullTime

		err := rows.Scan(
			&cat.ID, &parentID, &cat.Name, &summary, &status, &skuCount,
			&tagsJSON, &createdAt, &updatedAt, &retiredAt,
		)
		if err != nil {
			continue
		}

		if parentID.Valid {
			cat.ParentID = parentID.String
		}
		if summary.Valid {
			cat.Summary = summary.String
		}
		if status.Valid {
			cat.Status = model.Status(strings.ToLower(strings.TrimSpace(status.String)))
		}
		if skuCount.Valid {
			cat.SKUCount = int(skuCount.Int64)
		}
		if createdAt.Valid {
			cat.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			cat.UpdatedAt = updatedAt.Time
		}
		if retiredAt.Valid {
			t := retiredAt.Time
			cat.RetiredAt = &t
		}
		if tagsJSON.Valid && tagsJSON.String != "" && tagsJSON.String != "null" {
			cat.Tags = parseJSONStringArray(tagsJSON.String)
		}

		if err := cat.Validate(); err != nil {
			continue
		}

		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating retired categories: %w", err)
	}

	return categories, nil
}

// CountCategories returns the count of live categories
func (r *SQLiteReader) CountCategories() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM categories WHERE retired_at IS NULL").Scan(&count)
	if err != nil {
		// Older exports have no retired_at column.
		err = r.db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count)
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetCategoryByID retrieves a single category by ID
func (r *SQLiteReader) GetCategoryByID(id string) (*model.Category, error) {
	categories, err := r.LoadCategoriesFiltered(func(cat *model.Category) bool {
		return cat.ID == id
	})
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("category not found: %s", id)
	}
	return &categories[0], nil
}

// GetLastModified returns the most recent update time
func (r *SQLiteReader) GetLastModified() (time.Time, error) {
	// A plain column select keeps the TIMESTAMP decltype, which an aggregate
	// would strip.
	var updatedAt sql.NullTime
	err := r.db.QueryRow("SELECT updated_at FROM categories ORDER BY updated_at DESC LIMIT 1").Scan(&updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	if !updatedAt.Valid {
		return time.Time{}, nil
	}
	return updatedAt.Time, nil
}

// parseJSONStringArray parses a JSON array of strings
func parseJSONStringArray(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" || s == "[]" {
		return nil
	}

	// Proper unmarshaling first; tags can contain commas.
	var result []string
	if err := json.Unmarshal([]byte(s), &result); err != nil {
		// Fallback to simple parser for malformed JSON
		s = strings.TrimPrefix(s, "[")
		s = strings.TrimSuffix(s, "]")
		if s == "" {
			return nil
		}
		for _, item := range strings.Split(s, ",") {
			item = strings.TrimSpace(item)
			item = strings.Trim(item, `"`)
			if item != "" {
				result = append(result, item)
			}
		}
	}
	return result
}
