package datasource_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/vanderheijden86/taxo/internal/datasource"
	"github.com/vanderheijden86/taxo/pkg/model"
)

// ============================================================
// Test fixtures
// ============================================================

var fixtureBase = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// createCatalogDB writes a full-schema SQLite export with three live
// categories and one retired one.
func createCatalogDB(t *testing.T, dir string) string {
	t.Helper()

	dbPath := filepath.Join(dir, "catalog.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	schema := `
		CREATE TABLE categories (
			id TEXT PRIMARY KEY,
			parent_id TEXT,
			name TEXT NOT NULL,
			summary TEXT,
			status TEXT NOT NULL,
			sku_count INTEGER,
			tags TEXT,
			created_at TIMESTAMP,
			updated_at TIMESTAMP,
			retired_at TIMESTAMP
		)
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	insert := `
		INSERT INTO categories
			(id, parent_id, name, summary, status, sku_count, tags, created_at, updated_at, retired_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	rows := []struct {
		id, parent, name, summary, status string
		skus                              int
		tags                              any
		retired                           any
	}{
		{"CAT-1", "", "Apparel", "Clothing and accessories", "active", 120, `["bestseller","eco"]`, nil},
		{"CAT-2", "CAT-1", "Shoes", "", "seasonal", 45, `[clearance, imported]`, nil},
		{"CAT-3", "CAT-1", "Hats", "", "ACTIVE", 12, nil, nil},
		{"CAT-9", "", "Fax Machines", "", "discontinued", 0, nil, fixtureBase.Add(72 * time.Hour)},
	}
	for i, r := range rows {
		_, err := db.Exec(insert,
			r.id, r.parent, r.name, r.summary, r.status, r.skus, r.tags,
			fixtureBase, fixtureBase.Add(time.Duration(i)*time.Hour), r.retired)
		if err != nil {
			t.Fatalf("insert %s: %v", r.id, err)
		}
	}

	return dbPath
}

// createLegacyDB writes an old-style export: no summary, sku_count, tags, or
// retired_at columns, with SKU counts in a side table.
func createLegacyDB(t *testing.T, dir string) string {
	t.Helper()

	dbPath := filepath.Join(dir, "catalog.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE categories (
			id TEXT PRIMARY KEY,
			parent_id TEXT,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)`,
		`CREATE TABLE skus (id TEXT PRIMARY KEY, category_id TEXT)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	if _, err := db.Exec(
		`INSERT INTO categories (id, parent_id, name, status, created_at, updated_at) VALUES
			('CAT-1', '', 'Apparel', 'active', ?, ?),
			('CAT-2', 'CAT-1', 'Shoes', 'active', ?, ?)`,
		fixtureBase, fixtureBase, fixtureBase, fixtureBase,
	); err != nil {
		t.Fatalf("insert categories: %v", err)
	}
	if _, err := db.Exec(
		`INSERT INTO skus (id, category_id) VALUES
			('SKU-1', 'CAT-2'), ('SKU-2', 'CAT-2'), ('SKU-3', 'CAT-2')`,
	); err != nil {
		t.Fatalf("insert skus: %v", err)
	}

	return dbPath
}

func openReader(t *testing.T, dbPath string) *datasource.SQLiteReader {
	t.Helper()
	reader, err := datasource.NewSQLiteReader(datasource.Source{
		Type: datasource.SourceTypeSQLite,
		Path: dbPath,
	})
	if err != nil {
		t.Fatalf("NewSQLiteReader: %v", err)
	}
	t.Cleanup(func() { reader.Close() })
	return reader
}

func findCategory(cats []model.Category, id string) *model.Category {
	for i := range cats {
		if cats[i].ID == id {
			return &cats[i]
		}
	}
	return nil
}

// ============================================================
// SQLiteReader tests
// ============================================================

func TestNewSQLiteReader_WrongType(t *testing.T) {
	_, err := datasource.NewSQLiteReader(datasource.Source{
		Type: datasource.SourceTypeJSONL,
		Path: "whatever.jsonl",
	})
	if err == nil {
		t.Fatal("Expected error for non-SQLite source type")
	}
}

func TestSQLiteReader_LoadCategories(t *testing.T) {
	dbPath := createCatalogDB(t, t.TempDir())
	reader := openReader(t, dbPath)

	cats, err := reader.LoadCategories()
	if err != nil {
		t.Fatalf("LoadCategories failed: %v", err)
	}

	// Retired row excluded.
	if len(cats) != 3 {
		t.Fatalf("Expected 3 live categories, got %d", len(cats))
	}
	if findCategory(cats, "CAT-9") != nil {
		t.Error("Expected retired CAT-9 to be excluded")
	}

	apparel := findCategory(cats, "CAT-1")
	if apparel == nil {
		t.Fatal("Expected CAT-1 in results")
	}
	if apparel.Name != "Apparel" || apparel.Summary != "Clothing and accessories" {
		t.Errorf("CAT-1 fields wrong: %+v", apparel)
	}
	if apparel.SKUCount != 120 {
		t.Errorf("Expected sku_count 120, got %d", apparel.SKUCount)
	}
	if len(apparel.Tags) != 2 || apparel.Tags[0] != "bestseller" {
		t.Errorf("Expected tags [bestseller eco], got %v", apparel.Tags)
	}
	if apparel.CreatedAt.IsZero() || apparel.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to survive the round trip")
	}

	// Malformed tags fall back to the simple parser.
	shoes := findCategory(cats, "CAT-2")
	if shoes == nil {
		t.Fatal("Expected CAT-2 in results")
	}
	if len(shoes.Tags) != 2 || shoes.Tags[0] != "clearance" || shoes.Tags[1] != "imported" {
		t.Errorf("Expected salvaged tags [clearance imported], got %v", shoes.Tags)
	}

	// Status normalized to lowercase.
	hats := findCategory(cats, "CAT-3")
	if hats == nil || hats.Status != model.StatusActive {
		t.Errorf("Expected CAT-3 with normalized active status, got %+v", hats)
	}
}

func TestSQLiteReader_LoadCategoriesFiltered(t *testing.T) {
	dbPath := createCatalogDB(t, t.TempDir())
	reader := openReader(t, dbPath)

	cats, err := reader.LoadCategoriesFiltered(func(c *model.Category) bool {
		return c.ParentID == "CAT-1"
	})
	if err != nil {
		t.Fatalf("LoadCategoriesFiltered failed: %v", err)
	}
	if len(cats) != 2 {
		t.Errorf("Expected 2 children of CAT-1, got %d", len(cats))
	}
}

func TestSQLiteReader_LegacySchemaFallback(t *testing.T) {
	dbPath := createLegacyDB(t, t.TempDir())
	reader := openReader(t, dbPath)

	cats, err := reader.LoadCategories()
	if err != nil {
		t.Fatalf("LoadCategories on legacy schema failed: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(cats))
	}

	shoes := findCategory(cats, "CAT-2")
	if shoes == nil {
		t.Fatal("Expected CAT-2 in results")
	}
	if shoes.SKUCount != 3 {
		t.Errorf("Expected SKU count 3 from the skus side table, got %d", shoes.SKUCount)
	}

	apparel := findCategory(cats, "CAT-1")
	if apparel == nil || apparel.SKUCount != 0 {
		t.Errorf("Expected CAT-1 with 0 SKUs, got %+v", apparel)
	}
}

func TestSQLiteReader_LoadRetired(t *testing.T) {
	dbPath := createCatalogDB(t, t.TempDir())
	reader := openReader(t, dbPath)

	retired, err := reader.LoadRetired()
	if err != nil {
		t.Fatalf("LoadRetired failed: %v", err)
	}
	if len(retired) != 1 {
		t.Fatalf("Expected 1 retired category, got %d", len(retired))
	}
	if retired[0].ID != "CAT-9" {
		t.Errorf("Expected CAT-9, got %s", retired[0].ID)
	}
	if retired[0].RetiredAt == nil {
		t.Error("Expected RetiredAt to be set")
	}
}

func TestSQLiteReader_LoadRetired_LegacySchema(t *testing.T) {
	dbPath := createLegacyDB(t, t.TempDir())
	reader := openReader(t, dbPath)

	retired, err := reader.LoadRetired()
	if err != nil {
		t.Fatalf("LoadRetired on legacy schema failed: %v", err)
	}
	if len(retired) != 0 {
		t.Errorf("Expected no retired categories on legacy schema, got %d", len(retired))
	}
}

func TestSQLiteReader_CountCategories(t *testing.T) {
	dbPath := createCatalogDB(t, t.TempDir())
	reader := openReader(t, dbPath)

	count, err := reader.CountCategories()
	if err != nil {
		t.Fatalf("CountCategories failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 live categories, got %d", count)
	}
}

func TestSQLiteReader_CountCategories_LegacySchema(t *testing.T) {
	dbPath := createLegacyDB(t, t.TempDir())
	reader := openReader(t, dbPath)

	count, err := reader.CountCategories()
	if err != nil {
		t.Fatalf("CountCategories on legacy schema failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 categories, got %d", count)
	}
}

func TestSQLiteReader_GetCategoryByID(t *testing.T) {
	dbPath := createCatalogDB(t, t.TempDir())
	reader := openReader(t, dbPath)

	cat, err := reader.GetCategoryByID("CAT-2")
	if err != nil {
		t.Fatalf("GetCategoryByID failed: %v", err)
	}
	if cat.Name != "Shoes" {
		t.Errorf("Expected Shoes, got %s", cat.Name)
	}

	if _, err := reader.GetCategoryByID("CAT-404"); err == nil {
		t.Error("Expected error for unknown category ID")
	}
}

func TestSQLiteReader_GetLastModified(t *testing.T) {
	dbPath := createCatalogDB(t, t.TempDir())
	reader := openReader(t, dbPath)

	mod, err := reader.GetLastModified()
	if err != nil {
		t.Fatalf("GetLastModified failed: %v", err)
	}
	if mod.IsZero() {
		t.Error("Expected a non-zero last-modified time")
	}
	if mod.Before(fixtureBase) {
		t.Errorf("Expected last-modified >= fixture base, got %s", mod)
	}
}

func TestSQLiteReader_MissingFile(t *testing.T) {
	reader := openReader(t, filepath.Join(t.TempDir(), "catalog.db"))

	// Open is lazy; the missing file surfaces on first query.
	if _, err := reader.CountCategories(); err == nil {
		t.Error("Expected error counting categories in a missing database")
	}
}
