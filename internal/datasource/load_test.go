package datasource_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/vanderheijden86/taxo/internal/datasource"
)

// ============================================================
// Smart loading
// ============================================================

func TestLoadCategories_JSONLOnly(t *testing.T) {
	dir := t.TempDir()
	writeJSONL(t, dir, "catalog.jsonl",
		catLine("CAT-1", "", "Apparel", "active"),
		catLine("CAT-2", "CAT-1", "Shoes", "seasonal"))
	t.Setenv("TAXO_DIR", dir)

	cats, err := datasource.LoadCategories("")
	if err != nil {
		t.Fatalf("LoadCategories failed: %v", err)
	}
	if len(cats) != 2 {
		t.Errorf("Expected 2 categories, got %d", len(cats))
	}
}

func TestLoadCategories_PrefersFreshSQLite(t *testing.T) {
	dir := t.TempDir()
	jsonlPath := writeJSONL(t, dir, "catalog.jsonl",
		catLine("CAT-1", "", "Apparel", "active"))
	dbPath := createCatalogDB(t, dir)

	base := time.Now().Add(-time.Hour)
	setModTime(t, jsonlPath, base)
	setModTime(t, dbPath, base.Add(10*time.Minute))

	t.Setenv("TAXO_DIR", dir)

	cats, err := datasource.LoadCategories("")
	if err != nil {
		t.Fatalf("LoadCategories failed: %v", err)
	}
	// The fresher SQLite export holds 3 live categories; the JSONL file one.
	if len(cats) != 3 {
		t.Errorf("Expected the SQLite export to win with 3 categories, got %d", len(cats))
	}
}

func TestLoadCategories_PrefersFreshJSONL(t *testing.T) {
	dir := t.TempDir()
	jsonlPath := writeJSONL(t, dir, "catalog.jsonl",
		catLine("CAT-1", "", "Apparel", "active"))
	dbPath := createCatalogDB(t, dir)

	base := time.Now().Add(-time.Hour)
	setModTime(t, dbPath, base)
	setModTime(t, jsonlPath, base.Add(10*time.Minute))

	t.Setenv("TAXO_DIR", dir)

	cats, err := datasource.LoadCategories("")
	if err != nil {
		t.Fatalf("LoadCategories failed: %v", err)
	}
	if len(cats) != 1 {
		t.Errorf("Expected the fresher JSONL file to win with 1 category, got %d", len(cats))
	}
}

func TestLoadCategories_FallsBackToPlainLoader(t *testing.T) {
	dir := t.TempDir()
	// An empty catalog never validates, so smart loading gives up and the
	// plain loader serves the empty forest.
	writeJSONL(t, dir, "catalog.jsonl")
	t.Setenv("TAXO_DIR", dir)

	cats, err := datasource.LoadCategories("")
	if err != nil {
		t.Fatalf("Expected empty catalog to load cleanly, got: %v", err)
	}
	if len(cats) != 0 {
		t.Errorf("Expected 0 categories, got %d", len(cats))
	}
}

func TestLoadCategoriesFromDir(t *testing.T) {
	dir := t.TempDir()
	writeJSONL(t, dir, "catalog.jsonl",
		catLine("CAT-1", "", "Apparel", "active"))

	cats, err := datasource.LoadCategoriesFromDir(dir)
	if err != nil {
		t.Fatalf("LoadCategoriesFromDir failed: %v", err)
	}
	if len(cats) != 1 {
		t.Errorf("Expected 1 category, got %d", len(cats))
	}
}

func TestLoadCategoriesFromDir_MissingDirectory(t *testing.T) {
	if _, err := datasource.LoadCategoriesFromDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Expected error for missing catalog directory")
	}
}

func TestLoadFromSource_UnknownType(t *testing.T) {
	_, err := datasource.LoadFromSource(datasource.Source{Type: "carrier-pigeon"})
	if err == nil {
		t.Error("Expected error for unknown source type")
	}
}

func TestLoadFromSource_JSONL(t *testing.T) {
	dir := t.TempDir()
	path := writeJSONL(t, dir, "catalog.jsonl",
		catLine("CAT-1", "", "Apparel", "active"))

	cats, err := datasource.LoadFromSource(datasource.Source{
		Type: datasource.SourceTypeJSONL,
		Path: path,
	})
	if err != nil {
		t.Fatalf("LoadFromSource failed: %v", err)
	}
	if len(cats) != 1 {
		t.Errorf("Expected 1 category, got %d", len(cats))
	}
}

// ============================================================
// Retired categories
// ============================================================

func TestLoadRetired_SQLite(t *testing.T) {
	dir := t.TempDir()
	createCatalogDB(t, dir)

	retired, err := datasource.LoadRetired(dir)
	if err != nil {
		t.Fatalf("LoadRetired failed: %v", err)
	}
	if len(retired) != 1 || retired[0].ID != "CAT-9" {
		t.Errorf("Expected retired CAT-9 from the export, got %+v", retired)
	}
}

func TestLoadRetired_ArchiveFallback(t *testing.T) {
	dir := t.TempDir()
	writeJSONL(t, dir, "archive.jsonl",
		`{"id":"CAT-9","name":"Fax Machines","status":"discontinued","retired_at":"2025-03-13T09:00:00Z"}`)

	retired, err := datasource.LoadRetired(dir)
	if err != nil {
		t.Fatalf("LoadRetired failed: %v", err)
	}
	if len(retired) != 1 || retired[0].ID != "CAT-9" {
		t.Errorf("Expected retired CAT-9 from the archive, got %+v", retired)
	}
}

func TestLoadRetired_NothingThere(t *testing.T) {
	retired, err := datasource.LoadRetired(t.TempDir())
	if err != nil {
		t.Fatalf("Expected missing archive to be fine, got: %v", err)
	}
	if len(retired) != 0 {
		t.Errorf("Expected no retired categories, got %d", len(retired))
	}
}
