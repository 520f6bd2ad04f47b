package workspace_test

import (
	"bytes"
	"context"
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/taxo/internal/datasource"
	"github.com/vanderheijden86/taxo/pkg/config"
	"github.com/vanderheijden86/taxo/pkg/model"
	"github.com/vanderheijden86/taxo/pkg/workspace"
)

// createWorkspaceDB writes a minimal SQLite export with two live categories
func createWorkspaceDB(t *testing.T, catalogDir string) {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(catalogDir, "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE categories (
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
	)`); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	if _, err := db.Exec(`INSERT INTO categories
		(id, parent_id, name, summary, status, sku_count, tags, created_at, updated_at, retired_at)
		VALUES
		('CAT-1', '', 'Apparel', '', 'active', 10, NULL, ?, ?, NULL),
		('CAT-2', 'CAT-1', 'Shoes', '', 'active', 5, NULL, ?, ?, NULL)`,
		now, now, now, now); err != nil {
		t.Fatal(err)
	}
}

// createTestCatalog creates a <path>/.taxo/catalog.jsonl with the given
// categories
func createTestCatalog(t *testing.T, path string, cats []model.Category) {
	t.Helper()

	catalogDir := filepath.Join(path, ".taxo")
	if err := os.MkdirAll(catalogDir, 0o755); err != nil {
		t.Fatal(err)
	}

	file, err := os.Create(filepath.Join(catalogDir, "catalog.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	for _, cat := range cats {
		if cat.Status == "" {
			cat.Status = model.StatusActive
		}
		if err := encoder.Encode(cat); err != nil {
			t.Fatal(err)
		}
	}
}

func TestAggregateLoaderLoadAll(t *testing.T) {
	tmpDir := t.TempDir()

	apparel := filepath.Join(tmpDir, "shops", "apparel")
	if err := os.MkdirAll(apparel, 0o755); err != nil {
		t.Fatal(err)
	}
	createTestCatalog(t, apparel, []model.Category{
		{ID: "CAT-1", Name: "Apparel"},
		{ID: "CAT-2", ParentID: "CAT-1", Name: "Shoes"},
		{ID: "CAT-3", Name: "Accessories"},
	})

	garden := filepath.Join(tmpDir, "shops", "garden")
	if err := os.MkdirAll(garden, 0o755); err != nil {
		t.Fatal(err)
	}
	createTestCatalog(t, garden, []model.Category{
		{ID: "GRD-1", Name: "Garden"},
	})

	loader := workspace.NewAggregateLoader([]config.Catalog{
		{Name: "apparel", Path: apparel},
		{Name: "garden", Path: garden},
	})

	refs, err := loader.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("len(refs) = %d, want 2", len(refs))
	}

	byName := map[string]workspace.CatalogRef{}
	for _, ref := range refs {
		byName[ref.Name] = ref
	}

	ap := byName["apparel"]
	if ap.Err != nil {
		t.Fatalf("apparel catalog failed: %v", ap.Err)
	}
	if ap.CategoryCount != 3 {
		t.Errorf("apparel CategoryCount = %d, want 3", ap.CategoryCount)
	}
	if ap.RootCount != 2 {
		t.Errorf("apparel RootCount = %d, want 2", ap.RootCount)
	}
	if ap.Source != datasource.SourceTypeJSONL {
		t.Errorf("apparel Source = %s, want jsonl", ap.Source)
	}
	if ap.CatalogDir != filepath.Join(apparel, ".taxo") {
		t.Errorf("apparel CatalogDir = %s", ap.CatalogDir)
	}
	if ap.LastModified.IsZero() {
		t.Error("apparel LastModified should be set")
	}

	if byName["garden"].CategoryCount != 1 {
		t.Errorf("garden CategoryCount = %d, want 1", byName["garden"].CategoryCount)
	}
}

func TestAggregateLoaderPartialFailure(t *testing.T) {
	tmpDir := t.TempDir()

	apparel := filepath.Join(tmpDir, "apparel")
	if err := os.MkdirAll(apparel, 0o755); err != nil {
		t.Fatal(err)
	}
	createTestCatalog(t, apparel, []model.Category{
		{ID: "CAT-1", Name: "Apparel"},
	})

	var buf bytes.Buffer
	loader := workspace.NewAggregateLoader([]config.Catalog{
		{Name: "apparel", Path: apparel},
		{Name: "ghost", Path: filepath.Join(tmpDir, "missing")},
	})
	loader.SetLogger(log.New(&buf, "", 0))

	refs, err := loader.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() error = %v (partial failures must not be fatal)", err)
	}

	var okCount, failCount int
	for _, ref := range refs {
		if ref.Err != nil {
			failCount++
		} else {
			okCount++
		}
	}
	if okCount != 1 || failCount != 1 {
		t.Errorf("expected 1 loaded and 1 failed, got %d/%d", okCount, failCount)
	}
	if buf.Len() == 0 {
		t.Error("expected the failure to be logged")
	}
}

func TestAggregateLoaderNoCatalogs(t *testing.T) {
	loader := workspace.NewAggregateLoader(nil)
	if _, err := loader.LoadAll(context.Background()); err == nil {
		t.Error("LoadAll() should error with no registered catalogs")
	}
}

func TestAggregateLoaderCanceledContext(t *testing.T) {
	tmpDir := t.TempDir()
	createTestCatalog(t, tmpDir, []model.Category{{ID: "CAT-1", Name: "Apparel"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := workspace.NewAggregateLoader([]config.Catalog{
		{Name: "apparel", Path: tmpDir},
	})
	refs, err := loader.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(refs) != 1 || refs[0].Err == nil {
		t.Errorf("expected the canceled load to be recorded on the ref, got %+v", refs)
	}
}

func TestAggregateLoaderSQLiteCatalog(t *testing.T) {
	tmpDir := t.TempDir()
	catalogDir := filepath.Join(tmpDir, ".taxo")
	if err := os.MkdirAll(catalogDir, 0o755); err != nil {
		t.Fatal(err)
	}
	createWorkspaceDB(t, catalogDir)

	loader := workspace.NewAggregateLoader([]config.Catalog{
		{Name: "exported", Path: tmpDir},
	})
	refs, err := loader.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if refs[0].Err != nil {
		t.Fatalf("exported catalog failed: %v", refs[0].Err)
	}
	if refs[0].Source != datasource.SourceTypeSQLite {
		t.Errorf("Source = %s, want sqlite", refs[0].Source)
	}
	if refs[0].CategoryCount != 2 {
		t.Errorf("CategoryCount = %d, want 2", refs[0].CategoryCount)
	}
}

func TestSummarize(t *testing.T) {
	refs := []workspace.CatalogRef{
		{Name: "apparel", CategoryCount: 30},
		{Name: "garden", CategoryCount: 12},
		{Name: "ghost", Err: os.ErrNotExist},
	}

	sum := workspace.Summarize(refs)
	if sum.TotalCatalogs != 3 || sum.Loaded != 2 || sum.Failed != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if sum.TotalCategories != 42 {
		t.Errorf("TotalCategories = %d, want 42", sum.TotalCategories)
	}
	if len(sum.FailedNames) != 1 || sum.FailedNames[0] != "ghost" {
		t.Errorf("FailedNames = %v", sum.FailedNames)
	}
}
