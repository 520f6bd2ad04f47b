package workspace_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/taxo/pkg/model"
	"github.com/vanderheijden86/taxo/pkg/workspace"
)

func TestDiscoverCatalogs(t *testing.T) {
	root := t.TempDir()

	// Two project directories with .taxo catalogs.
	for _, name := range []string{"zoo", "apparel"} {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(path, 0o755); err != nil {
			t.Fatal(err)
		}
		createTestCatalog(t, path, []model.Category{{ID: "CAT-1", Name: "Root"}})
	}

	// A bare catalog directory holding the JSONL file directly.
	bare := filepath.Join(root, "bare")
	if err := os.MkdirAll(bare, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bare, "catalog.jsonl"),
		[]byte(`{"id":"CAT-1","name":"Root","status":"active"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Excluded and empty directories are never catalogs.
	excluded := filepath.Join(root, "node_modules")
	if err := os.MkdirAll(excluded, 0o755); err != nil {
		t.Fatal(err)
	}
	createTestCatalog(t, excluded, []model.Category{{ID: "CAT-1", Name: "Root"}})
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}

	found := workspace.DiscoverCatalogs([]string{root})
	if len(found) != 3 {
		t.Fatalf("expected 3 catalogs, got %d: %+v", len(found), found)
	}

	// Sorted by name.
	names := []string{found[0].Name, found[1].Name, found[2].Name}
	want := []string{"apparel", "bare", "zoo"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestDiscoverCatalogs_ScanPathIsCatalog(t *testing.T) {
	root := t.TempDir()
	createTestCatalog(t, root, []model.Category{{ID: "CAT-1", Name: "Root"}})

	found := workspace.DiscoverCatalogs([]string{root})
	if len(found) != 1 {
		t.Fatalf("expected the scan path itself to be discovered, got %d", len(found))
	}
	if found[0].Path != filepath.Clean(root) {
		t.Errorf("Path = %s, want %s", found[0].Path, root)
	}
}

func TestDiscoverCatalogs_MissingScanPath(t *testing.T) {
	found := workspace.DiscoverCatalogs([]string{filepath.Join(t.TempDir(), "nope")})
	if len(found) != 0 {
		t.Errorf("expected no catalogs for missing scan path, got %d", len(found))
	}
}

func TestDiscoverCatalogs_Dedup(t *testing.T) {
	root := t.TempDir()
	createTestCatalog(t, root, []model.Category{{ID: "CAT-1", Name: "Root"}})

	found := workspace.DiscoverCatalogs([]string{root, root})
	if len(found) != 1 {
		t.Errorf("expected duplicate scan paths to dedup, got %d", len(found))
	}
}

func TestHasCatalogData(t *testing.T) {
	root := t.TempDir()
	if workspace.HasCatalogData(root) {
		t.Error("empty directory should not count as catalog data")
	}

	createTestCatalog(t, root, []model.Category{{ID: "CAT-1", Name: "Root"}})
	if !workspace.HasCatalogData(root) {
		t.Error("directory with .taxo/catalog.jsonl should count")
	}
}

func TestHasCatalogData_SQLite(t *testing.T) {
	root := t.TempDir()
	createWorkspaceDB(t, root)

	if !workspace.HasCatalogData(root) {
		t.Error("directory with catalog.db should count")
	}
}

func TestResolveCatalogDir(t *testing.T) {
	root := t.TempDir()

	// Bare directory resolves to itself.
	if got := workspace.ResolveCatalogDir(root); got != root {
		t.Errorf("ResolveCatalogDir(%s) = %s", root, got)
	}

	// A .taxo path resolves to itself.
	taxo := filepath.Join(root, ".taxo")
	if got := workspace.ResolveCatalogDir(taxo); got != taxo {
		t.Errorf("ResolveCatalogDir(%s) = %s", taxo, got)
	}

	// Once .taxo exists, the project path resolves into it.
	if err := os.MkdirAll(taxo, 0o755); err != nil {
		t.Fatal(err)
	}
	if got := workspace.ResolveCatalogDir(root); got != taxo {
		t.Errorf("ResolveCatalogDir(%s) = %s, want %s", root, got, taxo)
	}
}
