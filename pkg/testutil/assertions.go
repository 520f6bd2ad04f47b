package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/taxo/pkg/model"
)

// AssertCategoryCount verifies the expected number of categories.
func AssertCategoryCount(t *testing.T, cats []model.Category, expected int) {
	t.Helper()
	if len(cats) != expected {
		t.Errorf("expected %d categories, got %d", expected, len(cats))
	}
}

// AssertNoDuplicateIDs verifies all category IDs are unique.
func AssertNoDuplicateIDs(t *testing.T, cats []model.Category) {
	t.Helper()
	seen := make(map[string]bool)
	for _, cat := range cats {
		if seen[cat.ID] {
			t.Errorf("duplicate category ID: %s", cat.ID)
		}
		seen[cat.ID] = true
	}
}

// AssertAllValid verifies all categories pass validation.
func AssertAllValid(t *testing.T, cats []model.Category) {
	t.Helper()
	for i, cat := range cats {
		if err := cat.Validate(); err != nil {
			t.Errorf("category %d (%s) invalid: %v", i, cat.ID, err)
		}
	}
}

// AssertParent verifies that a category declares the given parent.
func AssertParent(t *testing.T, cats []model.Category, childID, parentID string) {
	t.Helper()
	for _, cat := range cats {
		if cat.ID == childID {
			if cat.ParentID != parentID {
				t.Errorf("expected %s to have parent %s, got %q", childID, parentID, cat.ParentID)
			}
			return
		}
	}
	t.Errorf("category %s not found", childID)
}

// parentCycle reports whether following declared parent references from any
// category revisits a category. Ghost parents terminate a walk.
func parentCycle(cats []model.Category) (string, bool) {
	parent := make(map[string]string, len(cats))
	for _, cat := range cats {
		parent[cat.ID] = cat.ParentID
	}

	for _, cat := range cats {
		inPath := make(map[string]bool)
		id := cat.ID
		for id != "" {
			if inPath[id] {
				return id, true
			}
			inPath[id] = true
			next, ok := parent[id]
			if !ok {
				break
			}
			id = next
		}
	}
	return "", false
}

// AssertNoCycles verifies the declared parent references form a forest.
func AssertNoCycles(t *testing.T, cats []model.Category) {
	t.Helper()
	if id, found := parentCycle(cats); found {
		t.Errorf("cycle detected involving category %s", id)
	}
}

// AssertHasCycle verifies the declared parent references contain a cycle.
func AssertHasCycle(t *testing.T, cats []model.Category) {
	t.Helper()
	if _, found := parentCycle(cats); !found {
		t.Error("expected cycle but none found")
	}
}

// AssertStatusCounts verifies the count of categories in each status.
func AssertStatusCounts(t *testing.T, cats []model.Category, active, seasonal, draft, discontinued int) {
	t.Helper()
	counts := make(map[model.Status]int)
	for _, cat := range cats {
		counts[cat.Status]++
	}

	if counts[model.StatusActive] != active {
		t.Errorf("expected %d active categories, got %d", active, counts[model.StatusActive])
	}
	if counts[model.StatusSeasonal] != seasonal {
		t.Errorf("expected %d seasonal categories, got %d", seasonal, counts[model.StatusSeasonal])
	}
	if counts[model.StatusDraft] != draft {
		t.Errorf("expected %d draft categories, got %d", draft, counts[model.StatusDraft])
	}
	if counts[model.StatusDiscontinued] != discontinued {
		t.Errorf("expected %d discontinued categories, got %d", discontinued, counts[model.StatusDiscontinued])
	}
}

// AssertJSONEqual compares two values after JSON round-tripping. Useful for
// comparing structs that may have different Go representations but
// equivalent JSON forms.
func AssertJSONEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}

	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}

	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// Golden file helpers

// GoldenFile handles golden file comparisons.
type GoldenFile struct {
	t      *testing.T
	dir    string
	name   string
	update bool
}

// NewGoldenFile creates a golden file helper.
// If the GENERATE_GOLDEN env var is set, golden files are updated.
func NewGoldenFile(t *testing.T, dir, name string) *GoldenFile {
	t.Helper()
	return &GoldenFile{
		t:      t,
		dir:    dir,
		name:   name,
		update: os.Getenv("GENERATE_GOLDEN") != "",
	}
}

// Path returns the full path to the golden file.
func (g *GoldenFile) Path() string {
	return filepath.Join(g.dir, g.name)
}

// Assert compares actual content against the golden file.
// If GENERATE_GOLDEN is set, updates the golden file instead.
func (g *GoldenFile) Assert(actual string) {
	g.t.Helper()

	path := g.Path()

	if g.update {
		if err := os.MkdirAll(g.dir, 0755); err != nil {
			g.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0644); err != nil {
			g.t.Fatalf("failed to write golden file: %v", err)
		}
		g.t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			g.t.Fatalf("golden file does not exist: %s\nRun with GENERATE_GOLDEN=1 to create it", path)
		}
		g.t.Fatalf("failed to read golden file: %v", err)
	}

	if string(expected) != actual {
		// Report the first differing line rather than dumping both files.
		expectedLines := strings.Split(string(expected), "\n")
		actualLines := strings.Split(actual, "\n")

		for i := 0; i < len(expectedLines) || i < len(actualLines); i++ {
			var expLine, actLine string
			if i < len(expectedLines) {
				expLine = expectedLines[i]
			}
			if i < len(actualLines) {
				actLine = actualLines[i]
			}
			if expLine != actLine {
				g.t.Errorf("golden file mismatch at line %d:\nexpected: %s\nactual:   %s",
					i+1, expLine, actLine)
				return
			}
		}
		g.t.Errorf("golden file mismatch (length differs)")
	}
}

// AssertJSON compares the actual value as indented JSON against the golden file.
func (g *GoldenFile) AssertJSON(actual interface{}) {
	g.t.Helper()

	data, err := json.MarshalIndent(actual, "", "  ")
	if err != nil {
		g.t.Fatalf("failed to marshal actual value: %v", err)
	}

	g.Assert(string(data))
}

// TempDir helpers

// TempCatalogDir creates a temporary directory with a .taxo subdirectory and
// returns the base path. The directory is cleaned up after the test.
func TempCatalogDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	taxoDir := filepath.Join(dir, ".taxo")
	if err := os.MkdirAll(taxoDir, 0755); err != nil {
		t.Fatalf("failed to create .taxo dir: %v", err)
	}
	return dir
}

// WriteCatalogFile writes categories to .taxo/catalog.jsonl under dir and
// returns the file path.
func WriteCatalogFile(t *testing.T, dir string, cats []model.Category) string {
	t.Helper()

	path := filepath.Join(dir, ".taxo", "catalog.jsonl")
	content := ToJSONL(cats)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write catalog file: %v", err)
	}
	return path
}

// WriteCategoriesFile writes categories to a custom path.
func WriteCategoriesFile(t *testing.T, path string, cats []model.Category) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}

	content := ToJSONL(cats)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write categories file: %v", err)
	}
}

// Lookup helpers

// BuildCategoryMap creates a map from ID to Category for quick lookups.
func BuildCategoryMap(cats []model.Category) map[string]*model.Category {
	m := make(map[string]*model.Category, len(cats))
	for i := range cats {
		m[cats[i].ID] = &cats[i]
	}
	return m
}

// FindCategory returns the category with the given ID, or nil if not found.
func FindCategory(cats []model.Category, id string) *model.Category {
	for i := range cats {
		if cats[i].ID == id {
			return &cats[i]
		}
	}
	return nil
}

// CountByStatus returns a map of status -> count.
func CountByStatus(cats []model.Category) map[model.Status]int {
	counts := make(map[model.Status]int)
	for _, cat := range cats {
		counts[cat.Status]++
	}
	return counts
}

// GetIDs returns a slice of all category IDs.
func GetIDs(cats []model.Category) []string {
	ids := make([]string, len(cats))
	for i, cat := range cats {
		ids[i] = cat.ID
	}
	return ids
}

// CategoryID generates a standard test category ID with the given index.
// Format: "test-{index}" for consistency across tests.
func CategoryID(index int) string {
	return fmt.Sprintf("test-%d", index)
}
