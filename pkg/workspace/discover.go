package workspace

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vanderheijden86/taxo/internal/datasource"
	"github.com/vanderheijden86/taxo/pkg/config"
	"github.com/vanderheijden86/taxo/pkg/loader"
)

// DefaultExcludeNames are directory names never probed during discovery.
var DefaultExcludeNames = []string{".git", "node_modules", "vendor", ".cache"}

// DiscoverCatalogs probes each scan path and its immediate children for
// catalog data and returns config entries for them, sorted by name. Missing
// scan paths are skipped.
func DiscoverCatalogs(scanPaths []string) []config.Catalog {
	seen := make(map[string]bool)
	var found []config.Catalog

	for _, root := range scanPaths {
		root = filepath.Clean(root)
		addCatalog(&found, seen, root)

		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() || excludedName(e.Name()) {
				continue
			}
			addCatalog(&found, seen, filepath.Join(root, e.Name()))
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Name < found[j].Name })
	return found
}

func addCatalog(found *[]config.Catalog, seen map[string]bool, path string) {
	if seen[path] || !HasCatalogData(path) {
		return
	}
	seen[path] = true
	*found = append(*found, config.Catalog{Name: filepath.Base(path), Path: path})
}

func excludedName(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, ex := range DefaultExcludeNames {
		if name == ex {
			return true
		}
	}
	return false
}

// HasCatalogData reports whether a path holds loadable catalog data, either
// directly or under a .taxo subdirectory.
func HasCatalogData(path string) bool {
	dir := ResolveCatalogDir(path)

	if info, err := os.Stat(filepath.Join(dir, datasource.SQLiteFileName)); err == nil && !info.IsDir() {
		return true
	}
	for _, name := range loader.PreferredJSONLNames {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// ResolveCatalogDir maps a configured catalog path to its data directory:
// the path itself when it already is a .taxo directory or holds data files
// directly, otherwise its .taxo subdirectory when one exists.
func ResolveCatalogDir(path string) string {
	if filepath.Base(path) == ".taxo" {
		return path
	}
	sub := filepath.Join(path, ".taxo")
	if info, err := os.Stat(sub); err == nil && info.IsDir() {
		return sub
	}
	return path
}
