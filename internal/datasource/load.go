package datasource

import (
	"fmt"
	"path/filepath"

	"github.com/vanderheijden86/taxo/pkg/debug"
	"github.com/vanderheijden86/taxo/pkg/loader"
	"github.com/vanderheijden86/taxo/pkg/model"
)

// LoadCategories performs smart multi-source detection and loading.
// It discovers all available sources (SQLite, JSONL), validates them, selects
// the freshest valid source, and loads categories from it. SQLite is preferred
// over JSONL when both exist at comparable freshness, since exports reflect
// the most recent upstream state.
//
// Falls back to plain JSONL loading via loader.LoadCategories if smart
// detection finds no valid sources.
func LoadCategories(basePath string) ([]model.Category, error) {
	catalogDir, err := loader.CatalogDir(basePath)
	if err != nil {
		return nil, err
	}

	categories, smartErr := loadSmart(catalogDir, basePath)
	if smartErr == nil {
		return categories, nil
	}

	return loader.LoadCategories(basePath)
}

// LoadCategoriesFromDir performs smart source detection within a known
// catalog directory. Useful when the caller already resolved the path.
func LoadCategoriesFromDir(catalogDir string) ([]model.Category, error) {
	categories, smartErr := loadSmart(catalogDir, "")
	if smartErr == nil {
		return categories, nil
	}

	jsonlPath, err := loader.FindJSONLPath(catalogDir)
	if err != nil {
		return nil, err
	}
	return loader.LoadCategoriesFromFile(jsonlPath)
}

// loadSmart discovers sources, validates, selects the best, and loads from it.
func loadSmart(catalogDir, basePath string) ([]model.Category, error) {
	sources, err := DiscoverSources(DiscoveryOptions{
		CatalogDir:             catalogDir,
		BasePath:               basePath,
		ValidateAfterDiscovery: true,
		IncludeInvalid:         false,
	})
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no valid sources discovered")
	}
	if len(sources) > 1 {
		warnSourceDrift(sources)
	}

	best, err := SelectBestSource(sources)
	if err != nil {
		return nil, err
	}

	return LoadFromSource(best)
}

// warnSourceDrift reports divergence between redundant catalog sources. A
// stale JSONL next to a fresh SQLite export is common and harmless; divergent
// statuses or parents mean one side missed an update. Gated on debug mode
// because the pairwise comparison re-loads every source.
func warnSourceDrift(sources []Source) {
	if !debug.Enabled() {
		return
	}
	diffs, err := CheckAllSourcesConsistent(sources, DefaultDiffOptions())
	if err != nil || len(diffs) == 0 {
		return
	}
	for _, d := range diffs {
		debug.Log("source drift: %s", d.Summary())
	}
}

// LoadFromSource loads categories from a specific Source, dispatching to the
// appropriate reader based on source type.
func LoadFromSource(source Source) ([]model.Category, error) {
	switch source.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		return reader.LoadCategories()

	case SourceTypeJSONL:
		return loader.LoadCategoriesFromFile(source.Path)

	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
}

// LoadRetired loads retired categories for a catalog directory. A SQLite
// export keeps them as rows with retired_at set; JSONL catalogs keep them in
// the archive file. Missing either way just means no retired categories.
func LoadRetired(catalogDir string) ([]model.Category, error) {
	dbPath := filepath.Join(catalogDir, SQLiteFileName)
	if src := probeSQLite(dbPath); src != nil {
		reader, err := NewSQLiteReader(*src)
		if err == nil {
			defer reader.Close()
			if retired, err := reader.LoadRetired(); err == nil {
				return retired, nil
			}
		}
	}

	return loader.LoadArchiveFromFile(filepath.Join(catalogDir, loader.ArchiveFileName))
}

// WatchTarget returns the data file a live-reload watcher should observe
// for catalogDir: the best discovered source, falling back to the existing
// JSONL file. Empty when the directory has no data file at all.
func WatchTarget(catalogDir string) string {
	sources, err := DiscoverSources(DiscoveryOptions{CatalogDir: catalogDir})
	if err == nil && len(sources) > 0 {
		if best, err := SelectBestSource(sources); err == nil {
			return best.Path
		}
	}
	if jsonlPath, err := loader.FindJSONLPath(catalogDir); err == nil {
		return jsonlPath
	}
	return ""
}

// probeSQLite returns a Source for dbPath if the file exists.
func probeSQLite(dbPath string) *Source {
	sources, err := discoverSQLiteSources(filepath.Dir(dbPath), DiscoveryOptions{Logger: func(string) {}})
	if err != nil || len(sources) == 0 {
		return nil
	}
	return &sources[0]
}
