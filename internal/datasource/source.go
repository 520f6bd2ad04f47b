// Package datasource discovers and selects catalog data sources. A catalog
// directory may hold both a SQLite export (catalog.db) and JSONL files;
// discovery finds the candidates, validates them concurrently, and the
// freshest valid source wins, with priority breaking ties.
package datasource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vanderheijden86/taxo/pkg/loader"
)

// SourceType identifies the kind of data source
type SourceType string

const (
	// SourceTypeSQLite is a SQLite catalog export (catalog.db)
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeJSONL is a catalog JSONL file
	SourceTypeJSONL SourceType = "jsonl"
)

// Priority values for source types (higher = more authoritative)
const (
	PrioritySQLite = 100
	PriorityJSONL  = 50
)

// SQLiteFileName is the well-known name of the SQLite catalog export.
const SQLiteFileName = "catalog.db"

// Source represents a potential source of catalog data
type Source struct {
	// Type identifies the source type
	Type SourceType `json:"type"`
	// Path is the absolute path to the source file
	Path string `json:"path"`
	// Priority determines preference when timestamps are equal (higher = preferred)
	Priority int `json:"priority"`
	// ModTime is the last modification time of the source
	ModTime time.Time `json:"mod_time"`
	// Valid indicates whether the source passed validation
	Valid bool `json:"valid"`
	// ValidationError describes why validation failed (if Valid is false)
	ValidationError string `json:"validation_error,omitempty"`
	// CategoryCount is the number of categories in the source (set during validation)
	CategoryCount int `json:"category_count"`
	// Size is the file size in bytes
	Size int64 `json:"size"`
}

// String returns a human-readable description of the source
func (s Source) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (%s, priority=%d, mod=%s, categories=%d, %s)",
		s.Path, s.Type, s.Priority, s.ModTime.Format(time.RFC3339), s.CategoryCount, status)
}

// DiscoveryOptions configures source discovery behavior
type DiscoveryOptions struct {
	// CatalogDir is the catalog directory path (optional, resolved from
	// BasePath and TAXO_DIR if empty)
	CatalogDir string
	// BasePath is the project root path (optional, uses cwd if empty)
	BasePath string
	// DisableSQLite skips SQLite candidates entirely
	DisableSQLite bool
	// ValidateAfterDiscovery runs validation on each discovered source
	ValidateAfterDiscovery bool
	// IncludeInvalid includes sources that failed validation in results
	IncludeInvalid bool
	// Verbose enables detailed logging during discovery
	Verbose bool
	// Logger receives log messages when Verbose is true
	Logger func(msg string)
}

// DiscoverSources finds all potential data sources in the catalog directory
func DiscoverSources(opts DiscoveryOptions) ([]Source, error) {
	if opts.Logger == nil {
		opts.Logger = func(string) {}
	}

	catalogDir := opts.CatalogDir
	if catalogDir == "" {
		var err error
		catalogDir, err = loader.CatalogDir(opts.BasePath)
		if err != nil {
			return nil, err
		}
	}

	if opts.Verbose {
		opts.Logger(fmt.Sprintf("Discovering sources in: %s", catalogDir))
	}

	var sources []Source

	if !opts.DisableSQLite {
		sqliteSources, err := discoverSQLiteSources(catalogDir, opts)
		if err != nil && opts.Verbose {
			opts.Logger(fmt.Sprintf("SQLite discovery warning: %v", err))
		}
		sources = append(sources, sqliteSources...)
	}

	jsonlSources, err := discoverJSONLSources(catalogDir, opts)
	if err != nil && opts.Verbose {
		opts.Logger(fmt.Sprintf("JSONL discovery warning: %v", err))
	}
	sources = append(sources, jsonlSources...)

	if opts.ValidateAfterDiscovery {
		if err := ValidateAll(context.Background(), sources); err != nil && opts.Verbose {
			opts.Logger(fmt.Sprintf("Validation interrupted: %v", err))
		}
		if opts.Verbose {
			for i := range sources {
				if !sources[i].Valid {
					opts.Logger(fmt.Sprintf("Validation failed for %s: %s", sources[i].Path, sources[i].ValidationError))
				}
			}
		}
	}

	if opts.ValidateAfterDiscovery && !opts.IncludeInvalid {
		var validSources []Source
		for _, s := range sources {
			if s.Valid {
				validSources = append(validSources, s)
			}
		}
		sources = validSources
	}

	// Newest first; priority breaks ties.
	sort.Slice(sources, func(i, j int) bool {
		if sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].Priority > sources[j].Priority
		}
		return sources[i].ModTime.After(sources[j].ModTime)
	})

	if opts.Verbose {
		opts.Logger(fmt.Sprintf("Discovered %d sources", len(sources)))
	}

	return sources, nil
}

// SelectBestSource returns the most authoritative source from a discovery
// result. The slice is already sorted newest-first with priority tie-breaks,
// so the best source is the first valid one.
func SelectBestSource(sources []Source) (Source, error) {
	for _, s := range sources {
		if s.Valid {
			return s, nil
		}
	}
	if len(sources) > 0 {
		return Source{}, fmt.Errorf("no valid source among %d candidates", len(sources))
	}
	return Source{}, fmt.Errorf("no sources discovered")
}

// discoverSQLiteSources finds SQLite exports in the catalog directory
func discoverSQLiteSources(catalogDir string, opts DiscoveryOptions) ([]Source, error) {
	var sources []Source

	dbPath := filepath.Join(catalogDir, SQLiteFileName)
	info, err := os.Stat(dbPath)
	if err == nil {
		sources = append(sources, Source{
			Type:     SourceTypeSQLite,
			Path:     dbPath,
			Priority: PrioritySQLite,
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		})
		if opts.Verbose {
			opts.Logger(fmt.Sprintf("Found SQLite: %s (mod=%s)", dbPath, info.ModTime().Format(time.RFC3339)))
		}
	}

	return sources, nil
}

// discoverJSONLSources finds catalog JSONL files in the catalog directory
func discoverJSONLSources(catalogDir string, opts DiscoveryOptions) ([]Source, error) {
	var sources []Source

	entries, err := os.ReadDir(catalogDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog directory: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()

		if !strings.HasSuffix(name, ".jsonl") {
			continue
		}

		// Same skip rules as the loader: backups, merge artifacts, and the
		// retired-category archive are never the live catalog.
		if strings.Contains(name, ".backup") ||
			strings.Contains(name, ".orig") ||
			strings.Contains(name, ".merge") ||
			name == loader.ArchiveFileName ||
			strings.HasPrefix(name, "catalog.left") ||
			strings.HasPrefix(name, "catalog.right") {
			continue
		}

		path := filepath.Join(catalogDir, name)
		info, err := e.Info()
		if err != nil {
			continue
		}

		sources = append(sources, Source{
			Type:     SourceTypeJSONL,
			Path:     path,
			Priority: PriorityJSONL,
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		})

		if opts.Verbose {
			opts.Logger(fmt.Sprintf("Found JSONL: %s (mod=%s)", path, info.ModTime().Format(time.RFC3339)))
		}
	}

	return sources, nil
}
