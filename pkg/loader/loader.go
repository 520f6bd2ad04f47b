// Package loader reads category records out of catalog JSONL files. One
// record per line; malformed lines are reported through a warning handler
// and skipped, never fatal.
package loader

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/taxo/pkg/model"
)

// TaxoDirEnvVar names the environment variable that overrides the default
// catalog directory.
const TaxoDirEnvVar = "TAXO_DIR"

// ErrNoCatalog is returned when a directory holds no usable catalog file.
var ErrNoCatalog = errors.New("no catalog file found")

// PreferredJSONLNames is the probe order for catalog data files.
// catalog.base.jsonl may be present mid merge-resolution.
var PreferredJSONLNames = []string{"catalog.jsonl", "taxonomy.jsonl", "catalog.base.jsonl"}

// CatalogDir returns the catalog directory, respecting TAXO_DIR.
// Without the override it is .taxo under basePath (or the cwd if empty).
func CatalogDir(basePath string) (string, error) {
	if envDir := os.Getenv(TaxoDirEnvVar); envDir != "" {
		return envDir, nil
	}

	if basePath == "" {
		var err error
		basePath, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current working directory: %w", err)
		}
	}

	return filepath.Join(basePath, ".taxo"), nil
}

// FindJSONLPath locates the catalog JSONL file in the given directory,
// skipping backups and merge artifacts.
func FindJSONLPath(dir string) (string, error) {
	return FindJSONLPathWithWarnings(dir, nil)
}

// FindJSONLPathWithWarnings is like FindJSONLPath but reports detected merge
// artifacts through the provided callback.
func FindJSONLPathWithWarnings(dir string, warnFunc func(msg string)) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read catalog directory: %w", err)
	}

	var candidates []string
	var mergeArtifacts []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()

		if !strings.HasSuffix(name, ".jsonl") {
			continue
		}

		// Backups and the retired-category archive are never the live catalog.
		if strings.Contains(name, ".backup") ||
			strings.Contains(name, ".orig") ||
			strings.Contains(name, ".merge") ||
			name == ArchiveFileName {
			continue
		}

		// OURS/THEIRS sides left behind by an unresolved merge.
		if strings.HasPrefix(name, "catalog.left") || strings.HasPrefix(name, "catalog.right") {
			mergeArtifacts = append(mergeArtifacts, name)
			continue
		}

		candidates = append(candidates, name)
	}

	if len(mergeArtifacts) > 0 && warnFunc != nil {
		warnFunc(fmt.Sprintf("merge artifact files detected: %s; resolve the merge and remove them",
			strings.Join(mergeArtifacts, ", ")))
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoCatalog, dir)
	}

	for _, preferred := range PreferredJSONLNames {
		for _, name := range candidates {
			if name == preferred {
				path := filepath.Join(dir, name)
				// Prefer files that actually have content.
				if info, err := os.Stat(path); err == nil && info.Size() > 0 {
					return path, nil
				}
			}
		}
	}

	// Fall back to the first non-empty candidate.
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			return path, nil
		}
	}

	// Last resort: first candidate even if empty.
	return filepath.Join(dir, candidates[0]), nil
}

// LoadCategories reads categories from the catalog directory under basePath,
// respecting TAXO_DIR and the preferred file names.
func LoadCategories(basePath string) ([]model.Category, error) {
	dir, err := CatalogDir(basePath)
	if err != nil {
		return nil, err
	}

	path, err := FindJSONLPath(dir)
	if err != nil {
		return nil, err
	}

	return LoadCategoriesFromFile(path)
}

// DefaultMaxBufferSize caps a single catalog line at 10MB.
const DefaultMaxBufferSize = 1024 * 1024 * 10

// ParseOptions configures ParseCategories.
type ParseOptions struct {
	// WarningHandler is called with warning messages (malformed JSON,
	// oversized lines). If nil, warnings go to os.Stderr unless TAXO_QUIET
	// is set.
	WarningHandler func(string)

	// BufferSize sets the maximum line size in bytes. Longer lines are
	// skipped with a warning. Zero means DefaultMaxBufferSize.
	BufferSize int

	// Filter optionally drops parsed categories. Return true to include.
	Filter func(*model.Category) bool
}

// LoadCategoriesFromFile reads categories from a specific JSONL file.
func LoadCategoriesFromFile(path string) ([]model.Category, error) {
	return LoadCategoriesFromFileWithOptions(path, ParseOptions{})
}

// LoadCategoriesFromFileWithOptions reads categories with custom options.
func LoadCategoriesFromFileWithOptions(path string, opts ParseOptions) ([]model.Category, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w at %s", ErrNoCatalog, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer file.Close()

	return ParseCategoriesWithOptions(file, opts)
}

// ParseCategories parses JSONL content from a reader. Handles UTF-8 BOM
// stripping, oversized lines, and per-record validation.
func ParseCategories(r io.Reader) ([]model.Category, error) {
	return ParseCategoriesWithOptions(r, ParseOptions{})
}

// ParseCategoriesWithOptions parses JSONL content with custom options.
func ParseCategoriesWithOptions(r io.Reader, opts ParseOptions) ([]model.Category, error) {
	var categories []model.Category
	if f, ok := r.(*os.File); ok {
		if info, err := f.Stat(); err == nil {
			// Average category line runs a few hundred bytes. Underestimate
			// rather than over-allocate for big files.
			const avgCategoryBytes = 512
			const minCap = 64
			const maxCap = 200_000

			est := int(info.Size() / avgCategoryBytes)
			if est < minCap && info.Size() > 0 {
				est = minCap
			}
			if est > maxCap {
				est = maxCap
			}
			if est > 0 {
				categories = make([]model.Category, 0, est)
			}
		}
	}

	maxCapacity := opts.BufferSize
	if maxCapacity <= 0 {
		maxCapacity = DefaultMaxBufferSize
	}

	reader := bufio.NewReaderSize(r, maxCapacity)

	warn := opts.WarningHandler
	if warn == nil {
		if os.Getenv("TAXO_QUIET") == "1" {
			warn = func(string) {}
		} else {
			warn = func(msg string) {
				fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
			}
		}
	}

	lineNum := 0
	for {
		lineNum++
		// ReadLine returns a line without its end-of-line bytes. isPrefix is
		// set when the line did not fit the buffer.
		line, isPrefix, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading catalog stream at line %d: %w", lineNum, err)
		}

		if isPrefix {
			warn(fmt.Sprintf("skipping line %d: line too long (exceeds %d bytes)", lineNum, maxCapacity))
			for isPrefix {
				_, isPrefix, err = reader.ReadLine()
				if err != nil && err != io.EOF {
					return nil, fmt.Errorf("error skipping long line at line %d: %w", lineNum, err)
				}
				if err == io.EOF {
					break
				}
			}
			continue
		}

		if len(line) == 0 {
			continue
		}

		if lineNum == 1 {
			line = stripBOM(line)
		}

		var cat model.Category
		if err := json.Unmarshal(line, &cat); err != nil {
			warn(fmt.Sprintf("skipping malformed JSON on line %d: %v", lineNum, err))
			continue
		}

		cat.Status = normalizeStatus(cat.Status)

		// A bad parent reference is not a validation failure: the tree
		// builder demotes such records to roots rather than losing them.
		if err := cat.Validate(); err != nil {
			warn(fmt.Sprintf("skipping invalid category on line %d: %v", lineNum, err))
			continue
		}

		if opts.Filter != nil && !opts.Filter(&cat) {
			continue
		}

		categories = append(categories, cat)
	}

	return categories, nil
}

// stripBOM removes the UTF-8 byte order mark if present.
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}

func normalizeStatus(status model.Status) model.Status {
	trimmed := strings.TrimSpace(string(status))
	if trimmed == "" {
		return status
	}
	return model.Status(strings.ToLower(trimmed))
}
