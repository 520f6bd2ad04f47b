package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/taxo/pkg/model"
)

// ArchiveFileName is the canonical filename for retired category storage.
// Categories pruned from the live catalog are appended here by upstream
// tooling; the console only reads it.
const ArchiveFileName = "archive.jsonl"

// LoadArchive reads retired categories from .taxo/archive.jsonl under
// basePath. A missing file means no archive (empty slice, nil error).
func LoadArchive(basePath string) ([]model.Category, error) {
	if basePath == "" {
		var err error
		basePath, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
	}

	return LoadArchiveFromFile(filepath.Join(basePath, ".taxo", ArchiveFileName))
}

// LoadArchiveFromFile reads retired categories from a specific JSONL path.
// A missing file means no archive (empty slice, nil error).
func LoadArchiveFromFile(path string) ([]model.Category, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return []model.Category{}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive file: %w", err)
	}
	defer file.Close()

	return ParseArchive(file)
}

// ParseArchive parses archived categories from a reader. Malformed or
// invalid entries are skipped with warnings, consistent with
// ParseCategories (suppressed when TAXO_QUIET is set).
func ParseArchive(r io.Reader) ([]model.Category, error) {
	var archived []model.Category

	warn := func(msg string) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
	}
	if os.Getenv("TAXO_QUIET") == "1" {
		warn = func(string) {}
	}

	scanner := bufio.NewScanner(r)
	// Archive entries stay small; cap well below the live catalog limit.
	const maxCapacity = 1024 * 1024
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if lineNum == 1 {
			line = stripBOM(line)
		}

		var cat model.Category
		if err := json.Unmarshal(line, &cat); err != nil {
			warn(fmt.Sprintf("skipping malformed archive JSON on line %d: %v", lineNum, err))
			continue
		}

		cat.Status = normalizeStatus(cat.Status)

		if err := cat.Validate(); err != nil {
			warn(fmt.Sprintf("skipping invalid archived category on line %d: %v", lineNum, err))
			continue
		}

		archived = append(archived, cat)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading archive stream: %w", err)
	}

	return archived, nil
}
