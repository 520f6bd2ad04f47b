package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/taxo/pkg/model"
)

// SaveCatalog writes categories to .taxo/catalog.jsonl under basePath.
func SaveCatalog(basePath string, categories []model.Category) error {
	if basePath == "" {
		var err error
		basePath, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current working directory: %w", err)
		}
	}

	return SaveCatalogToFile(filepath.Join(basePath, ".taxo", PreferredJSONLNames[0]), categories)
}

// SaveCatalogToFile writes categories to a specific file path. The write is
// atomic (temp file + rename) so editors and the watcher never observe a
// half-written catalog.
func SaveCatalogToFile(path string, categories []model.Category) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	tmpName := tmp.Name()
	closed := false
	cleanup := func() {
		if !closed {
			_ = tmp.Close()
			closed = true
		}
		_ = os.Remove(tmpName)
	}

	enc := json.NewEncoder(tmp)
	for _, cat := range categories {
		if err := enc.Encode(cat); err != nil {
			cleanup()
			return fmt.Errorf("failed to encode category %s: %w", cat.ID, err)
		}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	closed = true

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
