package datasource

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/taxo/pkg/loader"
)

// validateConcurrency bounds parallel validation. Opening a handful of
// files at once is plenty; catalogs rarely have more than a few candidates.
const validateConcurrency = 8

// ValidateAll validates every source concurrently, recording the outcome on
// each Source in place. Individual validation failures are not errors; only
// context cancellation aborts the run.
func ValidateAll(ctx context.Context, sources []Source) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(validateConcurrency)

	for i := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// Outcome lands on the Source; nothing to propagate.
			ValidateSource(&sources[i])
			return nil
		})
	}

	return g.Wait()
}

// ValidateSource checks that a source is readable and holds at least one
// category, recording Valid, ValidationError, and CategoryCount on it.
func ValidateSource(s *Source) error {
	var count int
	var err error

	switch s.Type {
	case SourceTypeSQLite:
		count, err = validateSQLite(s.Path)
	case SourceTypeJSONL:
		count, err = validateJSONL(s.Path)
	default:
		err = fmt.Errorf("unknown source type: %s", s.Type)
	}

	if err != nil {
		s.Valid = false
		s.ValidationError = err.Error()
		return err
	}
	if count == 0 {
		// An empty source must never shadow a populated one during
		// selection. Genuinely empty catalogs still load through the
		// plain JSONL fallback.
		s.Valid = false
		s.ValidationError = "no categories"
		return fmt.Errorf("no categories in %s", s.Path)
	}

	s.Valid = true
	s.ValidationError = ""
	s.CategoryCount = count
	return nil
}

func validateSQLite(path string) (int, error) {
	reader, err := NewSQLiteReader(Source{Type: SourceTypeSQLite, Path: path})
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	return reader.CountCategories()
}

func validateJSONL(path string) (int, error) {
	cats, err := loader.LoadCategoriesFromFileWithOptions(path, loader.ParseOptions{
		// Validation is a probe; parse warnings surface when the source
		// actually loads.
		WarningHandler: func(string) {},
	})
	if err != nil {
		return 0, err
	}
	return len(cats), nil
}
