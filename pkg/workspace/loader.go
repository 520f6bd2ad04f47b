// Package workspace aggregates the catalogs registered in the config into
// summaries for the catalog palette. Catalogs load in parallel; a broken
// catalog shows up as a failed entry instead of sinking the whole palette.
package workspace

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/taxo/internal/datasource"
	"github.com/vanderheijden86/taxo/pkg/config"
	"github.com/vanderheijden86/taxo/pkg/model"
	"github.com/vanderheijden86/taxo/pkg/tree"
)

// CatalogRef summarizes one registered catalog for the palette
type CatalogRef struct {
	// Name is the configured catalog name
	Name string
	// Path is the configured catalog path
	Path string
	// CatalogDir is the resolved data directory
	CatalogDir string
	// Source is the flavor that served the summary
	Source datasource.SourceType
	// LastModified is the source file's modification time
	LastModified time.Time
	// CategoryCount is the number of live categories
	CategoryCount int
	// RootCount is the number of top-level categories
	RootCount int
	// Err is set if loading failed
	Err error
}

// AggregateLoader loads summaries for every registered catalog
type AggregateLoader struct {
	catalogs []config.Catalog
	logger   *log.Logger
}

// NewAggregateLoader creates an aggregate loader over the registered catalogs
func NewAggregateLoader(catalogs []config.Catalog) *AggregateLoader {
	return &AggregateLoader{
		catalogs: catalogs,
		// Silent by default. Callers can opt in via SetLogger; stray stderr
		// output would bleed through the alt screen.
		logger: log.New(io.Discard, "", 0),
	}
}

// SetLogger sets a custom logger for error reporting
func (l *AggregateLoader) SetLogger(logger *log.Logger) {
	l.logger = logger
}

// LoadAll loads summaries for all registered catalogs in parallel.
// Individual catalog failures land on the CatalogRef, not the error return.
func (l *AggregateLoader) LoadAll(ctx context.Context) ([]CatalogRef, error) {
	if len(l.catalogs) == 0 {
		return nil, fmt.Errorf("no catalogs registered")
	}

	refs := make([]CatalogRef, len(l.catalogs))

	g, ctx := errgroup.WithContext(ctx)
	// A palette rarely has more than a handful of catalogs; the limit guards
	// against configs that point at whole filesystems worth of them.
	g.SetLimit(16)

	for i, cat := range l.catalogs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				refs[i] = CatalogRef{Name: cat.Name, Path: cat.Path, Err: ctx.Err()}
				return nil
			default:
			}

			refs[i] = l.loadSingleCatalog(cat)
			if refs[i].Err != nil {
				l.logger.Printf("WARNING: failed to load catalog %q: %v", cat.Name, refs[i].Err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return refs, err
	}

	return refs, nil
}

// loadSingleCatalog builds the summary for one catalog
func (l *AggregateLoader) loadSingleCatalog(cat config.Catalog) CatalogRef {
	ref := CatalogRef{Name: cat.Name, Path: cat.Path}

	dir := ResolveCatalogDir(cat.ResolvedPath())
	ref.CatalogDir = dir

	sources, err := datasource.DiscoverSources(datasource.DiscoveryOptions{
		CatalogDir:             dir,
		ValidateAfterDiscovery: true,
	})
	if err != nil {
		ref.Err = err
		return ref
	}

	best, err := datasource.SelectBestSource(sources)
	if err != nil {
		ref.Err = fmt.Errorf("no usable source in %s: %w", dir, err)
		return ref
	}

	records, err := datasource.LoadFromSource(best)
	if err != nil {
		ref.Err = err
		return ref
	}

	ref.Source = best.Type
	ref.LastModified = best.ModTime
	ref.CategoryCount = len(records)
	ref.RootCount = len(tree.Build(records, model.TreeAccessors()))
	return ref
}

// LoadSummary aggregates load results for the palette footer
type LoadSummary struct {
	TotalCatalogs   int
	Loaded          int
	Failed          int
	TotalCategories int
	FailedNames     []string
}

// Summarize returns a summary of the load results
func Summarize(refs []CatalogRef) LoadSummary {
	summary := LoadSummary{
		TotalCatalogs: len(refs),
	}

	for _, ref := range refs {
		if ref.Err != nil {
			summary.Failed++
			summary.FailedNames = append(summary.FailedNames, ref.Name)
			continue
		}
		summary.Loaded++
		summary.TotalCategories += ref.CategoryCount
	}

	return summary
}
