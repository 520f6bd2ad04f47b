package datasource

import (
	"fmt"

	"github.com/vanderheijden86/taxo/pkg/model"
)

// SourceDiff represents differences between two data sources
type SourceDiff struct {
	// SourceA is the path of the first source
	SourceA string
	// SourceB is the path of the second source
	SourceB string
	// MissingInA contains category IDs present in B but not in A
	MissingInA []string
	// MissingInB contains category IDs present in A but not in B
	MissingInB []string
	// StatusMismatch contains categories with different status between sources
	StatusMismatch []StatusDifference
	// ParentMismatch contains categories reparented differently between sources
	ParentMismatch []ParentDifference
	// CountA is the number of categories in source A
	CountA int
	// CountB is the number of categories in source B
	CountB int
}

// StatusDifference represents a status mismatch for a single category
type StatusDifference struct {
	ID      string `json:"id"`
	StatusA string `json:"status_a"`
	StatusB string `json:"status_b"`
}

// ParentDifference represents a parent mismatch for a single category
type ParentDifference struct {
	ID      string `json:"id"`
	ParentA string `json:"parent_a"`
	ParentB string `json:"parent_b"`
}

// HasInconsistencies returns true if there are any differences between sources
func (d SourceDiff) HasInconsistencies() bool {
	return len(d.MissingInA) > 0 || len(d.MissingInB) > 0 ||
		len(d.StatusMismatch) > 0 || len(d.ParentMismatch) > 0
}

// Summary returns a human-readable summary of the differences
func (d SourceDiff) Summary() string {
	if !d.HasInconsistencies() {
		return fmt.Sprintf("Sources match (%d categories each)", d.CountA)
	}

	summary := fmt.Sprintf("Inconsistencies found between %s and %s:\n", d.SourceA, d.SourceB)

	if d.CountA != d.CountB {
		summary += fmt.Sprintf("  - Count mismatch: %d vs %d\n", d.CountA, d.CountB)
	}

	if len(d.MissingInA) > 0 {
		summary += fmt.Sprintf("  - %d categories in %s but not %s\n", len(d.MissingInA), d.SourceB, d.SourceA)
		if len(d.MissingInA) <= 5 {
			for _, id := range d.MissingInA {
				summary += fmt.Sprintf("    - %s\n", id)
			}
		}
	}

	if len(d.MissingInB) > 0 {
		summary += fmt.Sprintf("  - %d categories in %s but not %s\n", len(d.MissingInB), d.SourceA, d.SourceB)
		if len(d.MissingInB) <= 5 {
			for _, id := range d.MissingInB {
				summary += fmt.Sprintf("    - %s\n", id)
			}
		}
	}

	if len(d.StatusMismatch) > 0 {
		summary += fmt.Sprintf("  - %d categories with different status\n", len(d.StatusMismatch))
		if len(d.StatusMismatch) <= 5 {
			for _, m := range d.StatusMismatch {
				summary += fmt.Sprintf("    - %s: %s vs %s\n", m.ID, m.StatusA, m.StatusB)
			}
		}
	}

	if len(d.ParentMismatch) > 0 {
		summary += fmt.Sprintf("  - %d categories with different parent\n", len(d.ParentMismatch))
		if len(d.ParentMismatch) <= 5 {
			for _, m := range d.ParentMismatch {
				summary += fmt.Sprintf("    - %s: %s vs %s\n", m.ID, orRoot(m.ParentA), orRoot(m.ParentB))
			}
		}
	}

	return summary
}

func orRoot(parentID string) string {
	if parentID == "" {
		return "(root)"
	}
	return parentID
}

// DiffOptions configures the diff operation
type DiffOptions struct {
	// IncludeRetired includes discontinued categories in the comparison
	IncludeRetired bool
	// MaxDifferences limits the number of differences tracked (0 = unlimited)
	MaxDifferences int
}

// DefaultDiffOptions returns sensible default diff options
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{
		IncludeRetired: false,
		MaxDifferences: 100,
	}
}

// DetectInconsistencies compares two sets of categories and returns differences
func DetectInconsistencies(catsA, catsB []model.Category, sourceA, sourceB string, opts DiffOptions) SourceDiff {
	diff := SourceDiff{
		SourceA: sourceA,
		SourceB: sourceB,
	}

	mapA := make(map[string]model.Category)
	for _, cat := range catsA {
		if !opts.IncludeRetired && cat.Status.IsRetired() {
			continue
		}
		mapA[cat.ID] = cat
	}

	mapB := make(map[string]model.Category)
	for _, cat := range catsB {
		if !opts.IncludeRetired && cat.Status.IsRetired() {
			continue
		}
		mapB[cat.ID] = cat
	}

	diff.CountA = len(mapA)
	diff.CountB = len(mapB)

	for id := range mapA {
		if _, exists := mapB[id]; !exists {
			if opts.MaxDifferences == 0 || len(diff.MissingInB) < opts.MaxDifferences {
				diff.MissingInB = append(diff.MissingInB, id)
			}
		}
	}

	for id, catB := range mapB {
		catA, exists := mapA[id]
		if !exists {
			if opts.MaxDifferences == 0 || len(diff.MissingInA) < opts.MaxDifferences {
				diff.MissingInA = append(diff.MissingInA, id)
			}
			continue
		}

		if catA.Status != catB.Status {
			if opts.MaxDifferences == 0 || len(diff.StatusMismatch) < opts.MaxDifferences {
				diff.StatusMismatch = append(diff.StatusMismatch, StatusDifference{
					ID:      id,
					StatusA: string(catA.Status),
					StatusB: string(catB.Status),
				})
			}
		}

		// Divergent parents mean one side missed a reparent.
		if catA.ParentID != catB.ParentID {
			if opts.MaxDifferences == 0 || len(diff.ParentMismatch) < opts.MaxDifferences {
				diff.ParentMismatch = append(diff.ParentMismatch, ParentDifference{
					ID:      id,
					ParentA: catA.ParentID,
					ParentB: catB.ParentID,
				})
			}
		}
	}

	return diff
}

// CompareSources loads and compares two data sources
func CompareSources(sourceA, sourceB Source, opts DiffOptions) (*SourceDiff, error) {
	catsA, err := LoadFromSource(sourceA)
	if err != nil {
		return nil, fmt.Errorf("failed to load source A (%s): %w", sourceA.Path, err)
	}

	catsB, err := LoadFromSource(sourceB)
	if err != nil {
		return nil, fmt.Errorf("failed to load source B (%s): %w", sourceB.Path, err)
	}

	diff := DetectInconsistencies(catsA, catsB, sourceA.Path, sourceB.Path, opts)
	return &diff, nil
}

// CheckAllSourcesConsistent compares all valid sources pairwise and reports
// any inconsistencies
func CheckAllSourcesConsistent(sources []Source, opts DiffOptions) ([]SourceDiff, error) {
	var diffs []SourceDiff

	for i := 0; i < len(sources); i++ {
		if !sources[i].Valid {
			continue
		}
		for j := i + 1; j < len(sources); j++ {
			if !sources[j].Valid {
				continue
			}

			diff, err := CompareSources(sources[i], sources[j], opts)
			if err != nil {
				continue
			}

			if diff.HasInconsistencies() {
				diffs = append(diffs, *diff)
			}
		}
	}

	return diffs, nil
}

// InconsistencyReport provides a comprehensive report of all source inconsistencies
type InconsistencyReport struct {
	// Sources is the list of all sources checked
	Sources []Source
	// Diffs contains all detected differences
	Diffs []SourceDiff
	// TotalInconsistencies is the total number of inconsistencies found
	TotalInconsistencies int
	// HasCriticalInconsistencies indicates severe problems (status or parent
	// divergence between otherwise matching categories)
	HasCriticalInconsistencies bool
}

// GenerateInconsistencyReport creates a comprehensive report
func GenerateInconsistencyReport(sources []Source, opts DiffOptions) (*InconsistencyReport, error) {
	diffs, err := CheckAllSourcesConsistent(sources, opts)
	if err != nil {
		return nil, err
	}

	report := &InconsistencyReport{
		Sources: sources,
		Diffs:   diffs,
	}

	for _, diff := range diffs {
		report.TotalInconsistencies += len(diff.MissingInA) + len(diff.MissingInB) +
			len(diff.StatusMismatch) + len(diff.ParentMismatch)
		if len(diff.StatusMismatch) > 0 || len(diff.ParentMismatch) > 0 {
			report.HasCriticalInconsistencies = true
		}
	}

	return report, nil
}
