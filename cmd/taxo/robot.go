package main

import (
	"encoding/json"
	"io"
	"time"

	"github.com/vanderheijden86/taxo/pkg/analysis"
	"github.com/vanderheijden86/taxo/pkg/model"
	"github.com/vanderheijden86/taxo/pkg/tree"
)

// robotTreeRow is one category in depth-first order. Path holds the
// root-to-node chain of names, so consumers do not need to rebuild the
// hierarchy from parent ids.
type robotTreeRow struct {
	ID       string       `json:"id"`
	ParentID string       `json:"parent_id,omitempty"`
	Name     string       `json:"name"`
	Status   model.Status `json:"status"`
	SKUCount int          `json:"sku_count"`
	Depth    int          `json:"depth"`
	Path     []string     `json:"path"`
}

type robotTreeOutput struct {
	GeneratedAt   string         `json:"generated_at"`
	Catalog       string         `json:"catalog"`
	CategoryCount int            `json:"category_count"`
	RootCount     int            `json:"root_count"`
	MaxDepth      int            `json:"max_depth"`
	Rows          []robotTreeRow `json:"rows"`
}

type robotHealthOutput struct {
	GeneratedAt string          `json:"generated_at"`
	Catalog     string          `json:"catalog"`
	Healthy     bool            `json:"healthy"`
	Problems    int             `json:"problems"`
	Report      analysis.Report `json:"report"`
}

// newRobotTreeOutput resolves the catalog into the same forest the console
// renders and flattens it depth first. Roots sit at depth 1, matching the
// health report's max_depth convention.
func newRobotTreeOutput(catalog string, cats []model.Category) robotTreeOutput {
	forest := tree.Build(cats, model.TreeAccessors())
	out := robotTreeOutput{
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		Catalog:       catalog,
		CategoryCount: len(cats),
		RootCount:     len(forest),
		Rows:          make([]robotTreeRow, 0, len(cats)),
	}

	var walk func(n *tree.Node[model.Category], depth int, path []string)
	walk = func(n *tree.Node[model.Category], depth int, path []string) {
		path = append(path, n.Label)
		if depth > out.MaxDepth {
			out.MaxDepth = depth
		}
		out.Rows = append(out.Rows, robotTreeRow{
			ID:       n.ID,
			ParentID: n.Record.ParentID,
			Name:     n.Label,
			Status:   n.Record.Status,
			SKUCount: n.Record.SKUCount,
			Depth:    depth,
			// path's backing array is shared across siblings, so each
			// row gets its own copy.
			Path: append([]string(nil), path...),
		})
		for _, c := range n.Children {
			walk(c, depth+1, path)
		}
	}
	for _, root := range forest {
		walk(root, 1, nil)
	}
	return out
}

func newRobotHealthOutput(catalog string, report analysis.Report) robotHealthOutput {
	return robotHealthOutput{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Catalog:     catalog,
		Healthy:     report.Healthy(),
		Problems:    report.ProblemCount(),
		Report:      report,
	}
}

func writeRobotTree(w io.Writer, out robotTreeOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeRobotHealth(w io.Writer, out robotHealthOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
