// Package analysis inspects the structural health of a catalog taxonomy.
//
// The tree builder is deliberately lenient: records with missing,
// self-referencing or cyclic parents are demoted to the root level so the
// console always renders something. This package reports exactly what the
// builder papered over, so operators can repair the source data instead of
// silently shipping a mangled hierarchy.
package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/taxo/pkg/model"
	"github.com/vanderheijden86/taxo/pkg/tree"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// OrphanRef pairs a record with the parent id it declares but that is
// absent from the catalog.
type OrphanRef struct {
	ID     string `json:"id"`
	Parent string `json:"parent"`
}

// Report summarizes the structural health of one catalog.
//
// Shape numbers (roots, depth, leaves, branching) describe the forest the
// console actually renders, after demotion. Problem lists describe the
// declared parent references before demotion.
type Report struct {
	CategoryCount int `json:"category_count"`
	EdgeCount     int `json:"edge_count"`
	RootCount     int `json:"root_count"`
	MaxDepth      int `json:"max_depth"`
	LeafCount     int `json:"leaf_count"`

	// AvgBranching is the mean child count over categories that have at
	// least one child. Zero for flat catalogs.
	AvgBranching float64 `json:"avg_branching"`

	StatusCounts map[model.Status]int `json:"status_counts"`

	Orphans      []OrphanRef `json:"orphans,omitempty"`
	SelfParents  []string    `json:"self_parents,omitempty"`
	DuplicateIDs []string    `json:"duplicate_ids,omitempty"`
	Cycles       [][]string  `json:"cycles,omitempty"`
}

// Analyzer holds the declared-parent graph for one set of categories.
type Analyzer struct {
	g        *simple.DirectedGraph
	idToNode map[string]int64
	nodeToID map[int64]string
	catMap   map[string]model.Category
	order    []string

	orphans     []OrphanRef
	selfParents []string
	duplicates  []string
}

// NewAnalyzer indexes the categories and builds a directed graph with one
// edge per resolvable parent declaration (child -> parent). Duplicate ids
// keep the first occurrence, matching the tree builder's contract.
func NewAnalyzer(cats []model.Category) *Analyzer {
	a := &Analyzer{
		g:        simple.NewDirectedGraph(),
		idToNode: make(map[string]int64, len(cats)),
		nodeToID: make(map[int64]string, len(cats)),
		catMap:   make(map[string]model.Category, len(cats)),
	}

	dupSeen := make(map[string]bool)
	for _, cat := range cats {
		if _, seen := a.catMap[cat.ID]; seen {
			if !dupSeen[cat.ID] {
				dupSeen[cat.ID] = true
				a.duplicates = append(a.duplicates, cat.ID)
			}
			continue
		}
		a.catMap[cat.ID] = cat
		n := a.g.NewNode()
		a.g.AddNode(n)
		a.idToNode[cat.ID] = n.ID()
		a.nodeToID[n.ID()] = cat.ID
		a.order = append(a.order, cat.ID)
	}

	// Self references never reach the graph: simple.DirectedGraph rejects
	// self edges, and the report carries them as their own category of
	// problem anyway.
	for _, id := range a.order {
		pid := a.catMap[id].ParentID
		switch {
		case pid == "":
			continue
		case pid == id:
			a.selfParents = append(a.selfParents, id)
		default:
			v, ok := a.idToNode[pid]
			if !ok {
				a.orphans = append(a.orphans, OrphanRef{ID: id, Parent: pid})
				continue
			}
			a.g.SetEdge(a.g.NewEdge(a.g.Node(a.idToNode[id]), a.g.Node(v)))
		}
	}

	sort.Strings(a.selfParents)
	sort.Strings(a.duplicates)
	sort.Slice(a.orphans, func(i, j int) bool { return a.orphans[i].ID < a.orphans[j].ID })
	return a
}

// Cycles returns the members of every declared-parent cycle, each sorted
// by id, the cycles themselves ordered by their first member. A record has
// at most one declared parent, so every non-trivial strongly connected
// component is a single simple cycle.
func (a *Analyzer) Cycles() [][]string {
	var cycles [][]string
	for _, scc := range topo.TarjanSCC(a.g) {
		if len(scc) < 2 {
			continue
		}
		ids := make([]string, 0, len(scc))
		for _, n := range scc {
			ids = append(ids, a.nodeToID[n.ID()])
		}
		sort.Strings(ids)
		cycles = append(cycles, ids)
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

// Demoted returns the ids the builder turns into roots even though they
// declare a parent: orphans, self-parents, and the smallest member of each
// cycle. Sorted by id.
func (a *Analyzer) Demoted() []string {
	var ids []string
	for _, o := range a.orphans {
		ids = append(ids, o.ID)
	}
	ids = append(ids, a.selfParents...)
	for _, cycle := range a.Cycles() {
		ids = append(ids, cycle[0])
	}
	sort.Strings(ids)
	return ids
}

// Analyze computes the full health report.
func (a *Analyzer) Analyze() Report {
	r := Report{
		CategoryCount: len(a.order),
		EdgeCount:     a.g.Edges().Len(),
		StatusCounts:  make(map[model.Status]int, 4),
		Orphans:       a.orphans,
		SelfParents:   a.selfParents,
		DuplicateIDs:  a.duplicates,
		Cycles:        a.Cycles(),
	}

	for _, id := range a.order {
		r.StatusCounts[a.catMap[id].Status]++
	}

	// Shape stats come from the same forest the console renders.
	cats := make([]model.Category, 0, len(a.order))
	for _, id := range a.order {
		cats = append(cats, a.catMap[id])
	}
	roots := tree.Build(cats, model.TreeAccessors())
	r.RootCount = len(roots)

	internal := 0
	childSum := 0
	var walk func(n *tree.Node[model.Category], depth int)
	walk = func(n *tree.Node[model.Category], depth int) {
		if depth > r.MaxDepth {
			r.MaxDepth = depth
		}
		if len(n.Children) == 0 {
			r.LeafCount++
			return
		}
		internal++
		childSum += len(n.Children)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	for _, root := range roots {
		walk(root, 1)
	}
	if internal > 0 {
		r.AvgBranching = float64(childSum) / float64(internal)
	}
	return r
}

// Analyze is a convenience wrapper for one-shot reports.
func Analyze(cats []model.Category) Report {
	return NewAnalyzer(cats).Analyze()
}

// Healthy reports whether the catalog has no structural problems.
func (r Report) Healthy() bool {
	return len(r.Orphans) == 0 && len(r.SelfParents) == 0 &&
		len(r.DuplicateIDs) == 0 && len(r.Cycles) == 0
}

// ProblemCount returns the total number of structural problems.
func (r Report) ProblemCount() int {
	return len(r.Orphans) + len(r.SelfParents) + len(r.DuplicateIDs) + len(r.Cycles)
}

// Summary renders a one-line digest for the console footer.
func (r Report) Summary() string {
	parts := []string{
		fmt.Sprintf("%d categories", r.CategoryCount),
		fmt.Sprintf("%d roots", r.RootCount),
		fmt.Sprintf("depth %d", r.MaxDepth),
	}
	if n := r.ProblemCount(); n == 1 {
		parts = append(parts, "1 warning")
	} else if n > 1 {
		parts = append(parts, fmt.Sprintf("%d warnings", n))
	}
	return strings.Join(parts, " · ")
}

// statusOrder fixes the render order of lifecycle states.
var statusOrder = []model.Status{
	model.StatusActive,
	model.StatusSeasonal,
	model.StatusDraft,
	model.StatusDiscontinued,
}

// Render produces the multi-line report printed by taxo --health.
func (r Report) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Categories: %d (%d roots, %d leaves, max depth %d)\n",
		r.CategoryCount, r.RootCount, r.LeafCount, r.MaxDepth)
	if r.AvgBranching > 0 {
		fmt.Fprintf(&b, "Branching: %.1f children per internal category\n", r.AvgBranching)
	}

	var statuses []string
	for _, s := range statusOrder {
		if n := r.StatusCounts[s]; n > 0 {
			statuses = append(statuses, fmt.Sprintf("%s %d", s, n))
		}
	}
	if len(statuses) > 0 {
		fmt.Fprintf(&b, "Status: %s\n", strings.Join(statuses, ", "))
	}

	if r.Healthy() {
		b.WriteString("No structural problems found.\n")
		return b.String()
	}

	if len(r.DuplicateIDs) > 0 {
		fmt.Fprintf(&b, "\nDuplicate ids (%d, first occurrence wins):\n", len(r.DuplicateIDs))
		for _, id := range r.DuplicateIDs {
			fmt.Fprintf(&b, "  %s\n", id)
		}
	}

	if len(r.Orphans) > 0 {
		fmt.Fprintf(&b, "\nOrphaned parent references (%d, demoted to root):\n", len(r.Orphans))
		for _, o := range r.Orphans {
			fmt.Fprintf(&b, "  %s -> %s (missing)\n", o.ID, o.Parent)
		}
	}

	if len(r.SelfParents) > 0 {
		fmt.Fprintf(&b, "\nSelf-parenting categories (%d, demoted to root):\n", len(r.SelfParents))
		for _, id := range r.SelfParents {
			fmt.Fprintf(&b, "  %s\n", id)
		}
	}

	if len(r.Cycles) > 0 {
		fmt.Fprintf(&b, "\nParent cycles (%d):\n", len(r.Cycles))
		for _, cycle := range r.Cycles {
			fmt.Fprintf(&b, "  %s (%s becomes a root)\n", formatCycle(cycle), cycle[0])
		}
	}

	return b.String()
}

// formatCycle renders cycle members as a closed path.
func formatCycle(cycle []string) string {
	if len(cycle) == 0 {
		return ""
	}
	return strings.Join(cycle, " → ") + " → " + cycle[0]
}
