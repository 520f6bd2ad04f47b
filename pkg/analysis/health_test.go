package analysis

import (
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/taxo/pkg/model"
	"github.com/vanderheijden86/taxo/pkg/testutil"
)

func cat(id, parent string) model.Category {
	now := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	return model.Category{
		ID:        id,
		ParentID:  parent,
		Name:      "Category " + id,
		Status:    model.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestAnalyzeEmptyCatalog(t *testing.T) {
	r := Analyze(nil)

	if r.CategoryCount != 0 {
		t.Errorf("expected 0 categories, got %d", r.CategoryCount)
	}
	if r.RootCount != 0 || r.MaxDepth != 0 || r.LeafCount != 0 {
		t.Errorf("expected zero shape stats, got roots=%d depth=%d leaves=%d",
			r.RootCount, r.MaxDepth, r.LeafCount)
	}
	if !r.Healthy() {
		t.Error("empty catalog should be healthy")
	}
}

func TestAnalyzeHealthyTree(t *testing.T) {
	// A -> (B, C), B -> D
	cats := []model.Category{
		cat("A", ""),
		cat("B", "A"),
		cat("C", "A"),
		cat("D", "B"),
	}

	r := Analyze(cats)

	if r.CategoryCount != 4 {
		t.Errorf("expected 4 categories, got %d", r.CategoryCount)
	}
	if r.EdgeCount != 3 {
		t.Errorf("expected 3 parent edges, got %d", r.EdgeCount)
	}
	if r.RootCount != 1 {
		t.Errorf("expected 1 root, got %d", r.RootCount)
	}
	if r.MaxDepth != 3 {
		t.Errorf("expected depth 3, got %d", r.MaxDepth)
	}
	if r.LeafCount != 2 {
		t.Errorf("expected 2 leaves (C, D), got %d", r.LeafCount)
	}
	// A has 2 children, B has 1: (2+1)/2
	if r.AvgBranching != 1.5 {
		t.Errorf("expected branching 1.5, got %v", r.AvgBranching)
	}
	if !r.Healthy() {
		t.Errorf("expected healthy report, got %d problems", r.ProblemCount())
	}
	if !strings.Contains(r.Render(), "No structural problems") {
		t.Errorf("render should report a clean catalog:\n%s", r.Render())
	}
}

func TestAnalyzeOrphans(t *testing.T) {
	cats := []model.Category{
		cat("A", ""),
		cat("B", "GHOST"),
	}

	r := Analyze(cats)

	if len(r.Orphans) != 1 {
		t.Fatalf("expected 1 orphan, got %d", len(r.Orphans))
	}
	if r.Orphans[0].ID != "B" || r.Orphans[0].Parent != "GHOST" {
		t.Errorf("expected orphan B -> GHOST, got %+v", r.Orphans[0])
	}
	// The dangling reference never became an edge.
	if r.EdgeCount != 0 {
		t.Errorf("expected 0 edges, got %d", r.EdgeCount)
	}
	// B is demoted, so both records are roots.
	if r.RootCount != 2 {
		t.Errorf("expected 2 roots, got %d", r.RootCount)
	}
	if r.Healthy() {
		t.Error("orphaned reference should not be healthy")
	}
	if !strings.Contains(r.Render(), "GHOST (missing)") {
		t.Errorf("render should name the missing parent:\n%s", r.Render())
	}
}

func TestAnalyzeSelfParent(t *testing.T) {
	cats := []model.Category{
		cat("A", "A"),
		cat("B", "A"),
	}

	r := Analyze(cats)

	if len(r.SelfParents) != 1 || r.SelfParents[0] != "A" {
		t.Errorf("expected self-parent [A], got %v", r.SelfParents)
	}
	// Only B -> A resolved. The self reference stays off the graph.
	if r.EdgeCount != 1 {
		t.Errorf("expected 1 edge, got %d", r.EdgeCount)
	}
	if r.RootCount != 1 {
		t.Errorf("expected 1 root, got %d", r.RootCount)
	}
}

func TestAnalyzeCycle(t *testing.T) {
	// A and B parent each other; C hangs off the cycle.
	cats := []model.Category{
		cat("B", "A"),
		cat("A", "B"),
		cat("C", "A"),
	}

	r := Analyze(cats)

	if len(r.Cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d: %v", len(r.Cycles), r.Cycles)
	}
	cycle := r.Cycles[0]
	if len(cycle) != 2 || cycle[0] != "A" || cycle[1] != "B" {
		t.Errorf("expected cycle [A B], got %v", cycle)
	}
	// C feeds into the cycle but is not part of it.
	for _, id := range cycle {
		if id == "C" {
			t.Error("tail category C must not appear in the cycle")
		}
	}
	// The builder breaks the cycle at A, so the forest has a single root.
	if r.RootCount != 1 {
		t.Errorf("expected 1 root after demotion, got %d", r.RootCount)
	}
	if !strings.Contains(r.Render(), "A becomes a root") {
		t.Errorf("render should name the demoted member:\n%s", r.Render())
	}
}

func TestAnalyzeDuplicateIDs(t *testing.T) {
	dup := cat("A", "")
	dup.Name = "Second A"
	cats := []model.Category{
		cat("A", ""),
		dup,
		dup,
		cat("B", "A"),
	}

	r := Analyze(cats)

	if r.CategoryCount != 2 {
		t.Errorf("expected 2 categories after dedup, got %d", r.CategoryCount)
	}
	if len(r.DuplicateIDs) != 1 || r.DuplicateIDs[0] != "A" {
		t.Errorf("expected duplicates [A], got %v", r.DuplicateIDs)
	}
}

func TestAnalyzerDemoted(t *testing.T) {
	cats := []model.Category{
		cat("self", "self"),
		cat("orphan", "GHOST"),
		cat("cycA", "cycB"),
		cat("cycB", "cycA"),
		cat("fine", ""),
	}

	demoted := NewAnalyzer(cats).Demoted()

	want := []string{"cycA", "orphan", "self"}
	if len(demoted) != len(want) {
		t.Fatalf("expected demoted %v, got %v", want, demoted)
	}
	for i, id := range want {
		if demoted[i] != id {
			t.Errorf("demoted[%d]: expected %s, got %s", i, id, demoted[i])
		}
	}
}

func TestAnalyzeStatusCounts(t *testing.T) {
	a := cat("A", "")
	b := cat("B", "A")
	b.Status = model.StatusSeasonal
	c := cat("C", "A")
	c.Status = model.StatusDraft
	d := cat("D", "A")
	d.Status = model.StatusDiscontinued

	r := Analyze([]model.Category{a, b, c, d})

	if r.StatusCounts[model.StatusActive] != 1 {
		t.Errorf("expected 1 active, got %d", r.StatusCounts[model.StatusActive])
	}
	if r.StatusCounts[model.StatusDiscontinued] != 1 {
		t.Errorf("expected 1 discontinued, got %d", r.StatusCounts[model.StatusDiscontinued])
	}
	if !strings.Contains(r.Render(), "active 1") {
		t.Errorf("render should include status counts:\n%s", r.Render())
	}
}

func TestReportSummary(t *testing.T) {
	clean := Analyze(testutil.QuickChain(4))
	if strings.Contains(clean.Summary(), "warning") {
		t.Errorf("clean summary should carry no warnings: %q", clean.Summary())
	}
	if !strings.Contains(clean.Summary(), "4 categories") {
		t.Errorf("summary should count categories: %q", clean.Summary())
	}

	one := Analyze([]model.Category{cat("A", "GHOST")})
	if !strings.Contains(one.Summary(), "1 warning") {
		t.Errorf("expected singular warning: %q", one.Summary())
	}

	two := Analyze([]model.Category{cat("A", "GHOST"), cat("B", "B")})
	if !strings.Contains(two.Summary(), "2 warnings") {
		t.Errorf("expected plural warnings: %q", two.Summary())
	}
}

func TestAnalyzeGeneratedCycle(t *testing.T) {
	cats := testutil.QuickCycle(4)

	r := Analyze(cats)

	if len(r.Cycles) == 0 {
		t.Fatal("expected a cycle in a cyclic taxonomy")
	}
	if r.Healthy() {
		t.Error("cyclic taxonomy should not be healthy")
	}
	// One member per cycle is demoted, so every record still lands in the
	// forest exactly once.
	total := 0
	var count func(roots int, depth int)
	_ = count
	if r.RootCount < 1 {
		t.Errorf("expected at least 1 root, got %d", r.RootCount)
	}
	total = r.LeafCount
	if total == 0 {
		t.Error("expected at least one leaf after demotion")
	}
}

func TestAnalyzeGeneratedChainShape(t *testing.T) {
	r := Analyze(testutil.QuickChain(6))

	if r.RootCount != 1 {
		t.Errorf("expected 1 root, got %d", r.RootCount)
	}
	if r.MaxDepth != 6 {
		t.Errorf("expected depth 6, got %d", r.MaxDepth)
	}
	if r.LeafCount != 1 {
		t.Errorf("expected 1 leaf, got %d", r.LeafCount)
	}
	if r.AvgBranching != 1.0 {
		t.Errorf("expected branching 1.0, got %v", r.AvgBranching)
	}
}

func TestAnalyzeGeneratedStarShape(t *testing.T) {
	r := Analyze(testutil.QuickStar(5))

	if r.RootCount != 1 {
		t.Errorf("expected 1 root, got %d", r.RootCount)
	}
	if r.MaxDepth != 2 {
		t.Errorf("expected depth 2, got %d", r.MaxDepth)
	}
	if r.LeafCount != 5 {
		t.Errorf("expected 5 leaves, got %d", r.LeafCount)
	}
	if r.AvgBranching != 5.0 {
		t.Errorf("expected branching 5.0, got %v", r.AvgBranching)
	}
	if len(r.Cycles) != 0 {
		t.Errorf("star has no cycles, got %v", r.Cycles)
	}
}
