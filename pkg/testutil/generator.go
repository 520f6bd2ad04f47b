// Package testutil provides test fixture generators for taxonomy topologies
// plus assertion and golden-file helpers. All generators produce
// deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/taxo/pkg/model"
)

// Parent index markers for TaxonomyFixture.
const (
	// RootParent marks a node with no parent.
	RootParent = -1
	// GhostParent marks a parent reference that resolves to nothing. The
	// tree builder demotes such nodes to roots.
	GhostParent = -2
)

// TaxonomyFixture represents an abstract parent forest for testing tree
// algorithms. Parents[i] holds the index of node i's parent, or one of the
// marker values above.
type TaxonomyFixture struct {
	Description string     `json:"description"`
	Nodes       []string   `json:"nodes"`
	Parents     []int      `json:"parents"`
	Properties  Properties `json:"properties,omitempty"`
}

// Properties holds optional metadata about the fixture.
type Properties struct {
	HasCycles     bool `json:"has_cycles,omitempty"`
	ExpectedDepth int  `json:"expected_depth,omitempty"`
	RootCount     int  `json:"root_count,omitempty"`
}

// GeneratorConfig controls category generation.
type GeneratorConfig struct {
	Seed        int64          // Random seed for determinism (0 = use current time)
	IDPrefix    string         // Prefix for category IDs (default: "TEST")
	BaseTime    time.Time      // Base time for timestamps (default: fixed time)
	IncludeTags bool           // Generate random tags
	StatusMix   []model.Status // Status distribution (nil = all active)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:      42,
		IDPrefix:  "TEST",
		BaseTime:  time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		StatusMix: []model.Status{model.StatusActive},
	}
}

// Generator creates test fixtures with various topologies.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.BaseTime.IsZero() {
		cfg.BaseTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "TEST"
	}
	if len(cfg.StatusMix) == 0 {
		cfg.StatusMix = []model.Status{model.StatusActive}
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// ============================================================================
// Taxonomy Topology Generators
// ============================================================================

// Chain creates a single path: n0 is the root, each ni hangs under n{i-1}.
// Properties: forest, depth = size-1, one root.
func (g *Generator) Chain(size int) TaxonomyFixture {
	nodes := make([]string, size)
	parents := make([]int, size)

	for i := 0; i < size; i++ {
		nodes[i] = fmt.Sprintf("n%d", i)
		if i == 0 {
			parents[i] = RootParent
		} else {
			parents[i] = i - 1
		}
	}

	return TaxonomyFixture{
		Description: fmt.Sprintf("Chain of %d categories: n0 > n1 > ... > n%d", size, size-1),
		Nodes:       nodes,
		Parents:     parents,
		Properties: Properties{
			ExpectedDepth: size - 1,
			RootCount:     1,
		},
	}
}

// Star creates one root with n direct children.
// Properties: forest, depth = 1, one root.
func (g *Generator) Star(children int) TaxonomyFixture {
	size := children + 1
	nodes := make([]string, size)
	parents := make([]int, size)

	nodes[0] = "root"
	parents[0] = RootParent
	for i := 1; i < size; i++ {
		nodes[i] = fmt.Sprintf("leaf%d", i)
		parents[i] = 0
	}

	return TaxonomyFixture{
		Description: fmt.Sprintf("Star with one root and %d children", children),
		Nodes:       nodes,
		Parents:     parents,
		Properties: Properties{
			ExpectedDepth: 1,
			RootCount:     1,
		},
	}
}

// Tree creates a full tree with the given depth and branching factor.
func (g *Generator) Tree(depth, breadth int) TaxonomyFixture {
	if depth < 1 {
		depth = 1
	}
	if breadth < 1 {
		breadth = 1
	}

	var nodes []string
	var parents []int

	nodeID := 0
	nodes = append(nodes, fmt.Sprintf("n%d", nodeID))
	parents = append(parents, RootParent)
	nodeID++

	currentLevel := []int{0}

	for d := 0; d < depth; d++ {
		var nextLevel []int
		for _, parent := range currentLevel {
			for b := 0; b < breadth; b++ {
				nodes = append(nodes, fmt.Sprintf("n%d", nodeID))
				parents = append(parents, parent)
				nextLevel = append(nextLevel, nodeID)
				nodeID++
			}
		}
		currentLevel = nextLevel
	}

	return TaxonomyFixture{
		Description: fmt.Sprintf("Tree with depth=%d, breadth=%d (%d categories)", depth, breadth, len(nodes)),
		Nodes:       nodes,
		Parents:     parents,
		Properties: Properties{
			ExpectedDepth: depth,
			RootCount:     1,
		},
	}
}

// Forest creates multiple isolated trees, each a chain of chainSize nodes.
func (g *Generator) Forest(trees, chainSize int) TaxonomyFixture {
	var nodes []string
	var parents []int

	nodeID := 0
	for c := 0; c < trees; c++ {
		for i := 0; i < chainSize; i++ {
			nodes = append(nodes, fmt.Sprintf("t%d_n%d", c, i))
			if i == 0 {
				parents = append(parents, RootParent)
			} else {
				parents = append(parents, nodeID-1)
			}
			nodeID++
		}
	}

	return TaxonomyFixture{
		Description: fmt.Sprintf("%d isolated trees, each a chain of %d categories", trees, chainSize),
		Nodes:       nodes,
		Parents:     parents,
		Properties: Properties{
			ExpectedDepth: chainSize - 1,
			RootCount:     trees,
		},
	}
}

// Cycle creates parent references forming a loop (invalid taxonomy).
// Shape: n0's parent is n1, n1's parent is n2, ..., n{size-1}'s parent is n0.
func (g *Generator) Cycle(size int) TaxonomyFixture {
	nodes := make([]string, size)
	parents := make([]int, size)

	for i := 0; i < size; i++ {
		nodes[i] = fmt.Sprintf("n%d", i)
		parents[i] = (i + 1) % size
	}

	return TaxonomyFixture{
		Description: fmt.Sprintf("Parent cycle of %d categories", size),
		Nodes:       nodes,
		Parents:     parents,
		Properties: Properties{
			HasCycles: true,
		},
	}
}

// SelfLoop creates a single category that declares itself as parent.
func (g *Generator) SelfLoop() TaxonomyFixture {
	return TaxonomyFixture{
		Description: "Single category with itself as parent",
		Nodes:       []string{"n0"},
		Parents:     []int{0},
		Properties: Properties{
			HasCycles: true,
		},
	}
}

// Orphans creates categories whose parents all resolve to nothing.
// The tree builder demotes every one of them to a root.
func (g *Generator) Orphans(size int) TaxonomyFixture {
	nodes := make([]string, size)
	parents := make([]int, size)

	for i := 0; i < size; i++ {
		nodes[i] = fmt.Sprintf("n%d", i)
		parents[i] = GhostParent
	}

	return TaxonomyFixture{
		Description: fmt.Sprintf("%d categories with dangling parent references", size),
		Nodes:       nodes,
		Parents:     parents,
		Properties: Properties{
			RootCount: size,
		},
	}
}

// RandomTaxonomy creates a random forest. Each non-first node picks a random
// earlier node as parent, except that with ghostRatio probability it gets a
// dangling reference instead.
func (g *Generator) RandomTaxonomy(size int, ghostRatio float64) TaxonomyFixture {
	if ghostRatio < 0 {
		ghostRatio = 0
	}
	if ghostRatio > 1 {
		ghostRatio = 1
	}

	nodes := make([]string, size)
	parents := make([]int, size)

	for i := 0; i < size; i++ {
		nodes[i] = fmt.Sprintf("n%d", i)
		switch {
		case i == 0:
			parents[i] = RootParent
		case g.rng.Float64() < ghostRatio:
			parents[i] = GhostParent
		default:
			parents[i] = g.rng.Intn(i)
		}
	}

	return TaxonomyFixture{
		Description: fmt.Sprintf("Random forest with %d categories, ghostRatio=%.2f", size, ghostRatio),
		Nodes:       nodes,
		Parents:     parents,
	}
}

// ============================================================================
// Category Generators (convert fixtures to model.Category slices)
// ============================================================================

// ToCategories converts a TaxonomyFixture to a slice of model.Category.
func (g *Generator) ToCategories(tf TaxonomyFixture) []model.Category {
	cats := make([]model.Category, len(tf.Nodes))

	for i, nodeName := range tf.Nodes {
		id := fmt.Sprintf("%s-%s", g.cfg.IDPrefix, nodeName)

		var parentID string
		switch tf.Parents[i] {
		case RootParent:
			parentID = ""
		case GhostParent:
			parentID = fmt.Sprintf("%s-missing-%d", g.cfg.IDPrefix, i)
		default:
			parentID = fmt.Sprintf("%s-%s", g.cfg.IDPrefix, tf.Nodes[tf.Parents[i]])
		}

		cat := model.Category{
			ID:        id,
			ParentID:  parentID,
			Name:      fmt.Sprintf("Category %s", nodeName),
			Status:    g.pickStatus(),
			SKUCount:  g.rng.Intn(500),
			CreatedAt: g.cfg.BaseTime.Add(time.Duration(i) * time.Hour),
			UpdatedAt: g.cfg.BaseTime.Add(time.Duration(i) * time.Hour),
		}

		if g.cfg.IncludeTags {
			cat.Tags = g.pickTags()
		}

		cats[i] = cat
	}

	return cats
}

// ToJSONL converts categories to JSONL format (one JSON object per line).
func ToJSONL(cats []model.Category) string {
	var sb strings.Builder
	for _, cat := range cats {
		data, err := json.Marshal(cat)
		if err != nil {
			continue
		}
		sb.Write(data)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Helper methods

func (g *Generator) pickStatus() model.Status {
	return g.cfg.StatusMix[g.rng.Intn(len(g.cfg.StatusMix))]
}

var sampleTags = []string{"clearance", "new-arrival", "bestseller", "eco", "premium", "exclusive", "online-only", "bundle", "gift", "imported"}

func (g *Generator) pickTags() []string {
	count := g.rng.Intn(3) + 1
	tags := make([]string, 0, count)
	used := make(map[int]bool)
	for len(tags) < count {
		idx := g.rng.Intn(len(sampleTags))
		if !used[idx] {
			used[idx] = true
			tags = append(tags, sampleTags[idx])
		}
	}
	return tags
}

// ============================================================================
// Convenience Functions
// ============================================================================

// QuickChain creates a chain fixture with default settings.
func QuickChain(size int) []model.Category {
	gen := NewDefault()
	return gen.ToCategories(gen.Chain(size))
}

// QuickStar creates a star fixture with default settings.
func QuickStar(children int) []model.Category {
	gen := NewDefault()
	return gen.ToCategories(gen.Star(children))
}

// QuickTree creates a tree fixture with default settings.
func QuickTree(depth, breadth int) []model.Category {
	gen := NewDefault()
	return gen.ToCategories(gen.Tree(depth, breadth))
}

// QuickForest creates isolated trees with default settings.
func QuickForest(trees, chainSize int) []model.Category {
	gen := NewDefault()
	return gen.ToCategories(gen.Forest(trees, chainSize))
}

// QuickCycle creates a parent cycle with default settings.
func QuickCycle(size int) []model.Category {
	gen := NewDefault()
	return gen.ToCategories(gen.Cycle(size))
}

// QuickRandom creates a random forest with default settings.
func QuickRandom(size int, ghostRatio float64) []model.Category {
	gen := NewDefault()
	return gen.ToCategories(gen.RandomTaxonomy(size, ghostRatio))
}

// Empty returns an empty category slice for edge case testing.
func Empty() []model.Category {
	return []model.Category{}
}

// Single returns a single root category.
func Single() []model.Category {
	gen := NewDefault()
	return []model.Category{{
		ID:        fmt.Sprintf("%s-single", gen.cfg.IDPrefix),
		Name:      "Single Category",
		Status:    model.StatusActive,
		CreatedAt: gen.cfg.BaseTime,
		UpdatedAt: gen.cfg.BaseTime,
	}}
}
