// Package picker implements the selection state machine behind taxo's
// hierarchy pickers. A Picker owns one forest plus its selection,
// expansion and search state; every action returns a fresh immutable
// State snapshot for the rendering layer to walk. Actions naming values
// that are missing from the forest are silent no-ops because records can
// be reloaded underneath a picker at any time.
package picker

import "github.com/vanderheijden86/taxo/pkg/tree"

// Config carries the recognized picker options. The sibling comparator
// travels with the record accessors instead.
type Config struct {
	// Multiple switches from single selection to cascading multi
	// selection.
	Multiple bool
	// Searchable wires SetSearchTerm to the filter pass. When false the
	// term is ignored and the full forest stays visible.
	Searchable bool
	// MaxTagCount truncates the selected-summary labels. Display only,
	// never a cap on the selection itself. Zero means no truncation.
	MaxTagCount int
}

// Picker is one selection controller instance. Not safe for concurrent
// use; the UI loop applies actions sequentially.
type Picker[T any] struct {
	cfg Config
	acc tree.Accessors[T]

	records  []T
	forest   []*tree.Node[T]
	index    map[string]*tree.Node[T]
	visible  []*tree.Node[T]
	selected []string
	isSel    map[string]bool
	expanded map[string]bool
	search   string
	open     bool
}

// New builds the forest from records and seeds the selection with
// initial. Single-mode pickers keep at most the first initial value.
// Ancestors of every seeded value are expanded right away so the
// selection is visible without interaction.
func New[T any](records []T, acc tree.Accessors[T], cfg Config, initial []string) *Picker[T] {
	p := &Picker[T]{
		cfg:      cfg,
		acc:      acc,
		isSel:    make(map[string]bool),
		expanded: make(map[string]bool),
	}
	p.rebuild(records)
	if !cfg.Multiple && len(initial) > 1 {
		initial = initial[:1]
	}
	for _, v := range initial {
		p.addValue(v)
	}
	p.expandSelection()
	return p
}

// Open shows the picker.
func (p *Picker[T]) Open() State[T] {
	p.open = true
	return p.Snapshot()
}

// Close hides the picker without touching selection, expansion or search.
func (p *Picker[T]) Close() State[T] {
	p.open = false
	return p.Snapshot()
}

// ToggleExpand flips the expansion of the node with the given id.
// Independent of selection; unknown ids are no-ops.
func (p *Picker[T]) ToggleExpand(id string) State[T] {
	if _, ok := p.index[id]; !ok {
		return p.Snapshot()
	}
	if p.expanded[id] {
		delete(p.expanded, id)
	} else {
		p.expanded[id] = true
	}
	return p.Snapshot()
}

// SelectSingle sets the selection to value, closes the picker and clears
// the search term. No-op on disabled nodes, unknown values, or
// multiple-mode pickers.
func (p *Picker[T]) SelectSingle(value string) State[T] {
	if p.cfg.Multiple {
		return p.Snapshot()
	}
	n, ok := p.index[value]
	if !ok || n.Disabled {
		return p.Snapshot()
	}
	p.selected = p.selected[:0]
	clear(p.isSel)
	p.addValue(n.Value)
	p.expandSelection()
	p.resetSearch()
	p.open = false
	return p.Snapshot()
}

// ToggleMulti adds or removes value together with every descendant value.
// The cascade is unconditional in both directions: deselecting a node
// removes descendants that were never individually toggled. No-op on
// disabled nodes, unknown values, or single-mode pickers.
func (p *Picker[T]) ToggleMulti(value string) State[T] {
	if !p.cfg.Multiple {
		return p.Snapshot()
	}
	n, ok := p.index[value]
	if !ok || n.Disabled {
		return p.Snapshot()
	}
	cascade := append([]string{n.Value}, tree.Descendants(n)...)
	if p.isSel[n.Value] {
		p.removeValues(cascade)
	} else {
		for _, v := range cascade {
			p.addValue(v)
		}
	}
	p.expandSelection()
	return p.Snapshot()
}

// Clear empties the selection. Expansion and search are left alone, so
// clearing twice is the same as clearing once.
func (p *Picker[T]) Clear() State[T] {
	p.selected = p.selected[:0]
	clear(p.isSel)
	return p.Snapshot()
}

// SetSearchTerm stores the term and recomputes the visible forest.
// Ancestors of matches are unioned into the expanded set; search only
// ever grows expansion, it never collapses. Ignored on non-searchable
// pickers.
func (p *Picker[T]) SetSearchTerm(term string) State[T] {
	if !p.cfg.Searchable {
		return p.Snapshot()
	}
	p.search = term
	p.applyFilter()
	return p.Snapshot()
}

// SetRecords rebuilds the forest from refreshed records. Selection and
// expansion survive for ids still present and are dropped silently for
// ids that vanished. The current search term is re-applied to the new
// forest.
func (p *Picker[T]) SetRecords(records []T) State[T] {
	p.rebuild(records)

	kept := make([]string, 0, len(p.selected))
	for _, v := range p.selected {
		if _, ok := p.index[v]; ok {
			kept = append(kept, v)
			continue
		}
		delete(p.isSel, v)
	}
	p.selected = kept

	for id := range p.expanded {
		if _, ok := p.index[id]; !ok {
			delete(p.expanded, id)
		}
	}

	p.applyFilter()
	p.expandSelection()
	return p.Snapshot()
}

// rebuild replaces the forest and the full index, leaving selection and
// expansion to the caller.
func (p *Picker[T]) rebuild(records []T) {
	p.records = append(p.records[:0:0], records...)
	p.forest = tree.Build(p.records, p.acc)
	p.index = tree.IndexAll(p.forest)
	p.visible = p.forest
}

// applyFilter recomputes the visible forest from the current search term.
func (p *Picker[T]) applyFilter() {
	result := tree.Filter(p.forest, p.search)
	p.visible = result.Nodes
	for id := range result.AutoExpandIDs {
		p.expanded[id] = true
	}
}

// resetSearch drops the term and restores the unfiltered forest without
// adding expansions.
func (p *Picker[T]) resetSearch() {
	p.search = ""
	p.visible = p.forest
}

// expandSelection unions the root-to-node id chain of every selected
// value into the expanded set, so selected nodes are always reachable
// without manual expansion. Values that do not resolve in the current
// forest contribute nothing.
func (p *Picker[T]) expandSelection() {
	for _, v := range p.selected {
		for _, id := range tree.FindPath(p.forest, v) {
			p.expanded[id] = true
		}
	}
}

func (p *Picker[T]) addValue(v string) {
	if p.isSel[v] {
		return
	}
	p.isSel[v] = true
	p.selected = append(p.selected, v)
}

func (p *Picker[T]) removeValues(values []string) {
	drop := make(map[string]bool, len(values))
	for _, v := range values {
		drop[v] = true
	}
	kept := p.selected[:0]
	for _, v := range p.selected {
		if drop[v] {
			delete(p.isSel, v)
			continue
		}
		kept = append(kept, v)
	}
	p.selected = kept
}
