package picker

import (
	"sort"

	"github.com/vanderheijden86/taxo/pkg/tree"
)

// State is an immutable snapshot of a picker. Every action returns one;
// the rendering layer walks Visible and queries IsExpanded/IsSelected per
// node. Later actions never mutate an earlier snapshot.
type State[T any] struct {
	Open bool
	// Values holds the selected values in selection order. Single-mode
	// pickers carry zero or one entry.
	Values     []string
	SearchTerm string
	// Visible is the current forest: filtered when a search term is
	// active, the full forest otherwise.
	Visible []*tree.Node[T]
	// SelectedNodes maps each selected value that resolves in the full
	// forest to its node.
	SelectedNodes map[string]*tree.Node[T]

	expanded map[string]bool
	selected map[string]bool
	tagLimit int
}

// Snapshot returns the current state without applying an action.
func (p *Picker[T]) Snapshot() State[T] {
	values := make([]string, len(p.selected))
	copy(values, p.selected)
	visible := make([]*tree.Node[T], len(p.visible))
	copy(visible, p.visible)
	expanded := make(map[string]bool, len(p.expanded))
	for id := range p.expanded {
		expanded[id] = true
	}
	selected := make(map[string]bool, len(p.isSel))
	for v := range p.isSel {
		selected[v] = true
	}
	return State[T]{
		Open:          p.open,
		Values:        values,
		SearchTerm:    p.search,
		Visible:       visible,
		SelectedNodes: tree.IndexSelected(p.forest, p.selected),
		expanded:      expanded,
		selected:      selected,
		tagLimit:      p.cfg.MaxTagCount,
	}
}

// Value returns the single-mode selection.
func (s State[T]) Value() (string, bool) {
	if len(s.Values) == 0 {
		return "", false
	}
	return s.Values[0], true
}

// IsSelected reports whether value is part of the selection.
func (s State[T]) IsSelected(value string) bool {
	return s.selected[value]
}

// IsExpanded reports whether the node with the given id is expanded.
func (s State[T]) IsExpanded(id string) bool {
	return s.expanded[id]
}

// ExpandedIDs returns the expanded ids, sorted for stable rendering and
// assertions.
func (s State[T]) ExpandedIDs() []string {
	ids := make([]string, 0, len(s.expanded))
	for id := range s.expanded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SummaryTags returns the labels summarizing the selection, truncated to
// the picker's MaxTagCount, plus how many selected values were cut off.
// Values that no longer resolve to a node fall back to the raw value.
// Truncation is cosmetic; the selection itself is never capped.
func (s State[T]) SummaryTags() (labels []string, overflow int) {
	shown := s.Values
	if s.tagLimit > 0 && len(shown) > s.tagLimit {
		overflow = len(shown) - s.tagLimit
		shown = shown[:s.tagLimit]
	}
	labels = make([]string, len(shown))
	for i, v := range shown {
		if n, ok := s.SelectedNodes[v]; ok {
			labels[i] = n.Label
			continue
		}
		labels[i] = v
	}
	return labels, overflow
}
