// Package tree builds and queries the rooted forest behind every
// hierarchy picker in taxo. It is generic over the record type: callers
// describe their records through an Accessors value and get back plain
// Node values that the selection and rendering layers share.
package tree

import "strings"

// Node is the tree representation of one input record. Nodes are treated
// as immutable once built; Filter returns pruned clones rather than
// touching the originals.
type Node[T any] struct {
	// ID is the stable identifier from the source record.
	ID string
	// Value is the externally addressable selection key. It equals ID in
	// this system but is kept distinct because some callers select by a
	// different field.
	Value       string
	Label       string
	Description string
	// Disabled nodes stay visible and traversable but cannot be selected.
	Disabled bool
	// Children is sorted at build time, recursively on every level.
	Children []*Node[T]
	// Record is the source record the node was derived from.
	Record T
}

// Accessors describes how to read a record. ID, ParentID and Label are
// required; the rest may be nil.
type Accessors[T any] struct {
	ID       func(T) string
	ParentID func(T) string
	Label    func(T) string
	// Description returns optional display text searched by Filter.
	Description func(T) string
	// Disabled marks records that may not be selected.
	Disabled func(T) bool
	// Less overrides the sibling sort order. The default compares labels
	// case-insensitively. Ties are always broken by id afterwards, so any
	// comparator yields a deterministic forest.
	Less func(a, b *Node[T]) bool
}

func defaultLess[T any](a, b *Node[T]) bool {
	return strings.ToLower(a.Label) < strings.ToLower(b.Label)
}

// orderedLess wraps a comparator with an id tie-break to make the sibling
// order total.
func orderedLess[T any](less func(a, b *Node[T]) bool) func(a, b *Node[T]) bool {
	return func(a, b *Node[T]) bool {
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return a.ID < b.ID
	}
}
