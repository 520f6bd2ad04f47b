package model

import (
	"strings"

	"github.com/vanderheijden86/taxo/pkg/tree"
)

// TreeAccessors adapts Category records to the tree package. Draft and
// discontinued categories come back disabled so pickers show them without
// offering them.
func TreeAccessors() tree.Accessors[Category] {
	return tree.Accessors[Category]{
		ID:          func(c Category) string { return c.ID },
		ParentID:    func(c Category) string { return c.ParentID },
		Label:       func(c Category) string { return c.Name },
		Description: func(c Category) string { return c.Summary },
		Disabled:    func(c Category) bool { return c.Disabled() },
	}
}

// TreeAccessorsSorted is TreeAccessors with a sibling comparator override.
func TreeAccessorsSorted(less func(a, b *tree.Node[Category]) bool) tree.Accessors[Category] {
	acc := TreeAccessors()
	acc.Less = less
	return acc
}

// SortByName orders siblings by case-insensitive name, matching the tree
// package default. The UI sort cycle names it explicitly.
func SortByName(a, b *tree.Node[Category]) bool {
	return strings.ToLower(a.Label) < strings.ToLower(b.Label)
}

// SortBySKUCount orders siblings by SKU count, largest first.
func SortBySKUCount(a, b *tree.Node[Category]) bool {
	return a.Record.SKUCount > b.Record.SKUCount
}

// SortByUpdated orders siblings by update time, newest first.
func SortByUpdated(a, b *tree.Node[Category]) bool {
	return a.Record.UpdatedAt.After(b.Record.UpdatedAt)
}
