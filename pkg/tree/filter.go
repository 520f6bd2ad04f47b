package tree

import "strings"

// FilterResult carries the pruned forest and the ids that must expand so
// the matches become visible.
type FilterResult[T any] struct {
	Nodes []*Node[T]
	// AutoExpandIDs holds the id of every node that survived solely
	// because a descendant matched.
	AutoExpandIDs map[string]bool
}

// Filter prunes the forest to nodes whose label or description contains
// term (case-insensitive), or that have a surviving descendant. A
// whitespace-only term returns the input forest unchanged. Surviving
// nodes are shallow clones whose child list is exactly the surviving
// subset, so the original forest is never mutated.
func Filter[T any](forest []*Node[T], term string) FilterResult[T] {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return FilterResult[T]{Nodes: forest, AutoExpandIDs: map[string]bool{}}
	}
	needle := strings.ToLower(trimmed)
	result := FilterResult[T]{AutoExpandIDs: map[string]bool{}}
	result.Nodes = filterNodes(forest, needle, result.AutoExpandIDs)
	return result
}

func filterNodes[T any](nodes []*Node[T], needle string, autoExpand map[string]bool) []*Node[T] {
	var kept []*Node[T]
	for _, n := range nodes {
		// Children decide first; the node's own fate depends on them.
		surviving := filterNodes(n.Children, needle, autoExpand)
		self := selfMatch(n, needle)
		if !self && len(surviving) == 0 {
			continue
		}
		if !self {
			autoExpand[n.ID] = true
		}
		clone := *n
		clone.Children = surviving
		kept = append(kept, &clone)
	}
	return kept
}

func selfMatch[T any](n *Node[T], needle string) bool {
	if strings.Contains(strings.ToLower(n.Label), needle) {
		return true
	}
	return n.Description != "" && strings.Contains(strings.ToLower(n.Description), needle)
}
