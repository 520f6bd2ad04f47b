package tree

// IndexAll walks the forest pre-order and returns every node keyed by its
// value. Should duplicate values ever appear, the first occurrence wins.
func IndexAll[T any](forest []*Node[T]) map[string]*Node[T] {
	index := make(map[string]*Node[T])
	var visit func(nodes []*Node[T])
	visit = func(nodes []*Node[T]) {
		for _, n := range nodes {
			if _, seen := index[n.Value]; !seen {
				index[n.Value] = n
			}
			visit(n.Children)
		}
	}
	visit(forest)
	return index
}

// IndexSelected returns the restricted index holding only nodes whose
// value is in selected. Same pre-order, first-occurrence-wins traversal
// as IndexAll; selected values absent from the forest are simply missing
// from the result.
func IndexSelected[T any](forest []*Node[T], selected []string) map[string]*Node[T] {
	index := make(map[string]*Node[T], len(selected))
	if len(selected) == 0 {
		return index
	}
	want := make(map[string]bool, len(selected))
	for _, v := range selected {
		want[v] = true
	}
	var visit func(nodes []*Node[T])
	visit = func(nodes []*Node[T]) {
		for _, n := range nodes {
			if want[n.Value] {
				if _, seen := index[n.Value]; !seen {
					index[n.Value] = n
				}
			}
			visit(n.Children)
		}
	}
	visit(forest)
	return index
}
