package tree

// Descendants returns the values of every node strictly below n,
// pre-order. n's own value is not included.
func Descendants[T any](n *Node[T]) []string {
	if n == nil {
		return nil
	}
	var values []string
	var visit func(nodes []*Node[T])
	visit = func(nodes []*Node[T]) {
		for _, child := range nodes {
			values = append(values, child.Value)
			visit(child.Children)
		}
	}
	visit(n.Children)
	return values
}
