package canopy

// ApplyToHierarchy visits every node reachable from n through child links,
// including n itself, exactly once. Parent links are never followed, so the
// walk stays inside the subtree rooted at n.
//
// With breadthFirst true, nodes are visited level by level through a FIFO
// queue: every node at depth d is visited before any node at depth d+1.
//
// Otherwise a LIFO stack is used: a node is visited when popped and its
// children are then pushed in collection order, so among siblings the
// last-pushed subtree is walked first. This is not the sibling order a
// recursive pre-order walk would produce; callers depend on the stack
// order, so it is preserved exactly.
func (n *Node) ApplyToHierarchy(visit func(*Node), breadthFirst bool) {
	if breadthFirst {
		queue := []*Node{n}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			visit(cur)
			queue = append(queue, cur.children...)
		}
		return
	}
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(cur)
		stack = append(stack, cur.children...)
	}
}
