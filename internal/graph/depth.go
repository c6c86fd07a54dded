package graph

import (
	"cmp"
	"slices"
)

// successors returns every page reachable from n in one step without
// knowing the answers: the default edge first, then each declared route
// destination that exists.
func (g *Graph) successors(n *Node) []*Node {
	seen := make(map[string]struct{}, len(n.edges)+1)
	out := make([]*Node, 0, len(n.edges)+1)
	add := func(next *Node) {
		if next == nil {
			return
		}
		if _, dup := seen[next.id]; dup {
			return
		}
		seen[next.id] = struct{}{}
		out = append(out, next)
	}
	add(g.DefaultNext(n))
	for _, r := range n.edges {
		add(g.nodes[r.Destination])
	}
	return out
}

// walk is a depth-first search that never expands a node twice, so it
// terminates on cycles and runs in O(V+E). It returns the largest depth
// reached below n, where every node adds weight(n).
func (g *Graph) walk(n *Node, depth int, visited map[string]bool, weight func(*Node) int) int {
	visited[n.id] = true
	depth += weight(n)
	best := depth
	for _, next := range g.successors(n) {
		if visited[next.id] {
			continue
		}
		if d := g.walk(next, depth, visited, weight); d > best {
			best = d
		}
	}
	return best
}

// byPositionOrder returns nodes sorted by position, ties in declaration order.
func (g *Graph) byPositionOrder() []*Node {
	nodes := g.Nodes()
	slices.SortStableFunc(nodes, func(a, b *Node) int {
		return cmp.Compare(a.position, b.position)
	})
	return nodes
}

func (g *Graph) maxWalk(weight func(*Node) int) int {
	visited := make(map[string]bool, len(g.order))
	best := 0
	for _, n := range g.byPositionOrder() {
		if visited[n.id] {
			continue
		}
		if d := g.walk(n, 0, visited, weight); d > best {
			best = d
		}
	}
	return best
}

// FindMaxDepth estimates the worst-case number of progress steps in the
// survey, before any answer is known. Every page on the longest path counts
// one step plus one per follow-up question, so five plain pages in a row
// give 5. The visited set is shared across starting pages.
func (g *Graph) FindMaxDepth() int {
	return g.maxWalk((*Node).steps)
}

// FindDepth is FindMaxDepth restricted to paths starting at id.
// Unknown ids have depth 0.
func (g *Graph) FindDepth(id string) int {
	n := g.nodes[id]
	if n == nil {
		return 0
	}
	return g.walk(n, 0, make(map[string]bool, len(g.order)), (*Node).steps)
}

// MaxTransitions is the longest path counted in page transitions: a chain
// of N pages gives N-1, a single page gives 0.
func (g *Graph) MaxTransitions() int {
	pages := g.maxWalk(func(*Node) int { return 1 })
	if pages == 0 {
		return 0
	}
	return pages - 1
}
