package graph

import (
	"slices"

	"github.com/gyaneshwarpardhi/pageflow/internal/condition"
)

// Via records how a next page was chosen.
type Via string

const (
	ViaRoute   Via = "route"
	ViaDefault Via = "default"
	ViaNone    Via = "none"
)

// Resolution is the outcome of one navigation step. A nil Next means the
// survey is complete.
type Resolution struct {
	Next  *Node
	Via   Via
	Route *Route // the matching route when Via is ViaRoute
}

// OrderedEdges returns n's routes in evaluation order: conditional routes in
// declaration order, then direct routes in declaration order.
// The node's own slice is never reordered.
func OrderedEdges(n *Node) []Route {
	if n == nil {
		return nil
	}
	edges := n.Edges()
	slices.SortStableFunc(edges, func(a, b Route) int {
		return directRank(a) - directRank(b)
	})
	return edges
}

func directRank(r Route) int {
	if r.IsDirect() {
		return 1
	}
	return 0
}

// Resolve picks the page that follows current for the submitted answers.
// The first matching route wins; with no match the default edge is used.
// A matching route with an unknown destination completes the survey.
func (g *Graph) Resolve(current *Node, answers condition.Answers) Resolution {
	if current == nil {
		return Resolution{Via: ViaNone}
	}
	for _, r := range OrderedEdges(current) {
		if !r.Matches(answers) {
			continue
		}
		return Resolution{Next: g.nodes[r.Destination], Via: ViaRoute, Route: &r}
	}
	if next := g.DefaultNext(current); next != nil {
		return Resolution{Next: next, Via: ViaDefault}
	}
	return Resolution{Via: ViaNone}
}

// NextPage returns the page after current, or nil when the survey is complete.
func (g *Graph) NextPage(current *Node, answers condition.Answers) *Node {
	return g.Resolve(current, answers).Next
}
