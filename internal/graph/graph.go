package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicatePage is returned by New when two pages share an identifier.
	ErrDuplicatePage = errors.New("duplicate page id")
	// ErrEmptyPageID is returned by New for a page without an identifier.
	ErrEmptyPageID = errors.New("page id is required")
)

// Graph holds survey pages and their routes.
// It is immutable once built; hot-reload creates a new Graph and swaps atomically.
type Graph struct {
	nodes      map[string]*Node // id → node
	order      []*Node          // insertion order
	byPosition map[int]*Node    // position → first node declared at it
}

// New builds a Graph from pages in the given order.
func New(pages []Page) (*Graph, error) {
	g := &Graph{
		nodes:      make(map[string]*Node, len(pages)),
		order:      make([]*Node, 0, len(pages)),
		byPosition: make(map[int]*Node, len(pages)),
	}
	for i, p := range pages {
		if p.ID == "" {
			return nil, fmt.Errorf("pages[%d]: %w", i, ErrEmptyPageID)
		}
		if _, ok := g.nodes[p.ID]; ok {
			return nil, fmt.Errorf("pages[%d]: %w %q", i, ErrDuplicatePage, p.ID)
		}
		n := newNode(p)
		g.nodes[n.id] = n
		g.order = append(g.order, n)
		if _, taken := g.byPosition[n.position]; !taken {
			g.byPosition[n.position] = n
		}
	}
	return g, nil
}

// Node returns a node by ID (nil if not found).
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// Nodes returns all nodes in declaration order.
func (g *Graph) Nodes() []*Node {
	return append([]*Node(nil), g.order...)
}

// Len returns the total number of pages.
func (g *Graph) Len() int {
	return len(g.order)
}

// FirstPage returns the page with the smallest position, or nil for an
// empty graph. Ties go to the page declared first.
func (g *Graph) FirstPage() *Node {
	var first *Node
	for _, n := range g.order {
		if first == nil || n.position < first.position {
			first = n
		}
	}
	return first
}

// DefaultNext returns the page at n's position plus one. When several pages
// share that position the one declared first wins.
func (g *Graph) DefaultNext(n *Node) *Node {
	if n == nil {
		return nil
	}
	return g.byPosition[n.position+1]
}

// DanglingRoute is a route whose destination does not resolve to a page.
type DanglingRoute struct {
	PageID      string `json:"page_id"`
	Index       int    `json:"index"`
	Destination string `json:"destination"`
}

// Dangling lists routes that end the survey because their destination is
// empty or unknown.
func (g *Graph) Dangling() []DanglingRoute {
	var out []DanglingRoute
	for _, n := range g.order {
		for i, r := range n.edges {
			if _, ok := g.nodes[r.Destination]; !ok {
				out = append(out, DanglingRoute{PageID: n.id, Index: i, Destination: r.Destination})
			}
		}
	}
	return out
}
