package graph

import (
	"github.com/gyaneshwarpardhi/pageflow/internal/condition"
)

// Question is the part of a survey question that navigation cares about.
type Question struct {
	Ref      string `json:"ref"`
	Required bool   `json:"required"`
	FollowUp bool   `json:"follow_up"`
}

// Route is one outbound edge of a page. A nil Condition is unconditional.
type Route struct {
	Condition   condition.Condition
	Destination string
}

// IsDirect reports whether the route is taken regardless of answers.
func (r Route) IsDirect() bool {
	return condition.IsDirect(r.Condition)
}

// QuestionRef returns the question the route's condition reads from.
// Direct routes read nothing.
func (r Route) QuestionRef() string {
	if c, ok := r.Condition.(*condition.Comparison); ok {
		return c.QuestionRef
	}
	return ""
}

// Matches evaluates the route's condition against answers.
func (r Route) Matches(answers condition.Answers) bool {
	return condition.Evaluate(r.Condition, answers)
}

func (r Route) String() string {
	if r.Condition == nil {
		return condition.Direct{}.String()
	}
	return r.Condition.String()
}

// Page is the externally supplied description of one survey screen.
type Page struct {
	ID        string
	Position  int
	Questions []Question
	Routes    []Route
}

// Node is the graph's view of a Page. It is never mutated after New.
type Node struct {
	id        string
	position  int
	edges     []Route
	questions []Question
}

func newNode(p Page) *Node {
	return &Node{
		id:        p.ID,
		position:  p.Position,
		edges:     append([]Route(nil), p.Routes...),
		questions: append([]Question(nil), p.Questions...),
	}
}

func (n *Node) ID() string    { return n.id }
func (n *Node) Position() int { return n.position }

// Edges returns a copy of the page's routes in declaration order.
func (n *Node) Edges() []Route { return append([]Route(nil), n.edges...) }

// Questions returns a copy of the page's questions.
func (n *Node) Questions() []Question { return append([]Question(nil), n.questions...) }

// FollowUpRefs lists the refs of follow-up questions on the page.
func (n *Node) FollowUpRefs() []string {
	var refs []string
	for _, q := range n.questions {
		if q.FollowUp {
			refs = append(refs, q.Ref)
		}
	}
	return refs
}

// RequiredRefs lists the refs of required questions on the page.
func (n *Node) RequiredRefs() []string {
	var refs []string
	for _, q := range n.questions {
		if q.Required {
			refs = append(refs, q.Ref)
		}
	}
	return refs
}

// steps is the number of progress steps the page contributes: the page
// itself plus one per follow-up question.
func (n *Node) steps() int {
	return 1 + len(n.FollowUpRefs())
}
