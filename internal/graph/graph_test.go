package graph_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/pageflow/internal/condition"
	"github.com/gyaneshwarpardhi/pageflow/internal/graph"
)

func linearPages(n int) []graph.Page {
	pages := make([]graph.Page, 0, n)
	for i := 1; i <= n; i++ {
		pages = append(pages, graph.Page{
			ID:        fmt.Sprintf("p%d", i),
			Position:  i,
			Questions: []graph.Question{{Ref: fmt.Sprintf("q%d", i)}},
		})
	}
	return pages
}

func mustNew(t *testing.T, pages []graph.Page) *graph.Graph {
	t.Helper()
	g, err := graph.New(pages)
	require.NoError(t, err)
	return g
}

func eq(ref, value string) condition.Condition {
	return &condition.Comparison{QuestionRef: ref, Op: condition.OpEq, Value: condition.Scalar(value)}
}

func ans(key string, values ...string) condition.Answers {
	return condition.Answers{{Key: key, Values: values}}
}

func TestNew_DuplicatePage(t *testing.T) {
	_, err := graph.New([]graph.Page{{ID: "a", Position: 1}, {ID: "a", Position: 2}})
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrDuplicatePage)
}

func TestNew_EmptyID(t *testing.T) {
	_, err := graph.New([]graph.Page{{ID: "", Position: 1}})
	assert.ErrorIs(t, err, graph.ErrEmptyPageID)
}

func TestNew_DoesNotAliasInput(t *testing.T) {
	pages := []graph.Page{{ID: "a", Position: 1, Routes: []graph.Route{{Destination: "b"}}}}
	g := mustNew(t, pages)
	pages[0].Routes[0].Destination = "zzz"
	assert.Equal(t, "b", g.Node("a").Edges()[0].Destination)

	edges := g.Node("a").Edges()
	edges[0].Destination = "mutated"
	assert.Equal(t, "b", g.Node("a").Edges()[0].Destination)
}

func TestEmptyGraph(t *testing.T) {
	g := mustNew(t, nil)
	assert.Nil(t, g.FirstPage())
	assert.Equal(t, 0, g.FindMaxDepth())
	assert.Equal(t, 0, g.MaxTransitions())
	assert.Equal(t, 0, g.Len())
}

func TestFirstPage(t *testing.T) {
	g := mustNew(t, []graph.Page{
		{ID: "c", Position: 7},
		{ID: "a", Position: 3},
		{ID: "b", Position: 3},
	})
	assert.Equal(t, "a", g.FirstPage().ID())
}

func TestMaxTransitions_LinearChain(t *testing.T) {
	for _, n := range []int{1, 2, 5, 12} {
		g := mustNew(t, linearPages(n))
		assert.Equal(t, n-1, g.MaxTransitions(), "n=%d", n)
	}
}

func TestFindMaxDepth_LinearCountsPages(t *testing.T) {
	g := mustNew(t, linearPages(5))
	assert.Equal(t, 5, g.FindMaxDepth())
}

func TestFindMaxDepth_FollowUpPage(t *testing.T) {
	g := mustNew(t, []graph.Page{{
		ID:        "only",
		Position:  1,
		Questions: []graph.Question{{Ref: "q1", FollowUp: true}},
	}})
	assert.Equal(t, 2, g.FindMaxDepth())
	assert.Equal(t, 0, g.MaxTransitions())
}

func TestFindMaxDepth_PlainThenFollowUp(t *testing.T) {
	g := mustNew(t, []graph.Page{
		{ID: "p1", Position: 1, Questions: []graph.Question{{Ref: "q1"}}},
		{ID: "p2", Position: 2, Questions: []graph.Question{{Ref: "q2", FollowUp: true}}},
	})
	assert.Equal(t, 3, g.FindMaxDepth())
	assert.Equal(t, 3, g.FindDepth("p1"))
	assert.Equal(t, 2, g.FindDepth("p2"))
	assert.Equal(t, 0, g.FindDepth("missing"))
}

func TestNextPage_RouteBypassesDefault(t *testing.T) {
	g := mustNew(t, []graph.Page{
		{ID: "A", Position: 1, Questions: []graph.Question{{Ref: "qa"}}, Routes: []graph.Route{
			{Condition: eq("qa", "skip"), Destination: "C"},
		}},
		{ID: "B", Position: 2},
		{ID: "C", Position: 3},
	})
	a := g.Node("A")

	next := g.NextPage(a, ans("qa", "skip"))
	require.NotNil(t, next)
	assert.Equal(t, "C", next.ID())

	res := g.Resolve(a, ans("qa", "skip"))
	assert.Equal(t, graph.ViaRoute, res.Via)
	require.NotNil(t, res.Route)
	assert.Equal(t, "qa", res.Route.QuestionRef())
}

func TestNextPage_NoMatchFallsBack(t *testing.T) {
	g := mustNew(t, []graph.Page{
		{ID: "A", Position: 1, Routes: []graph.Route{{Condition: eq("qa", "x"), Destination: "C"}}},
		{ID: "B", Position: 2, Routes: []graph.Route{{Condition: eq("qb", "x"), Destination: "A"}}},
		{ID: "C", Position: 4},
	})

	res := g.Resolve(g.Node("A"), ans("qa", "y"))
	assert.Equal(t, graph.ViaDefault, res.Via)
	assert.Equal(t, "B", res.Next.ID())

	// position 3 does not exist, so B completes the survey
	res = g.Resolve(g.Node("B"), ans("qb", "y"))
	assert.Equal(t, graph.ViaNone, res.Via)
	assert.Nil(t, res.Next)

	assert.Nil(t, g.NextPage(g.Node("C"), nil))
}

func TestNextPage_DirectRouteEvaluatedLast(t *testing.T) {
	g := mustNew(t, []graph.Page{
		{ID: "A", Position: 1, Routes: []graph.Route{
			{Condition: condition.Direct{}, Destination: "D"},
			{Condition: eq("qa", "yes"), Destination: "C"},
		}},
		{ID: "B", Position: 2},
		{ID: "C", Position: 3},
		{ID: "D", Position: 4},
	})
	a := g.Node("A")

	assert.Equal(t, "C", g.NextPage(a, ans("qa", "yes")).ID())
	assert.Equal(t, "D", g.NextPage(a, ans("qa", "no")).ID())

	// Declaration order is untouched.
	assert.True(t, a.Edges()[0].IsDirect())
}

func TestNextPage_FirstMatchingConditionalWins(t *testing.T) {
	g := mustNew(t, []graph.Page{
		{ID: "A", Position: 1, Routes: []graph.Route{
			{Condition: nil, Destination: "B"},
			{Condition: &condition.Comparison{QuestionRef: "age", Op: condition.OpGte, Value: condition.Scalar("18")}, Destination: "C"},
			{Condition: &condition.Comparison{QuestionRef: "age", Op: condition.OpGte, Value: condition.Scalar("10")}, Destination: "D"},
		}},
		{ID: "B", Position: 2},
		{ID: "C", Position: 3},
		{ID: "D", Position: 4},
	})
	a := g.Node("A")
	assert.Equal(t, "C", g.NextPage(a, ans("age", "30")).ID())
	assert.Equal(t, "D", g.NextPage(a, ans("age", "12")).ID())
	assert.Equal(t, "B", g.NextPage(a, ans("age", "abc")).ID())
}

func TestOrderedEdges(t *testing.T) {
	g := mustNew(t, []graph.Page{{ID: "A", Position: 1, Routes: []graph.Route{
		{Condition: condition.Direct{}, Destination: "d1"},
		{Condition: eq("q", "1"), Destination: "c1"},
		{Condition: nil, Destination: "d2"},
		{Condition: eq("q", "2"), Destination: "c2"},
	}}})
	var got []string
	for _, r := range graph.OrderedEdges(g.Node("A")) {
		got = append(got, r.Destination)
	}
	assert.Equal(t, []string{"c1", "c2", "d1", "d2"}, got)
	assert.Nil(t, graph.OrderedEdges(nil))
}

func TestNextPage_MatchedRouteWithUnknownDestinationCompletes(t *testing.T) {
	g := mustNew(t, []graph.Page{
		{ID: "A", Position: 1, Routes: []graph.Route{{Condition: eq("q", "stop"), Destination: "nowhere"}}},
		{ID: "B", Position: 2},
	})
	res := g.Resolve(g.Node("A"), ans("q", "stop"))
	assert.Equal(t, graph.ViaRoute, res.Via)
	assert.Nil(t, res.Next)

	dangling := g.Dangling()
	require.Len(t, dangling, 1)
	assert.Equal(t, "nowhere", dangling[0].Destination)
}

func TestNextPage_NilCurrent(t *testing.T) {
	g := mustNew(t, linearPages(3))
	assert.Nil(t, g.NextPage(nil, nil))
	assert.Equal(t, graph.ViaNone, g.Resolve(nil, nil).Via)
}

func TestDefaultNext_DuplicatePositionFirstDeclaredWins(t *testing.T) {
	g := mustNew(t, []graph.Page{
		{ID: "A", Position: 1},
		{ID: "B2", Position: 2},
		{ID: "B1", Position: 2},
	})
	for i := 0; i < 20; i++ {
		assert.Equal(t, "B2", g.DefaultNext(g.Node("A")).ID())
	}
}

func TestFindMaxDepth_CycleTerminates(t *testing.T) {
	g := mustNew(t, []graph.Page{
		{ID: "A", Position: 1},
		{ID: "B", Position: 2},
		{ID: "C", Position: 3, Routes: []graph.Route{{Condition: condition.Direct{}, Destination: "A"}}},
	})
	assert.Equal(t, 3, g.FindMaxDepth())
	assert.Equal(t, 3, g.FindDepth("B"))
	assert.Equal(t, 2, g.MaxTransitions())
}

func TestFindMaxDepth_SelfLoop(t *testing.T) {
	g := mustNew(t, []graph.Page{
		{ID: "A", Position: 1, Routes: []graph.Route{{Destination: "A"}}},
	})
	assert.Equal(t, 1, g.FindMaxDepth())
}

func TestFindMaxDepth_BranchTakesLongest(t *testing.T) {
	// A branches to a short path (B) or a long one (C, D, E).
	g := mustNew(t, []graph.Page{
		{ID: "A", Position: 1, Routes: []graph.Route{{Condition: eq("q", "short"), Destination: "B"}}},
		{ID: "C", Position: 2},
		{ID: "D", Position: 3},
		{ID: "E", Position: 4, Questions: []graph.Question{{Ref: "fu", FollowUp: true}}},
		{ID: "B", Position: 10},
	})
	assert.Equal(t, 5, g.FindMaxDepth())
	assert.Equal(t, 3, g.MaxTransitions())
}

func TestFindMaxDepth_DisconnectedComponents(t *testing.T) {
	g := mustNew(t, []graph.Page{
		{ID: "a1", Position: 1},
		{ID: "a2", Position: 2},
		{ID: "b1", Position: 10},
		{ID: "b2", Position: 11},
		{ID: "b3", Position: 12},
	})
	assert.Equal(t, 3, g.FindMaxDepth())
	assert.Equal(t, 2, g.MaxTransitions())
}

func TestFindMaxDepth_ConvergingPathsStayLinear(t *testing.T) {
	// Every page routes to every later page; without the visited guard this is exponential.
	const n = 40
	pages := linearPages(n)
	for i := range pages {
		for j := i + 1; j < n; j++ {
			pages[i].Routes = append(pages[i].Routes, graph.Route{Condition: eq("q", "x"), Destination: pages[j].ID})
		}
	}
	g := mustNew(t, pages)
	assert.Equal(t, n, g.FindMaxDepth())
}

func TestNode_Refs(t *testing.T) {
	g := mustNew(t, []graph.Page{{ID: "A", Position: 1, Questions: []graph.Question{
		{Ref: "q1", Required: true},
		{Ref: "q2", FollowUp: true},
		{Ref: "q3", Required: true, FollowUp: true},
	}}})
	n := g.Node("A")
	assert.Equal(t, []string{"q1", "q3"}, n.RequiredRefs())
	assert.Equal(t, []string{"q2", "q3"}, n.FollowUpRefs())
	assert.Len(t, n.Questions(), 3)
}

func TestGraph_ConcurrentReaders(t *testing.T) {
	g := mustNew(t, []graph.Page{
		{ID: "A", Position: 1, Routes: []graph.Route{
			{Condition: condition.Direct{}, Destination: "C"},
			{Condition: eq("q", "b"), Destination: "B"},
		}},
		{ID: "B", Position: 2},
		{ID: "C", Position: 3},
	})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if i%2 == 0 {
					assert.Equal(t, "B", g.NextPage(g.Node("A"), ans("q", "b")).ID())
				} else {
					assert.Equal(t, 3, g.FindMaxDepth())
				}
			}
		}(i)
	}
	wg.Wait()
}
