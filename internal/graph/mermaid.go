package graph

import (
	"fmt"
	"strings"
)

// Overlay marks respondent progress on a diagram.
type Overlay struct {
	Visited []string
	Current string
}

// endNode is the shared sink for routes that complete the survey. Page
// node ids always carry the p_ prefix, so none can collide with it.
const endNode = "END"

// GenerateMermaid renders the graph as a Mermaid flowchart.
// Routes are solid arrows labelled with their condition; the positional
// default edge is dotted. Routes without a resolvable destination point
// at a shared END node. Labels show the original page ids.
func GenerateMermaid(g *Graph, overlay *Overlay) string {
	ids := mermaidIDs(g)
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	needEnd := false
	for _, n := range g.byPositionOrder() {
		id := ids[n.id]
		label := strings.ReplaceAll(n.id, "\"", "'")
		if f := len(n.FollowUpRefs()); f > 0 {
			label = fmt.Sprintf("%s <br/> +%d follow-up", label, f)
		}
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id, label))

		for _, r := range OrderedEdges(n) {
			to, ok := ids[r.Destination]
			if !ok {
				to = endNode
				needEnd = true
			}
			if r.IsDirect() {
				sb.WriteString(fmt.Sprintf("    %s --> %s\n", id, to))
				continue
			}
			cond := strings.ReplaceAll(r.String(), "\"", "'")
			sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", id, cond, to))
		}
		if next := g.DefaultNext(n); next != nil {
			sb.WriteString(fmt.Sprintf("    %s -.-> %s\n", id, ids[next.id]))
		}
	}
	if needEnd {
		sb.WriteString(fmt.Sprintf("    %s((\"end\"))\n", endNode))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		seen := make(map[string]bool)
		for _, v := range overlay.Visited {
			safe, ok := ids[v]
			if !ok || seen[safe] {
				continue
			}
			seen[safe] = true
			sb.WriteString(fmt.Sprintf("    class %s visited;\n", safe))
		}
		if safe, ok := ids[overlay.Current]; ok {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", safe))
		}
	}
	return sb.String()
}

// mermaidIDs assigns every page a unique Mermaid node id, in declaration
// order. Pages whose sanitized ids clash get a numeric suffix.
func mermaidIDs(g *Graph) map[string]string {
	ids := make(map[string]string, len(g.order))
	used := make(map[string]bool, len(g.order))
	for _, n := range g.order {
		base := "p_" + sanitizeMermaidID(n.id)
		id := base
		for i := 2; used[id]; i++ {
			id = fmt.Sprintf("%s_%d", base, i)
		}
		used[id] = true
		ids[n.id] = id
	}
	return ids
}

func sanitizeMermaidID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
