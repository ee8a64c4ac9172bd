package interaction

import (
	"github.com/dd0wney/cluso-eyeball/pkg/graph"
	"github.com/dd0wney/cluso-eyeball/pkg/style"
)

// ComputeStyles returns the style of every node and edge in g for the given
// selection. It never mutates g or sel.
//
// With nothing selected every element gets its base style. Selecting a peer
// highlights the peer, the central node and the edges between them;
// selecting the central node highlights it and all of its edges.
func ComputeStyles(g *graph.Graph, sel SelectionState) style.Assignment {
	if g == nil {
		return style.NewAssignment(0, 0)
	}

	nodes := g.Nodes()
	edges := g.Edges()
	a := style.NewAssignment(len(nodes), len(edges))

	for _, n := range nodes {
		a.Nodes[n.ID] = style.BaseNode(n.Central, n.Malicious)
	}
	for _, e := range edges {
		a.Edges[e.ID] = style.EdgeStyle{Color: style.EdgeColor(e.Malicious), Width: e.Width}
	}

	if sel.SelectedNodeID == "" {
		return a
	}
	if _, ok := a.Nodes[sel.SelectedNodeID]; !ok {
		return a
	}

	a.Nodes[sel.SelectedNodeID] = style.HighlightNode()
	if _, ok := a.Nodes[graph.CentralID]; ok {
		a.Nodes[graph.CentralID] = style.HighlightNode()
	}
	for _, e := range g.ConnectedEdges(sel.SelectedNodeID) {
		es := a.Edges[e.ID]
		es.Color = style.Highlight
		a.Edges[e.ID] = es
	}
	return a
}
