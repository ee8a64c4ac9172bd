// Package graph builds the hub-and-spoke connection graph: one central node
// and one ring of peers.
package graph

import (
	"github.com/dd0wney/cluso-eyeball/pkg/records"
	"github.com/dd0wney/cluso-eyeball/pkg/style"
)

// CentralID is the fixed id of the central node.
const CentralID = records.CentralHost

const (
	ShapeCircularImage = "circularImage"
	SmoothDynamic      = "dynamic"
	ArrowsMiddle       = "middle"

	// BothRoundness curves the pair of edges built for a two-way record so
	// they do not overlap.
	BothRoundness = 0.5
)

// Node is one rendered node.
type Node struct {
	ID          string         `json:"id"`
	Label       string         `json:"label"`
	Title       string         `json:"title"`
	Shape       string         `json:"shape"`
	Image       string         `json:"image"`
	Size        int            `json:"size"`
	BorderWidth int            `json:"borderWidth"`
	Color       style.Color    `json:"color"`
	Central     bool           `json:"central,omitempty"`
	Malicious   bool           `json:"malicious,omitempty"`
	Detail      records.Detail `json:"-"`
}

// Smooth describes edge curvature.
type Smooth struct {
	Type      string  `json:"type"`
	Roundness float64 `json:"roundness"`
}

// Edge is one directed edge. The central node is always an endpoint.
type Edge struct {
	ID        string  `json:"id"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Width     float64 `json:"width"`
	Color     string  `json:"color"`
	Smooth    *Smooth `json:"smooth,omitempty"`
	Arrows    string  `json:"arrows"`
	Malicious bool    `json:"malicious,omitempty"`
}

// Stats summarises a built graph.
type Stats struct {
	Nodes          int     `json:"nodes"`
	Edges          int     `json:"edges"`
	Peers          int     `json:"peers"`
	MaliciousPeers int     `json:"maliciousPeers"`
	ExternalPeers  int     `json:"externalPeers"`
	TotalBytes     float64 `json:"totalBytes"`
}

// Graph is an immutable node and edge set plus the registry built with it.
type Graph struct {
	nodes    []*Node
	edges    []*Edge
	index    map[string]*Node
	registry *Registry
	summary  records.HostSummary
	stats    Stats
}

// Empty returns a graph with no nodes and no central node.
func Empty() *Graph {
	return &Graph{
		index:    make(map[string]*Node),
		registry: NewRegistry(),
	}
}

// Nodes returns copies of all nodes, peers first and the central node last.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = *n
	}
	return out
}

// Edges returns copies of all edges in build order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	for i, e := range g.edges {
		out[i] = *e
	}
	return out
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// HasCentral reports whether the central node exists.
func (g *Graph) HasCentral() bool {
	_, ok := g.index[CentralID]
	return ok
}

// ConnectedEdges returns the edges with id as either endpoint.
func (g *Graph) ConnectedEdges(id string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.From == id || e.To == id {
			out = append(out, *e)
		}
	}
	return out
}

// Registry returns the detail registry built with the graph.
func (g *Graph) Registry() *Registry { return g.registry }

// Summary returns the central host summary the graph was built with.
func (g *Graph) Summary() records.HostSummary { return g.summary }

// Stats returns counts over the graph.
func (g *Graph) Stats() Stats { return g.stats }
