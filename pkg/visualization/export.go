package visualization

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dd0wney/cluso-eyeball/pkg/graph"
	"github.com/dd0wney/cluso-eyeball/pkg/style"
)

// Visualization represents a graph visualization with layout and styles
type Visualization struct {
	Graph     *graph.Graph
	Styles    style.Assignment
	Positions map[string]Position
}

// NodeViz is one node as the browser network renderer expects it.
type NodeViz struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	Title       string      `json:"title"`
	Shape       string      `json:"shape"`
	Image       string      `json:"image"`
	Size        int         `json:"size"`
	BorderWidth int         `json:"borderWidth"`
	Color       style.Color `json:"color"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
}

// EdgeColorViz wraps an edge colour the way the renderer expects it.
type EdgeColorViz struct {
	Color string `json:"color"`
}

// EdgeViz is one edge as the browser network renderer expects it.
type EdgeViz struct {
	ID     string        `json:"id"`
	From   string        `json:"from"`
	To     string        `json:"to"`
	Width  float64       `json:"width"`
	Color  EdgeColorViz  `json:"color"`
	Smooth *graph.Smooth `json:"smooth,omitempty"`
	Arrows string        `json:"arrows"`
}

// Payload is the complete renderer input.
type Payload struct {
	Nodes []NodeViz   `json:"nodes"`
	Edges []EdgeViz   `json:"edges"`
	Stats graph.Stats `json:"stats"`
}

// Payload merges graph, styles and positions. Styles override the build
// time node and edge appearance.
func (v *Visualization) Payload() Payload {
	if v.Graph == nil {
		return Payload{Nodes: []NodeViz{}, Edges: []EdgeViz{}}
	}

	nodes := v.Graph.Nodes()
	edges := v.Graph.Edges()
	data := Payload{
		Nodes: make([]NodeViz, 0, len(nodes)),
		Edges: make([]EdgeViz, 0, len(edges)),
		Stats: v.Graph.Stats(),
	}

	// Convert nodes
	for _, n := range nodes {
		pos := v.Positions[n.ID]
		nv := NodeViz{
			ID:          n.ID,
			Label:       n.Label,
			Title:       n.Title,
			Shape:       n.Shape,
			Image:       n.Image,
			Size:        n.Size,
			BorderWidth: n.BorderWidth,
			Color:       n.Color,
			X:           pos.X,
			Y:           pos.Y,
		}
		if s, ok := v.Styles.Nodes[n.ID]; ok {
			nv.BorderWidth = s.BorderWidth
			nv.Color = s.Color
		}
		data.Nodes = append(data.Nodes, nv)
	}

	// Convert edges
	for _, e := range edges {
		ev := EdgeViz{
			ID:     e.ID,
			From:   e.From,
			To:     e.To,
			Width:  e.Width,
			Color:  EdgeColorViz{Color: e.Color},
			Smooth: e.Smooth,
			Arrows: e.Arrows,
		}
		if s, ok := v.Styles.Edges[e.ID]; ok {
			ev.Color.Color = s.Color
			ev.Width = s.Width
		}
		data.Edges = append(data.Edges, ev)
	}

	return data
}

// ExportJSON exports the visualization to JSON
func (v *Visualization) ExportJSON() ([]byte, error) {
	return json.Marshal(v.Payload())
}

// ExportDOT writes the visualization in Graphviz DOT format to the writer.
// Output is buffered, so a failed write surfaces from the final flush.
func (v *Visualization) ExportDOT(w io.Writer) error {
	p := v.Payload()
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "digraph Eyeball {")
	fmt.Fprintln(bw, "  layout=neato;")
	fmt.Fprintln(bw, "  node [shape=circle, style=filled, fontname=\"Arial\"];")
	fmt.Fprintln(bw, "  edge [arrowhead=normal];")

	// Write Nodes
	for _, n := range p.Nodes {
		fmt.Fprintf(bw, "  %s [label=%s, tooltip=%s, color=%s, fillcolor=%s, penwidth=%d, pos=\"%.2f,%.2f!\"];\n",
			dotQuote(n.ID), dotQuote(n.Label), dotQuote(n.Title), dotQuote(n.Color.Border), dotQuote(n.Color.Background),
			n.BorderWidth, n.X, n.Y)
	}

	// Write Edges
	for _, e := range p.Edges {
		fmt.Fprintf(bw, "  %s -> %s [color=%s, penwidth=%.2f];\n", dotQuote(e.From), dotQuote(e.To), dotQuote(e.Color.Color), e.Width)
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// dotQuote returns s as a quoted DOT ID with line breaks preserved.
func dotQuote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}
