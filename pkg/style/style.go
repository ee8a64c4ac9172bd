// Package style holds the visual encoding rules for the connection graph.
// Every function here is pure: the same inputs always give the same style.
package style

import (
	"math"

	"github.com/dd0wney/cluso-eyeball/pkg/records"
)

// MeanBytes is the reference transfer volume above which edges widen.
const MeanBytes = 3.0e7

const (
	MinEdgeWidth = 1.0
	MaxEdgeWidth = 5.0

	BaseBorderWidth      = 2
	HighlightBorderWidth = 4

	Neutral   = "#7b7b7b"
	Red       = "red"
	Green     = "green"
	Highlight = "cyan"

	PeerImage     = "/server.png"
	ExternalImage = "/external_server.png"
	CentralImage  = "/file_slide.png"

	PeerSize    = 20
	CentralSize = 50
)

// Color is a node's border and background colour.
type Color struct {
	Border     string `json:"border"`
	Background string `json:"background"`
}

// NodeStyle is the mutable visual state of one node.
type NodeStyle struct {
	BorderWidth int   `json:"borderWidth"`
	Color       Color `json:"color"`
}

// EdgeStyle is the mutable visual state of one edge.
type EdgeStyle struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

// NodeColor returns the base colour of a peer node.
func NodeColor(malicious bool) Color {
	if malicious {
		return Color{Border: Red, Background: Neutral}
	}
	return Color{Border: Neutral, Background: Neutral}
}

// CentralColor returns the base colour of the central node. Its border is
// always red at rest.
func CentralColor() Color {
	return Color{Border: Red, Background: Neutral}
}

// HighlightColor returns the colour of a selected node.
func HighlightColor() Color {
	return Color{Border: Highlight, Background: Neutral}
}

// EdgeColor returns the base colour of an edge.
func EdgeColor(eitherMalicious bool) string {
	if eitherMalicious {
		return Red
	}
	return Green
}

// EdgeWidth maps a transfer volume to a width in [1, 5]. Volumes at or below
// MeanBytes get width 1; above it width grows linearly and saturates at 5.
func EdgeWidth(bytes float64) float64 {
	if !(bytes > MeanBytes) {
		return MinEdgeWidth
	}
	return math.Min(MinEdgeWidth+(bytes-MeanBytes)/MeanBytes, MaxEdgeWidth)
}

// ImageFor returns the icon for a peer in the given scope.
func ImageFor(scope records.Scope) string {
	if scope == records.ScopeExternal {
		return ExternalImage
	}
	return PeerImage
}

// BaseNode returns the resting style of a node.
func BaseNode(central, malicious bool) NodeStyle {
	if central {
		return NodeStyle{BorderWidth: BaseBorderWidth, Color: CentralColor()}
	}
	return NodeStyle{BorderWidth: BaseBorderWidth, Color: NodeColor(malicious)}
}

// HighlightNode returns the style of a node on the selected path.
func HighlightNode() NodeStyle {
	return NodeStyle{BorderWidth: HighlightBorderWidth, Color: HighlightColor()}
}

// Assignment is a complete set of node and edge styles keyed by id.
type Assignment struct {
	Nodes map[string]NodeStyle `json:"nodes"`
	Edges map[string]EdgeStyle `json:"edges"`
}

// NewAssignment returns an empty assignment sized for n nodes and e edges.
func NewAssignment(n, e int) Assignment {
	return Assignment{
		Nodes: make(map[string]NodeStyle, n),
		Edges: make(map[string]EdgeStyle, e),
	}
}

// Highlighted reports whether any node or edge carries highlight styling.
func (a Assignment) Highlighted() bool {
	for _, n := range a.Nodes {
		if n.Color.Border == Highlight || n.BorderWidth == HighlightBorderWidth {
			return true
		}
	}
	for _, e := range a.Edges {
		if e.Color == Highlight {
			return true
		}
	}
	return false
}
