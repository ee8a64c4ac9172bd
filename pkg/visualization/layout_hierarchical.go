package visualization

import (
	"github.com/dd0wney/cluso-eyeball/pkg/graph"
	"github.com/dd0wney/cluso-eyeball/pkg/records"
)

// HierarchicalLayout draws the central node on the top level and the peers
// on the levels below it, internal peers before external ones
type HierarchicalLayout struct {
	config *LayoutConfig
	// MaxPerLevel wraps long peer levels onto further rows
	MaxPerLevel int
}

// NewHierarchicalLayout creates a new hierarchical layout
func NewHierarchicalLayout(config *LayoutConfig) *HierarchicalLayout {
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &HierarchicalLayout{config: config, MaxPerLevel: 12}
}

// ComputeLayout arranges nodes hierarchically
func (hl *HierarchicalLayout) ComputeLayout(g *graph.Graph) (map[string]Position, error) {
	positions := make(map[string]Position)

	var root []string
	var internal, external []string
	for _, n := range g.Nodes() {
		switch {
		case n.Central:
			root = append(root, n.ID)
		case isExternal(n):
			external = append(external, n.ID)
		default:
			internal = append(internal, n.ID)
		}
	}

	peers := append(internal, external...)
	if len(root) == 0 && len(peers) == 0 {
		return positions, nil
	}

	levels := make([][]string, 0)
	if len(root) > 0 {
		levels = append(levels, root)
	}
	perLevel := hl.MaxPerLevel
	if perLevel <= 0 {
		perLevel = len(peers)
	}
	for start := 0; start < len(peers); start += perLevel {
		levels = append(levels, peers[start:min(start+perLevel, len(peers))])
	}

	// Position nodes
	levelHeight := (hl.config.Height - 2*hl.config.Padding) / float64(len(levels))

	for levelIdx, level := range levels {
		y := hl.config.Padding + float64(levelIdx)*levelHeight + levelHeight/2
		levelWidth := hl.config.Width - 2*hl.config.Padding
		spacing := levelWidth / float64(len(level)+1)

		for nodeIdx, id := range level {
			x := hl.config.Padding + spacing*float64(nodeIdx+1)
			positions[id] = Position{X: x, Y: y}
		}
	}

	return positions, nil
}

func isExternal(n graph.Node) bool {
	rec, ok := n.Detail.(*records.ConnectionRecord)
	return ok && rec.Scope == records.ScopeExternal
}
