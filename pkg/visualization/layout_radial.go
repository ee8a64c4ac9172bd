package visualization

import (
	"math"

	"github.com/dd0wney/cluso-eyeball/pkg/graph"
)

// RadialLayout places the central node at the canvas centre and the peers
// on a single ring around it
type RadialLayout struct {
	config *LayoutConfig
}

// NewRadialLayout creates a new radial layout
func NewRadialLayout(config *LayoutConfig) *RadialLayout {
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &RadialLayout{config: config}
}

// ComputeLayout arranges peers in a circle around the central node
func (rl *RadialLayout) ComputeLayout(g *graph.Graph) (map[string]Position, error) {
	positions := make(map[string]Position)

	centerX := rl.config.Width / 2
	centerY := rl.config.Height / 2
	radius := math.Max(math.Min(centerX, centerY)-rl.config.Padding, 0)

	peers := make([]string, 0)
	for _, n := range g.Nodes() {
		if n.Central {
			positions[n.ID] = Position{X: centerX, Y: centerY}
			continue
		}
		peers = append(peers, n.ID)
	}

	if len(peers) == 0 {
		return positions, nil
	}

	angleStep := 2 * math.Pi / float64(len(peers))

	for i, id := range peers {
		angle := float64(i) * angleStep
		positions[id] = Position{
			X: centerX + radius*math.Cos(angle),
			Y: centerY + radius*math.Sin(angle),
		}
	}

	return positions, nil
}
