package visualization

import (
	"math"
	"math/rand"

	"github.com/dd0wney/cluso-eyeball/pkg/graph"
)

// ForceDirectedLayout implements force-directed graph layout
type ForceDirectedLayout struct {
	config *LayoutConfig
}

// NewForceDirectedLayout creates a new force-directed layout
func NewForceDirectedLayout(config *LayoutConfig) *ForceDirectedLayout {
	if config.Iterations == 0 {
		config.Iterations = 50
	}
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &ForceDirectedLayout{config: config}
}

// ComputeLayout computes positions using force-directed algorithm. The same
// graph and seed always give the same positions.
func (fdl *ForceDirectedLayout) ComputeLayout(g *graph.Graph) (map[string]Position, error) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return make(map[string]Position), nil
	}

	// Single node - center it
	if len(nodes) == 1 {
		return map[string]Position{
			nodes[0].ID: {
				X: fdl.config.Width / 2,
				Y: fdl.config.Height / 2,
			},
		}, nil
	}

	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}

	// Initialize random positions
	rng := rand.New(rand.NewSource(fdl.config.Seed))
	positions := make(map[string]Position, len(ids))

	for _, id := range ids {
		positions[id] = Position{
			X: rng.Float64()*(fdl.config.Width-2*fdl.config.Padding) + fdl.config.Padding,
			Y: rng.Float64()*(fdl.config.Height-2*fdl.config.Padding) + fdl.config.Padding,
		}
	}

	// Build edge map for fast lookup; a two-way record counts once
	edgeMap := make(map[string]map[string]bool, len(ids))
	for _, id := range ids {
		edgeMap[id] = make(map[string]bool)
	}
	for _, e := range g.Edges() {
		edgeMap[e.From][e.To] = true
		edgeMap[e.To][e.From] = true
	}

	// Force-directed iterations
	k := math.Sqrt((fdl.config.Width * fdl.config.Height) / float64(len(ids))) // Optimal distance
	temperature := fdl.config.Width / 10.0

	for iter := 0; iter < fdl.config.Iterations; iter++ {
		forces := make(map[string]Position, len(ids))

		// Repulsion between all nodes
		for i, id1 := range ids {
			for j := i + 1; j < len(ids); j++ {
				id2 := ids[j]
				dx := positions[id1].X - positions[id2].X
				dy := positions[id1].Y - positions[id2].Y
				dist := math.Sqrt(dx*dx + dy*dy)

				if dist < 0.01 {
					dist = 0.01
				}

				// Repulsive force
				force := (k * k) / dist
				fx := (dx / dist) * force
				fy := (dy / dist) * force

				forces[id1] = Position{X: forces[id1].X + fx, Y: forces[id1].Y + fy}
				forces[id2] = Position{X: forces[id2].X - fx, Y: forces[id2].Y - fy}
			}
		}

		// Attraction between connected nodes, in id order so runs repeat
		for _, id1 := range ids {
			for _, id2 := range ids {
				if !edgeMap[id1][id2] {
					continue
				}

				dx := positions[id1].X - positions[id2].X
				dy := positions[id1].Y - positions[id2].Y
				dist := math.Sqrt(dx*dx + dy*dy)

				if dist < 0.01 {
					continue
				}

				// Attractive force
				force := (dist * dist) / k
				fx := (dx / dist) * force
				fy := (dy / dist) * force

				forces[id1] = Position{X: forces[id1].X - fx, Y: forces[id1].Y - fy}
			}
		}

		// Apply forces with cooling
		cool := 1.0 - float64(iter)/float64(fdl.config.Iterations)
		for _, id := range ids {
			fx := forces[id].X
			fy := forces[id].Y
			force := math.Sqrt(fx*fx + fy*fy)

			if force > 0 {
				dx := (fx / force) * math.Min(force, temperature) * cool
				dy := (fy / force) * math.Min(force, temperature) * cool

				positions[id] = Position{
					X: positions[id].X + dx,
					Y: positions[id].Y + dy,
				}
			}
		}

		temperature *= 0.95
	}

	// Normalize positions to bounds
	return normalizePositions(positions, fdl.config.Width, fdl.config.Height, fdl.config.Padding), nil
}
