package visualization

import (
	"fmt"

	"github.com/dd0wney/cluso-eyeball/pkg/graph"
)

// Position represents a 2D canvas coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutConfig configures layout parameters
type LayoutConfig struct {
	Width      float64 // Canvas width
	Height     float64 // Canvas height
	Iterations int     // Number of iterations for iterative algorithms
	Padding    float64 // Padding from edges
	Seed       int64   // Seed for layouts with random starting positions
}

// Layout interface for different layout algorithms
type Layout interface {
	ComputeLayout(g *graph.Graph) (map[string]Position, error)
}

// Layout names accepted by NewLayout.
const (
	LayoutRadial       = "radial"
	LayoutForce        = "force"
	LayoutHierarchical = "hierarchical"
)

// LayoutNames lists the supported layouts.
var LayoutNames = []string{LayoutRadial, LayoutForce, LayoutHierarchical}

// NewLayout returns the layout registered under name.
func NewLayout(name string, config *LayoutConfig) (Layout, error) {
	switch name {
	case "", LayoutRadial:
		return NewRadialLayout(config), nil
	case LayoutForce:
		return NewForceDirectedLayout(config), nil
	case LayoutHierarchical:
		return NewHierarchicalLayout(config), nil
	}
	return nil, fmt.Errorf("unknown layout %q", name)
}
