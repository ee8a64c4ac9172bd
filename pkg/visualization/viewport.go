package visualization

import "github.com/dd0wney/cluso-eyeball/pkg/interaction"

// Viewport maps canvas positions to screen coordinates. It implements
// interaction.PositionResolver so the controller can anchor the menu.
type Viewport struct {
	Scale   float64
	OffsetX float64
	OffsetY float64

	positions map[string]Position
}

// NewViewport returns an identity viewport with no positions.
func NewViewport() *Viewport {
	return &Viewport{Scale: 1, positions: make(map[string]Position)}
}

// SetPositions replaces the laid-out canvas positions.
func (v *Viewport) SetPositions(positions map[string]Position) {
	v.positions = make(map[string]Position, len(positions))
	for id, p := range positions {
		v.positions[id] = p
	}
}

// Positions returns a copy of the canvas positions.
func (v *Viewport) Positions() map[string]Position {
	out := make(map[string]Position, len(v.positions))
	for id, p := range v.positions {
		out[id] = p
	}
	return out
}

// CanvasToDOM converts a canvas coordinate to a screen coordinate.
func (v *Viewport) CanvasToDOM(p Position) interaction.Point {
	scale := v.Scale
	if scale == 0 {
		scale = 1
	}
	return interaction.Point{X: p.X*scale + v.OffsetX, Y: p.Y*scale + v.OffsetY}
}

// Position returns the screen coordinate of a node.
func (v *Viewport) Position(id string) (interaction.Point, bool) {
	p, ok := v.positions[id]
	if !ok {
		return interaction.Point{}, false
	}
	return v.CanvasToDOM(p), true
}
