// Package interaction implements the click-driven selection state machine
// over a built graph.
package interaction

import (
	"github.com/dd0wney/cluso-eyeball/pkg/graph"
	"github.com/dd0wney/cluso-eyeball/pkg/logging"
	"github.com/dd0wney/cluso-eyeball/pkg/records"
	"github.com/dd0wney/cluso-eyeball/pkg/style"
)

// Point is a screen coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PositionResolver maps a node id to its on-screen position. It reports
// false when the node has no position, for example while it is being
// removed.
type PositionResolver interface {
	Position(id string) (Point, bool)
}

// PositionFunc adapts a function to PositionResolver.
type PositionFunc func(id string) (Point, bool)

func (f PositionFunc) Position(id string) (Point, bool) { return f(id) }

// SelectionState is the controller's ephemeral state.
type SelectionState struct {
	SelectedNodeID      string         `json:"selectedNodeId,omitempty"`
	SelectedLabel       string         `json:"selectedLabel,omitempty"`
	MenuAnchor          *Point         `json:"menuAnchor,omitempty"`
	InvestigationTarget records.Detail `json:"investigationTarget,omitempty"`
	MenuOpen            bool           `json:"menuOpen"`
}

// Active reports whether a node is selected.
func (s SelectionState) Active() bool { return s.SelectedNodeID != "" }

// SelectedLabels lists the labels of the selected nodes.
func (s SelectionState) SelectedLabels() []string {
	if !s.Active() {
		return []string{}
	}
	return []string{s.SelectedLabel}
}

// ClickEvent is a canvas click. Nodes lists the node ids under the pointer;
// an empty list means the click landed on empty canvas.
type ClickEvent struct {
	Nodes []string `json:"nodes"`
}

// Outcome describes how a click changed the selection.
type Outcome int

const (
	// OutcomeCleared means the click hit empty canvas and the selection was
	// reset.
	OutcomeCleared Outcome = iota
	// OutcomeToggledOff means the selected node was clicked again.
	OutcomeToggledOff
	// OutcomeSelected means a node was selected and the menu opened.
	OutcomeSelected
	// OutcomeIgnored means the clicked node had no detail or position.
	OutcomeIgnored
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCleared:
		return "cleared"
	case OutcomeToggledOff:
		return "toggled_off"
	case OutcomeSelected:
		return "selected"
	case OutcomeIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// Controller owns the selection over one graph. It is not safe for
// concurrent use; callers serialise access through a single event loop.
type Controller struct {
	graph     *graph.Graph
	positions PositionResolver
	state     SelectionState
	logger    logging.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController creates a controller over g. A nil graph is treated as empty.
func NewController(g *graph.Graph, positions PositionResolver, opts ...Option) *Controller {
	c := &Controller{
		positions: positions,
		logger:    logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Load(g)
	return c
}

// Load replaces the graph and resets the selection.
func (c *Controller) Load(g *graph.Graph) {
	if g == nil {
		g = graph.Empty()
	}
	c.graph = g
	c.reset()
}

// Graph returns the current graph.
func (c *Controller) Graph() *graph.Graph { return c.graph }

// Selection returns a copy of the current selection.
func (c *Controller) Selection() SelectionState {
	s := c.state
	if s.MenuAnchor != nil {
		p := *s.MenuAnchor
		s.MenuAnchor = &p
	}
	return s
}

// Styles returns the styles for the current graph and selection.
func (c *Controller) Styles() style.Assignment {
	return ComputeStyles(c.graph, c.state)
}

// CloseMenu dismisses the menu and clears the selection.
func (c *Controller) CloseMenu() {
	c.reset()
}

// Click applies a canvas click.
func (c *Controller) Click(ev ClickEvent) Outcome {
	if len(ev.Nodes) == 0 {
		c.reset()
		return OutcomeCleared
	}

	id := ev.Nodes[0]
	if c.state.Active() && id == c.state.SelectedNodeID {
		c.reset()
		return OutcomeToggledOff
	}

	c.reset()

	detail, ok := c.resolveDetail(id)
	if !ok {
		c.logger.Debug("click target has no detail", logging.NodeID(id))
		return OutcomeIgnored
	}

	if c.positions == nil {
		c.logger.Debug("no position resolver", logging.NodeID(id))
		return OutcomeIgnored
	}
	pos, ok := c.positions.Position(id)
	if !ok {
		c.logger.Debug("click target has no position", logging.NodeID(id))
		return OutcomeIgnored
	}

	c.state = SelectionState{
		SelectedNodeID:      id,
		SelectedLabel:       detail.Host(),
		MenuAnchor:          &pos,
		InvestigationTarget: detail,
		MenuOpen:            true,
	}
	return OutcomeSelected
}

// resolveDetail returns the investigation target for id. The central node
// resolves to the graph's host summary; peers resolve through the registry.
func (c *Controller) resolveDetail(id string) (records.Detail, bool) {
	if id == graph.CentralID {
		if !c.graph.HasCentral() {
			return nil, false
		}
		summary := c.graph.Summary()
		return &summary, true
	}
	return c.graph.Registry().Get(id)
}

func (c *Controller) reset() {
	c.state = SelectionState{}
}
