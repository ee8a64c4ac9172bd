// Package menu describes the context menu shown for a selected node.
// Actions are display-only: invoking one returns an acknowledgement.
package menu

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-eyeball/pkg/graph"
	"github.com/dd0wney/cluso-eyeball/pkg/interaction"
	"github.com/dd0wney/cluso-eyeball/pkg/records"
)

var (
	ErrNoSelection   = errors.New("no node selected")
	ErrUnknownAction = errors.New("unknown menu action")
)

// Action identifies a menu entry.
type Action string

const (
	ActionExpand          Action = "expand"
	ActionAddToFilters    Action = "add_to_filters"
	ActionShowDetails     Action = "show_details"
	ActionShowDetection   Action = "show_detection"
	ActionInvestigateHost Action = "investigation_host"
	ActionSessionAnalysis Action = "launch_session_analysis"
	ActionPacketAnalysis  Action = "launch_packet_analysis"
)

// Item is one menu entry.
type Item struct {
	Action Action `json:"action"`
	Title  string `json:"title"`
	format string
}

var (
	expand          = Item{Action: ActionExpand, Title: "Expand", format: "Expand %s"}
	addToFilters    = Item{Action: ActionAddToFilters, Title: "Add to Filters", format: "Add to Filters %s"}
	showDetails     = Item{Action: ActionShowDetails, Title: "Show Details", format: "Show Details for %s"}
	showDetection   = Item{Action: ActionShowDetection, Title: "Show Detection", format: "Show Detection for %s"}
	investigateHost = Item{Action: ActionInvestigateHost, Title: "Investigation Host", format: "Investigation Host %s"}
	sessionAnalysis = Item{Action: ActionSessionAnalysis, Title: "Launch Session Analysis", format: "Launch Session Analysis for %s"}
	packetAnalysis  = Item{Action: ActionPacketAnalysis, Title: "Launch Packet Analysis", format: "Launch Packet Analysis for %s"}

	centralItems = []Item{showDetails, showDetection, sessionAnalysis, packetAnalysis}
	peerItems    = []Item{expand, addToFilters, showDetails, showDetection, investigateHost, sessionAnalysis, packetAnalysis}
)

// ItemsFor returns the entries offered for a node.
func ItemsFor(nodeID string) []Item {
	src := peerItems
	if nodeID == graph.CentralID {
		src = centralItems
	}
	out := make([]Item, len(src))
	copy(out, src)
	return out
}

const (
	// Width and Height are the space reserved for the menu when clamping
	// its anchor to the viewport.
	Width  = 200
	Height = 100
)

// Bounds is the size of the area the menu is drawn in. A zero dimension
// disables clamping along that axis.
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Clamp keeps the menu inside the bounds.
func Clamp(p interaction.Point, b Bounds) interaction.Point {
	if b.Width > 0 && p.X > b.Width-Width {
		p.X = b.Width - Width
	}
	if b.Height > 0 && p.Y > b.Height-Height {
		p.Y = b.Height - Height
	}
	return p
}

// Menu is the open menu for the current selection.
type Menu struct {
	NodeID string            `json:"nodeId"`
	Label  string            `json:"label"`
	Anchor interaction.Point `json:"anchor"`
	Items  []Item            `json:"items"`
	Target records.Detail    `json:"target"`
}

// ForSelection builds the menu for sel. It reports false when the menu is
// closed.
func ForSelection(sel interaction.SelectionState, b Bounds) (Menu, bool) {
	if !sel.MenuOpen || !sel.Active() || sel.MenuAnchor == nil {
		return Menu{}, false
	}
	return Menu{
		NodeID: sel.SelectedNodeID,
		Label:  sel.SelectedLabel,
		Anchor: Clamp(*sel.MenuAnchor, b),
		Items:  ItemsFor(sel.SelectedNodeID),
		Target: sel.InvestigationTarget,
	}, true
}

// Invoke runs action against the selection and returns its acknowledgement.
func Invoke(sel interaction.SelectionState, action Action) (string, error) {
	if !sel.Active() {
		return "", ErrNoSelection
	}
	for _, item := range ItemsFor(sel.SelectedNodeID) {
		if item.Action == action {
			return fmt.Sprintf(item.format, sel.SelectedLabel), nil
		}
	}
	return "", fmt.Errorf("%w: %q for %s", ErrUnknownAction, action, sel.SelectedLabel)
}
