package api

import (
	"github.com/dd0wney/cluso-eyeball/pkg/menu"
	"github.com/dd0wney/cluso-eyeball/pkg/workspace"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ClickResponse reports the outcome of a click and the resulting state.
type ClickResponse struct {
	Outcome  string             `json:"outcome"`
	Snapshot workspace.Snapshot `json:"snapshot"`
}

// InvokeRequest names the menu action to run.
type InvokeRequest struct {
	Action menu.Action `json:"action"`
}

// InvokeResponse carries the acknowledgement of a menu action.
type InvokeResponse struct {
	Action menu.Action `json:"action"`
	Result string      `json:"result"`
}

// SelectionResponse is the selection portion of a snapshot.
type SelectionResponse struct {
	Version       uint64     `json:"version"`
	NodeID        string     `json:"nodeId,omitempty"`
	Label         string     `json:"label,omitempty"`
	MenuOpen      bool       `json:"menuOpen"`
	SelectedNodes []string   `json:"selectedNodes"`
	SelectedText  string     `json:"selectedText"`
	Menu          *menu.Menu `json:"menu,omitempty"`
}

func selectionResponse(snap workspace.Snapshot) SelectionResponse {
	selected := snap.SelectedNodes
	if selected == nil {
		selected = []string{}
	}
	return SelectionResponse{
		Version:       snap.Version,
		NodeID:        snap.Selection.SelectedNodeID,
		Label:         snap.Selection.SelectedLabel,
		MenuOpen:      snap.Selection.MenuOpen,
		SelectedNodes: selected,
		SelectedText:  snap.SelectedText,
		Menu:          snap.Menu,
	}
}
