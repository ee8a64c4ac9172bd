package workspace

import (
	"strings"
	"time"

	"github.com/dd0wney/cluso-eyeball/pkg/graph"
	"github.com/dd0wney/cluso-eyeball/pkg/interaction"
	"github.com/dd0wney/cluso-eyeball/pkg/menu"
	"github.com/dd0wney/cluso-eyeball/pkg/visualization"
)

// NoSelectionText is shown in the selected nodes view when nothing is
// selected.
const NoSelectionText = "No nodes selected"

// Snapshot is an immutable view of the workspace at one point in time.
type Snapshot struct {
	Version       uint64                     `json:"version"`
	LoadedAt      time.Time                  `json:"loadedAt"`
	Payload       visualization.Payload      `json:"graph"`
	Selection     interaction.SelectionState `json:"selection"`
	SelectedNodes []string                   `json:"selectedNodes"`
	SelectedText  string                     `json:"selectedText"`
	Menu          *menu.Menu                 `json:"menu,omitempty"`

	viz visualization.Visualization
}

// Graph returns the graph the snapshot was taken from. Graphs are never
// mutated after Build, so it may be read from any goroutine.
func (s Snapshot) Graph() *graph.Graph {
	if s.viz.Graph == nil {
		return graph.Empty()
	}
	return s.viz.Graph
}

// Visualization returns the styled, positioned graph for export.
func (s Snapshot) Visualization() *visualization.Visualization {
	v := s.viz
	v.Graph = s.Graph()
	return &v
}

// snapshot must run on the loop goroutine.
func (w *Workspace) snapshot() Snapshot {
	g := w.controller.Graph()
	sel := w.controller.Selection()
	viz := visualization.Visualization{
		Graph:     g,
		Styles:    w.controller.Styles(),
		Positions: w.viewport.Positions(),
	}

	snap := Snapshot{
		Version:       w.version,
		LoadedAt:      w.loadedAt,
		Payload:       viz.Payload(),
		Selection:     sel,
		SelectedNodes: sel.SelectedLabels(),
		SelectedText:  selectedText(sel.SelectedLabels()),
		viz:           viz,
	}
	if m, ok := menu.ForSelection(sel, w.bounds); ok {
		snap.Menu = &m
	}
	return snap
}

func selectedText(labels []string) string {
	if len(labels) == 0 {
		return NoSelectionText
	}
	return strings.Join(labels, ", ")
}
