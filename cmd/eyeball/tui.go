package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-eyeball/pkg/graph"
	"github.com/dd0wney/cluso-eyeball/pkg/interaction"
	"github.com/dd0wney/cluso-eyeball/pkg/logging"
	"github.com/dd0wney/cluso-eyeball/pkg/menu"
	"github.com/dd0wney/cluso-eyeball/pkg/pubsub"
	"github.com/dd0wney/cluso-eyeball/pkg/records"
	"github.com/dd0wney/cluso-eyeball/pkg/workspace"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			MarginLeft(2).
			MarginTop(1)

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginLeft(2)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1).
			MarginLeft(2)

	maliciousStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type keyMap struct {
	Select    key.Binding
	Clear     key.Binding
	CloseMenu key.Binding
	Action    key.Binding
	Refresh   key.Binding
	Up        key.Binding
	Down      key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "click node"),
	),
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "click canvas"),
	),
	CloseMenu: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close menu"),
	),
	Action: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7"),
		key.WithHelp("1-7", "menu action"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Clear, k.CloseMenu, k.Action, k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Clear},
		{k.CloseMenu, k.Action, k.Refresh, k.Quit},
	}
}

// tuiWorkspace is what the terminal front end drives.
type tuiWorkspace interface {
	Snapshot(ctx context.Context) (workspace.Snapshot, error)
	Click(ctx context.Context, ev interaction.ClickEvent) (interaction.Outcome, workspace.Snapshot, error)
	CloseMenu(ctx context.Context) (workspace.Snapshot, error)
	Invoke(ctx context.Context, action menu.Action) (string, error)
	Refresh(ctx context.Context) (workspace.Snapshot, error)
	Subscribe(ctx context.Context) (*pubsub.Subscription[workspace.Event], error)
}

// Messages
type (
	snapshotMsg struct {
		snap    workspace.Snapshot
		outcome string
	}
	eventMsg   workspace.Event
	resultMsg  string
	errMsg     struct{ err error }
	streamDone struct{}
)

type model struct {
	ctx    context.Context
	ws     tuiWorkspace
	sub    *pubsub.Subscription[workspace.Event]
	snap   workspace.Snapshot
	table  table.Model
	rowIDs []string
	help   help.Model
	keys   keyMap

	width      int
	message    string
	messageErr bool
}

var columns = []table.Column{
	{Title: "Host", Width: 18},
	{Title: "Protocol", Width: 10},
	{Title: "Port", Width: 6},
	{Title: "Octets", Width: 12},
	{Title: "Scope", Width: 9},
	{Title: "Malicious", Width: 9},
}

func newModel(ctx context.Context, ws tuiWorkspace, sub *pubsub.Subscription[workspace.Event]) model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#000000")).
		Background(lipgloss.Color("#00FFFF")).
		Bold(false)
	t.SetStyles(s)

	return model{
		ctx:   ctx,
		ws:    ws,
		sub:   sub,
		table: t,
		help:  help.New(),
		keys:  keys,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetchSnapshot(), m.waitForEvent())
}

func (m model) fetchSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.ws.Snapshot(m.ctx)
		if err != nil {
			return errMsg{err}
		}
		return snapshotMsg{snap: snap}
	}
}

// waitForEvent blocks on the workspace subscription for the next event.
func (m model) waitForEvent() tea.Cmd {
	if m.sub == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-m.sub.Channel()
		if !ok {
			return streamDone{}
		}
		return eventMsg(ev)
	}
}

func (m model) click(nodes ...string) tea.Cmd {
	return func() tea.Msg {
		outcome, snap, err := m.ws.Click(m.ctx, interaction.ClickEvent{Nodes: nodes})
		if err != nil {
			return errMsg{err}
		}
		return snapshotMsg{snap: snap, outcome: outcome.String()}
	}
}

func (m model) closeMenu() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.ws.CloseMenu(m.ctx)
		if err != nil {
			return errMsg{err}
		}
		return snapshotMsg{snap: snap}
	}
}

func (m model) refresh() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.ws.Refresh(m.ctx)
		if err != nil {
			return errMsg{err}
		}
		return snapshotMsg{snap: snap, outcome: "refreshed"}
	}
}

func (m model) invoke(action menu.Action) tea.Cmd {
	return func() tea.Msg {
		result, err := m.ws.Invoke(m.ctx, action)
		if err != nil {
			return errMsg{err}
		}
		return resultMsg(result)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case snapshotMsg:
		m.setSnapshot(msg.snap)
		if msg.outcome != "" {
			m.message, m.messageErr = msg.outcome, false
		}
		return m, nil

	case eventMsg:
		if msg.Version >= m.snap.Version {
			m.setSnapshot(msg.Snapshot)
		}
		return m, m.waitForEvent()

	case resultMsg:
		m.message, m.messageErr = string(msg), false
		return m, nil

	case errMsg:
		m.message, m.messageErr = msg.err.Error(), true
		return m, nil

	case streamDone:
		m.message, m.messageErr = "workspace stopped", true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Select):
			if id, ok := m.cursorID(); ok {
				return m, m.click(id)
			}
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			return m, m.click()
		case key.Matches(msg, m.keys.CloseMenu):
			return m, m.closeMenu()
		case key.Matches(msg, m.keys.Refresh):
			return m, m.refresh()
		case key.Matches(msg, m.keys.Action):
			return m, m.actionFor(msg.String())
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// actionFor maps a digit key to the matching entry of the open menu.
func (m model) actionFor(digit string) tea.Cmd {
	if m.snap.Menu == nil {
		return func() tea.Msg { return errMsg{errors.New("no menu open")} }
	}
	var i int
	if _, err := fmt.Sscanf(digit, "%d", &i); err != nil || i < 1 || i > len(m.snap.Menu.Items) {
		return func() tea.Msg { return errMsg{fmt.Errorf("no menu item %s", digit)} }
	}
	return m.invoke(m.snap.Menu.Items[i-1].Action)
}

func (m *model) cursorID() (string, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rowIDs) {
		return "", false
	}
	return m.rowIDs[i], true
}

// setSnapshot rebuilds the table rows, keeping the cursor on the same node
// where it still exists.
func (m *model) setSnapshot(snap workspace.Snapshot) {
	current, _ := m.cursorID()
	m.snap = snap

	nodes := snap.Graph().Nodes()
	rows := make([]table.Row, 0, len(nodes))
	ids := make([]string, 0, len(nodes))
	cursor := 0
	for _, n := range nodes {
		if n.ID == current {
			cursor = len(rows)
		}
		rows = append(rows, nodeRow(n))
		ids = append(ids, n.ID)
	}
	m.rowIDs = ids
	m.table.SetRows(rows)
	if len(rows) > 0 {
		m.table.SetCursor(cursor)
	}
}

func nodeRow(n graph.Node) table.Row {
	row := table.Row{n.Label, "", "", "", "", ""}
	switch d := n.Detail.(type) {
	case *records.ConnectionRecord:
		row[1] = d.Protocol
		row[2] = d.Port
		row[3] = records.FormatBytes(d.ByteCount)
		row[4] = string(d.Scope)
	case *records.HostSummary:
		row[1] = "central"
		row[2] = d.ServerPort
		row[3] = d.ServerOctets
	}
	if n.Malicious {
		row[5] = "yes"
	}
	return row
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Eyeball - " + records.CentralHost))
	s.WriteString("\n")

	st := m.snap.Payload.Stats
	s.WriteString(statsStyle.Render(fmt.Sprintf("v%d  %d peers  %d malicious  %d external  %s octets",
		m.snap.Version, st.Peers, st.MaliciousPeers, st.ExternalPeers, records.FormatBytes(st.TotalBytes))))
	s.WriteString("\n\n")

	body := m.table.View()
	if side := m.renderSelection(); side != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, panelStyle.Render(side))
	}
	s.WriteString(lipgloss.NewStyle().MarginLeft(2).Render(body))

	if m.message != "" {
		s.WriteString("\n\n  ")
		if m.messageErr {
			s.WriteString(errorStyle.Render("✗ " + m.message))
		} else {
			s.WriteString(successStyle.Render("✓ " + m.message))
		}
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return s.String()
}

// renderSelection shows the selected nodes view, the tooltip of the
// selected node and the open menu.
func (m model) renderSelection() string {
	var s strings.Builder
	s.WriteString("Selected: " + m.snap.SelectedText)

	sel := m.snap.Selection
	if !sel.Active() {
		return s.String()
	}

	if n, ok := m.snap.Graph().Node(sel.SelectedNodeID); ok {
		s.WriteString("\n\n")
		tip := records.Tooltip(n.Detail)
		if n.Malicious {
			tip = maliciousStyle.Render(tip)
		}
		s.WriteString(tip)
	}

	if m.snap.Menu != nil {
		s.WriteString("\n\nMenu\n")
		for i, item := range m.snap.Menu.Items {
			fmt.Fprintf(&s, "  %d. %s\n", i+1, item.Title)
		}
	}
	return strings.TrimRight(s.String(), "\n")
}

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse the graph and drive the click menu in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// The terminal owns stdout; logs would corrupt the screen.
			logger := logging.NewNopLogger()
			if cfg.LogLevel == "debug" {
				logger = newLogger(cfg)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			ws, err := newWorkspace(ctx, cfg, logger, nil)
			if err != nil {
				return err
			}
			sub, err := ws.Subscribe(ctx)
			if err != nil {
				return err
			}
			go ws.Run(ctx)

			return runTUI(ctx, ws, sub, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runTUI(ctx context.Context, ws tuiWorkspace, sub *pubsub.Subscription[workspace.Event], in io.Reader, out io.Writer) error {
	p := tea.NewProgram(newModel(ctx, ws, sub),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
