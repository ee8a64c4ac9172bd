// Package workspace owns the live graph and selection. All state changes
// run on a single goroutine that applies commands in order; callers talk to
// it through the methods below, which are safe for concurrent use.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dd0wney/cluso-eyeball/pkg/graph"
	"github.com/dd0wney/cluso-eyeball/pkg/interaction"
	"github.com/dd0wney/cluso-eyeball/pkg/logging"
	"github.com/dd0wney/cluso-eyeball/pkg/menu"
	"github.com/dd0wney/cluso-eyeball/pkg/metrics"
	"github.com/dd0wney/cluso-eyeball/pkg/pubsub"
	"github.com/dd0wney/cluso-eyeball/pkg/records"
	"github.com/dd0wney/cluso-eyeball/pkg/source"
	"github.com/dd0wney/cluso-eyeball/pkg/visualization"
)

// EventsTopic is the pubsub topic carrying workspace events.
const EventsTopic = "workspace"

// ErrClosed is returned once the event loop has stopped.
var ErrClosed = errors.New("workspace closed")

// Sources are the inputs pulled on every refresh.
type Sources struct {
	Records source.RecordSource
	Summary source.SummarySource
}

// Workspace is the single owner of graph, layout and selection state.
type Workspace struct {
	sources         Sources
	layout          visualization.Layout
	bounds          menu.Bounds
	buildOpts       []graph.BuildOption
	fetchTimeout    time.Duration
	refreshInterval time.Duration
	logger          logging.Logger
	metrics         *metrics.Registry

	cmds       chan func()
	done       chan struct{}
	running    atomic.Bool
	loaded     atomic.Bool
	lastLoad   atomic.Int64
	refreshing atomic.Bool
	events     *pubsub.PubSub[Event]

	// owned by the loop goroutine
	controller *interaction.Controller
	viewport   *visualization.Viewport
	version    uint64
	loadedAt   time.Time
}

// New creates a workspace. Call Run to start its event loop.
func New(sources Sources, opts ...Option) (*Workspace, error) {
	if sources.Records == nil {
		return nil, fmt.Errorf("workspace: records source is required")
	}

	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	layout, err := visualization.NewLayout(cfg.layoutName, cfg.layoutConfig)
	if err != nil {
		return nil, fmt.Errorf("workspace: %w", err)
	}

	w := &Workspace{
		sources:         sources,
		layout:          layout,
		bounds:          menu.Bounds{Width: cfg.layoutConfig.Width, Height: cfg.layoutConfig.Height},
		buildOpts:       cfg.buildOpts,
		fetchTimeout:    cfg.fetchTimeout,
		refreshInterval: cfg.refreshInterval,
		logger:          cfg.logger.With(logging.Component("workspace")),
		metrics:         cfg.metrics,
		cmds:            make(chan func()),
		done:            make(chan struct{}),
		viewport:        visualization.NewViewport(),
	}

	w.events = pubsub.NewPubSub(
		pubsub.WithBuffer[Event](cfg.eventBuffer),
		pubsub.WithDropHook[Event](func() {
			if w.metrics != nil {
				w.metrics.EventsDroppedTotal.Inc()
			}
		}),
	)
	w.controller = interaction.NewController(graph.Empty(), w.viewport,
		interaction.WithLogger(w.logger))

	return w, nil
}

// Run applies commands until ctx is cancelled. It triggers an initial
// refresh and, when an interval is configured, periodic ones.
func (w *Workspace) Run(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return fmt.Errorf("workspace: already running")
	}
	defer close(w.done)
	defer w.events.Shutdown()

	var tick <-chan time.Time
	if w.refreshInterval > 0 {
		ticker := time.NewTicker(w.refreshInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	go w.backgroundRefresh(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("workspace stopped")
			return ctx.Err()
		case fn := <-w.cmds:
			fn()
		case <-tick:
			go w.backgroundRefresh(ctx)
		}
	}
}

// Done is closed when Run returns.
func (w *Workspace) Done() <-chan struct{} { return w.done }

// Loaded reports whether at least one graph has been loaded.
func (w *Workspace) Loaded() bool { return w.loaded.Load() }

// LastLoad returns when the graph was last replaced, or the zero time.
func (w *Workspace) LastLoad() time.Time {
	n := w.lastLoad.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// Ping round-trips through the event loop.
func (w *Workspace) Ping(ctx context.Context) error {
	return w.do(ctx, func() {})
}

// Subscribe returns a subscription to workspace events.
func (w *Workspace) Subscribe(ctx context.Context) (*pubsub.Subscription[Event], error) {
	return w.events.Subscribe(ctx, EventsTopic)
}

// do runs fn on the loop goroutine and waits for it to finish.
func (w *Workspace) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	cmd := func() {
		defer close(finished)
		fn()
	}

	select {
	case w.cmds <- cmd:
	case <-w.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	// once accepted the command always runs to completion
	<-finished
	return nil
}

func (w *Workspace) backgroundRefresh(ctx context.Context) {
	if !w.refreshing.CompareAndSwap(false, true) {
		w.logger.Debug("refresh already in progress")
		return
	}
	defer w.refreshing.Store(false)

	if _, err := w.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Warn("background refresh failed", logging.Error(err))
	}
}

// Refresh pulls both sources and replaces the graph. Any selection on the
// previous graph is discarded. It returns the snapshot of the new graph.
func (w *Workspace) Refresh(ctx context.Context) (Snapshot, error) {
	recs, summary, err := w.fetch(ctx)
	if w.metrics != nil {
		w.metrics.RecordRefresh(time.Now(), err)
	}
	if err != nil {
		return Snapshot{}, err
	}
	return w.Load(ctx, recs, summary)
}

func (w *Workspace) fetch(ctx context.Context) ([]records.ConnectionRecord, records.HostSummary, error) {
	if w.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.fetchTimeout)
		defer cancel()
	}

	recs, err := w.sources.Records.Records(ctx)
	if err != nil {
		return nil, records.HostSummary{}, fmt.Errorf("fetch records: %w", err)
	}

	var summary records.HostSummary
	if w.sources.Summary != nil {
		summary, err = w.sources.Summary.Summary(ctx)
		if err != nil {
			return nil, records.HostSummary{}, fmt.Errorf("fetch summary: %w", err)
		}
	}
	return recs, summary, nil
}

// Load replaces the graph with one built from recs and summary.
func (w *Workspace) Load(ctx context.Context, recs []records.ConnectionRecord, summary records.HostSummary) (Snapshot, error) {
	var snap Snapshot
	err := w.do(ctx, func() {
		w.apply(recs, summary)
		snap = w.snapshot()
		w.publish(EventLoaded, snap)
	})
	return snap, err
}

func (w *Workspace) apply(recs []records.ConnectionRecord, summary records.HostSummary) {
	start := time.Now()
	g := graph.Build(recs, summary, w.buildOpts...)

	positions, err := w.layout.ComputeLayout(g)
	if err != nil {
		w.logger.Warn("layout failed, nodes will have no positions", logging.Error(err))
		positions = nil
	}
	w.viewport.SetPositions(positions)
	w.controller.Load(g)

	w.version++
	w.loadedAt = time.Now()
	w.lastLoad.Store(w.loadedAt.UnixNano())
	w.loaded.Store(true)

	stats := g.Stats()
	if w.metrics != nil {
		w.metrics.RecordGraphBuild(stats.Nodes, stats.Edges, stats.Peers, stats.MaliciousPeers, time.Since(start))
	}
	w.logger.Info("graph loaded",
		logging.NodeCount(stats.Nodes),
		logging.EdgeCount(stats.Edges),
		logging.Int("malicious_peers", stats.MaliciousPeers),
		logging.Latency(time.Since(start)),
	)
}

// Click applies a canvas click and returns its outcome with the resulting
// snapshot.
func (w *Workspace) Click(ctx context.Context, ev interaction.ClickEvent) (interaction.Outcome, Snapshot, error) {
	var (
		outcome interaction.Outcome
		snap    Snapshot
	)
	err := w.do(ctx, func() {
		outcome = w.controller.Click(ev)
		snap = w.snapshot()
		if w.metrics != nil {
			w.metrics.RecordClick(outcome.String())
		}
		if outcome != interaction.OutcomeIgnored {
			w.publish(EventSelection, snap)
		}
	})
	return outcome, snap, err
}

// CloseMenu dismisses the menu and clears the selection.
func (w *Workspace) CloseMenu(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := w.do(ctx, func() {
		w.controller.CloseMenu()
		snap = w.snapshot()
		w.publish(EventSelection, snap)
	})
	return snap, err
}

// Snapshot returns the current state.
func (w *Workspace) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := w.do(ctx, func() { snap = w.snapshot() })
	return snap, err
}

// Menu returns the open menu, reporting false when none is open.
func (w *Workspace) Menu(ctx context.Context) (menu.Menu, bool, error) {
	var (
		m  menu.Menu
		ok bool
	)
	err := w.do(ctx, func() {
		m, ok = menu.ForSelection(w.controller.Selection(), w.bounds)
	})
	return m, ok, err
}

// Invoke runs a menu action against the current selection.
func (w *Workspace) Invoke(ctx context.Context, action menu.Action) (string, error) {
	var (
		msg    string
		invErr error
	)
	err := w.do(ctx, func() {
		msg, invErr = menu.Invoke(w.controller.Selection(), action)
	})
	if err != nil {
		return "", err
	}

	status := "ok"
	if invErr != nil {
		status = "error"
	}
	if w.metrics != nil {
		w.metrics.RecordMenuAction(string(action), status)
	}
	if invErr == nil {
		w.logger.Info("menu action", logging.String("action", string(action)), logging.String("result", msg))
	}
	return msg, invErr
}

func (w *Workspace) publish(kind EventKind, snap Snapshot) {
	w.events.Publish(EventsTopic, Event{Kind: kind, Version: snap.Version, Snapshot: snap})
}
