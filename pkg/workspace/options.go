package workspace

import (
	"time"

	"github.com/dd0wney/cluso-eyeball/pkg/graph"
	"github.com/dd0wney/cluso-eyeball/pkg/logging"
	"github.com/dd0wney/cluso-eyeball/pkg/metrics"
	"github.com/dd0wney/cluso-eyeball/pkg/pubsub"
	"github.com/dd0wney/cluso-eyeball/pkg/visualization"
)

type options struct {
	layoutName      string
	layoutConfig    *visualization.LayoutConfig
	buildOpts       []graph.BuildOption
	fetchTimeout    time.Duration
	refreshInterval time.Duration
	eventBuffer     int
	logger          logging.Logger
	metrics         *metrics.Registry
}

func defaultOptions() options {
	return options{
		layoutName:   visualization.LayoutRadial,
		layoutConfig: &visualization.LayoutConfig{Width: 1200, Height: 800},
		fetchTimeout: 10 * time.Second,
		eventBuffer:  pubsub.DefaultBuffer,
		logger:       logging.NewNopLogger(),
	}
}

// Option configures a Workspace.
type Option func(*options)

// WithLayout selects the layout by name and its canvas settings.
func WithLayout(name string, cfg *visualization.LayoutConfig) Option {
	return func(o *options) {
		o.layoutName = name
		if cfg != nil {
			o.layoutConfig = cfg
		}
	}
}

// WithBuildOptions passes options through to graph.Build.
func WithBuildOptions(opts ...graph.BuildOption) Option {
	return func(o *options) { o.buildOpts = append(o.buildOpts, opts...) }
}

// WithFetchTimeout bounds each refresh's source fetches. Zero disables it.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) { o.fetchTimeout = d }
}

// WithRefreshInterval enables periodic refresh. Zero disables it.
func WithRefreshInterval(d time.Duration) Option {
	return func(o *options) { o.refreshInterval = d }
}

// WithEventBuffer sets the per-subscriber event buffer.
func WithEventBuffer(n int) Option {
	return func(o *options) { o.eventBuffer = n }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records workspace activity in m.
func WithMetrics(m *metrics.Registry) Option {
	return func(o *options) { o.metrics = m }
}
