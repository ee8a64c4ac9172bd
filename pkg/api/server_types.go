package api

import (
	"context"
	"time"

	"github.com/dd0wney/cluso-eyeball/pkg/api/middleware"
	"github.com/dd0wney/cluso-eyeball/pkg/graphql"
	"github.com/dd0wney/cluso-eyeball/pkg/health"
	"github.com/dd0wney/cluso-eyeball/pkg/logging"
	"github.com/dd0wney/cluso-eyeball/pkg/menu"
	"github.com/dd0wney/cluso-eyeball/pkg/metrics"
	"github.com/dd0wney/cluso-eyeball/pkg/pubsub"
	"github.com/dd0wney/cluso-eyeball/pkg/workspace"
)

// Workspace is the part of *workspace.Workspace the server drives.
type Workspace interface {
	graphql.Workspace
	Menu(ctx context.Context) (menu.Menu, bool, error)
	Invoke(ctx context.Context, action menu.Action) (string, error)
	Refresh(ctx context.Context) (workspace.Snapshot, error)
	Subscribe(ctx context.Context) (*pubsub.Subscription[workspace.Event], error)
	Loaded() bool
	LastLoad() time.Time
	Ping(ctx context.Context) error
}

var _ Workspace = (*workspace.Workspace)(nil)

// Server represents the HTTP API server
type Server struct {
	ws              Workspace
	graphqlHandler  *graphql.GraphQLHandler
	healthChecker   *health.HealthChecker
	metricsRegistry *metrics.Registry
	corsConfig      *middleware.CORSConfig
	hub             *hub
	logger          logging.Logger
	maxBodyBytes    int64
	version         string
}
