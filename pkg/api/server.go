// Package api serves the workspace over HTTP: JSON and DOT graph exports,
// the click and menu endpoints, GraphQL, a websocket event stream, health
// probes and Prometheus metrics.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dd0wney/cluso-eyeball/pkg/api/middleware"
	"github.com/dd0wney/cluso-eyeball/pkg/graphql"
	"github.com/dd0wney/cluso-eyeball/pkg/health"
	"github.com/dd0wney/cluso-eyeball/pkg/logging"
	"github.com/dd0wney/cluso-eyeball/pkg/metrics"
)

// Config holds the server settings that are not part of the workspace.
type Config struct {
	Version       string
	CORSOrigins   []string
	MaxBodyBytes  int64
	MaxRefreshAge time.Duration
	Logger        logging.Logger
	Metrics       *metrics.Registry
}

// routes names every served path for the HTTP metrics.
var routes = middleware.Routes{
	"/graph":        "graph",
	"/graph.dot":    "graph_dot",
	"/refresh":      "refresh",
	"/click":        "click",
	"/selection":    "selection",
	"/menu":         "menu",
	"/menu/close":   "menu_close",
	"/menu/invoke":  "menu_invoke",
	"/graphql":      "graphql",
	"/ws":           "websocket",
	"/health":       "health",
	"/health/ready": "health_ready",
	"/health/live":  "health_live",
	"/metrics":      "metrics",
}

// NewServer creates a new API server over ws.
func NewServer(ws Workspace, cfg Config) (*Server, error) {
	if ws == nil {
		return nil, fmt.Errorf("api: workspace is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.With(logging.Component("api"))

	schema, err := graphql.GenerateSchema(ws)
	if err != nil {
		return nil, err
	}

	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = middleware.DefaultMaxBodyBytes
	}

	hc := health.NewHealthChecker(version)
	hc.RegisterLivenessCheck("event_loop", health.EventLoopCheck(ws.Ping, 2*time.Second))
	hc.RegisterReadinessCheck("graph", health.GraphLoadedCheck(ws.Loaded))
	hc.RegisterCheck("refresh", health.RefreshAgeCheck(ws.LastLoad, cfg.MaxRefreshAge))
	hc.RegisterCheck("memory", health.MemoryCheck())

	cors := middleware.NewCORSConfig(cfg.CORSOrigins)

	s := &Server{
		ws:              ws,
		graphqlHandler:  graphql.NewGraphQLHandler(schema),
		healthChecker:   hc,
		metricsRegistry: cfg.Metrics,
		corsConfig:      cors,
		logger:          logger,
		maxBodyBytes:    maxBody,
		version:         version,
	}
	s.hub = newHub(ws, cors, logger, cfg.Metrics)
	return s, nil
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Graph
	mux.HandleFunc("GET /graph", s.handleGraph)
	mux.HandleFunc("GET /graph.dot", s.handleGraphDOT)
	mux.HandleFunc("POST /refresh", s.handleRefresh)

	// Selection and menu
	mux.HandleFunc("POST /click", s.handleClick)
	mux.HandleFunc("GET /selection", s.handleSelection)
	mux.HandleFunc("GET /menu", s.handleMenu)
	mux.HandleFunc("POST /menu/close", s.handleCloseMenu)
	mux.HandleFunc("POST /menu/invoke", s.handleInvoke)

	// GraphQL and push
	mux.Handle("/graphql", s.graphqlHandler)
	mux.HandleFunc("GET /ws", s.hub.serveWS)

	// Health and metrics
	mux.Handle("GET /health", s.healthChecker.HTTPHandler())
	mux.Handle("GET /health/ready", s.healthChecker.ReadinessHandler())
	mux.Handle("GET /health/live", s.healthChecker.LivenessHandler())
	if s.metricsRegistry != nil {
		mux.Handle("GET /metrics", s.metricsRegistry.Handler())
	}

	var h http.Handler = mux
	h = middleware.BodySizeLimit(s.maxBodyBytes)(h)
	h = middleware.CORS(s.corsConfig)(h)
	h = middleware.SecurityHeaders(nil)(h)
	if s.metricsRegistry != nil {
		h = middleware.Metrics(s.metricsRegistry, routes)(h)
	}
	h = middleware.Logging(s.logger, middleware.GetRequestID)(h)
	h = middleware.RequestID()(h)
	h = middleware.PanicRecovery(s.logger)(h)
	return h
}

// Close disconnects websocket clients.
func (s *Server) Close() {
	s.hub.close()
}
