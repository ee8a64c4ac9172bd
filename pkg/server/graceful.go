// Package server runs the HTTP listener with signal-driven graceful
// shutdown. SIGHUP triggers the reload hook instead of a restart.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-eyeball/pkg/logging"
)

// DefaultShutdownTimeout bounds how long in-flight requests may drain.
const DefaultShutdownTimeout = 30 * time.Second

// ReloadFunc is called on SIGHUP.
type ReloadFunc func(ctx context.Context) error

// GracefulServer wraps an HTTP server with graceful shutdown capabilities
type GracefulServer struct {
	server          *http.Server
	logger          logging.Logger
	shutdownTimeout time.Duration
	shutdownCh      chan struct{}
	shutdownOnce    sync.Once
	ready           chan struct{}

	mu       sync.RWMutex
	reloadFn ReloadFunc
	addr     net.Addr
}

// NewGracefulServer creates a new graceful HTTP server
func NewGracefulServer(addr string, handler http.Handler, logger logging.Logger) *GracefulServer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &GracefulServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		logger:          logger.With(logging.Component("server")),
		shutdownTimeout: DefaultShutdownTimeout,
		shutdownCh:      make(chan struct{}),
		ready:           make(chan struct{}),
	}
}

// SetShutdownTimeout changes the drain timeout used when Run stops.
func (gs *GracefulServer) SetShutdownTimeout(d time.Duration) {
	if d > 0 {
		gs.shutdownTimeout = d
	}
}

// Run listens and serves until ctx is cancelled, SIGINT or SIGTERM
// arrives, or the listener fails. SIGHUP calls the reload function and
// keeps serving. The websocket stream has no write timeout, so none is
// set on the server.
func (gs *GracefulServer) Run(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	ln, err := net.Listen("tcp", gs.server.Addr)
	if err != nil {
		return err
	}
	gs.mu.Lock()
	gs.addr = ln.Addr()
	gs.mu.Unlock()

	errCh := make(chan error, 1)
	go func() { errCh <- gs.server.Serve(ln) }()

	gs.logger.Info("HTTP server listening", logging.String("addr", ln.Addr().String()))
	close(gs.ready)

	for {
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err

		case <-ctx.Done():
			return gs.Shutdown(gs.shutdownTimeout)

		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				gs.logger.Info("received SIGHUP, reloading")
				if err := gs.Reload(ctx); err != nil {
					gs.logger.Warn("reload failed", logging.Error(err))
				}
				continue
			}
			gs.logger.Info("received signal, shutting down", logging.String("signal", sig.String()))
			return gs.Shutdown(gs.shutdownTimeout)
		}
	}
}

// Ready is closed once the listener is bound.
func (gs *GracefulServer) Ready() <-chan struct{} {
	return gs.ready
}

// Addr returns the bound address, or nil before Run has listened.
func (gs *GracefulServer) Addr() net.Addr {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.addr
}

// Shutdown initiates a graceful shutdown
func (gs *GracefulServer) Shutdown(timeout time.Duration) error {
	var err error
	gs.shutdownOnce.Do(func() {
		close(gs.shutdownCh)

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		gs.logger.Info("initiating graceful shutdown", logging.Duration("timeout", timeout))

		if err = gs.server.Shutdown(ctx); err != nil {
			gs.logger.Error("error during shutdown", logging.Error(err))
		} else {
			gs.logger.Info("server shutdown complete")
		}
	})
	return err
}

// RegisterOnShutdown registers fn to run when shutdown begins. Hijacked
// websocket connections are not tracked by net/http and need this.
func (gs *GracefulServer) RegisterOnShutdown(fn func()) {
	gs.server.RegisterOnShutdown(fn)
}

// IsShuttingDown returns true if shutdown has been initiated
func (gs *GracefulServer) IsShuttingDown() bool {
	select {
	case <-gs.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownChannel returns a channel that closes when shutdown is initiated
func (gs *GracefulServer) ShutdownChannel() <-chan struct{} {
	return gs.shutdownCh
}

// SetReloadFunc sets the function to call when a reload is triggered
func (gs *GracefulServer) SetReloadFunc(fn ReloadFunc) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.reloadFn = fn
}

// Reload calls the reload function, if any.
func (gs *GracefulServer) Reload(ctx context.Context) error {
	gs.mu.RLock()
	reloadFn := gs.reloadFn
	gs.mu.RUnlock()

	if reloadFn == nil {
		gs.logger.Debug("reload requested, but no reload function configured")
		return nil
	}

	timer := logging.StartTimer(gs.logger, "reload")
	if err := reloadFn(ctx); err != nil {
		timer.EndError(err)
		return err
	}
	timer.End()
	return nil
}
