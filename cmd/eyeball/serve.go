package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-eyeball/pkg/api"
	"github.com/dd0wney/cluso-eyeball/pkg/config"
	"github.com/dd0wney/cluso-eyeball/pkg/logging"
	"github.com/dd0wney/cluso-eyeball/pkg/metrics"
	"github.com/dd0wney/cluso-eyeball/pkg/server"
)

func newServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the graph, click API, GraphQL and websocket stream over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.ListenAddr = listen
			}

			logger := newLogger(cfg)
			defer logger.Sync()

			return runServe(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "override the configured listen address")
	return cmd
}

// runServe wires config to workspace, API and listener, and blocks until
// the listener stops.
func runServe(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reg := metrics.NewRegistry()
	ws, err := newWorkspace(ctx, cfg, logger, reg)
	if err != nil {
		return err
	}

	srv, err := api.NewServer(ws, api.Config{
		Version:       version,
		CORSOrigins:   cfg.CORSOrigins,
		MaxRefreshAge: 2 * cfg.RefreshInterval,
		Logger:        logger,
		Metrics:       reg,
	})
	if err != nil {
		return err
	}

	go func() {
		if err := ws.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("workspace stopped", logging.Error(err))
		}
	}()

	gs := server.NewGracefulServer(cfg.ListenAddr, srv.Handler(), logger)
	gs.RegisterOnShutdown(srv.Close)
	gs.SetReloadFunc(func(ctx context.Context) error {
		_, err := ws.Refresh(ctx)
		return err
	})

	logger.Info("starting eyeball",
		logging.String("version", version),
		logging.String("addr", cfg.ListenAddr),
		logging.Source(cfg.RecordsSource),
		logging.String("layout", cfg.Layout),
	)

	err = gs.Run(ctx)
	srv.Close()
	cancel()
	<-ws.Done()
	return err
}
