package main

import (
	"context"
	"fmt"

	"github.com/dd0wney/cluso-eyeball/pkg/config"
	"github.com/dd0wney/cluso-eyeball/pkg/graph"
	"github.com/dd0wney/cluso-eyeball/pkg/logging"
	"github.com/dd0wney/cluso-eyeball/pkg/metrics"
	"github.com/dd0wney/cluso-eyeball/pkg/records"
	"github.com/dd0wney/cluso-eyeball/pkg/source"
	"github.com/dd0wney/cluso-eyeball/pkg/workspace"
)

// openSources resolves the configured record and summary locations. A
// summary given inline in the config wins over having none; the config
// validator rejects having both.
func openSources(ctx context.Context, cfg *config.Config, logger logging.Logger, reg *metrics.Registry) (workspace.Sources, error) {
	opts := source.Options{S3: cfg.S3}

	rf, err := source.Open(ctx, cfg.RecordsSource, opts)
	if err != nil {
		return workspace.Sources{}, fmt.Errorf("records source: %w", err)
	}
	sources := workspace.Sources{Records: source.NewRecords(rf, logger, reg)}

	switch {
	case cfg.SummarySource != "":
		sf, err := source.Open(ctx, cfg.SummarySource, opts)
		if err != nil {
			return workspace.Sources{}, fmt.Errorf("summary source: %w", err)
		}
		sources.Summary = source.NewSummary(sf, logger, reg)
	case len(cfg.Summary) > 0:
		sources.Summary = source.StaticSummary(records.SummaryFromMap(cfg.Summary))
	}
	return sources, nil
}

func workspaceOptions(cfg *config.Config, logger logging.Logger, reg *metrics.Registry) []workspace.Option {
	return []workspace.Option{
		workspace.WithLayout(cfg.Layout, cfg.LayoutConfig()),
		workspace.WithBuildOptions(graph.WithPeerIdentity(cfg.Identity())),
		workspace.WithFetchTimeout(cfg.FetchTimeout),
		workspace.WithRefreshInterval(cfg.RefreshInterval),
		workspace.WithLogger(logger),
		workspace.WithMetrics(reg),
	}
}

// newWorkspace builds a workspace from the config. The caller runs it.
func newWorkspace(ctx context.Context, cfg *config.Config, logger logging.Logger, reg *metrics.Registry) (*workspace.Workspace, error) {
	sources, err := openSources(ctx, cfg, logger, reg)
	if err != nil {
		return nil, err
	}
	return workspace.New(sources, workspaceOptions(cfg, logger, reg)...)
}
