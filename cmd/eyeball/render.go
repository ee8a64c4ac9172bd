package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-eyeball/pkg/config"
	"github.com/dd0wney/cluso-eyeball/pkg/graph"
	"github.com/dd0wney/cluso-eyeball/pkg/interaction"
	"github.com/dd0wney/cluso-eyeball/pkg/logging"
	"github.com/dd0wney/cluso-eyeball/pkg/records"
	"github.com/dd0wney/cluso-eyeball/pkg/visualization"
)

// Render output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
)

type renderOptions struct {
	format string
	output string
	// highlight selects the first node with this label before rendering.
	highlight string
}

func newRenderCmd() *cobra.Command {
	opts := renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Fetch the sources once and write the graph as JSON or DOT",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			defer logger.Sync()

			out := cmd.OutOrStdout()
			if opts.output != "" && opts.output != "-" {
				f, err := os.Create(opts.output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return render(cmd.Context(), cfg, logger, opts, out)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", FormatJSON, "output format: json or dot")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.highlight, "highlight", "", "highlight the node with this label")
	return cmd
}

func render(ctx context.Context, cfg *config.Config, logger logging.Logger, opts renderOptions, w io.Writer) error {
	if opts.format != FormatJSON && opts.format != FormatDOT {
		return fmt.Errorf("unknown format %q (want %s or %s)", opts.format, FormatJSON, FormatDOT)
	}

	sources, err := openSources(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}

	if cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.FetchTimeout)
		defer cancel()
	}

	recs, err := sources.Records.Records(ctx)
	if err != nil {
		return fmt.Errorf("fetch records: %w", err)
	}
	var summary records.HostSummary
	if sources.Summary != nil {
		if summary, err = sources.Summary.Summary(ctx); err != nil {
			return fmt.Errorf("fetch summary: %w", err)
		}
	}

	viz, err := buildVisualization(cfg, recs, summary, opts.highlight)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	switch opts.format {
	case FormatDOT:
		err = viz.ExportDOT(bw)
	default:
		var data []byte
		if data, err = viz.ExportJSON(); err == nil {
			_, err = bw.Write(append(data, '\n'))
		}
	}
	if err != nil {
		return err
	}
	return bw.Flush()
}

// buildVisualization runs the same build, layout and styling steps as the
// workspace, without an event loop.
func buildVisualization(cfg *config.Config, recs []records.ConnectionRecord, summary records.HostSummary, highlight string) (*visualization.Visualization, error) {
	g := graph.Build(recs, summary, graph.WithPeerIdentity(cfg.Identity()))

	layout, err := visualization.NewLayout(cfg.Layout, cfg.LayoutConfig())
	if err != nil {
		return nil, err
	}
	positions, err := layout.ComputeLayout(g)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	var sel interaction.SelectionState
	if highlight != "" {
		for _, n := range g.Nodes() {
			if n.Label == highlight {
				sel.SelectedNodeID = n.ID
				sel.SelectedLabel = n.Label
				break
			}
		}
		if sel.SelectedNodeID == "" {
			return nil, fmt.Errorf("no node labelled %q", highlight)
		}
	}

	return &visualization.Visualization{
		Graph:     g,
		Styles:    interaction.ComputeStyles(g, sel),
		Positions: positions,
	}, nil
}
