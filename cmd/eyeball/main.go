// Command eyeball serves and renders the hub-and-spoke connection graph of
// one observed host.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-eyeball/pkg/config"
	"github.com/dd0wney/cluso-eyeball/pkg/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configPath string
	logLevel   string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "eyeball",
		Short: "Eyeball - network connection graph for one observed host",
		Long: `Eyeball turns connection records for a single host into a hub-and-spoke
graph: the host in the middle, one node per peer, edges sized by traffic
and coloured by maliciousness.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	root.AddCommand(newServeCmd(), newRenderCmd(), newTUICmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// loadConfig reads the config named by --config and applies --log-level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// newLogger writes JSON logs to stderr at the configured level.
func newLogger(cfg *config.Config) *logging.ZapLogger {
	return logging.NewZapLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "eyeball:", err)
		os.Exit(1)
	}
}
