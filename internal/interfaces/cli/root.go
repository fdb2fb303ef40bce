// Package cli implements the timeline-engine command line interface: a thin
// harness over the analysis engine for running documents from files or
// stdin.  The engine itself is a library; this surface exists for local
// runs and pipeline debugging.
package cli

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/neuroscribe/timeline-engine/internal/application/engine"
	"github.com/neuroscribe/timeline-engine/internal/config"
	"github.com/neuroscribe/timeline-engine/internal/infrastructure/monitoring/logging"
	"github.com/neuroscribe/timeline-engine/internal/infrastructure/monitoring/metrics"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions holds the global flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "timeline-engine",
		Short:         "Clinical event timeline and relationship inference engine",
		Long:          "Builds a chronological event timeline from extracted clinical mentions,\ninfers relationships between events, and analyzes treatment response and\nfunctional status evolution.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format (json, console)")

	root.AddCommand(newAnalyzeCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

// setup loads configuration and builds the engine with its logger and
// metrics recorder.  Flags override file and environment values.
func (o *rootOptions) setup() (*engine.Engine, logging.Logger, error) {
	var cfg *config.Config
	var err error
	if o.configPath != "" {
		cfg, err = config.Load(o.configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, nil, err
	}
	logging.SetDefault(logger)

	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.New(cfg.Metrics.Namespace, prometheus.DefaultRegisterer)
	}
	return engine.New(cfg, logger, recorder), logger, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "timeline-engine %s (commit %s, built %s)\n",
				Version, GitCommit, BuildDate)
		},
	}
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// Main is the process entry point shared by cmd/timeline-engine.
func Main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
