// Command roadmap compiles roadmap definitions into laid-out graphs and
// serves them as an interactive viewer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ritzau/roadmap-graph/pkg/config"
	"github.com/ritzau/roadmap-graph/pkg/layout"
	"github.com/ritzau/roadmap-graph/pkg/logging"
	"github.com/ritzau/roadmap-graph/pkg/mastery"
	"github.com/spf13/cobra"
)

// Version is the current version of roadmap
var Version = "0.1.0"

// cfg is loaded before any subcommand runs
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Compile and view learning roadmaps",
	Long: `roadmap turns roadmap definitions into a spine-and-branch graph.

Definitions are JSON or YAML files in a roadmaps directory. Each phase becomes
a bracketed section of the spine; group topics branch out into options on
either side.

Configuration is read from roadmap.toml (or --config), then ROADMAP_*
environment variables, then flags.

Examples:
  roadmap serve --watch              # Serve the viewer and reload on save
  roadmap render backend -o out.svg  # Draw one roadmap
  roadmap validate roadmaps/         # Check every definition compiles`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		return logging.Configure(cfg.Verbosity, cfg.JSONLogs)
	},
}

func init() {
	d := layout.DefaultConfig()
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config file (default: "+config.DefaultFile+" if present)")
	pf.StringP("roadmaps", "r", "roadmaps", "Directory of roadmap definitions")
	pf.StringP("verbosity", "v", "info", "Log level: trace, debug, info, warn, error")
	pf.Bool("json-logs", false, "Write logs as JSON")
	pf.String("db", "", "SQLite file for mastery state (default: in memory)")

	pf.Float64("layout-spine-pitch", d.SpinePitch, "Vertical distance between spine nodes")
	pf.Float64("layout-option-pitch", d.OptionPitch, "Vertical distance between stacked options")
	pf.Float64("layout-branch-offset", d.BranchOffset, "Horizontal distance from a topic to its options")
	pf.Float64("layout-depth-offset", d.DepthOffset, "Extra horizontal distance per nesting level")

	rootCmd.AddCommand(serveCmd, renderCmd, validateCmd)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// openTracker returns a SQLite tracker when a database is configured
func openTracker() (mastery.Tracker, error) {
	if cfg.DB == "" {
		return mastery.NewMemoryTracker(), nil
	}
	t, err := mastery.OpenSQLite(cfg.DB)
	if err != nil {
		return nil, err
	}
	logging.Debug("opened mastery database", "path", t.Path())
	return t, nil
}
