package main

import (
	"fmt"
	"time"

	"github.com/ritzau/roadmap-graph/pkg/logging"
	"github.com/ritzau/roadmap-graph/pkg/pipeline"
	"github.com/ritzau/roadmap-graph/pkg/watcher"
	"github.com/ritzau/roadmap-graph/pkg/web"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	debounceQuiet   = 150 * time.Millisecond
	debounceMaxWait = time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive roadmap viewer",
	Long: `Serve compiles every definition in the roadmaps directory and serves the
viewer. Clicking an available topic or option marks it mastered.

With --watch, definitions are recompiled when their files change and open
viewers update over server-sent events.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8080, "Port for the web server")
	serveCmd.Flags().BoolP("watch", "w", false, "Reload definitions when files change")
}

func runServe(cmd *cobra.Command, args []string) error {
	tracker, err := openTracker()
	if err != nil {
		return err
	}
	defer tracker.Close()

	server := web.NewServer(pipeline.New(cfg.Layout), tracker)
	defer server.Close()

	g, ctx := errgroup.WithContext(cmd.Context())

	if err := server.Catalog().LoadDir(ctx, cfg.Roadmaps); err != nil {
		return err
	}

	if cfg.Watch {
		fw, err := watcher.NewFileWatcher(cfg.Roadmaps)
		if err != nil {
			return err
		}
		if err := fw.Start(ctx); err != nil {
			return err
		}
		debouncer := watcher.NewDebouncer(fw.Events(), debounceQuiet, debounceMaxWait)
		debouncer.Start(ctx)

		g.Go(func() error {
			server.Catalog().Watch(ctx, debouncer.Output())
			return nil
		})
	}

	g.Go(func() error {
		return server.Start(ctx, fmt.Sprintf(":%d", cfg.Port))
	})

	logging.Info("viewer ready", "url", fmt.Sprintf("http://localhost:%d", cfg.Port), "watch", cfg.Watch)
	return g.Wait()
}
