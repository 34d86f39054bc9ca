package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ritzau/roadmap-graph/pkg/config"
	"github.com/ritzau/roadmap-graph/pkg/logging"
	"github.com/ritzau/roadmap-graph/pkg/mastery"
	"github.com/ritzau/roadmap-graph/pkg/pipeline"
	"github.com/ritzau/roadmap-graph/pkg/render"
	"github.com/ritzau/roadmap-graph/pkg/roadmap"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <file|slug>",
	Short: "Draw one roadmap as SVG, PNG or scene JSON",
	Long: `Render compiles a single definition and writes the drawing.

The argument is either a definition file or the slug of a definition in the
roadmaps directory. Mastery state from --db is applied when set.

Examples:
  roadmap render roadmaps/backend.yaml > backend.svg
  roadmap render backend --format png -o backend.png
  roadmap render backend --format json --active backend:lang`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringP("format", "f", config.FormatSVG, "Output format: svg, png or json")
	renderCmd.Flags().StringP("output", "o", "-", "Output file, - for stdout")
	renderCmd.Flags().String("active", "", "Node id to highlight")
}

func runRender(cmd *cobra.Command, args []string) error {
	def, err := findDefinition(args[0])
	if err != nil {
		return err
	}

	tracker, err := openTracker()
	if err != nil {
		return err
	}
	defer tracker.Close()

	states, err := tracker.States(cmd.Context(), def.Slug)
	if err != nil {
		return fmt.Errorf("reading mastery state: %w", err)
	}

	snap, err := pipeline.New(cfg.Layout).Build(mastery.Apply(def, states))
	if err != nil {
		return err
	}

	w := io.Writer(os.Stdout)
	if cfg.Output != "-" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		w = f
	}

	r := render.New(nil)
	switch cfg.Format {
	case config.FormatPNG:
		err = r.WritePNG(w, snap.Graph, cfg.Active)
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(r.Scene(snap.Graph, cfg.Active))
	default:
		err = r.WriteSVG(w, snap.Graph, cfg.Active)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", cfg.Format, err)
	}

	logging.Info("rendered roadmap", "roadmap", snap.Slug, "format", cfg.Format,
		"nodes", len(snap.Graph.Nodes), "output", cfg.Output)
	return nil
}

// findDefinition loads arg as a file, falling back to a slug lookup in the
// roadmaps directory
func findDefinition(arg string) (*roadmap.Definition, error) {
	if _, err := os.Stat(arg); err == nil {
		return roadmap.LoadFile(arg)
	}

	results, err := roadmap.LoadDir(cfg.Roadmaps)
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		if res.Err == nil && res.Definition.Slug == arg {
			return res.Definition, nil
		}
		if res.Err != nil && roadmap.SlugFromPath(res.Path) == arg {
			return nil, res.Err
		}
	}
	return nil, fmt.Errorf("no roadmap %q in %s", arg, cfg.Roadmaps)
}
