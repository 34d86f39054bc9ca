package main

import (
	"fmt"
	"os"

	"github.com/ritzau/roadmap-graph/pkg/output"
	"github.com/ritzau/roadmap-graph/pkg/pipeline"
	"github.com/ritzau/roadmap-graph/pkg/roadmap"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Check that every definition compiles",
	Long: `Validate runs every definition through normalization, verification and
layout and prints a report. The exit status is non-zero if any fail.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	dir := cfg.Roadmaps
	if len(args) == 1 {
		dir = args[0]
	}

	loaded, err := roadmap.LoadDir(dir)
	if err != nil {
		return err
	}

	p := pipeline.New(cfg.Layout)
	results := make([]output.ValidationResult, 0, len(loaded))
	for _, res := range loaded {
		vr := output.ValidationResult{Path: res.Path, Slug: roadmap.SlugFromPath(res.Path), Err: res.Err}
		if res.Err == nil {
			vr.Slug = res.Definition.Slug
			snap, err := p.Build(res.Definition)
			if err != nil {
				vr.Err = err
			} else {
				vr.Graph = snap.Graph
			}
		}
		results = append(results, vr)
	}

	if failed := output.PrintValidationReport(os.Stdout, dir, results); failed > 0 {
		return fmt.Errorf("%d roadmap(s) failed to compile", failed)
	}
	return nil
}
