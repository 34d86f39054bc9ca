package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/ritzau/roadmap-graph/pkg/model"
	"github.com/ritzau/roadmap-graph/pkg/normalize"
)

// ValidationResult is the outcome of compiling one definition file
type ValidationResult struct {
	Path  string
	Slug  string
	Graph *model.Graph // Nil when Err is set
	Err   error
}

// PrintValidationReport prints a colored summary of compiled definitions and
// returns the number of failures
func PrintValidationReport(w io.Writer, dir string, results []ValidationResult) int {
	// Color definitions
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	// Header
	bold.Fprintln(w, "Roadmap Validation Report")
	bold.Fprintln(w, "=========================")
	fmt.Fprintf(w, "Directory: %s\n", dir)
	fmt.Fprintf(w, "Scanned: %d definition file(s)\n", len(results))
	fmt.Fprintln(w)

	if len(results) == 0 {
		yellow.Fprintln(w, "No definition files found (*.json, *.yaml, *.yml)")
		return 0
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			red.Fprintf(w, "✗ %s\n", res.Slug)
			cyan.Fprintf(w, "    File: %s\n", res.Path)
			var merr *normalize.MalformedRoadmapError
			if errors.As(res.Err, &merr) {
				if merr.Path != "" {
					yellow.Fprintf(w, "    At: %s\n", merr.Path)
				}
				fmt.Fprintf(w, "    Error: %s\n", merr.Reason)
			} else {
				fmt.Fprintf(w, "    Error: %v\n", res.Err)
			}
			fmt.Fprintln(w)
			continue
		}

		green.Fprintf(w, "✓ %s\n", res.Slug)
		cyan.Fprintf(w, "    File: %s\n", res.Path)
		fmt.Fprintf(w, "    Nodes: %d  Edges: %d\n", len(res.Graph.Nodes), len(res.Graph.Edges))
		fmt.Fprintf(w, "    %s\n", typeBreakdown(res.Graph))
		fmt.Fprintln(w)
	}

	summaryColor := green
	if failed > 0 {
		summaryColor = red
	}
	summaryColor.Fprintf(w, "Summary: %d valid, %d invalid\n", len(results)-failed, failed)

	if failed == 0 {
		green.Fprintln(w, "✓ All roadmaps compile!")
	}
	return failed
}

// typeBreakdown lists node counts in declaration order of the node types
func typeBreakdown(g *model.Graph) string {
	counts := g.CountByType()
	parts := make([]string, 0, len(model.NodeTypes))
	for _, t := range model.NodeTypes {
		if counts[t] > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", t, counts[t]))
		}
	}
	return strings.Join(parts, " ")
}
