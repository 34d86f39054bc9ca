package normalize

import (
	"strings"

	"github.com/ritzau/roadmap-graph/pkg/graph"
	"github.com/ritzau/roadmap-graph/pkg/model"
)

// Verify checks the structural invariants of a normalized graph: unique node
// ids, no dangling or self-referencing edges, no cycles, and every node
// reachable from the first one. Violations are reported as
// MalformedRoadmapError.
func Verify(g *model.Graph) error {
	if len(g.Nodes) == 0 {
		return malformed("", "graph has no nodes")
	}

	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if seen[n.ID] {
			return malformed(n.ID, "duplicate node id")
		}
		seen[n.ID] = true
	}

	for _, e := range g.Edges {
		if !seen[e.Source] {
			return malformed(e.ID, "edge source %q does not exist", e.Source)
		}
		if !seen[e.Target] {
			return malformed(e.ID, "edge target %q does not exist", e.Target)
		}
		if e.Source == e.Target {
			return malformed(e.ID, "edge loops on %q", e.Source)
		}
	}

	ng := graph.FromModel(g)
	if cycles := ng.Cycles(); len(cycles) > 0 {
		return malformed("", "cycle through %s", strings.Join(cycles[0], ", "))
	}

	reached := ng.Reachable(g.Nodes[0].ID)
	for _, n := range g.Nodes {
		if !reached[n.ID] {
			return malformed(n.ID, "node is not connected to %s", g.Nodes[0].ID)
		}
	}
	return nil
}
