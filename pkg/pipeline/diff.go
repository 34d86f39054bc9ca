package pipeline

import "github.com/ritzau/roadmap-graph/pkg/model"

// GraphDiff represents the difference between two snapshots of a roadmap
type GraphDiff struct {
	Slug          string        `json:"slug"`
	Hash          string        `json:"hash"`
	AddedNodes    []*model.Node `json:"addedNodes"`
	RemovedNodes  []string      `json:"removedNodes"`  // Node IDs
	ModifiedNodes []*model.Node `json:"modifiedNodes"` // Nodes whose data, position or size changed
	AddedEdges    []*model.Edge `json:"addedEdges"`
	RemovedEdges  []string      `json:"removedEdges"` // Edge IDs
	FullGraph     bool          `json:"fullGraph"`    // True if this is a full graph, not a diff
}

// Empty reports whether the diff carries no change
func (d *GraphDiff) Empty() bool {
	return !d.FullGraph &&
		len(d.AddedNodes) == 0 &&
		len(d.RemovedNodes) == 0 &&
		len(d.ModifiedNodes) == 0 &&
		len(d.AddedEdges) == 0 &&
		len(d.RemovedEdges) == 0
}

// ComputeDiff computes the difference between two snapshots. Results follow
// the declaration order of the newer graph; removals follow the older one.
func ComputeDiff(old, cur *Snapshot) *GraphDiff {
	// If no old snapshot, return full graph
	if old == nil {
		return &GraphDiff{
			Slug:       cur.Slug,
			Hash:       cur.Hash,
			AddedNodes: cur.Graph.Nodes,
			AddedEdges: cur.Graph.Edges,
			FullGraph:  true,
		}
	}

	diff := &GraphDiff{
		Slug:          cur.Slug,
		Hash:          cur.Hash,
		AddedNodes:    make([]*model.Node, 0),
		RemovedNodes:  make([]string, 0),
		ModifiedNodes: make([]*model.Node, 0),
		AddedEdges:    make([]*model.Edge, 0),
		RemovedEdges:  make([]string, 0),
	}
	if old.Hash == cur.Hash {
		return diff
	}

	oldNodes := old.Graph.Index()
	newNodes := cur.Graph.Index()

	for _, n := range cur.Graph.Nodes {
		if prev, exists := oldNodes[n.ID]; exists {
			if !nodesEqual(prev, n) {
				diff.ModifiedNodes = append(diff.ModifiedNodes, n)
			}
		} else {
			diff.AddedNodes = append(diff.AddedNodes, n)
		}
	}
	for _, n := range old.Graph.Nodes {
		if _, exists := newNodes[n.ID]; !exists {
			diff.RemovedNodes = append(diff.RemovedNodes, n.ID)
		}
	}

	oldEdges := edgeSet(old.Graph)
	newEdges := edgeSet(cur.Graph)
	for _, e := range cur.Graph.Edges {
		if !oldEdges[e.ID] {
			diff.AddedEdges = append(diff.AddedEdges, e)
		}
	}
	for _, e := range old.Graph.Edges {
		if !newEdges[e.ID] {
			diff.RemovedEdges = append(diff.RemovedEdges, e.ID)
		}
	}

	return diff
}

func edgeSet(g *model.Graph) map[string]bool {
	set := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		set[e.ID] = true
	}
	return set
}

// nodesEqual compares everything a client draws
func nodesEqual(a, b *model.Node) bool {
	if a.Type != b.Type || a.Size != b.Size || a.Data != b.Data {
		return false
	}
	if (a.Position == nil) != (b.Position == nil) {
		return false
	}
	return a.Position == nil || *a.Position == *b.Position
}
