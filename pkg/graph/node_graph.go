package graph

import (
	"slices"

	"github.com/ritzau/roadmap-graph/pkg/model"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
)

// NodeGraph indexes a roadmap diagram's topology in a gonum directed graph
type NodeGraph struct {
	graph  *simple.DirectedGraph
	ids    map[string]int64 // Map from node id to graph ID
	names  []string         // Graph ID -> node id
	nextID int64
}

// NewNodeGraph creates an empty topology graph
func NewNodeGraph() *NodeGraph {
	return &NodeGraph{
		graph: simple.NewDirectedGraph(),
		ids:   make(map[string]int64),
		names: make([]string, 0),
	}
}

// FromModel builds the topology of a diagram. Edges whose endpoints are not
// nodes of g are skipped.
func FromModel(g *model.Graph) *NodeGraph {
	ng := NewNodeGraph()
	for _, n := range g.Nodes {
		ng.AddNode(n.ID)
	}
	for _, e := range g.Edges {
		if !ng.Has(e.Source) || !ng.Has(e.Target) {
			continue
		}
		ng.AddEdge(e.Source, e.Target)
	}
	return ng
}

// AddNode adds a node; re-adding an existing id is a no-op
func (ng *NodeGraph) AddNode(id string) {
	if _, exists := ng.ids[id]; exists {
		return
	}

	ng.ids[id] = ng.nextID
	ng.names = append(ng.names, id)
	ng.graph.AddNode(simple.Node(ng.nextID))
	ng.nextID++
}

// AddEdge adds a directed edge, creating missing endpoints.
// Self loops are ignored since the underlying graph cannot hold them.
func (ng *NodeGraph) AddEdge(source, target string) {
	ng.AddNode(source)
	ng.AddNode(target)

	sourceID := ng.ids[source]
	targetID := ng.ids[target]
	if sourceID == targetID {
		return
	}

	if !ng.graph.HasEdgeFromTo(sourceID, targetID) {
		ng.graph.SetEdge(ng.graph.NewEdge(ng.graph.Node(sourceID), ng.graph.Node(targetID)))
	}
}

// Has reports whether the node id is present
func (ng *NodeGraph) Has(id string) bool {
	_, ok := ng.ids[id]
	return ok
}

// Len returns the number of nodes
func (ng *NodeGraph) Len() int {
	return len(ng.names)
}

// Graph returns the underlying directed graph
func (ng *NodeGraph) Graph() *simple.DirectedGraph {
	return ng.graph
}

// Successors returns the ids a node points to, in graph ID order
func (ng *NodeGraph) Successors(id string) []string {
	gid, ok := ng.ids[id]
	if !ok {
		return nil
	}

	var gids []int64
	iter := ng.graph.From(gid)
	for iter.Next() {
		gids = append(gids, iter.Node().ID())
	}
	slices.Sort(gids)

	out := make([]string, 0, len(gids))
	for _, id := range gids {
		out = append(out, ng.names[id])
	}
	return out
}

// Reachable returns every node reachable from root following edges in
// either direction, root included.
func (ng *NodeGraph) Reachable(root string) map[string]bool {
	seen := make(map[string]bool)
	gid, ok := ng.ids[root]
	if !ok {
		return seen
	}
	seen[root] = true

	bf := traverse.BreadthFirst{
		Visit: func(n graph.Node) {
			seen[ng.names[n.ID()]] = true
		},
	}
	bf.Walk(graph.Undirect{G: ng.graph}, ng.graph.Node(gid), nil)
	return seen
}

// Cycles returns the strongly connected components with more than one node
func (ng *NodeGraph) Cycles() [][]string {
	var out [][]string
	for _, scc := range topo.TarjanSCC(ng.graph) {
		if len(scc) < 2 {
			continue
		}
		ids := make([]string, 0, len(scc))
		for _, n := range scc {
			ids = append(ids, ng.names[n.ID()])
		}
		out = append(out, ids)
	}
	return out
}

// IsAcyclic reports whether the graph has a topological order
func (ng *NodeGraph) IsAcyclic() bool {
	_, err := topo.Sort(ng.graph)
	return err == nil
}
