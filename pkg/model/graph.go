package model

// Graph is the rendering-surface-agnostic diagram: nodes in declaration
// order plus the edges between them. Stages never mutate a graph they did
// not create; they return a new one.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make([]*Node, 0),
		Edges: make([]*Edge, 0),
	}
}

// Node represents a vertex in the roadmap diagram.
type Node struct {
	ID       string    `json:"id"`
	Type     NodeType  `json:"type"`
	Position *Position `json:"position,omitempty"` // nil until laid out
	Size     Size      `json:"size"`
	Data     NodeData  `json:"data"`
}

// Edge represents a directed connection between two nodes.
type Edge struct {
	ID           string   `json:"id"`
	Source       string   `json:"source"`
	Target       string   `json:"target"`
	Kind         EdgeKind `json:"kind"`
	SourceHandle Handle   `json:"sourceHandle,omitempty"`
	TargetHandle Handle   `json:"targetHandle,omitempty"`
	MarkerEnd    string   `json:"markerEnd"`
}

// EdgeID builds the id of the edge between source and target
func EdgeID(source, target string) string {
	return "e-" + source + "->" + target
}

// AddNode appends a node to the graph.
func (g *Graph) AddNode(node *Node) {
	g.Nodes = append(g.Nodes, node)
}

// AddEdge appends an edge between two node ids.
func (g *Graph) AddEdge(source, target string, kind EdgeKind) *Edge {
	edge := &Edge{
		ID:        EdgeID(source, target),
		Source:    source,
		Target:    target,
		Kind:      kind,
		MarkerEnd: MarkerArrowClosed,
	}
	g.Edges = append(g.Edges, edge)
	return edge
}

// Node returns the node with the given id
func (g *Graph) Node(id string) (*Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// Index maps node ids to nodes
func (g *Graph) Index() map[string]*Node {
	idx := make(map[string]*Node, len(g.Nodes))
	for _, n := range g.Nodes {
		idx[n.ID] = n
	}
	return idx
}

// Clone returns a deep copy of the graph
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Nodes: make([]*Node, len(g.Nodes)),
		Edges: make([]*Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		cp := *n
		if n.Position != nil {
			pos := *n.Position
			cp.Position = &pos
		}
		out.Nodes[i] = &cp
	}
	for i, e := range g.Edges {
		cp := *e
		out.Edges[i] = &cp
	}
	return out
}

// CountByType tallies nodes per type
func (g *Graph) CountByType() map[NodeType]int {
	counts := make(map[NodeType]int)
	for _, n := range g.Nodes {
		counts[n.Type]++
	}
	return counts
}
