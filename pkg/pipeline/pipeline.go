// Package pipeline runs normalize, verify and layout for a definition and
// caches layouts per roadmap so status changes reuse existing positions.
package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/ritzau/roadmap-graph/pkg/layout"
	"github.com/ritzau/roadmap-graph/pkg/logging"
	"github.com/ritzau/roadmap-graph/pkg/model"
	"github.com/ritzau/roadmap-graph/pkg/normalize"
	"github.com/ritzau/roadmap-graph/pkg/roadmap"
)

// Snapshot is an immutable, fully laid-out graph for one definition.
// Callers replace snapshots wholesale and never modify one in place.
type Snapshot struct {
	Slug     string       `json:"slug"`
	Title    string       `json:"title"`
	Graph    *model.Graph `json:"graph"`
	Topology string       `json:"topology"` // Fingerprint of everything layout depends on
	Hash     string       `json:"hash"`     // Fingerprint of the whole graph, status included
}

type cachedLayout struct {
	topology string
	graph    *model.Graph
}

// Pipeline builds snapshots. It is safe for concurrent use.
type Pipeline struct {
	cfg layout.Config

	mu      sync.Mutex
	cache   map[string]cachedLayout // slug -> last layout
	layouts int
}

// New creates a pipeline using the given layout spacing
func New(cfg layout.Config) *Pipeline {
	return &Pipeline{
		cfg:   cfg,
		cache: make(map[string]cachedLayout),
	}
}

// Build compiles a definition into a snapshot. Layout runs only when the
// topology differs from the last build of the same slug; otherwise the
// cached positions and handles are carried over onto the fresh graph.
func (p *Pipeline) Build(def *roadmap.Definition) (*Snapshot, error) {
	g, err := normalize.Normalize(def)
	if err != nil {
		return nil, err
	}
	if err := normalize.Verify(g); err != nil {
		return nil, err
	}

	topology := Topology(g, p.cfg)

	p.mu.Lock()
	cached, ok := p.cache[def.Slug]
	p.mu.Unlock()

	var laid *model.Graph
	if ok && cached.topology == topology {
		laid = applyLayout(g, cached.graph)
		logging.Debug("reusing layout", "roadmap", def.Slug, "topology", topology)
	} else {
		laid = layout.Layout(g, p.cfg)
		p.mu.Lock()
		p.cache[def.Slug] = cachedLayout{topology: topology, graph: laid.Clone()}
		p.layouts++
		p.mu.Unlock()
		logging.Debug("computed layout", "roadmap", def.Slug, "nodes", len(laid.Nodes), "edges", len(laid.Edges))
	}

	return &Snapshot{
		Slug:     def.Slug,
		Title:    def.Title,
		Graph:    laid,
		Topology: topology,
		Hash:     GraphHash(laid),
	}, nil
}

// Forget drops the cached layout of a roadmap
func (p *Pipeline) Forget(slug string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.cache, slug)
}

// Layouts returns how many times layout has run
func (p *Pipeline) Layouts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.layouts
}

// applyLayout copies positions, sizes and handles from a laid-out graph of
// the same topology onto g, returning a new graph.
func applyLayout(g, laid *model.Graph) *model.Graph {
	out := g.Clone()
	nodes := laid.Index()
	for _, n := range out.Nodes {
		src := nodes[n.ID]
		pos := *src.Position
		n.Position = &pos
		n.Size = src.Size
	}
	edges := make(map[string]*model.Edge, len(laid.Edges))
	for _, e := range laid.Edges {
		edges[e.ID] = e
	}
	for _, e := range out.Edges {
		src := edges[e.ID]
		e.SourceHandle, e.TargetHandle = src.SourceHandle, src.TargetHandle
	}
	return out
}

type topoNode struct {
	ID     string         `json:"id"`
	Type   model.NodeType `json:"type"`
	Side   roadmap.Side   `json:"side,omitempty"`
	Depth  int            `json:"depth,omitempty"`
	Height float64        `json:"height,omitempty"`
}

type topoEdge struct {
	Source string         `json:"source"`
	Target string         `json:"target"`
	Kind   model.EdgeKind `json:"kind"`
}

// Topology fingerprints the inputs of layout: node ids, types, sides,
// depths, height hints, edges and spacing. Labels and statuses are not part
// of it.
func Topology(g *model.Graph, cfg layout.Config) string {
	data := struct {
		Config layout.Config `json:"config"`
		Nodes  []topoNode    `json:"nodes"`
		Edges  []topoEdge    `json:"edges"`
	}{
		Config: cfg,
		Nodes:  make([]topoNode, 0, len(g.Nodes)),
		Edges:  make([]topoEdge, 0, len(g.Edges)),
	}
	for _, n := range g.Nodes {
		data.Nodes = append(data.Nodes, topoNode{
			ID:     n.ID,
			Type:   n.Type,
			Side:   n.Data.Side,
			Depth:  n.Data.Depth,
			Height: n.Data.HeightHint,
		})
	}
	for _, e := range g.Edges {
		data.Edges = append(data.Edges, topoEdge{Source: e.Source, Target: e.Target, Kind: e.Kind})
	}
	return hashJSON(data)
}

// GraphHash fingerprints a whole graph
func GraphHash(g *model.Graph) string {
	return hashJSON(g)
}

func hashJSON(v any) string {
	jsonData, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	hash := sha256.Sum256(jsonData)
	return fmt.Sprintf("%x", hash)
}
