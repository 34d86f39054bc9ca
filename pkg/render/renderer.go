// Package render draws laid-out roadmap graphs and dispatches node clicks.
// It holds no mastery state: colours come from the statuses in the graph it
// is given, and clicks are handed to the caller's callback.
package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/ritzau/roadmap-graph/pkg/model"
)

var (
	// ErrUnknownNode is returned when a click targets a node not in the graph
	ErrUnknownNode = errors.New("unknown node")
	// ErrNotClickable is returned when a click targets a decorative node
	ErrNotClickable = errors.New("node is not clickable")
)

// ClickFunc receives the id and payload of a clicked node
type ClickFunc func(nodeID string, data model.NodeData)

// Renderer binds positioned graphs to drawing surfaces
type Renderer struct {
	onNodeClick ClickFunc
}

// New creates a renderer. onNodeClick may be nil.
func New(onNodeClick ClickFunc) *Renderer {
	return &Renderer{onNodeClick: onNodeClick}
}

// Scene resolves g into drawable primitives, highlighting activeID if set
func (r *Renderer) Scene(g *model.Graph, activeID string) *Scene {
	return BuildScene(g, activeID)
}

// WriteSVG draws g as an SVG document
func (r *Renderer) WriteSVG(w io.Writer, g *model.Graph, activeID string) error {
	return writeSVG(w, BuildScene(g, activeID))
}

// WritePNG rasterises g as a PNG image
func (r *Renderer) WritePNG(w io.Writer, g *model.Graph, activeID string) error {
	return writePNG(w, BuildScene(g, activeID))
}

// Click dispatches a click on nodeID to the callback with the node's current
// data. The graph is not modified.
func (r *Renderer) Click(g *model.Graph, nodeID string) error {
	n, ok := g.Node(nodeID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, nodeID)
	}
	if !TemplateFor(n.Type).Clickable {
		return fmt.Errorf("%w: %s", ErrNotClickable, nodeID)
	}
	if r.onNodeClick != nil {
		r.onNodeClick(n.ID, n.Data)
	}
	return nil
}
