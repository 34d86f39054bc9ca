package render

import (
	"fmt"

	"github.com/ritzau/roadmap-graph/pkg/layout"
	"github.com/ritzau/roadmap-graph/pkg/model"
	"github.com/ritzau/roadmap-graph/pkg/roadmap"
)

// Padding is the canvas margin around the diagram; wide enough for a
// callout beside the outermost node.
const Padding = calloutW + calloutGap + 12

// CalloutText is the label of the recommended callout
const CalloutText = "Recommended"

// Scene is a positioned graph resolved into drawable primitives on a canvas
// whose origin is the top-left corner.
type Scene struct {
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Nodes  []SceneNode `json:"nodes"`
	Edges  []SceneEdge `json:"edges"`
}

// SceneNode is one node with its derived look
type SceneNode struct {
	ID          string         `json:"id"`
	Type        model.NodeType `json:"type"`
	Template    string         `json:"template"`
	Box         Box            `json:"box"`
	Label       string         `json:"label"`
	Subtitle    string         `json:"subtitle,omitempty"`
	Fill        string         `json:"fill,omitempty"`
	Stroke      string         `json:"stroke"`
	TextColor   string         `json:"textColor"`
	StrokeWidth float64        `json:"strokeWidth"`
	Radius      float64        `json:"radius"`
	IconURL     string         `json:"iconUrl,omitempty"`
	Clickable   bool           `json:"clickable"`
	Active      bool           `json:"active,omitempty"`
	Mastered    bool           `json:"mastered,omitempty"`
	Callout     *Callout       `json:"callout,omitempty"`
	Data        model.NodeData `json:"data"`

	style Style
	tpl   Template
}

// Callout is a non-interactive label attached beside a node
type Callout struct {
	Text string       `json:"text"`
	Box  Box          `json:"box"`
	Side model.Handle `json:"side"`
}

// SceneEdge is a routed connector
type SceneEdge struct {
	ID           string         `json:"id"`
	Source       string         `json:"source"`
	Target       string         `json:"target"`
	Kind         model.EdgeKind `json:"kind"`
	SourceHandle model.Handle   `json:"sourceHandle"`
	TargetHandle model.Handle   `json:"targetHandle"`
	Points       []Point        `json:"points"`
	Arrow        [3]Point       `json:"arrow"`
	MarkerEnd    string         `json:"markerEnd"`
	Stroke       string         `json:"stroke"`
}

// BuildScene resolves a laid-out graph into a scene. activeID, when set,
// marks one node as highlighted. Colours are derived from each node's
// current status on every call.
func BuildScene(g *model.Graph, activeID string) *Scene {
	bounds := layout.Bounds(g, Padding)
	offX, offY := -bounds.MinX, -bounds.MinY

	anchors := make(map[string]model.Handle, len(g.Nodes))
	for _, e := range g.Edges {
		if _, ok := anchors[e.Target]; !ok && e.TargetHandle != "" {
			anchors[e.Target] = e.TargetHandle
		}
	}

	scene := &Scene{
		Width:  bounds.Width(),
		Height: bounds.Height(),
		Nodes:  make([]SceneNode, 0, len(g.Nodes)),
		Edges:  make([]SceneEdge, 0, len(g.Edges)),
	}

	idx := make(map[string]*model.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.Position == nil {
			panic(fmt.Sprintf("render: node %s has no position", n.ID))
		}
		idx[n.ID] = n

		tpl := TemplateFor(n.Type)
		active := n.ID == activeID
		st := styleFor(n, tpl, active)
		box := Box{
			X: n.Position.X - n.Size.W/2 + offX,
			Y: n.Position.Y - n.Size.H/2 + offY,
			W: n.Size.W,
			H: n.Size.H,
		}

		sn := SceneNode{
			ID:          n.ID,
			Type:        n.Type,
			Template:    tpl.Name,
			Box:         box,
			Label:       n.Data.Label,
			Stroke:      cssAlpha(st.Stroke),
			TextColor:   css(st.Text),
			StrokeWidth: st.StrokeWidth,
			Radius:      tpl.Radius,
			Clickable:   tpl.Clickable,
			Active:      active,
			Mastered:    n.Data.Status == roadmap.StatusMastered,
			Data:        n.Data,
			style:       st,
			tpl:         tpl,
		}
		if st.Fill.A != 0 {
			sn.Fill = css(st.Fill)
		}
		if tpl.ShowIcon {
			sn.IconURL = IconURL(n.Data.IconSlug)
		}

		switch tpl.Kind {
		case TemplateBracket:
			sn.Label = fmt.Sprintf("Phase %d", n.Data.PhaseNumber)
			sn.Subtitle = n.Data.Label
		case TemplateMain:
			sn.Subtitle = n.Data.PhaseSubtitle
		}

		if n.Data.IsRecommended {
			anchor, ok := anchors[n.ID]
			if !ok {
				anchor = model.HandleTop
			}
			side := opposite(anchor)
			sn.Callout = &Callout{Text: CalloutText, Box: calloutBox(box, side), Side: side}
		}

		scene.Nodes = append(scene.Nodes, sn)
	}

	for _, e := range g.Edges {
		s, t := idx[e.Source], idx[e.Target]
		if s == nil || t == nil {
			continue
		}
		sp := layout.HandlePoint(s, e.SourceHandle)
		tp := layout.HandlePoint(t, e.TargetHandle)
		from := Point{X: sp.X + offX, Y: sp.Y + offY}
		to := Point{X: tp.X + offX, Y: tp.Y + offY}

		scene.Edges = append(scene.Edges, SceneEdge{
			ID:           e.ID,
			Source:       e.Source,
			Target:       e.Target,
			Kind:         e.Kind,
			SourceHandle: e.SourceHandle,
			TargetHandle: e.TargetHandle,
			Points:       edgeRoute(from, to, e.SourceHandle),
			Arrow:        arrowHead(to, e.TargetHandle),
			MarkerEnd:    e.MarkerEnd,
			Stroke:       css(colorEdge),
		})
	}

	return scene
}
