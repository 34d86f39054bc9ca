package layout

import (
	"math"

	"github.com/ritzau/roadmap-graph/pkg/model"
)

// ChooseHandles picks the connection points for an edge from source centre
// s to target centre t. Vertically aligned nodes connect bottom to top (or
// top to bottom when the target is above); anything else connects through
// the facing sides.
func ChooseHandles(s, t model.Position) (source, target model.Handle) {
	dx := t.X - s.X
	switch {
	case dx == 0 && t.Y >= s.Y:
		return model.HandleBottom, model.HandleTop
	case dx == 0:
		return model.HandleTop, model.HandleBottom
	case dx > 0:
		return model.HandleRight, model.HandleLeft
	default:
		return model.HandleLeft, model.HandleRight
	}
}

// AssignHandles sets the handles of every edge whose endpoints are positioned
func AssignHandles(g *model.Graph) {
	idx := g.Index()
	for _, e := range g.Edges {
		s, t := idx[e.Source], idx[e.Target]
		if s == nil || t == nil || s.Position == nil || t.Position == nil {
			continue
		}
		e.SourceHandle, e.TargetHandle = ChooseHandles(*s.Position, *t.Position)
	}
}

// HandlePoint returns the pixel coordinates of a handle on a node's border
func HandlePoint(n *model.Node, h model.Handle) model.Position {
	p := *n.Position
	switch h {
	case model.HandleTop:
		p.Y -= n.Size.H / 2
	case model.HandleBottom:
		p.Y += n.Size.H / 2
	case model.HandleLeft:
		p.X -= n.Size.W / 2
	case model.HandleRight:
		p.X += n.Size.W / 2
	}
	return p
}

// Rect is an axis-aligned box
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

func (r Rect) Width() float64  { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Bounds returns the box enclosing every positioned node, grown by padding
// on all sides. A graph without positioned nodes yields a padding-sized box
// at the origin.
func Bounds(g *model.Graph, padding float64) Rect {
	r := Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, n := range g.Nodes {
		if n.Position == nil {
			continue
		}
		r.MinX = math.Min(r.MinX, n.Position.X-n.Size.W/2)
		r.MinY = math.Min(r.MinY, n.Position.Y-n.Size.H/2)
		r.MaxX = math.Max(r.MaxX, n.Position.X+n.Size.W/2)
		r.MaxY = math.Max(r.MaxY, n.Position.Y+n.Size.H/2)
	}
	if math.IsInf(r.MinX, 1) {
		r = Rect{}
	}
	r.MinX -= padding
	r.MinY -= padding
	r.MaxX += padding
	r.MaxY += padding
	return r
}
