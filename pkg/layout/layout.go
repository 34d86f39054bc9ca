// Package layout assigns deterministic coordinates to a normalized roadmap
// graph and wires edge handles from the resulting geometry.
package layout

import (
	"math"
	"strings"

	"github.com/ritzau/roadmap-graph/pkg/model"
	"github.com/ritzau/roadmap-graph/pkg/roadmap"
)

// SizeOf returns the box of a node type; brackets take their height from
// the phase span and this only gives their width.
func SizeOf(t model.NodeType, cfg Config) model.Size {
	switch t {
	case model.NodeMain:
		return model.Size{W: 176, H: 44}
	case model.NodeTopicItem:
		return model.Size{W: 200, H: 32}
	case model.NodeTopicGroup, model.NodeOptionGroup:
		return model.Size{W: 170, H: 40}
	case model.NodeOptionItem:
		return model.Size{W: 200, H: 32}
	case model.NodePhaseBracket:
		return model.Size{W: cfg.BracketWidth, H: cfg.SpinePitch}
	}
	panic("layout: unknown node type " + string(t))
}

// phaseSpan tracks the vertical extent of one phase while it is laid out
type phaseSpan struct {
	bracket *model.Node
	anchor  float64 // Spine y where the phase starts
	top     float64
	bottom  float64
	placed  bool
}

func (s *phaseSpan) include(n *model.Node) {
	top := n.Position.Y - n.Size.H/2
	bottom := n.Position.Y + n.Size.H/2
	if !s.placed {
		s.top, s.bottom, s.placed = top, bottom, true
		return
	}
	s.top = math.Min(s.top, top)
	s.bottom = math.Max(s.bottom, bottom)
}

// Layout returns a copy of g with every node positioned (by centre) and
// sized, and every edge carrying source/target handles.
//
// The spine column holds main and topic nodes in declaration order. Options
// fan out from their topic: left options at negative x, right options at
// positive x, stacked per side in depth-first declaration order. Brackets sit
// left of the whole diagram, centred on their phase. The input graph is not
// modified.
func Layout(g *model.Graph, cfg Config) *model.Graph {
	cfg = cfg.withDefaults()
	out := g.Clone()

	sideRows := countSideRows(out)

	var (
		y       = cfg.PhaseStart
		spans   []*phaseSpan
		current *phaseSpan
		topic   *model.Node
		cursor  = map[roadmap.Side]float64{}
	)

	// Each phase ends with an extra gap of its height hint, or one pitch
	closePhase := func() {
		if current == nil {
			return
		}
		if hint := current.bracket.Data.HeightHint; hint > 0 {
			y += hint
		} else {
			y += cfg.SpinePitch
		}
	}

	for _, n := range out.Nodes {
		n.Size = SizeOf(n.Type, cfg)

		switch n.Type {
		case model.NodePhaseBracket:
			closePhase()
			current = &phaseSpan{bracket: n, anchor: y}
			spans = append(spans, current)
			topic = nil

		case model.NodeMain:
			n.Position = &model.Position{X: cfg.SpineX, Y: y}
			current.include(n)
			y += cfg.SpinePitch

		case model.NodeTopicItem, model.NodeTopicGroup:
			n.Position = &model.Position{X: cfg.SpineX, Y: y}
			current.include(n)
			topic = n
			cursor[roadmap.SideLeft] = y
			cursor[roadmap.SideRight] = y

			rows := sideRows[n.ID]
			y += math.Max(cfg.SpinePitch, float64(rows)*cfg.OptionPitch+cfg.GroupPadding)

		case model.NodeOptionItem, model.NodeOptionGroup:
			offset := cfg.BranchOffset + float64(n.Data.Depth-1)*cfg.DepthOffset
			x := topic.Position.X + offset
			if n.Data.Side == roadmap.SideLeft {
				x = topic.Position.X - offset
			}
			n.Position = &model.Position{X: x, Y: cursor[n.Data.Side]}
			cursor[n.Data.Side] += cfg.OptionPitch
			current.include(n)

		default:
			panic("layout: unknown node type " + string(n.Type))
		}
	}
	closePhase()

	placeBrackets(out, spans, cfg)
	AssignHandles(out)
	return out
}

// countSideRows returns, per topic id, the larger of its left and right
// option counts (nested options included).
func countSideRows(g *model.Graph) map[string]int {
	perSide := make(map[string]map[roadmap.Side]int)
	for _, n := range g.Nodes {
		if !n.Type.IsOption() {
			continue
		}
		t := topicOf(n.ID)
		if perSide[t] == nil {
			perSide[t] = make(map[roadmap.Side]int)
		}
		perSide[t][n.Data.Side]++
	}

	rows := make(map[string]int, len(perSide))
	for id, sides := range perSide {
		rows[id] = max(sides[roadmap.SideLeft], sides[roadmap.SideRight])
	}
	return rows
}

// topicOf returns the topic id prefix (phase:topic) of an option id
func topicOf(id string) string {
	parts := strings.SplitN(id, roadmap.PathSeparator, 3)
	if len(parts) < 2 {
		return id
	}
	return parts[0] + roadmap.PathSeparator + parts[1]
}

func placeBrackets(g *model.Graph, spans []*phaseSpan, cfg Config) {
	minX := math.Inf(1)
	for _, n := range g.Nodes {
		if n.Position != nil {
			minX = math.Min(minX, n.Position.X-n.Size.W/2)
		}
	}
	if math.IsInf(minX, 1) {
		minX = cfg.SpineX
	}
	x := minX - cfg.BracketWidth/2 - cfg.BracketGap

	for _, s := range spans {
		hint := s.bracket.Data.HeightHint
		centre := s.anchor
		h := math.Max(hint, cfg.SpinePitch)
		if s.placed {
			centre = (s.top + s.bottom) / 2
			h = math.Max(h, s.bottom-s.top)
		}
		s.bracket.Position = &model.Position{X: x, Y: centre}
		s.bracket.Size = model.Size{W: cfg.BracketWidth, H: h}
	}
}
