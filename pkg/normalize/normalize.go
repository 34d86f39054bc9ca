// Package normalize compiles a roadmap definition into the flat node/edge
// representation consumed by layout and rendering.
package normalize

import (
	"strings"

	"github.com/ritzau/roadmap-graph/pkg/model"
	"github.com/ritzau/roadmap-graph/pkg/roadmap"
)

// BracketSuffix ends phase bracket node ids
const BracketSuffix = "bracket"

// BracketID returns the node id of a phase's bracket. The empty segment
// keeps it apart from every entity path, which never has one.
func BracketID(phaseID string) string {
	return phaseID + roadmap.PathSeparator + roadmap.PathSeparator + BracketSuffix
}

// Normalize converts a definition into an unpositioned graph.
//
// Nodes are emitted in declaration order: for each phase its bracket, its
// main node, then each topic followed depth-first by its options. Spine edges
// chain bracket, main and topic nodes across all phases; branch edges link
// each group to its options. On error no graph is returned.
func Normalize(def *roadmap.Definition) (*model.Graph, error) {
	if def == nil || len(def.Phases) == 0 {
		return nil, malformed("", "roadmap has no phases")
	}

	n := &normalizer{
		graph: model.NewGraph(),
		seen:  make(map[string]bool),
	}

	for i := range def.Phases {
		if err := n.phase(&def.Phases[i], def.PhaseNumber(i)); err != nil {
			return nil, err
		}
	}
	return n.graph, nil
}

type normalizer struct {
	graph     *model.Graph
	seen      map[string]bool
	spineTail string // Last node on the spine chain
}

func (n *normalizer) add(node *model.Node, path string) error {
	if n.seen[node.ID] {
		return malformed(path, "duplicate node id %q", node.ID)
	}
	n.seen[node.ID] = true
	n.graph.AddNode(node)
	return nil
}

func (n *normalizer) spine(id string) {
	if n.spineTail != "" {
		n.graph.AddEdge(n.spineTail, id, model.EdgeSpine)
	}
	n.spineTail = id
}

func (n *normalizer) phase(p *roadmap.Phase, number int) error {
	if err := checkID(p.ID, p.ID, "phase"); err != nil {
		return err
	}

	base := model.NodeData{
		EntityID:      p.ID,
		Label:         p.Title,
		PhaseID:       p.ID,
		PhaseNumber:   number,
		PhaseSubtitle: p.Subtitle,
	}

	bracket := &model.Node{ID: BracketID(p.ID), Type: model.NodePhaseBracket, Data: base}
	bracket.Data.HeightHint = p.Height
	if err := n.add(bracket, p.ID); err != nil {
		return err
	}
	n.spine(bracket.ID)

	if len(p.Topics) == 0 {
		return nil
	}

	if strings.TrimSpace(p.Title) != "" {
		main := &model.Node{ID: p.ID, Type: model.NodeMain, Data: base}
		if err := n.add(main, p.ID); err != nil {
			return err
		}
		n.spine(main.ID)
	}

	for i := range p.Topics {
		if err := n.topic(p, &p.Topics[i], number); err != nil {
			return err
		}
	}
	return nil
}

func (n *normalizer) topic(p *roadmap.Phase, t *roadmap.Topic, number int) error {
	path := p.ID + roadmap.PathSeparator + t.ID
	if err := checkID(t.ID, path, "topic"); err != nil {
		return err
	}
	if err := checkStatus(t.Status, path); err != nil {
		return err
	}

	node := &model.Node{
		ID: path,
		Data: model.NodeData{
			EntityID:    path,
			Label:       t.Label,
			Status:      roadmap.EffectiveStatus(t.Status),
			IconSlug:    t.IconSlug,
			Description: t.Description,
			PhaseID:     p.ID,
			PhaseNumber: number,
			ChildCount:  len(t.Options),
		},
	}

	switch t.Kind {
	case roadmap.KindItem:
		if len(t.Options) > 0 {
			return malformed(path, "item topic cannot have options")
		}
		node.Type = model.NodeTopicItem
	case roadmap.KindGroup:
		node.Type = model.NodeTopicGroup
	default:
		return malformed(path, "unknown topic kind %q", t.Kind)
	}

	if err := n.add(node, path); err != nil {
		return err
	}
	n.spine(node.ID)

	return n.options(node, t.Options, 1)
}

func (n *normalizer) options(parent *model.Node, opts []roadmap.Option, depth int) error {
	for i := range opts {
		o := &opts[i]
		path := parent.ID + roadmap.PathSeparator + o.ID
		if err := checkID(o.ID, path, "option"); err != nil {
			return err
		}
		if o.Side != roadmap.SideLeft && o.Side != roadmap.SideRight {
			return malformed(path, "option side must be %q or %q, got %q", roadmap.SideLeft, roadmap.SideRight, o.Side)
		}
		if err := checkStatus(o.Status, path); err != nil {
			return err
		}

		node := &model.Node{
			ID:   path,
			Type: model.NodeOptionItem,
			Data: model.NodeData{
				EntityID:      path,
				Label:         o.Label,
				Status:        roadmap.EffectiveStatus(o.Status),
				IconSlug:      o.IconSlug,
				IsRecommended: o.IsRecommended,
				Side:          o.Side,
				Depth:         depth,
				PhaseID:       parent.Data.PhaseID,
				PhaseNumber:   parent.Data.PhaseNumber,
				ChildCount:    len(o.Options),
			},
		}
		if len(o.Options) > 0 {
			node.Type = model.NodeOptionGroup
		}

		if err := n.add(node, path); err != nil {
			return err
		}
		n.graph.AddEdge(parent.ID, node.ID, model.EdgeBranch)

		if err := n.options(node, o.Options, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func checkID(id, path, what string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return malformed(path, "%s id is empty", what)
	case strings.Contains(id, roadmap.PathSeparator):
		return malformed(path, "%s id %q contains %q", what, id, roadmap.PathSeparator)
	}
	return nil
}

func checkStatus(s roadmap.Status, path string) error {
	switch s {
	case "", roadmap.StatusAvailable, roadmap.StatusMastered:
		return nil
	}
	return malformed(path, "unknown status %q", s)
}
