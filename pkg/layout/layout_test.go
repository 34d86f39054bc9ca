package layout

import (
	"testing"

	"github.com/ritzau/roadmap-graph/pkg/model"
	"github.com/ritzau/roadmap-graph/pkg/normalize"
	"github.com/ritzau/roadmap-graph/pkg/roadmap"
)

func mustNormalize(t *testing.T, def *roadmap.Definition) *model.Graph {
	t.Helper()
	g, err := normalize.Normalize(def)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	return g
}

func node(t *testing.T, g *model.Graph, id string) *model.Node {
	t.Helper()
	n, ok := g.Node(id)
	if !ok {
		t.Fatalf("node %s not found", id)
	}
	if n.Position == nil {
		t.Fatalf("node %s has no position", id)
	}
	return n
}

func edge(t *testing.T, g *model.Graph, source, target string) *model.Edge {
	t.Helper()
	for _, e := range g.Edges {
		if e.Source == source && e.Target == target {
			return e
		}
	}
	t.Fatalf("edge %s->%s not found", source, target)
	return nil
}

func fundamentals() *roadmap.Definition {
	return &roadmap.Definition{Phases: []roadmap.Phase{{
		ID:     "p1",
		Title:  "Fundamentals",
		Topics: []roadmap.Topic{{ID: "vars", Label: "Variables", Kind: roadmap.KindItem}},
	}}}
}

func languages() *roadmap.Definition {
	return &roadmap.Definition{Phases: []roadmap.Phase{{
		ID:    "p1",
		Title: "Languages",
		Topics: []roadmap.Topic{{
			ID:   "lang",
			Kind: roadmap.KindGroup,
			Options: []roadmap.Option{
				{ID: "py", Label: "Python", Side: roadmap.SideLeft},
				{ID: "go", Label: "Go", Side: roadmap.SideRight, Options: []roadmap.Option{
					{ID: "gin", Label: "Gin", Side: roadmap.SideRight},
				}},
			},
		}},
	}}}
}

func TestLayoutItemBelowMain(t *testing.T) {
	cfg := DefaultConfig()
	g := Layout(mustNormalize(t, fundamentals()), cfg)

	main := node(t, g, "p1")
	item := node(t, g, "p1:vars")

	if main.Position.X != item.Position.X {
		t.Errorf("Expected shared x, got main %v item %v", main.Position.X, item.Position.X)
	}
	if item.Position.Y <= main.Position.Y {
		t.Errorf("Expected item below main, got main y=%v item y=%v", main.Position.Y, item.Position.Y)
	}
	if main.Position.Y != cfg.PhaseStart || item.Position.Y != cfg.PhaseStart+cfg.SpinePitch {
		t.Errorf("Unexpected spine positions: main %v item %v", *main.Position, *item.Position)
	}

	e := edge(t, g, "p1", "p1:vars")
	if e.SourceHandle != model.HandleBottom || e.TargetHandle != model.HandleTop {
		t.Errorf("Expected bottom->top handles, got %s->%s", e.SourceHandle, e.TargetHandle)
	}
}

func TestLayoutOptionSides(t *testing.T) {
	cfg := DefaultConfig()
	g := Layout(mustNormalize(t, languages()), cfg)

	group := node(t, g, "p1:lang")
	py := node(t, g, "p1:lang:py")
	goNode := node(t, g, "p1:lang:go")

	if py.Position.X != group.Position.X-cfg.BranchOffset {
		t.Errorf("Expected left option at -%v, got %v", cfg.BranchOffset, py.Position.X)
	}
	if goNode.Position.X != group.Position.X+cfg.BranchOffset {
		t.Errorf("Expected right option at +%v, got %v", cfg.BranchOffset, goNode.Position.X)
	}
	if py.Position.Y != group.Position.Y || goNode.Position.Y != group.Position.Y {
		t.Errorf("Expected options level with the group, got group %v py %v go %v",
			group.Position.Y, py.Position.Y, goNode.Position.Y)
	}

	if e := edge(t, g, "p1:lang", "p1:lang:py"); e.SourceHandle != model.HandleLeft || e.TargetHandle != model.HandleRight {
		t.Errorf("Expected left->right handles for a left option, got %s->%s", e.SourceHandle, e.TargetHandle)
	}
	if e := edge(t, g, "p1:lang", "p1:lang:go"); e.SourceHandle != model.HandleRight || e.TargetHandle != model.HandleLeft {
		t.Errorf("Expected right->left handles for a right option, got %s->%s", e.SourceHandle, e.TargetHandle)
	}
}

func TestLayoutNestedOptionsFanOut(t *testing.T) {
	cfg := DefaultConfig()
	g := Layout(mustNormalize(t, languages()), cfg)

	goNode := node(t, g, "p1:lang:go")
	gin := node(t, g, "p1:lang:go:gin")

	if gin.Position.X != goNode.Position.X+cfg.DepthOffset {
		t.Errorf("Expected nested option further out, got go %v gin %v", goNode.Position.X, gin.Position.X)
	}
	if gin.Position.Y != goNode.Position.Y+cfg.OptionPitch {
		t.Errorf("Expected nested option stacked below, got go %v gin %v", goNode.Position.Y, gin.Position.Y)
	}
}

func TestLayoutTallGroupPushesSpine(t *testing.T) {
	cfg := DefaultConfig()
	def := languages()
	var opts []roadmap.Option
	for _, id := range []string{"a", "b", "c", "d"} {
		opts = append(opts, roadmap.Option{ID: id, Label: id, Side: roadmap.SideRight})
	}
	def.Phases[0].Topics[0].Options = opts
	def.Phases[0].Topics = append(def.Phases[0].Topics, roadmap.Topic{ID: "next", Label: "Next", Kind: roadmap.KindItem})

	g := Layout(mustNormalize(t, def), cfg)
	group := node(t, g, "p1:lang")
	next := node(t, g, "p1:next")

	want := group.Position.Y + 4*cfg.OptionPitch + cfg.GroupPadding
	if next.Position.Y != want {
		t.Errorf("Expected next topic at %v, got %v", want, next.Position.Y)
	}
	last := node(t, g, "p1:lang:d")
	if last.Position.Y >= next.Position.Y {
		t.Error("Options of a group must not reach the next topic")
	}
}

func TestLayoutBrackets(t *testing.T) {
	cfg := DefaultConfig()
	def := languages()
	def.Phases = append([]roadmap.Phase{{ID: "intro", Title: "Intro"}}, def.Phases...)

	g := Layout(mustNormalize(t, def), cfg)

	intro := node(t, g, "intro::bracket")
	if intro.Position.Y != cfg.PhaseStart {
		t.Errorf("Empty phase bracket should sit at the phase start, got %v", intro.Position.Y)
	}
	if intro.Size.H != cfg.SpinePitch {
		t.Errorf("Empty phase bracket should be one pitch tall, got %v", intro.Size.H)
	}

	main := node(t, g, "p1")
	if main.Position.Y != cfg.PhaseStart+cfg.SpinePitch {
		t.Errorf("Empty phase should still take one pitch, got main at %v", main.Position.Y)
	}

	bracket := node(t, g, "p1::bracket")
	py := node(t, g, "p1:lang:py")
	if bracket.Position.X != intro.Position.X {
		t.Error("Brackets should share one column")
	}
	if right := bracket.Position.X + bracket.Size.W/2; right+cfg.BracketGap > py.Position.X-py.Size.W/2 {
		t.Errorf("Bracket at %v overlaps the leftmost option at %v", right, py.Position.X-py.Size.W/2)
	}
	top := bracket.Position.Y - bracket.Size.H/2
	if top > main.Position.Y-main.Size.H/2 {
		t.Errorf("Bracket should cover its phase's main node")
	}
}

func TestLayoutHeightHint(t *testing.T) {
	cfg := DefaultConfig()
	def := fundamentals()
	def.Phases[0].Height = 400
	def.Phases = append(def.Phases, roadmap.Phase{
		ID:     "p2",
		Title:  "Next",
		Topics: []roadmap.Topic{{ID: "x", Label: "X", Kind: roadmap.KindItem}},
	})

	g := Layout(mustNormalize(t, def), cfg)

	bracket := node(t, g, "p1::bracket")
	if bracket.Size.H != 400 {
		t.Errorf("Expected bracket height from hint, got %v", bracket.Size.H)
	}

	item := node(t, g, "p1:vars")
	p2 := node(t, g, "p2")
	if p2.Position.Y != item.Position.Y+cfg.SpinePitch+400 {
		t.Errorf("Expected the hint as gap after the phase, got %v", p2.Position.Y-item.Position.Y)
	}
}

func TestLayoutDeterministic(t *testing.T) {
	g := mustNormalize(t, languages())

	a := Layout(g, DefaultConfig())
	b := Layout(g, DefaultConfig())

	for i := range a.Nodes {
		if *a.Nodes[i].Position != *b.Nodes[i].Position || a.Nodes[i].Size != b.Nodes[i].Size {
			t.Errorf("node %s differs between runs", a.Nodes[i].ID)
		}
	}
	for i := range a.Edges {
		if a.Edges[i].SourceHandle != b.Edges[i].SourceHandle || a.Edges[i].TargetHandle != b.Edges[i].TargetHandle {
			t.Errorf("edge %s differs between runs", a.Edges[i].ID)
		}
	}
}

func TestLayoutDoesNotModifyInput(t *testing.T) {
	g := mustNormalize(t, fundamentals())
	Layout(g, DefaultConfig())

	for _, n := range g.Nodes {
		if n.Position != nil {
			t.Errorf("input node %s was positioned", n.ID)
		}
	}
	for _, e := range g.Edges {
		if e.SourceHandle != "" {
			t.Errorf("input edge %s got handles", e.ID)
		}
	}
}

func TestLayoutStatusIndependent(t *testing.T) {
	def := languages()
	before := Layout(mustNormalize(t, def), DefaultConfig())

	def.Phases[0].Topics[0].Options[0].Status = roadmap.StatusMastered
	def.Phases[0].Topics[0].Options[1].Label = "Golang"
	after := Layout(mustNormalize(t, def), DefaultConfig())

	for i := range before.Nodes {
		if *before.Nodes[i].Position != *after.Nodes[i].Position {
			t.Errorf("node %s moved when only status and labels changed", before.Nodes[i].ID)
		}
	}
}

func TestLayoutUnknownTypePanics(t *testing.T) {
	g := model.NewGraph()
	g.AddNode(&model.Node{ID: "x", Type: "mystery"})

	defer func() {
		if recover() == nil {
			t.Error("Expected a panic for an unknown node type")
		}
	}()
	Layout(g, DefaultConfig())
}

func TestWithDefaults(t *testing.T) {
	cfg := Config{SpinePitch: -1, GroupPadding: -5}.withDefaults()
	d := DefaultConfig()
	if cfg.SpinePitch != d.SpinePitch || cfg.OptionPitch != d.OptionPitch {
		t.Errorf("Expected pitches to fall back to defaults, got %+v", cfg)
	}
	if cfg.GroupPadding != 0 {
		t.Errorf("Expected negative padding clamped to 0, got %v", cfg.GroupPadding)
	}
}
