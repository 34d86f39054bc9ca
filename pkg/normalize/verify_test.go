package normalize

import (
	"errors"
	"strings"
	"testing"

	"github.com/ritzau/roadmap-graph/pkg/model"
)

func chain(ids ...string) *model.Graph {
	g := model.NewGraph()
	for _, id := range ids {
		g.AddNode(&model.Node{ID: id, Type: model.NodeTopicItem})
	}
	for i := 1; i < len(ids); i++ {
		g.AddEdge(ids[i-1], ids[i], model.EdgeSpine)
	}
	return g
}

func TestVerifyNormalizedGraphs(t *testing.T) {
	for name, def := range map[string]func() *model.Graph{
		"single item": func() *model.Graph { g, _ := Normalize(singleItem()); return g },
		"group":       func() *model.Graph { g, _ := Normalize(groupWithOptions()); return g },
	} {
		if err := Verify(def()); err != nil {
			t.Errorf("%s: expected valid graph, got %v", name, err)
		}
	}
}

func TestVerifyRejects(t *testing.T) {
	tests := []struct {
		name  string
		graph func() *model.Graph
		want  string
	}{
		{"empty", model.NewGraph, "no nodes"},
		{"duplicate", func() *model.Graph {
			g := chain("a", "b")
			g.AddNode(&model.Node{ID: "a"})
			return g
		}, "duplicate"},
		{"dangling target", func() *model.Graph {
			g := chain("a", "b")
			g.AddEdge("b", "ghost", model.EdgeSpine)
			return g
		}, "does not exist"},
		{"self loop", func() *model.Graph {
			g := chain("a", "b")
			g.AddEdge("b", "b", model.EdgeSpine)
			return g
		}, "loops"},
		{"cycle", func() *model.Graph {
			g := chain("a", "b", "c")
			g.AddEdge("c", "a", model.EdgeSpine)
			return g
		}, "cycle"},
		{"disconnected", func() *model.Graph {
			g := chain("a", "b")
			g.AddNode(&model.Node{ID: "island"})
			return g
		}, "not connected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify(tt.graph())
			if !errors.Is(err, ErrMalformedRoadmap) {
				t.Fatalf("Expected malformed roadmap error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}
