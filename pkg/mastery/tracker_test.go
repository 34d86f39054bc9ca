package mastery

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ritzau/roadmap-graph/pkg/model"
	"github.com/ritzau/roadmap-graph/pkg/roadmap"
)

func definition() *roadmap.Definition {
	return &roadmap.Definition{
		Slug: "backend",
		Phases: []roadmap.Phase{{
			ID:    "p1",
			Title: "Languages",
			Topics: []roadmap.Topic{
				{ID: "http", Label: "HTTP", Kind: roadmap.KindItem, Status: roadmap.StatusMastered},
				{ID: "lang", Kind: roadmap.KindGroup, Options: []roadmap.Option{
					{ID: "go", Label: "Go", Side: roadmap.SideRight},
				}},
			},
		}},
	}
}

func testTrackers(t *testing.T) map[string]Tracker {
	t.Helper()
	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "mastery.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Tracker{
		"memory": NewMemoryTracker(),
		"sqlite": sqlite,
	}
}

func TestTrackerRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, tr := range testTrackers(t) {
		t.Run(name, func(t *testing.T) {
			states, err := tr.States(ctx, "backend")
			if err != nil {
				t.Fatalf("States failed: %v", err)
			}
			if len(states) != 0 {
				t.Fatalf("Expected no states, got %v", states)
			}

			if err := tr.Master(ctx, "backend", "p1:lang:go"); err != nil {
				t.Fatalf("Master failed: %v", err)
			}
			if err := tr.Master(ctx, "backend", "p1:lang:go"); err != nil {
				t.Fatalf("Second Master failed: %v", err)
			}
			if err := tr.Reset(ctx, "backend", "p1:http"); err != nil {
				t.Fatalf("Reset failed: %v", err)
			}
			if err := tr.Master(ctx, "frontend", "p1:css"); err != nil {
				t.Fatalf("Master failed: %v", err)
			}

			states, err = tr.States(ctx, "backend")
			if err != nil {
				t.Fatalf("States failed: %v", err)
			}
			want := map[string]roadmap.Status{
				"p1:lang:go": roadmap.StatusMastered,
				"p1:http":    roadmap.StatusAvailable,
			}
			if len(states) != len(want) {
				t.Fatalf("Expected %v, got %v", want, states)
			}
			for k, v := range want {
				if states[k] != v {
					t.Errorf("%s: expected %s, got %s", k, v, states[k])
				}
			}
		})
	}
}

func TestMemoryTrackerStatesIsACopy(t *testing.T) {
	ctx := context.Background()
	tr := NewMemoryTracker()
	tr.Master(ctx, "backend", "p1:http")

	states, _ := tr.States(ctx, "backend")
	states["p1:http"] = roadmap.StatusAvailable

	again, _ := tr.States(ctx, "backend")
	if again["p1:http"] != roadmap.StatusMastered {
		t.Error("Modifying the returned map must not change the tracker")
	}
}

func TestSQLiteTrackerPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mastery.db")

	tr, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	if tr.Path() != path {
		t.Errorf("Expected path %s, got %s", path, tr.Path())
	}
	if err := tr.Master(ctx, "backend", "p1:lang:go"); err != nil {
		t.Fatalf("Master failed: %v", err)
	}
	tr.Close()

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	states, err := reopened.States(ctx, "backend")
	if err != nil {
		t.Fatalf("States failed: %v", err)
	}
	if states["p1:lang:go"] != roadmap.StatusMastered {
		t.Errorf("Expected state to survive reopen, got %v", states)
	}
}

func TestApply(t *testing.T) {
	def := definition()
	out := Apply(def, map[string]roadmap.Status{
		"p1:http":    roadmap.StatusAvailable,
		"p1:lang:go": roadmap.StatusMastered,
		"p9:ghost":   roadmap.StatusMastered,
	})

	if out.Phases[0].Topics[0].Status != roadmap.StatusAvailable {
		t.Error("Expected a recorded reset to override the authored status")
	}
	if out.Phases[0].Topics[1].Options[0].Status != roadmap.StatusMastered {
		t.Error("Expected the option to be mastered")
	}
	if out.Phases[0].Topics[1].Status != "" {
		t.Error("Entities without a record keep their status")
	}

	if def.Phases[0].Topics[0].Status != roadmap.StatusMastered || def.Phases[0].Topics[1].Options[0].Status != "" {
		t.Error("Apply must not modify its input")
	}
}

func TestApplyNoStates(t *testing.T) {
	def := definition()
	out := Apply(def, nil)
	if out == def {
		t.Error("Expected a copy")
	}
	if out.Phases[0].Topics[0].Status != roadmap.StatusMastered {
		t.Error("Expected authored status to be kept")
	}
}

type failingTracker struct {
	*MemoryTracker
}

var errStore = errors.New("store unavailable")

func (failingTracker) Master(context.Context, string, string) error {
	return errStore
}

func TestRecordClick(t *testing.T) {
	ctx := context.Background()
	tr := NewMemoryTracker()

	tests := []struct {
		name    string
		data    model.NodeData
		changed bool
	}{
		{"available", model.NodeData{EntityID: "p1:lang:go", Status: roadmap.StatusAvailable}, true},
		{"mastered", model.NodeData{EntityID: "p1:http", Status: roadmap.StatusMastered}, false},
		{"phase header", model.NodeData{EntityID: "p1"}, false},
	}
	for _, tt := range tests {
		changed, err := RecordClick(ctx, tr, "backend", tt.data)
		if err != nil {
			t.Fatalf("%s: RecordClick failed: %v", tt.name, err)
		}
		if changed != tt.changed {
			t.Errorf("%s: expected changed=%t, got %t", tt.name, tt.changed, changed)
		}
	}

	states, _ := tr.States(ctx, "backend")
	if len(states) != 1 || states["p1:lang:go"] != roadmap.StatusMastered {
		t.Errorf("Expected only the available node recorded, got %v", states)
	}

	broken := failingTracker{NewMemoryTracker()}
	if _, err := RecordClick(ctx, broken, "backend", tests[0].data); !errors.Is(err, errStore) {
		t.Errorf("Expected store error, got %v", err)
	}
}
