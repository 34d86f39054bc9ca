package web

import (
	"bufio"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ritzau/roadmap-graph/pkg/layout"
	"github.com/ritzau/roadmap-graph/pkg/mastery"
	"github.com/ritzau/roadmap-graph/pkg/pipeline"
	"github.com/ritzau/roadmap-graph/pkg/pubsub"
	"github.com/ritzau/roadmap-graph/pkg/render"
	"github.com/ritzau/roadmap-graph/pkg/roadmap"
)

const backendYAML = `
title: Backend
phases:
  - id: p1
    title: Fundamentals
    topics:
      - id: vars
        label: Variables
        kind: item
      - id: lang
        label: Pick a language
        kind: group
        options:
          - id: go
            label: Go
            side: right
            isRecommended: true
          - id: py
            label: Python
            side: left
            status: mastered
`

// Option without a side
const brokenYAML = `
title: Broken
phases:
  - id: p1
    title: Fundamentals
    topics:
      - id: lang
        label: Pick a language
        kind: group
        options:
          - id: go
            label: Go
`

func writeDefinition(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	writeDefinition(t, dir, "backend.yaml", backendYAML)
	writeDefinition(t, dir, "broken.yaml", brokenYAML)
	writeDefinition(t, dir, "bad.json", `{"title": `)

	s := NewServer(pipeline.New(layout.DefaultConfig()), mastery.NewMemoryTracker())
	t.Cleanup(func() { s.Close() })
	if err := s.Catalog().LoadDir(context.Background(), dir); err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	return s, dir
}

func do(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func TestListRoadmaps(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/roadmaps")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	entries := decode[[]pubsub.CatalogEntry](t, rec)

	if len(entries) != 3 {
		t.Fatalf("Expected 3 roadmaps, got %d", len(entries))
	}
	want := []struct {
		slug  string
		valid bool
	}{{"backend", true}, {"bad", false}, {"broken", false}}
	for i, w := range want {
		if entries[i].Slug != w.slug || entries[i].Valid != w.valid {
			t.Errorf("entry %d: expected %s valid=%t, got %+v", i, w.slug, w.valid, entries[i])
		}
	}
	if entries[0].Nodes != 6 || entries[0].Hash == "" || entries[0].Title != "Backend" {
		t.Errorf("Unexpected backend entry %+v", entries[0])
	}
	if entries[2].Error == "" {
		t.Error("Expected the broken roadmap to carry its error")
	}
}

func TestGraphScene(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/roadmaps/backend/graph?active=p1:vars")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
	}
	scene := decode[render.Scene](t, rec)

	if len(scene.Nodes) != 6 || len(scene.Edges) != 5 {
		t.Errorf("Expected 6 nodes and 5 edges, got %d and %d", len(scene.Nodes), len(scene.Edges))
	}
	for _, n := range scene.Nodes {
		if (n.ID == "p1:vars") != n.Active {
			t.Errorf("node %s: unexpected active=%t", n.ID, n.Active)
		}
	}
}

func TestGraphErrors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		target string
		code   int
		path   string
	}{
		{"/api/roadmaps/missing/graph", http.StatusNotFound, ""},
		{"/api/roadmaps/broken/graph", http.StatusUnprocessableEntity, "p1:lang:go"},
		{"/api/roadmaps/bad/graph.svg", http.StatusUnprocessableEntity, ""},
		{"/api/subscribe/nope", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		rec := do(t, s, http.MethodGet, tt.target)
		if rec.Code != tt.code {
			t.Errorf("%s: expected %d, got %d", tt.target, tt.code, rec.Code)
			continue
		}
		body := decode[map[string]string](t, rec)
		if body["error"] == "" {
			t.Errorf("%s: expected an error message", tt.target)
		}
		if body["path"] != tt.path {
			t.Errorf("%s: expected path %q, got %q", tt.target, tt.path, body["path"])
		}
	}
}

func TestGraphSVG(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/roadmaps/backend/graph.svg")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `data-id="p1:lang:go"`) {
		t.Error("Expected clickable nodes in the SVG")
	}
}

func TestGraphPNG(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/roadmaps/backend/graph.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if _, err := png.Decode(rec.Body); err != nil {
		t.Errorf("Expected a PNG body: %v", err)
	}
}

func TestClickMastersNode(t *testing.T) {
	s, _ := newTestServer(t)
	before, _ := s.Catalog().Get("backend")

	rec := do(t, s, http.MethodPost, "/api/roadmaps/backend/nodes/p1:vars/click")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
	}
	resp := decode[ClickResponse](t, rec)
	if !resp.Changed || resp.Status != roadmap.StatusMastered || resp.Entity != "p1:vars" {
		t.Errorf("Unexpected click response %+v", resp)
	}

	after, _ := s.Catalog().Get("backend")
	if after.Snapshot.Hash == before.Snapshot.Hash || resp.Hash != after.Snapshot.Hash {
		t.Error("Expected a new snapshot after mastering")
	}
	if n, _ := before.Snapshot.Graph.Node("p1:vars"); n.Data.Status != roadmap.StatusAvailable {
		t.Error("The previous snapshot must not change")
	}

	again := decode[ClickResponse](t, do(t, s, http.MethodPost, "/api/roadmaps/backend/nodes/p1:vars/click"))
	if again.Changed || again.Status != roadmap.StatusMastered {
		t.Errorf("Clicking a mastered node should not change it, got %+v", again)
	}
}

func TestClickHeaderNoChange(t *testing.T) {
	s, _ := newTestServer(t)

	resp := decode[ClickResponse](t, do(t, s, http.MethodPost, "/api/roadmaps/backend/nodes/p1/click"))
	if resp.Changed || resp.Status != "" {
		t.Errorf("Phase header clicks should not record state, got %+v", resp)
	}
}

func TestClickRejects(t *testing.T) {
	s, _ := newTestServer(t)

	tests := map[string]int{
		"/api/roadmaps/backend/nodes/p1::bracket/click": http.StatusBadRequest,
		"/api/roadmaps/backend/nodes/ghost/click":      http.StatusNotFound,
		"/api/roadmaps/missing/nodes/p1/click":         http.StatusNotFound,
		"/api/roadmaps/broken/nodes/p1/click":          http.StatusUnprocessableEntity,
	}
	for target, code := range tests {
		if rec := do(t, s, http.MethodPost, target); rec.Code != code {
			t.Errorf("%s: expected %d, got %d", target, code, rec.Code)
		}
	}

	if rec := do(t, s, http.MethodGet, "/api/roadmaps/backend/nodes/p1:vars/click"); rec.Code == http.StatusOK {
		t.Error("Click should require POST")
	}
}

func TestResetNode(t *testing.T) {
	s, _ := newTestServer(t)

	resp := decode[ClickResponse](t, do(t, s, http.MethodPost, "/api/roadmaps/backend/nodes/p1:lang:py/reset"))
	if !resp.Changed || resp.Status != roadmap.StatusAvailable {
		t.Errorf("Expected python reset to available, got %+v", resp)
	}

	rm := decode[RoadmapResponse](t, do(t, s, http.MethodGet, "/api/roadmaps/backend"))
	if got := rm.Definition.Phases[0].Topics[1].Options[1].Status; got != roadmap.StatusAvailable {
		t.Errorf("Expected the definition to reflect the reset, got %q", got)
	}

	if rec := do(t, s, http.MethodPost, "/api/roadmaps/backend/nodes/p1::bracket/reset"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 resetting a bracket, got %d", rec.Code)
	}
}

func TestRoadmapDetail(t *testing.T) {
	s, _ := newTestServer(t)

	rm := decode[RoadmapResponse](t, do(t, s, http.MethodGet, "/api/roadmaps/backend"))
	if rm.Slug != "backend" || !rm.Valid || rm.Definition == nil {
		t.Fatalf("Unexpected roadmap %+v", rm)
	}

	bad := decode[RoadmapResponse](t, do(t, s, http.MethodGet, "/api/roadmaps/bad"))
	if bad.Valid || bad.Error == "" || bad.Definition != nil {
		t.Errorf("Expected an invalid entry without definition, got %+v", bad)
	}
}

func TestStaticIndex(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<html") {
		t.Errorf("Expected the viewer page, got %d", rec.Code)
	}
	for _, want := range []string{"addEventListener('wheel'", "viewBox", "pointerdown"} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("Expected the viewer to zoom and pan, missing %q", want)
		}
	}
}

func TestCatalogPublishesChanges(t *testing.T) {
	s, dir := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sub, err := s.publisher.Subscribe(ctx, pubsub.TopicRoadmapGraph)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()

	// Replay holds the latest event per roadmap
	replayed := make(map[string]string)
	for len(replayed) < 3 {
		select {
		case ev := <-sub.Events():
			replayed[ev.Key] = ev.Type
		case <-ctx.Done():
			t.Fatalf("Timeout waiting for replay, got %v", replayed)
		}
	}
	if replayed["backend"] != pubsub.EventSnapshot || replayed["broken"] != pubsub.EventInvalid {
		t.Errorf("Unexpected replay %v", replayed)
	}

	do(t, s, http.MethodPost, "/api/roadmaps/backend/nodes/p1:vars/click")
	expectEvent(t, ctx, sub, "backend", pubsub.EventDiff)

	s.Catalog().RemoveFile(filepath.Join(dir, "backend.yaml"))
	expectEvent(t, ctx, sub, "backend", pubsub.EventRemoved)
	if _, ok := s.Catalog().Get("backend"); ok {
		t.Error("Expected backend to be removed")
	}
}

func expectEvent(t *testing.T, ctx context.Context, sub pubsub.Subscription, key, eventType string) {
	t.Helper()
	select {
	case ev := <-sub.Events():
		if ev.Key != key || ev.Type != eventType {
			t.Fatalf("Expected %s for %s, got %s for %s", eventType, key, ev.Type, ev.Key)
		}
	case <-ctx.Done():
		t.Fatalf("Timeout waiting for %s", eventType)
	}
}

func TestCatalogReloadFixesBrokenFile(t *testing.T) {
	s, dir := newTestServer(t)

	path := writeDefinition(t, dir, "broken.yaml", strings.Replace(brokenYAML, "label: Go", "label: Go\n            side: left", 1))
	s.Catalog().LoadFile(context.Background(), path)

	rm, ok := s.Catalog().Get("broken")
	if !ok || rm.Err != nil || rm.Snapshot == nil {
		t.Fatalf("Expected the fixed roadmap to compile, got %+v", rm)
	}
	if rec := do(t, s, http.MethodGet, "/api/roadmaps/broken/graph"); rec.Code != http.StatusOK {
		t.Errorf("Expected 200 after the fix, got %d", rec.Code)
	}
}

func TestCatalogSlugRename(t *testing.T) {
	s, dir := newTestServer(t)

	path := writeDefinition(t, dir, "backend.yaml", "slug: server\n"+backendYAML)
	s.Catalog().LoadFile(context.Background(), path)

	if _, ok := s.Catalog().Get("backend"); ok {
		t.Error("Expected the old slug to be dropped")
	}
	if _, ok := s.Catalog().Get("server"); !ok {
		t.Error("Expected the new slug to be served")
	}
}

func TestCatalogAdd(t *testing.T) {
	s, _ := newTestServer(t)

	if err := s.Catalog().Add(context.Background(), &roadmap.Definition{}); err == nil {
		t.Error("Expected an error without a slug")
	}

	def := &roadmap.Definition{
		Slug: "inline",
		Phases: []roadmap.Phase{{
			ID:     "p1",
			Title:  "Only",
			Topics: []roadmap.Topic{{ID: "a", Label: "A", Kind: roadmap.KindItem}},
		}},
	}
	if err := s.Catalog().Add(context.Background(), def); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if rec := do(t, s, http.MethodGet, "/api/roadmaps/inline/graph"); rec.Code != http.StatusOK {
		t.Errorf("Expected the added roadmap to be served, got %d", rec.Code)
	}
}

func TestSubscribeStream(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/subscribe/roadmap_catalog", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Subscribe request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Unexpected content type %q", ct)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if scanner.Text() == "event: "+pubsub.EventCatalog {
			return
		}
	}
	t.Fatalf("Stream ended without a catalog event: %v", scanner.Err())
}
