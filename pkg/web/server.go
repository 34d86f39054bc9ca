package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/ritzau/roadmap-graph/pkg/logging"
	"github.com/ritzau/roadmap-graph/pkg/mastery"
	"github.com/ritzau/roadmap-graph/pkg/model"
	"github.com/ritzau/roadmap-graph/pkg/normalize"
	"github.com/ritzau/roadmap-graph/pkg/pipeline"
	"github.com/ritzau/roadmap-graph/pkg/pubsub"
	"github.com/ritzau/roadmap-graph/pkg/render"
	"github.com/ritzau/roadmap-graph/pkg/roadmap"
)

//go:embed static/*
var staticFiles embed.FS

var (
	// ErrUnknownRoadmap is returned for a slug that is not in the catalog
	ErrUnknownRoadmap = errors.New("unknown roadmap")
	// ErrUnknownTopic is returned for a subscription to a topic the server does not publish
	ErrUnknownTopic = errors.New("unknown topic")
)

const shutdownTimeout = 5 * time.Second

// RoadmapResponse is the body of GET /api/roadmaps/{slug}
type RoadmapResponse struct {
	pubsub.CatalogEntry
	Definition *roadmap.Definition `json:"definition,omitempty"` // With mastery state applied
}

// ClickResponse is the body of the click and reset endpoints
type ClickResponse struct {
	Node    string         `json:"node"`
	Entity  string         `json:"entity"`
	Status  roadmap.Status `json:"status,omitempty"`
	Changed bool           `json:"changed"`
	Hash    string         `json:"hash"`
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	catalog   *Catalog
	tracker   mastery.Tracker
	publisher *pubsub.SSEPublisher
	renderer  *render.Renderer
}

// NewServer creates a web server compiling roadmaps with p and keeping
// mastery state in tracker
func NewServer(p *pipeline.Pipeline, tracker mastery.Tracker) *Server {
	ssePublisher := pubsub.NewSSEPublisher()

	// roadmap_graph: newest event per roadmap so a new viewer sees every roadmap's state
	ssePublisher.ConfigureTopic(pubsub.TopicRoadmapGraph, pubsub.TopicConfig{
		BufferSize:   64,
		LatestPerKey: true,
	})

	// roadmap_catalog: only the current list matters
	ssePublisher.ConfigureTopic(pubsub.TopicCatalog, pubsub.TopicConfig{
		BufferSize: 1,
	})

	s := &Server{
		router:    mux.NewRouter(),
		catalog:   NewCatalog(p, tracker, ssePublisher),
		tracker:   tracker,
		publisher: ssePublisher,
		renderer:  render.New(nil),
	}
	s.setupRoutes()
	return s
}

// Catalog returns the roadmaps served
func (s *Server) Catalog() *Catalog {
	return s.catalog
}

// Handler returns the router wrapped in request logging
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("starting web server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("web server: %w", err)
	case <-ctx.Done():
	}

	// Open SSE streams only end when the publisher closes
	s.publisher.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down web server: %w", err)
	}
	logging.Info("web server stopped")
	return nil
}

// Close releases the publisher and its subscriptions
func (s *Server) Close() error {
	return s.publisher.Close()
}

func (s *Server) setupRoutes() {
	// SSE subscription endpoint
	s.router.HandleFunc("/api/subscribe/{topic}", s.handleSubscribe).Methods("GET")

	// API routes - more specific routes must come first
	s.router.HandleFunc("/api/roadmaps", s.handleRoadmaps).Methods("GET")
	s.router.HandleFunc("/api/roadmaps/{slug}/graph", s.handleGraph).Methods("GET")
	s.router.HandleFunc("/api/roadmaps/{slug}/graph.svg", s.handleGraphSVG).Methods("GET")
	s.router.HandleFunc("/api/roadmaps/{slug}/graph.png", s.handleGraphPNG).Methods("GET")
	s.router.HandleFunc("/api/roadmaps/{slug}/nodes/{id}/click", s.handleClick).Methods("POST")
	s.router.HandleFunc("/api/roadmaps/{slug}/nodes/{id}/reset", s.handleReset).Methods("POST")
	s.router.HandleFunc("/api/roadmaps/{slug}", s.handleRoadmap).Methods("GET")

	// Serve static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(staticFS)))
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]
	if topic != pubsub.TopicRoadmapGraph && topic != pubsub.TopicCatalog {
		writeError(w, r, fmt.Errorf("%w: %s", ErrUnknownTopic, topic))
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*") // CORS support

	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	// Send initial comment to establish connection (Safari compatibility)
	fmt.Fprintf(w, ": connected\n\n")
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	// Stream events
	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.DebugContext(r.Context(), "SSE client gone", "topic", topic, "error", err)
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func (s *Server) handleRoadmaps(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.List())
}

func (s *Server) handleRoadmap(w http.ResponseWriter, r *http.Request) {
	rm, ok := s.lookup(w, r)
	if !ok {
		return
	}

	resp := RoadmapResponse{CatalogEntry: rm.Entry()}
	if rm.Definition != nil {
		states, err := s.tracker.States(r.Context(), rm.Slug)
		if err != nil {
			writeError(w, r, fmt.Errorf("reading mastery state: %w", err))
			return
		}
		resp.Definition = mastery.Apply(rm.Definition, states)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.renderer.Scene(snap.Graph, r.URL.Query().Get("active")))
}

func (s *Server) handleGraphSVG(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := s.renderer.WriteSVG(w, snap.Graph, r.URL.Query().Get("active")); err != nil {
		logging.WarnContext(r.Context(), "failed to write SVG", "roadmap", snap.Slug, "error", err)
	}
}

func (s *Server) handleGraphPNG(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := s.renderer.WritePNG(w, snap.Graph, r.URL.Query().Get("active")); err != nil {
		logging.WarnContext(r.Context(), "failed to write PNG", "roadmap", snap.Slug, "error", err)
	}
}

// handleClick dispatches a click through the renderer and records the
// available -> mastered transition it reports
func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	nodeID := mux.Vars(r)["id"]

	var clicked model.NodeData
	onClick := render.New(func(_ string, data model.NodeData) { clicked = data })
	if err := onClick.Click(snap.Graph, nodeID); err != nil {
		writeError(w, r, err)
		return
	}

	changed, err := mastery.RecordClick(r.Context(), s.tracker, snap.Slug, clicked)
	if err != nil {
		writeError(w, r, fmt.Errorf("recording click: %w", err))
		return
	}
	logging.InfoContext(r.Context(), "node clicked", "roadmap", snap.Slug, "node", nodeID, "changed", changed)

	s.respondAfterChange(w, r, snap, nodeID, clicked.EntityID, changed)
}

// handleReset returns an entity to available outside of the click flow
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	nodeID := mux.Vars(r)["id"]

	n, found := snap.Graph.Node(nodeID)
	if !found {
		writeError(w, r, fmt.Errorf("%w: %s", render.ErrUnknownNode, nodeID))
		return
	}
	if n.Data.Status == "" {
		writeError(w, r, fmt.Errorf("%w: %s", render.ErrNotClickable, nodeID))
		return
	}

	changed := n.Data.Status == roadmap.StatusMastered
	if err := s.tracker.Reset(r.Context(), snap.Slug, n.Data.EntityID); err != nil {
		writeError(w, r, fmt.Errorf("resetting node: %w", err))
		return
	}
	logging.InfoContext(r.Context(), "node reset", "roadmap", snap.Slug, "node", nodeID, "changed", changed)

	s.respondAfterChange(w, r, snap, nodeID, n.Data.EntityID, changed)
}

func (s *Server) respondAfterChange(w http.ResponseWriter, r *http.Request, snap *pipeline.Snapshot, nodeID, entityID string, changed bool) {
	if changed {
		rm, err := s.catalog.Refresh(r.Context(), snap.Slug)
		if err != nil {
			writeError(w, r, err)
			return
		}
		snap = rm.Snapshot
	}

	resp := ClickResponse{Node: nodeID, Entity: entityID, Changed: changed, Hash: snap.Hash}
	if n, ok := snap.Graph.Node(nodeID); ok {
		resp.Status = n.Data.Status
	}
	writeJSON(w, http.StatusOK, resp)
}

// lookup resolves the {slug} route variable, answering 404 when missing
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*Roadmap, bool) {
	slug := mux.Vars(r)["slug"]
	rm, ok := s.catalog.Get(slug)
	if !ok {
		writeError(w, r, fmt.Errorf("%w: %s", ErrUnknownRoadmap, slug))
		return nil, false
	}
	return rm, true
}

// snapshot resolves {slug} to a compiled graph. Roadmaps that failed to
// compile answer with their error and no partial graph.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (*pipeline.Snapshot, bool) {
	rm, ok := s.lookup(w, r)
	if !ok {
		return nil, false
	}
	if rm.Err != nil {
		writeError(w, r, rm.Err)
		return nil, false
	}
	return rm.Snapshot, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, normalize.ErrMalformedRoadmap), errors.Is(err, ErrInvalidDefinition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnknownRoadmap), errors.Is(err, ErrUnknownTopic), errors.Is(err, render.ErrUnknownNode):
		return http.StatusNotFound
	case errors.Is(err, render.ErrNotClickable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}

	body := map[string]string{"error": err.Error()}
	var merr *normalize.MalformedRoadmapError
	if errors.As(err, &merr) && merr.Path != "" {
		body["path"] = merr.Path
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug("failed to encode response", "error", err)
	}
}
