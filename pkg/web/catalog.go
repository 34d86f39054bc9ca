package web

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ritzau/roadmap-graph/pkg/logging"
	"github.com/ritzau/roadmap-graph/pkg/mastery"
	"github.com/ritzau/roadmap-graph/pkg/normalize"
	"github.com/ritzau/roadmap-graph/pkg/pipeline"
	"github.com/ritzau/roadmap-graph/pkg/pubsub"
	"github.com/ritzau/roadmap-graph/pkg/roadmap"
	"github.com/ritzau/roadmap-graph/pkg/watcher"
)

// ErrInvalidDefinition wraps files that could not be read or decoded
var ErrInvalidDefinition = errors.New("invalid roadmap definition")

// Roadmap is the current state of one loaded definition. Values are never
// modified after they are stored; a reload stores a new one.
type Roadmap struct {
	Slug       string
	Source     string              // File the definition was loaded from, empty when added in code
	Definition *roadmap.Definition // As loaded, without mastery state
	Snapshot   *pipeline.Snapshot  // Nil when Err is set
	Err        error
}

// Entry summarises the roadmap for the catalog listing
func (r *Roadmap) Entry() pubsub.CatalogEntry {
	e := pubsub.CatalogEntry{
		Slug:   r.Slug,
		Valid:  r.Err == nil,
		Source: r.Source,
	}
	if r.Definition != nil {
		e.Title = r.Definition.Title
	}
	if r.Err != nil {
		e.Error = r.Err.Error()
	}
	if r.Snapshot != nil {
		e.Nodes = len(r.Snapshot.Graph.Nodes)
		e.Hash = r.Snapshot.Hash
	}
	return e
}

// Catalog holds the compiled roadmaps served by the web UI and republishes
// them whenever a definition or its mastery state changes.
type Catalog struct {
	pipeline  *pipeline.Pipeline
	tracker   mastery.Tracker
	publisher pubsub.Publisher

	mu       sync.RWMutex
	roadmaps map[string]*atomic.Pointer[Roadmap]
	sources  map[string]string      // source path -> slug
	builds   map[string]*sync.Mutex // held from reading mastery state until the result is stored
}

// NewCatalog creates an empty catalog
func NewCatalog(p *pipeline.Pipeline, tracker mastery.Tracker, publisher pubsub.Publisher) *Catalog {
	return &Catalog{
		pipeline:  p,
		tracker:   tracker,
		publisher: publisher,
		roadmaps:  make(map[string]*atomic.Pointer[Roadmap]),
		sources:   make(map[string]string),
		builds:    make(map[string]*sync.Mutex),
	}
}

// Get returns the current state of a roadmap
func (c *Catalog) Get(slug string) (*Roadmap, bool) {
	c.mu.RLock()
	ptr, ok := c.roadmaps[slug]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return ptr.Load(), true
}

// List returns the catalog entries sorted by slug
func (c *Catalog) List() []pubsub.CatalogEntry {
	c.mu.RLock()
	entries := make([]pubsub.CatalogEntry, 0, len(c.roadmaps))
	for _, ptr := range c.roadmaps {
		entries = append(entries, ptr.Load().Entry())
	}
	c.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Slug < entries[j].Slug })
	return entries
}

// LoadDir compiles every definition in dir. Broken files are kept in the
// catalog with their error.
func (c *Catalog) LoadDir(ctx context.Context, dir string) error {
	results, err := roadmap.LoadDir(dir)
	if err != nil {
		return err
	}
	for _, res := range results {
		c.store(ctx, res.Path, res.Definition, res.Err)
	}
	logging.Info("loaded roadmaps", "dir", dir, "count", len(results))
	c.publishCatalog()
	return nil
}

// LoadFile compiles one definition file, replacing any previous version
func (c *Catalog) LoadFile(ctx context.Context, path string) {
	def, err := roadmap.LoadFile(path)
	c.store(ctx, path, def, err)
	c.publishCatalog()
}

// Add compiles a definition that did not come from a file
func (c *Catalog) Add(ctx context.Context, def *roadmap.Definition) error {
	if def == nil || def.Slug == "" {
		return fmt.Errorf("roadmap needs a slug")
	}
	r := c.store(ctx, "", def, nil)
	c.publishCatalog()
	return r.Err
}

// RemoveFile drops the roadmap loaded from path
func (c *Catalog) RemoveFile(path string) {
	c.mu.Lock()
	slug, ok := c.sources[path]
	if ok {
		delete(c.sources, path)
		delete(c.roadmaps, slug)
	}
	c.mu.Unlock()
	if !ok {
		return
	}

	c.pipeline.Forget(slug)
	logging.Info("roadmap removed", "roadmap", slug, "path", path)
	c.publish(slug, pubsub.EventRemoved, map[string]string{"slug": slug})
	c.publishCatalog()
}

// Refresh rebuilds a roadmap from its loaded definition and the tracker's
// current mastery state, then publishes what changed.
func (c *Catalog) Refresh(ctx context.Context, slug string) (*Roadmap, error) {
	unlock := c.lockBuild(slug)
	defer unlock()

	cur, ok := c.Get(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRoadmap, slug)
	}
	if cur.Definition == nil {
		return cur, cur.Err
	}
	r := c.compile(ctx, cur.Source, cur.Definition)
	if !c.swap(r, false) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRoadmap, slug)
	}
	return r, r.Err
}

// Watch applies debounced file changes until events closes or ctx ends
func (c *Catalog) Watch(ctx context.Context, events <-chan watcher.ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			logging.Debug("definition change", "type", ev.Type.String(), "files", len(ev.Paths))
			for _, path := range ev.Paths {
				if ev.Type == watcher.ChangeTypeRemove {
					c.RemoveFile(path)
				} else {
					c.LoadFile(ctx, path)
				}
			}
		}
	}
}

func (c *Catalog) store(ctx context.Context, path string, def *roadmap.Definition, loadErr error) *Roadmap {
	slug := roadmap.SlugFromPath(path)
	if loadErr == nil {
		slug = def.Slug
	}
	unlock := c.lockBuild(slug)
	defer unlock()

	var r *Roadmap
	if loadErr != nil {
		r = &Roadmap{
			Slug:   slug,
			Source: path,
			Err:    fmt.Errorf("%w: %w", ErrInvalidDefinition, loadErr),
		}
	} else {
		r = c.compile(ctx, path, def)
	}

	var renamed string
	c.mu.Lock()
	if prev, ok := c.sources[path]; ok && path != "" && prev != r.Slug {
		// The file changed its slug; the old roadmap is gone
		renamed = prev
		delete(c.roadmaps, prev)
	}
	if path != "" {
		if owner := c.ownerLocked(r.Slug); owner != "" && owner != path {
			logging.Warn("roadmap slug provided by two files, keeping the newest",
				"roadmap", r.Slug, "path", path, "previous", owner)
			delete(c.sources, owner)
		}
		c.sources[path] = r.Slug
	}
	c.mu.Unlock()

	if renamed != "" {
		c.pipeline.Forget(renamed)
		c.publish(renamed, pubsub.EventRemoved, map[string]string{"slug": renamed})
	}
	c.swap(r, true)
	return r
}

// ownerLocked returns the file currently providing slug. c.mu must be held.
func (c *Catalog) ownerLocked(slug string) string {
	for path, s := range c.sources {
		if s == slug {
			return path
		}
	}
	return ""
}

// lockBuild serialises compiles of one roadmap so that a build which read
// older mastery state never replaces a newer result
func (c *Catalog) lockBuild(slug string) (unlock func()) {
	c.mu.Lock()
	l, ok := c.builds[slug]
	if !ok {
		l = &sync.Mutex{}
		c.builds[slug] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// compile overlays mastery state and runs the pipeline
func (c *Catalog) compile(ctx context.Context, path string, def *roadmap.Definition) *Roadmap {
	r := &Roadmap{Slug: def.Slug, Source: path, Definition: def}

	states, err := c.tracker.States(ctx, def.Slug)
	if err != nil {
		r.Err = fmt.Errorf("reading mastery state: %w", err)
		return r
	}
	r.Snapshot, r.Err = c.pipeline.Build(mastery.Apply(def, states))
	return r
}

// swap installs r and publishes the change against the previous snapshot.
// Unless create is set, a roadmap removed in the meantime stays removed and
// swap reports false.
func (c *Catalog) swap(r *Roadmap, create bool) bool {
	c.mu.Lock()
	ptr, ok := c.roadmaps[r.Slug]
	if !ok {
		if !create {
			c.mu.Unlock()
			return false
		}
		ptr = &atomic.Pointer[Roadmap]{}
		c.roadmaps[r.Slug] = ptr
	}
	c.mu.Unlock()

	old := ptr.Swap(r)

	if r.Err != nil {
		logging.Warn("roadmap invalid", "roadmap", r.Slug, "path", r.Source, "error", r.Err)
		payload := pubsub.InvalidRoadmap{Slug: r.Slug, Error: r.Err.Error()}
		var merr *normalize.MalformedRoadmapError
		if errors.As(r.Err, &merr) {
			payload.Path = merr.Path
		}
		c.publish(r.Slug, pubsub.EventInvalid, payload)
		return true
	}

	var prev *pipeline.Snapshot
	if old != nil {
		prev = old.Snapshot
	}
	diff := pipeline.ComputeDiff(prev, r.Snapshot)
	switch {
	case diff.FullGraph:
		c.publish(r.Slug, pubsub.EventSnapshot, diff)
	case !diff.Empty():
		c.publish(r.Slug, pubsub.EventDiff, diff)
	default:
		logging.Debug("roadmap unchanged", "roadmap", r.Slug, "hash", r.Snapshot.Hash)
	}
	return true
}

func (c *Catalog) publish(slug, eventType string, data any) {
	if err := c.publisher.Publish(pubsub.TopicRoadmapGraph, slug, eventType, data); err != nil {
		logging.Warn("failed to publish roadmap event", "roadmap", slug, "type", eventType, "error", err)
	}
}

func (c *Catalog) publishCatalog() {
	if err := c.publisher.Publish(pubsub.TopicCatalog, "", pubsub.EventCatalog, c.List()); err != nil {
		logging.Warn("failed to publish catalog", "error", err)
	}
}
