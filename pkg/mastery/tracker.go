// Package mastery owns per-roadmap available/mastered state. The graph
// pipeline never reads or writes it; callers overlay it onto a definition
// with Apply before building.
package mastery

import (
	"context"
	"sync"

	"github.com/ritzau/roadmap-graph/pkg/model"
	"github.com/ritzau/roadmap-graph/pkg/roadmap"
)

// Tracker stores mastery state keyed by roadmap slug and entity path
type Tracker interface {
	// States returns the recorded status of every tracked entity of a roadmap
	States(ctx context.Context, slug string) (map[string]roadmap.Status, error)
	// Master marks an entity mastered
	Master(ctx context.Context, slug, entityID string) error
	// Reset returns an entity to available
	Reset(ctx context.Context, slug, entityID string) error
	Close() error
}

// Apply returns a copy of def with recorded states overlaid. Entities
// without a record keep the status from the definition.
func Apply(def *roadmap.Definition, states map[string]roadmap.Status) *roadmap.Definition {
	out := def.Clone()
	if len(states) == 0 {
		return out
	}
	out.Walk(func(path string, status *roadmap.Status) bool {
		if st, ok := states[path]; ok {
			*status = st
		}
		return true
	})
	return out
}

// RecordClick applies the available -> mastered transition for a clicked
// node. Nodes without a status (phase headers) are ignored and report false.
func RecordClick(ctx context.Context, t Tracker, slug string, data model.NodeData) (bool, error) {
	if data.Status == "" {
		return false, nil
	}
	if data.Status == roadmap.StatusMastered {
		return false, nil
	}
	if err := t.Master(ctx, slug, data.EntityID); err != nil {
		return false, err
	}
	return true, nil
}

// MemoryTracker keeps state in process memory
type MemoryTracker struct {
	mu     sync.RWMutex
	states map[string]map[string]roadmap.Status
}

// NewMemoryTracker creates an empty in-memory tracker
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{states: make(map[string]map[string]roadmap.Status)}
}

func (m *MemoryTracker) States(_ context.Context, slug string) (map[string]roadmap.Status, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]roadmap.Status, len(m.states[slug]))
	for k, v := range m.states[slug] {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryTracker) Master(_ context.Context, slug, entityID string) error {
	m.set(slug, entityID, roadmap.StatusMastered)
	return nil
}

func (m *MemoryTracker) Reset(_ context.Context, slug, entityID string) error {
	m.set(slug, entityID, roadmap.StatusAvailable)
	return nil
}

func (m *MemoryTracker) Close() error {
	return nil
}

func (m *MemoryTracker) set(slug, entityID string, st roadmap.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.states[slug] == nil {
		m.states[slug] = make(map[string]roadmap.Status)
	}
	m.states[slug][entityID] = st
}
