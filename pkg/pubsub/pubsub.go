package pubsub

import (
	"context"
	"encoding/json"
)

// Topics
const (
	// TopicRoadmapGraph carries per-roadmap graph snapshots and diffs, keyed by slug
	TopicRoadmapGraph = "roadmap_graph"
	// TopicCatalog carries the list of loaded roadmaps
	TopicCatalog = "roadmap_catalog"
)

// Event types
const (
	EventSnapshot = "snapshot" // Full graph; sent on first load and on reconnect
	EventDiff     = "diff"     // Incremental change since the previous snapshot
	EventInvalid  = "invalid"  // Definition no longer compiles; payload carries the error
	EventRemoved  = "removed"  // Definition file deleted
	EventCatalog  = "catalog"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`
	Key     string          `json:"key,omitempty"` // Roadmap slug for per-roadmap topics
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`
	Version int             `json:"version"` // Per-topic counter for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic.
	// Context cancellation will close the subscription.
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic. key scopes the
	// event for topics that replay the latest event per key.
	Publish(topic, key, eventType string, data any) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// InvalidRoadmap is the payload of EventInvalid
type InvalidRoadmap struct {
	Slug  string `json:"slug"`
	Path  string `json:"path,omitempty"` // Entity path of the offending element
	Error string `json:"error"`
}

// CatalogEntry describes one loaded roadmap
type CatalogEntry struct {
	Slug   string `json:"slug"`
	Title  string `json:"title"`
	Valid  bool   `json:"valid"`
	Error  string `json:"error,omitempty"`
	Nodes  int    `json:"nodes"`
	Hash   string `json:"hash,omitempty"`
	Source string `json:"source"` // File the definition was loaded from
}
