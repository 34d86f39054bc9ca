package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ritzau/roadmap-graph/pkg/logging"
	"github.com/ritzau/roadmap-graph/pkg/roadmap"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeTypeWrite  ChangeType = iota // Created or modified
	ChangeTypeRemove                   // Removed or renamed away
)

func (c ChangeType) String() string {
	if c == ChangeTypeRemove {
		return "remove"
	}
	return "write"
}

// ChangeEvent represents a batch of changes to definition files
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// batchWindow groups the burst of events an editor save produces
const batchWindow = 100 * time.Millisecond

// FileWatcher watches a roadmap directory for definition file changes
type FileWatcher struct {
	watcher *fsnotify.Watcher
	dir     string
	events  chan ChangeEvent
}

// NewFileWatcher creates a watcher for the definitions directly inside dir
func NewFileWatcher(dir string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher: watcher,
		dir:     dir,
		events:  make(chan ChangeEvent, 100),
	}, nil
}

// Start begins watching. Events stop and the channel closes when ctx ends.
func (fw *FileWatcher) Start(ctx context.Context) error {
	if err := fw.watcher.Add(fw.dir); err != nil {
		fw.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", fw.dir, err)
	}

	logging.Info("watching roadmap definitions", "path", fw.dir)

	go fw.processEvents(ctx)
	return nil
}

// isRelevant filters out non-definition files and editor droppings
func isRelevant(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") {
		return false
	}
	return roadmap.IsDefinitionFile(name)
}

// processEvents batches file system events. Within a batch the last change
// to a path wins, so a file deleted and recreated by an editor save is
// reported as written.
func (fw *FileWatcher) processEvents(ctx context.Context) {
	var pending []ChangeEvent

	flushTimer := time.NewTimer(batchWindow)
	flushTimer.Stop()

	flush := func() {
		for _, ev := range Coalesce(pending) {
			select {
			case fw.events <- ev:
			case <-ctx.Done():
			}
		}
		pending = nil
	}

	defer func() {
		fw.watcher.Close()
		close(fw.events)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				flush()
				return
			}
			if !isRelevant(event.Name) {
				continue
			}

			var change ChangeType
			switch {
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				change = ChangeTypeRemove
			case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
				change = ChangeTypeWrite
			default:
				continue
			}
			pending = append(pending, ChangeEvent{Type: change, Paths: []string{event.Name}})
			logging.Trace("definition file event", "path", event.Name, "op", event.Op.String())
			flushTimer.Reset(batchWindow)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}
