package watcher

import (
	"context"
	"time"

	"github.com/ritzau/roadmap-graph/pkg/logging"
)

// Debouncer merges bursts of change events so a definition is recompiled
// once per save, not once per file system event.
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a debouncer. Events are released after quietPeriod
// without input, or after maxWait since the first held event.
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

func (d *Debouncer) run(ctx context.Context) {
	var (
		pending  []ChangeEvent
		quiet    = stoppedTimer()
		deadline = stoppedTimer()
		holding  bool
	)

	flush := func() {
		quiet.Stop()
		deadline.Stop()
		holding = false
		if len(pending) == 0 {
			return
		}
		logging.Debug("flushing accumulated events", "count", len(pending))
		for _, ev := range Coalesce(pending) {
			select {
			case d.output <- ev:
			case <-ctx.Done():
			}
		}
		pending = nil
	}

	defer close(d.output)

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}
			pending = append(pending, event)
			quiet.Reset(d.quietPeriod)
			if !holding {
				deadline.Reset(d.maxWait)
				holding = true
			}

		case <-quiet.C:
			flush()

		case <-deadline.C:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}

func stoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	t.Stop()
	return t
}
