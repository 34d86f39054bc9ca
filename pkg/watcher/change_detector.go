package watcher

import "time"

// Coalesce folds a sequence of change events into at most one write and one
// remove event. The last change to a path wins, so a file deleted and then
// recreated is reported as a write. Paths keep first-seen order.
func Coalesce(events []ChangeEvent) []ChangeEvent {
	last := make(map[string]ChangeType)
	var order []string
	for _, ev := range events {
		for _, p := range ev.Paths {
			if _, seen := last[p]; !seen {
				order = append(order, p)
			}
			last[p] = ev.Type
		}
	}

	var writes, removes []string
	for _, p := range order {
		if last[p] == ChangeTypeRemove {
			removes = append(removes, p)
		} else {
			writes = append(writes, p)
		}
	}

	now := time.Now()
	var out []ChangeEvent
	if len(writes) > 0 {
		out = append(out, ChangeEvent{Type: ChangeTypeWrite, Paths: writes, Timestamp: now})
	}
	if len(removes) > 0 {
		out = append(out, ChangeEvent{Type: ChangeTypeRemove, Paths: removes, Timestamp: now})
	}
	return out
}
