package normalize

import (
	"errors"
	"fmt"
)

// ErrMalformedRoadmap is matched by every MalformedRoadmapError
var ErrMalformedRoadmap = errors.New("malformed roadmap")

// MalformedRoadmapError reports a definition that violates the data model.
// Path is the entity path of the offending phase, topic or option (empty
// for roadmap-level problems).
type MalformedRoadmapError struct {
	Path   string
	Reason string
}

func (e *MalformedRoadmapError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed roadmap: %s", e.Reason)
	}
	return fmt.Sprintf("malformed roadmap at %s: %s", e.Path, e.Reason)
}

func (e *MalformedRoadmapError) Unwrap() error {
	return ErrMalformedRoadmap
}

func malformed(path, format string, args ...any) error {
	return &MalformedRoadmapError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
