package optimistic

import "errors"

// Sentinel kinds for coordinator failures.
var (
	// ErrUnknownEvent is returned when the target event is not on the timeline.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrRejected is returned when the pre-check refuses the assignment.
	ErrRejected = errors.New("assignment rejected")
	// ErrConflict is returned when a concurrent edit claimed the resource first.
	ErrConflict = errors.New("assignment conflicts with a concurrent edit")
	// ErrStore wraps failures of the authoritative store.
	ErrStore = errors.New("store mutation failed")
)
