// Package model contains domain models passed between layers.
package model

import "sort"

// Event is an immutable point on the encounter timeline.
type Event struct {
	ID           string  `json:"id" yaml:"id" validate:"required"`
	Time         float64 `json:"time" yaml:"time" validate:"gte=0"`
	Name         string  `json:"name" yaml:"name"`
	IsTankBuster bool    `json:"isTankBuster" yaml:"isTankBuster"`
}

// Timeline is an ordered, indexed copy of an event list.
type Timeline struct {
	events []Event
	byID   map[string]int
}

// NewTimeline copies events and orders them by time (stable on input order).
// Later duplicates of an event id are dropped.
func NewTimeline(events []Event) *Timeline {
	t := &Timeline{
		events: make([]Event, 0, len(events)),
		byID:   make(map[string]int, len(events)),
	}
	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		t.events = append(t.events, e)
	}
	sort.SliceStable(t.events, func(i, j int) bool { return t.events[i].Time < t.events[j].Time })
	for i, e := range t.events {
		t.byID[e.ID] = i
	}
	return t
}

// Events returns the ordered events. Callers must not modify the slice.
func (t *Timeline) Events() []Event {
	if t == nil {
		return nil
	}
	return t.events
}

// Lookup returns the event with id.
func (t *Timeline) Lookup(id string) (Event, bool) {
	if t == nil {
		return Event{}, false
	}
	i, ok := t.byID[id]
	if !ok {
		return Event{}, false
	}
	return t.events[i], true
}

// Len returns the number of events.
func (t *Timeline) Len() int {
	if t == nil {
		return 0
	}
	return len(t.events)
}
