// Package stacks simulates the shared stack resource: one counter drained by
// consumer abilities and refilled to capacity either by a provider ability or
// passively once the refill interval has elapsed since the last refill.
package stacks

import (
	"github.com/okian/mitiplan/internal/domain/model"
)

// Roles tells the simulation which abilities touch the counter.
type Roles struct {
	Consumers map[string]struct{}
	Providers map[string]struct{}
}

// NewRoles builds Roles from id lists.
func NewRoles(consumers, providers []string) Roles {
	r := Roles{
		Consumers: make(map[string]struct{}, len(consumers)),
		Providers: make(map[string]struct{}, len(providers)),
	}
	for _, id := range consumers {
		r.Consumers[id] = struct{}{}
	}
	for _, id := range providers {
		r.Providers[id] = struct{}{}
	}
	return r
}

// State is the counter at one instant.
type State struct {
	Available  int
	Capacity   int
	LastRefill float64
	// NextAutoRefill is when the passive refill is next due; valid when HasNextRefill.
	NextAutoRefill float64
	HasNextRefill  bool
}

// Simulate replays every event at or before target in time order.
//
// On an event, a refill (provider-driven or passive) is applied before that
// event's consumers are charged.
func Simulate(res model.StackResource, roles Roles, timeline *model.Timeline, assignments model.Assignments, target float64) State {
	capacity := res.Capacity
	interval := res.RefillInterval
	counter := capacity
	lastRefill := 0.0

	for _, ev := range timeline.Events() {
		if ev.Time > target {
			break
		}
		provided, consumed := tally(roles, assignments[ev.ID])
		elapsed := ev.Time - lastRefill
		switch {
		case provided && elapsed >= interval:
			counter, lastRefill = capacity, ev.Time
		case elapsed >= interval && counter < capacity:
			counter, lastRefill = capacity, ev.Time
		}
		counter -= consumed
		if counter < 0 {
			counter = 0
		}
	}

	if target-lastRefill >= interval && counter < capacity {
		if at := lastRefill + interval; at <= target {
			counter, lastRefill = capacity, at
		}
	}

	st := State{Available: counter, Capacity: capacity, LastRefill: lastRefill}
	if next := lastRefill + interval; next > target {
		st.NextAutoRefill, st.HasNextRefill = next, true
	}
	return st
}

func tally(roles Roles, list []model.Assignment) (provided bool, consumed int) {
	for _, a := range list {
		if _, ok := roles.Providers[a.AbilityID]; ok {
			provided = true
		}
		if _, ok := roles.Consumers[a.AbilityID]; ok {
			consumed++
		}
	}
	return provided, consumed
}
