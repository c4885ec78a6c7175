// Package instances tracks role-shared abilities offered by several
// interchangeable providers, each with its own cooldown lane.
//
// Lane policy, applied to uses in time order:
//  1. a use naming a provider (caster job or instance id) goes to that provider's lane;
//  2. otherwise the first lane, in provider order, that is free at the use's time;
//  3. otherwise the lane whose cooldown lapses soonest, ties going to provider order.
package instances

import (
	"slices"

	"github.com/okian/mitiplan/internal/domain/usage"
)

// Lane is one provider's cooldown state.
type Lane struct {
	JobID     string
	BusyUntil float64
	Used      bool
	Last      usage.Record
}

// Free reports whether the lane can be used at t. Availability begins exactly at BusyUntil.
func (l Lane) Free(t float64) bool {
	return !l.Used || t >= l.BusyUntil
}

// State is the instance availability at one instant.
type State struct {
	Available int
	Total     int
	// NextAvailable is the earliest lapse among busy lanes; valid when HasNext.
	NextAvailable float64
	HasNext       bool
	Lanes         []Lane
}

// Evaluate computes instance state at target.
//
// providers must already be restricted to eligible, selected jobs in a fixed
// order. When caster is not empty only that provider's lane is reported and
// Available is at most one; lanes are still inferred from every prior use, so
// uses that name no provider occupy the lane the policy gives them.
func Evaluate(history []usage.Record, providers []string, target, cooldown float64, caster string) State {
	st := State{Total: len(providers)}
	if len(providers) == 0 {
		return st
	}
	lanes := assign(usage.Before(history, target), providers, cooldown)
	if caster != "" {
		i := slices.Index(providers, caster)
		if i < 0 {
			return st
		}
		lanes = lanes[i : i+1]
	}
	st.Lanes = lanes
	for _, l := range lanes {
		if l.Free(target) {
			st.Available++
			continue
		}
		if !st.HasNext || l.BusyUntil < st.NextAvailable {
			st.NextAvailable, st.HasNext = l.BusyUntil, true
		}
	}
	return st
}

// assign places prior uses on provider lanes following the lane policy.
func assign(prior []usage.Record, providers []string, cooldown float64) []Lane {
	lanes := make([]Lane, len(providers))
	index := make(map[string]int, len(providers))
	for i, p := range providers {
		lanes[i] = Lane{JobID: p}
		index[p] = i
	}
	for _, r := range prior {
		i := pick(lanes, index, r)
		lanes[i] = Lane{JobID: lanes[i].JobID, BusyUntil: r.Time + cooldown, Used: true, Last: r}
	}
	return lanes
}

func pick(lanes []Lane, index map[string]int, r usage.Record) int {
	if i, ok := index[r.CasterJobID]; ok {
		return i
	}
	if i, ok := index[r.InstanceID]; ok {
		return i
	}
	for i, l := range lanes {
		if l.Free(r.Time) {
			return i
		}
	}
	best := 0
	for i := 1; i < len(lanes); i++ {
		if lanes[i].BusyUntil < lanes[best].BusyUntil {
			best = i
		}
	}
	return best
}
