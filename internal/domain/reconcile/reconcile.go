// Package reconcile decides how an inbound remote snapshot affects the local
// assignment state.
package reconcile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okian/mitiplan/internal/domain/dedupe"
	"github.com/okian/mitiplan/internal/domain/model"
	"github.com/okian/mitiplan/pkg/logger"
)

// Strategy selects how snapshots with different timestamps are combined.
type Strategy string

// Strategies.
const (
	StrategyLatest Strategy = "latest"
	StrategyOldest Strategy = "oldest"
	StrategyMerge  Strategy = "merge"
)

// ParseStrategy maps a configuration value to a Strategy. Empty means latest.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyLatest:
		return StrategyLatest, nil
	case StrategyOldest:
		return StrategyOldest, nil
	case StrategyMerge:
		return StrategyMerge, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownStrategy)
}

// Outcome labels.
const (
	OutcomeApplied   = "applied"
	OutcomeMerged    = "merged"
	OutcomeStale     = "stale"
	OutcomeSelf      = "self"
	OutcomeDuplicate = "duplicate"
)

// Snapshot is a full assignment map broadcast by one editor.
type Snapshot struct {
	ID          string            `json:"id"`
	Origin      string            `json:"origin" validate:"required"`
	Timestamp   time.Time         `json:"timestamp" validate:"required"`
	Assignments model.Assignments `json:"assignments"`
}

// Decision is the result of reconciling one snapshot.
type Decision struct {
	Outcome string
	// Assignments is the state to apply; nil unless Changed.
	Assignments model.Assignments
	Timestamp   time.Time
}

// Changed reports whether the decision replaces the local state.
func (d Decision) Changed() bool {
	return d.Outcome == OutcomeApplied || d.Outcome == OutcomeMerged
}

// Reconciler tracks the timestamp of the local state. It is not safe for
// concurrent use.
type Reconciler struct {
	editorID string
	strategy Strategy
	seen     dedupe.Deduper
	stamp    time.Time
	logger   logger.Logger
}

// NewReconciler creates a reconciler for the local editor identity.
func NewReconciler(editorID string, opts ...Option) *Reconciler {
	r := &Reconciler{
		editorID: editorID,
		strategy: StrategyLatest,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.seen == nil {
		r.seen = dedupe.NewInMemoryDeduper()
	}
	return r
}

// Strategy returns the configured strategy.
func (r *Reconciler) Strategy() Strategy { return r.strategy }

// Stamp returns the timestamp of the local state.
func (r *Reconciler) Stamp() time.Time { return r.stamp }

// Touch records a local write at t.
func (r *Reconciler) Touch(t time.Time) {
	if t.After(r.stamp) {
		r.stamp = t
	}
}

// Reconcile combines snap with local. local is never modified.
func (r *Reconciler) Reconcile(ctx context.Context, local model.Assignments, snap Snapshot) Decision {
	if snap.Origin == r.editorID {
		return Decision{Outcome: OutcomeSelf, Timestamp: r.stamp}
	}
	if snap.ID != "" && r.seen.SeenAndRecord(ctx, snap.ID) {
		r.logger.Debug(ctx, "duplicate snapshot", logger.String("id", snap.ID))
		return Decision{Outcome: OutcomeDuplicate, Timestamp: r.stamp}
	}

	var d Decision
	switch r.strategy {
	case StrategyMerge:
		d = Decision{Outcome: OutcomeMerged, Assignments: merge(local, r.stamp, snap)}
	case StrategyOldest:
		if r.stamp.IsZero() || snap.Timestamp.Before(r.stamp) {
			d = Decision{Outcome: OutcomeApplied, Assignments: snap.Assignments.Clone()}
		}
	default:
		if r.stamp.IsZero() || snap.Timestamp.After(r.stamp) {
			d = Decision{Outcome: OutcomeApplied, Assignments: snap.Assignments.Clone()}
		}
	}
	if !d.Changed() {
		r.logger.Debug(ctx, "stale snapshot",
			logger.String("id", snap.ID),
			logger.String("origin", snap.Origin),
			logger.String("strategy", string(r.strategy)),
		)
		return Decision{Outcome: OutcomeStale, Timestamp: r.stamp}
	}

	switch {
	case r.strategy == StrategyOldest:
		r.stamp = snap.Timestamp
	case snap.Timestamp.After(r.stamp):
		r.stamp = snap.Timestamp
	}
	d.Timestamp = r.stamp
	return d
}

// merge unions both maps per event. Entries are grouped by slot and each
// slot keeps the side whose newest entry is newer; ties keep the local side.
// An entry without UpdatedAt takes the timestamp of its side.
func merge(local model.Assignments, localStamp time.Time, snap Snapshot) model.Assignments {
	out := make(model.Assignments, len(local))
	for _, eventID := range eventIDs(local, snap.Assignments) {
		mine := group(local[eventID], localStamp)
		theirs := group(snap.Assignments[eventID], snap.Timestamp)

		var list []model.Assignment
		for _, g := range mine.order {
			if t, ok := theirs.byslot[g]; ok && t.newest.After(mine.byslot[g].newest) {
				continue
			}
			list = append(list, mine.byslot[g].entries...)
		}
		for _, g := range theirs.order {
			m, ok := mine.byslot[g]
			if ok && !theirs.byslot[g].newest.After(m.newest) {
				continue
			}
			list = append(list, theirs.byslot[g].entries...)
		}
		if len(list) > 0 {
			out[eventID] = list
		}
	}
	return out
}

type slotGroup struct {
	entries []model.Assignment
	newest  time.Time
}

type grouped struct {
	order  []model.Slot
	byslot map[model.Slot]*slotGroup
}

func group(list []model.Assignment, fallback time.Time) grouped {
	g := grouped{byslot: make(map[model.Slot]*slotGroup)}
	for _, a := range list {
		k := a.Slot()
		sg, ok := g.byslot[k]
		if !ok {
			sg = &slotGroup{}
			g.byslot[k] = sg
			g.order = append(g.order, k)
		}
		sg.entries = append(sg.entries, a)
		t := a.UpdatedAt
		if t.IsZero() {
			t = fallback
		}
		if t.After(sg.newest) {
			sg.newest = t
		}
	}
	return g
}

func eventIDs(a, b model.Assignments) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for id := range a {
		set[id] = struct{}{}
	}
	for id := range b {
		set[id] = struct{}{}
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
