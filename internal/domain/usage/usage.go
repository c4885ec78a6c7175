// Package usage resolves assignments into time-ordered usage records.
package usage

import (
	"sort"

	"github.com/okian/mitiplan/internal/domain/model"
)

// Record is one derived use of an ability.
type Record struct {
	AbilityID    string
	EventID      string
	EventName    string
	EventTime    float64
	Time         float64 // effective time: EventTime minus precast, never below zero
	TankPosition model.TankPosition
	CasterJobID  string
	InstanceID   string
}

// Resolve returns every use of abilityID in event order, sorted ascending by
// effective time. Assignments for events missing from the timeline are ignored.
func Resolve(abilityID string, assignments model.Assignments, timeline *model.Timeline) []Record {
	var out []Record
	for _, ev := range timeline.Events() {
		for _, a := range assignments[ev.ID] {
			if a.AbilityID != abilityID {
				continue
			}
			out = append(out, newRecord(ev, a))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// Merge combines several sorted histories into one sorted history.
func Merge(histories ...[]Record) []Record {
	var n int
	for _, h := range histories {
		n += len(h)
	}
	out := make([]Record, 0, n)
	for _, h := range histories {
		out = append(out, h...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

func newRecord(ev model.Event, a model.Assignment) Record {
	precast := a.PrecastSeconds
	if precast < 0 {
		precast = 0
	}
	t := ev.Time - precast
	if t < 0 {
		t = 0
	}
	return Record{
		AbilityID:    a.AbilityID,
		EventID:      ev.ID,
		EventName:    ev.Name,
		EventTime:    ev.Time,
		Time:         t,
		TankPosition: a.TankPosition,
		CasterJobID:  a.CasterJobID,
		InstanceID:   a.InstanceID,
	}
}

// Before returns the prefix of a sorted history with Time <= at.
func Before(history []Record, at float64) []Record {
	i := sort.Search(len(history), func(i int) bool { return history[i].Time > at })
	return history[:i]
}

// Last returns the most recent record at or before at.
func Last(history []Record, at float64) (Record, bool) {
	prior := Before(history, at)
	if len(prior) == 0 {
		return Record{}, false
	}
	return prior[len(prior)-1], true
}
