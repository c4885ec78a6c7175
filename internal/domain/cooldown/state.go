package cooldown

import (
	"context"

	"github.com/okian/mitiplan/internal/domain/model"
	"github.com/okian/mitiplan/internal/domain/roster"
	"github.com/okian/mitiplan/pkg/logger"
	"github.com/okian/mitiplan/pkg/metrics"
)

// State is a full planning snapshot the Manager evaluates against.
type State struct {
	Events      []model.Event
	Assignments model.Assignments
	Roster      roster.Selection
	Level       int
}

// SetState re-points the manager at a new full snapshot. Every cache is dropped.
// The assignment map is held by reference and never modified.
func (m *Manager) SetState(ctx context.Context, st State) {
	m.timeline = model.NewTimeline(st.Events)
	m.assignments = st.Assignments
	m.roster = st.Roster
	if st.Level > 0 {
		m.level = st.Level
	}
	m.invalidate()
	m.audit(ctx)
}

// SetEvents replaces the timeline.
func (m *Manager) SetEvents(ctx context.Context, events []model.Event) {
	m.timeline = model.NewTimeline(events)
	m.invalidate()
	m.audit(ctx)
}

// SetAssignments replaces the assignment snapshot.
func (m *Manager) SetAssignments(ctx context.Context, as model.Assignments) {
	m.assignments = as
	m.invalidate()
	m.audit(ctx)
}

// SetRoster replaces the selected jobs.
func (m *Manager) SetRoster(_ context.Context, sel roster.Selection) {
	m.roster = sel
	m.invalidate()
}

// SetLevel changes the encounter level.
func (m *Manager) SetLevel(_ context.Context, level int) {
	m.level = level
	m.invalidate()
}

// Update is a partial State. Nil fields are left unchanged.
type Update struct {
	Events []model.Event     `json:"events,omitempty" validate:"omitempty,dive"`
	Roster *roster.Selection `json:"roster,omitempty"`
	Level  *int              `json:"level,omitempty" validate:"omitempty,gte=0"`
}

// Update applies the set fields of u. A zero level is ignored.
func (m *Manager) Update(ctx context.Context, u Update) {
	if u.Roster != nil {
		m.roster = *u.Roster
	}
	if u.Level != nil && *u.Level > 0 {
		m.level = *u.Level
	}
	if u.Events != nil {
		m.timeline = model.NewTimeline(u.Events)
		m.invalidate()
		m.audit(ctx)
		return
	}
	m.invalidate()
}

// Invalidate drops every cached value.
func (m *Manager) Invalidate() {
	m.invalidate()
}

// State returns the current snapshot. The assignment map is shared, not copied.
func (m *Manager) State() State {
	return State{
		Events:      append([]model.Event(nil), m.timeline.Events()...),
		Assignments: m.assignments,
		Roster:      m.roster,
		Level:       m.level,
	}
}

func (m *Manager) invalidate() {
	m.results.Invalidate()
	m.histories.Invalidate()
	m.stackStates.Invalidate()
	metrics.RecordCacheInvalidation()
}

// Problems found while auditing a snapshot.
const (
	problemUnknownEvent   = "unknown_event"
	problemUnknownAbility = "unknown_ability"
	problemPrecastRange   = "precast_out_of_range"
)

// audit logs assignments that reference data the engine cannot resolve.
// Such entries take no part in any computation.
func (m *Manager) audit(ctx context.Context) {
	for eventID, list := range m.assignments {
		_, known := m.timeline.Lookup(eventID)
		for _, a := range list {
			switch ab, ok := m.catalog.Ability(a.AbilityID); {
			case !known:
				m.skip(ctx, problemUnknownEvent, eventID, a.AbilityID)
			case !ok:
				m.skip(ctx, problemUnknownAbility, eventID, a.AbilityID)
			case a.PrecastSeconds < 0 || (ab.Duration > 0 && a.PrecastSeconds > ab.Duration):
				m.logger.Warn(ctx, "precast outside ability duration",
					logger.String("event", eventID),
					logger.String("ability", a.AbilityID),
					logger.Float64("precast", a.PrecastSeconds),
				)
				metrics.RecordSkippedAssignment(problemPrecastRange)
			}
		}
	}
}

func (m *Manager) skip(ctx context.Context, problem, eventID, abilityID string) {
	m.logger.Warn(ctx, "assignment skipped",
		logger.String("problem", problem),
		logger.String("event", eventID),
		logger.String("ability", abilityID),
	)
	metrics.RecordSkippedAssignment(problem)
}
