package cooldown

import (
	"math"

	"github.com/okian/mitiplan/internal/domain/charges"
	"github.com/okian/mitiplan/internal/domain/instances"
	"github.com/okian/mitiplan/internal/domain/model"
	"github.com/okian/mitiplan/internal/domain/roster"
	"github.com/okian/mitiplan/internal/domain/stacks"
	"github.com/okian/mitiplan/internal/domain/usage"
	"github.com/okian/mitiplan/pkg/logger"
	"github.com/okian/mitiplan/pkg/metrics"
)

// defaultLevel is the encounter level used until one is set.
const defaultLevel = 100

// Manager answers availability questions for one planning session.
//
// A Manager is not safe for concurrent use; callers serialize access.
// Every query is a deterministic function of the current State and its arguments.
type Manager struct {
	catalog     *model.Catalog
	roles       stacks.Roles
	timeline    *model.Timeline
	assignments model.Assignments
	roster      roster.Selection
	level       int

	results     *Cache[queryKey, Result]
	histories   *Cache[string, []usage.Record]
	stackStates *Cache[float64, stacks.State]

	logger logger.Logger
}

// NewManager creates a manager over a read-only catalogue with an empty state.
func NewManager(catalog *model.Catalog, opts ...Option) *Manager {
	if catalog == nil {
		catalog = model.NewCatalog(nil, nil)
	}
	m := &Manager{
		catalog:     catalog,
		roles:       stacks.NewRoles(catalog.Consumers(), catalog.Providers()),
		timeline:    model.NewTimeline(nil),
		assignments: model.Assignments{},
		level:       defaultLevel,
		results:     NewCache[queryKey, Result](),
		histories:   NewCache[string, []usage.Record](),
		stackStates: NewCache[float64, stacks.State](),
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Catalog returns the ability catalogue.
func (m *Manager) Catalog() *model.Catalog { return m.catalog }

// CachedResults returns the number of memoized availability results.
func (m *Manager) CachedResults() int { return m.results.Len() }

// Level returns the encounter level.
func (m *Manager) Level() int { return m.level }

// CheckAvailability reports whether abilityID can be used at `at`. When eventID
// is set the already-assigned rule for that event applies as well.
// A non-finite `at` is never available and is not cached.
func (m *Manager) CheckAvailability(abilityID string, at float64, eventID string, q Query) Result {
	if math.IsNaN(at) || math.IsInf(at, 0) {
		return Result{AbilityID: abilityID}
	}
	key := queryKey{abilityID: abilityID, at: at, eventID: eventID, caster: q.CasterJobID, position: q.TankPosition}
	if r, ok := m.results.Get(key); ok {
		metrics.RecordCacheHit()
		return r
	}
	metrics.RecordCacheMiss()
	r := m.evaluate(abilityID, at, eventID, q)
	m.results.Put(key, r)
	metrics.RecordAvailabilityCheck(string(r.Reason))
	metrics.UpdateCacheEntries(m.results.Len())
	return r
}

// CheckMultiple evaluates several abilities with the same arguments.
func (m *Manager) CheckMultiple(abilityIDs []string, at float64, eventID string, q Query) map[string]Result {
	out := make(map[string]Result, len(abilityIDs))
	for _, id := range abilityIDs {
		out[id] = m.CheckAvailability(id, at, eventID, q)
	}
	return out
}

// ListAvailableAt returns, in catalogue order, every ability offered by the
// selected roster that can be assigned at `at`. With an empty roster every
// catalogue ability is considered.
func (m *Manager) ListAvailableAt(at float64, eventID string, q Query) []Result {
	var out []Result
	for _, id := range m.catalog.IDs() {
		ab, _ := m.catalog.Ability(id)
		if !m.offered(ab) {
			continue
		}
		if r := m.CheckAvailability(id, at, eventID, q); r.CanAssign() {
			out = append(out, r)
		}
	}
	return out
}

// SimulateUsage previews using abilityID on eventID at `at` without changing
// the manager's state; the "after" side is computed on a scratch handle.
// The use is placed at `at` by precasting ahead of the event when `at` is
// earlier than the event. Before applies the already-assigned rule for
// eventID; After does not, since the hypothetical use itself sits on eventID
// and would always block it. After therefore reports the resource state left
// by the use.
func (m *Manager) SimulateUsage(abilityID string, at float64, eventID string) Preview {
	p := Preview{AbilityID: abilityID, EventID: eventID, Time: at}
	p.Before = m.CheckAvailability(abilityID, at, eventID, Query{})
	ev, ok := m.timeline.Lookup(eventID)
	if !ok {
		p.After = p.Before
		return p
	}
	precast := ev.Time - at
	if precast < 0 {
		precast = 0
	}
	hypo := m.assignments.Clone()
	hypo.Add(eventID, model.Assignment{AbilityID: abilityID, PrecastSeconds: precast})

	p.After = m.CheckWith(hypo, abilityID, at, "", Query{})
	return p
}

// CheckWith evaluates abilityID against as instead of the current assignments.
// Neither the state nor the cache of m is touched.
func (m *Manager) CheckWith(as model.Assignments, abilityID string, at float64, eventID string, q Query) Result {
	if math.IsNaN(at) || math.IsInf(at, 0) {
		return Result{AbilityID: abilityID}
	}
	scratch := m.fork()
	scratch.assignments = as
	return scratch.evaluate(abilityID, at, eventID, q)
}

// Event looks up an event of the current timeline.
func (m *Manager) Event(id string) (model.Event, bool) {
	return m.timeline.Lookup(id)
}

// fork returns a manager sharing the read-only inputs with fresh caches.
func (m *Manager) fork() *Manager {
	return &Manager{
		catalog:     m.catalog,
		roles:       m.roles,
		timeline:    m.timeline,
		assignments: m.assignments,
		roster:      m.roster,
		level:       m.level,
		results:     NewCache[queryKey, Result](),
		histories:   NewCache[string, []usage.Record](),
		stackStates: NewCache[float64, stacks.State](),
		logger:      m.logger,
	}
}

func (m *Manager) offered(ab *model.Ability) bool {
	if m.roster.Len() == 0 || len(ab.Jobs) == 0 {
		return true
	}
	for _, j := range ab.Jobs {
		if m.roster.Has(j) {
			return true
		}
	}
	return false
}

// history returns the resolved usage of id, cached per ability.
func (m *Manager) history(id string) []usage.Record {
	if h, ok := m.histories.Get(id); ok {
		return h
	}
	h := usage.Resolve(id, m.assignments, m.timeline)
	m.histories.Put(id, h)
	return h
}

// providers returns the ability's selected eligible jobs in catalogue order.
func (m *Manager) providers(ab *model.Ability) []string {
	var out []string
	for _, j := range ab.Jobs {
		if m.roster.Has(j) {
			out = append(out, j)
		}
	}
	return out
}

func (m *Manager) stackState(res *model.StackResource, at float64) stacks.State {
	if st, ok := m.stackStates.Get(at); ok {
		return st
	}
	st := stacks.Simulate(*res, m.roles, m.timeline, m.assignments, at)
	m.stackStates.Put(at, st)
	return st
}

// evaluate computes a result without consulting the result cache.
//
// The resource model is always evaluated so counts are reported; the reason is
// taken from the first failing gate in order: stack resource, already assigned,
// active window, resource model.
func (m *Manager) evaluate(abilityID string, at float64, eventID string, q Query) Result {
	ab, ok := m.catalog.Ability(abilityID)
	if !ok {
		return Result{AbilityID: abilityID, Reason: ReasonAbilityNotFound}
	}
	res := Result{AbilityID: abilityID}
	history := m.history(abilityID)
	resourceReason := m.applyResourceModel(&res, ab, history, at, q)
	if last, ok := usage.Last(history, at); ok {
		res.LastUsed = &LastUse{Time: last.Time, EventID: last.EventID, EventName: last.EventName}
	}

	reason := m.stackGate(&res, ab, at)
	if reason == ReasonNone && eventID != "" && m.blockedOnEvent(ab, eventID, q.TankPosition) {
		reason = ReasonAlreadyAssigned
	}
	if reason == ReasonNone && ab.RequiresActiveWindow != nil {
		w := ab.RequiresActiveWindow
		if !WindowActive(m.history(w.AbilityID), at, w.Duration) {
			reason = ReasonRequiresActiveWindow
		}
	}
	if reason == ReasonNone {
		reason = resourceReason
	}
	res.Reason = reason
	res.IsAvailable = reason == ReasonNone
	return res
}

// applyResourceModel fills counts and the next availability time and returns
// the resource model's own verdict.
func (m *Manager) applyResourceModel(res *Result, ab *model.Ability, history []usage.Record, at float64, q Query) Reason {
	cd := ab.CooldownAt(m.level)
	switch total := ab.ChargesAt(m.level); {
	case ab.IsRoleShared:
		st := instances.Evaluate(history, m.providers(ab), at, cd, q.CasterJobID)
		res.AvailableInstances, res.TotalInstances = st.Available, st.Total
		if st.HasNext {
			res.NextAvailableTime = ptr(st.NextAvailable)
		}
		if st.Available == 0 {
			return ReasonNoInstances
		}
	case total > 1:
		st := charges.Evaluate(history, at, cd, total)
		res.AvailableCharges, res.TotalCharges = st.Available, st.Total
		if st.HasNext {
			res.NextAvailableTime = ptr(st.NextRecovery)
		}
		if st.Available == 0 {
			return ReasonNoCharges
		}
	default:
		return m.applySingleCharge(res, ab, history, at, cd)
	}
	return ReasonNone
}

// applySingleCharge handles the plain cooldown, shared across a cooldown group
// when the ability belongs to one: the merged history of every member is
// gated by the longest member cooldown.
func (m *Manager) applySingleCharge(res *Result, ab *model.Ability, history []usage.Record, at, cd float64) Reason {
	res.TotalCharges = 1
	if g := ab.SharedCooldownGroup; g != "" {
		members := m.catalog.Group(g)
		hs := make([][]usage.Record, 0, len(members))
		for _, id := range members {
			hs = append(hs, m.history(id))
		}
		history = usage.Merge(hs...)
		cd = GroupCooldown(m.catalog, members, m.level)
	}
	last, used := usage.Last(history, at)
	if !used || at-last.Time >= cd {
		res.AvailableCharges = 1
		return ReasonNone
	}
	res.NextAvailableTime = ptr(last.Time + cd)
	if last.AbilityID != ab.ID {
		return ReasonSharedCooldown
	}
	return ReasonOnCooldown
}

// stackGate applies the stack resource to consumers and reports its counter
// on consumers and providers alike.
func (m *Manager) stackGate(res *Result, ab *model.Ability, at float64) Reason {
	if !ab.ConsumesStack && !ab.ProvidesStack {
		return ReasonNone
	}
	def, ok := m.catalog.Stack()
	if !ok {
		return ReasonNone
	}
	st := m.stackState(def, at)
	res.AvailableStacks, res.TotalStacks = st.Available, st.Capacity
	if st.HasNextRefill {
		res.NextStackRefill = ptr(st.NextAutoRefill)
	}
	if !ab.ConsumesStack {
		return ReasonNone
	}
	if !m.roster.Has(def.ProviderJobID) {
		return ReasonJobNotSelected
	}
	if st.Available == 0 {
		if st.HasNextRefill {
			res.NextAvailableTime = ptr(st.NextAutoRefill)
		}
		return ReasonNoStackResource
	}
	return ReasonNone
}

// blockedOnEvent applies the already-assigned rule and its tank-buster exception.
func (m *Manager) blockedOnEvent(ab *model.Ability, eventID string, position model.TankPosition) bool {
	if !AlreadyAssigned(ab, m.assignments[eventID], position) {
		return false
	}
	ev, ok := m.timeline.Lookup(eventID)
	if !ok {
		return true
	}
	totalInstances := 0
	if ab.IsRoleShared {
		totalInstances = len(m.providers(ab))
	}
	return !AllowsDoubleApplication(ab, ev, ab.ChargesAt(m.level), totalInstances)
}

// Logger returns the manager's logger.
func (m *Manager) Logger() logger.Logger { return m.logger }
