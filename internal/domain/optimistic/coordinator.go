// Package optimistic coordinates add and remove mitigation requests against
// the authoritative store while other editors may write to it concurrently.
//
// An add is pre-checked against the engine's current snapshot, announced as a
// pending marker, written to the store and then re-checked against the
// snapshot the write produced with the new entry taken out. A failing
// re-check means another editor claimed the resource in between: the entry is
// removed again and the marker rolled back.
package optimistic

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/mitiplan/internal/domain/cooldown"
	"github.com/okian/mitiplan/internal/domain/model"
	"github.com/okian/mitiplan/pkg/logger"
	"github.com/okian/mitiplan/pkg/metrics"
)

// Outcome labels.
const (
	OutcomeCommitted  = "committed"
	OutcomeRejected   = "rejected"
	OutcomeRolledBack = "rolled_back"
	OutcomeFailed     = "failed"
)

// Store is the authoritative assignment store. Writes return the assignment
// map they produced.
type Store interface {
	Add(ctx context.Context, eventID string, a model.Assignment) (model.Assignment, model.Assignments, error)
	Remove(ctx context.Context, eventID string, slot model.Slot) (model.Assignments, error)
	RemoveID(ctx context.Context, eventID, id string) (model.Assignments, error)
}

// Engine is the availability side the coordinator consults and refreshes.
type Engine interface {
	Catalog() *model.Catalog
	Event(id string) (model.Event, bool)
	CheckAvailability(abilityID string, at float64, eventID string, q cooldown.Query) cooldown.Result
	CheckWith(as model.Assignments, abilityID string, at float64, eventID string, q cooldown.Query) cooldown.Result
	SetAssignments(ctx context.Context, as model.Assignments)
}

// Request asks for one ability on one event.
type Request struct {
	EventID        string             `json:"event" validate:"required"`
	AbilityID      string             `json:"ability" validate:"required"`
	TankPosition   model.TankPosition `json:"position,omitempty" validate:"omitempty,oneof=shared mainTank offTank"`
	CasterJobID    string             `json:"caster,omitempty"`
	PrecastSeconds float64            `json:"precast,omitempty" validate:"gte=0"`
}

func (r Request) assignment() model.Assignment {
	return model.Assignment{
		AbilityID:      r.AbilityID,
		TankPosition:   r.TankPosition,
		CasterJobID:    r.CasterJobID,
		PrecastSeconds: r.PrecastSeconds,
	}
}

// Pending is an unconfirmed assignment visible while its write is in flight.
type Pending struct {
	ID         string           `json:"id"`
	EventID    string           `json:"event"`
	Assignment model.Assignment `json:"assignment"`
	CreatedAt  time.Time        `json:"createdAt"`
	ExpiresAt  time.Time        `json:"expiresAt"`
}

// Outcome describes how an add request ended.
type Outcome struct {
	Status     string           `json:"status"`
	Assignment model.Assignment `json:"assignment,omitzero"`
	Result     cooldown.Result  `json:"result"`
}

// Coordinator runs the optimistic add flow. Engine calls are not synchronized
// here; callers serialize access to the engine. Pending markers are safe for
// concurrent use.
type Coordinator struct {
	engine Engine
	store  Store

	mu      sync.Mutex
	pending map[string]Pending

	timeout time.Duration
	now     func() time.Time
	logger  logger.Logger
}

// NewCoordinator creates a coordinator over engine and store.
func NewCoordinator(engine Engine, store Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		engine:  engine,
		store:   store,
		pending: make(map[string]Pending),
		timeout: DefaultTimeout,
		now:     time.Now,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddMitigation assigns req.AbilityID to req.EventID.
//
// The returned Outcome is always filled; the error is nil only when the
// status is committed.
func (c *Coordinator) AddMitigation(ctx context.Context, req Request) (Outcome, error) {
	ev, ok := c.engine.Event(req.EventID)
	if !ok {
		metrics.RecordOptimisticOutcome(OutcomeRejected)
		return Outcome{Status: OutcomeRejected}, fmt.Errorf("%s: %w", req.EventID, ErrUnknownEvent)
	}
	if ab, ok := c.engine.Catalog().Ability(req.AbilityID); ok && ab.Duration > 0 && req.PrecastSeconds > ab.Duration {
		metrics.RecordOptimisticOutcome(OutcomeRejected)
		return Outcome{Status: OutcomeRejected, Result: cooldown.Result{AbilityID: req.AbilityID}},
			fmt.Errorf("%s on %s: precast %gs exceeds duration %gs: %w", req.AbilityID, req.EventID, req.PrecastSeconds, ab.Duration, ErrRejected)
	}
	at := ev.Time - req.PrecastSeconds
	if at < 0 {
		at = 0
	}
	q := cooldown.Query{CasterJobID: req.CasterJobID, TankPosition: req.TankPosition}

	pre := c.engine.CheckAvailability(req.AbilityID, at, req.EventID, q)
	if !pre.CanAssign() {
		metrics.RecordOptimisticOutcome(OutcomeRejected)
		return Outcome{Status: OutcomeRejected, Result: pre}, fmt.Errorf("%s on %s: %s: %w", req.AbilityID, req.EventID, pre.Reason, ErrRejected)
	}

	marker := c.mark(req)
	defer c.unmark(marker.ID)

	written, post, err := c.store.Add(ctx, req.EventID, req.assignment())
	if err != nil {
		c.logger.Error(ctx, "store add failed",
			logger.String("event", req.EventID),
			logger.String("ability", req.AbilityID),
			logger.Error(err),
		)
		metrics.RecordOptimisticOutcome(OutcomeFailed)
		metrics.RecordErrorByComponent("coordinator", "store")
		return Outcome{Status: OutcomeFailed, Result: pre}, fmt.Errorf("%w: %w", ErrStore, err)
	}

	others := post.Clone()
	others.RemoveID(req.EventID, written.ID)
	post2 := c.engine.CheckWith(others, req.AbilityID, at, req.EventID, q)
	if !post2.CanAssign() {
		return c.compensate(ctx, req, written, post, post2)
	}

	c.engine.SetAssignments(ctx, post)
	metrics.RecordOptimisticOutcome(OutcomeCommitted)
	c.logger.Debug(ctx, "mitigation committed",
		logger.String("event", req.EventID),
		logger.String("ability", req.AbilityID),
		logger.String("id", written.ID),
	)
	return Outcome{Status: OutcomeCommitted, Assignment: written, Result: pre}, nil
}

// compensate removes an entry that lost a race and refreshes the engine.
func (c *Coordinator) compensate(ctx context.Context, req Request, written model.Assignment, post model.Assignments, r cooldown.Result) (Outcome, error) {
	c.logger.Warn(ctx, "concurrent edit claimed resource",
		logger.String("event", req.EventID),
		logger.String("ability", req.AbilityID),
		logger.String("reason", string(r.Reason)),
	)
	restored, err := c.store.RemoveID(ctx, req.EventID, written.ID)
	if err != nil {
		// the entry stays in the store; the engine still sees the post-write state
		c.logger.Error(ctx, "compensating removal failed",
			logger.String("id", written.ID),
			logger.Error(err),
		)
		metrics.RecordErrorByComponent("coordinator", "compensate")
		restored = post
	}
	c.engine.SetAssignments(ctx, restored)
	metrics.RecordOptimisticOutcome(OutcomeRolledBack)
	return Outcome{Status: OutcomeRolledBack, Result: r}, fmt.Errorf("%s on %s: %s: %w", req.AbilityID, req.EventID, r.Reason, ErrConflict)
}

// RemoveMitigation drops the first entry of eventID matching slot.
func (c *Coordinator) RemoveMitigation(ctx context.Context, eventID string, slot model.Slot) error {
	post, err := c.store.Remove(ctx, eventID, slot)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	c.engine.SetAssignments(ctx, post)
	return nil
}

// Pending returns the live markers, oldest first.
func (c *Coordinator) Pending() []Pending {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()
	out := make([]Pending, 0, len(c.pending))
	for _, p := range c.pending {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Sweep drops expired markers and returns how many were dropped.
func (c *Coordinator) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked()
}

func (c *Coordinator) sweepLocked() int {
	now := c.now()
	n := 0
	for id, p := range c.pending {
		if !now.Before(p.ExpiresAt) {
			delete(c.pending, id)
			n++
		}
	}
	if n > 0 {
		metrics.UpdatePendingMarkers(len(c.pending))
	}
	return n
}

func (c *Coordinator) mark(req Request) Pending {
	now := c.now()
	p := Pending{
		ID:         uuid.NewString(),
		EventID:    req.EventID,
		Assignment: req.assignment(),
		CreatedAt:  now,
		ExpiresAt:  now.Add(c.timeout),
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()
	c.pending[p.ID] = p
	metrics.UpdatePendingMarkers(len(c.pending))
	return p
}

func (c *Coordinator) unmark(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
	metrics.UpdatePendingMarkers(len(c.pending))
}
