// Package service provides the planning session that implements the
// dependencies required by the HTTP API and the snapshot feed.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/mitiplan/internal/adapters/mq/queue"
	"github.com/okian/mitiplan/internal/adapters/mq/worker"
	"github.com/okian/mitiplan/internal/adapters/repository"
	"github.com/okian/mitiplan/internal/domain/cooldown"
	"github.com/okian/mitiplan/internal/domain/dedupe"
	"github.com/okian/mitiplan/internal/domain/model"
	"github.com/okian/mitiplan/internal/domain/optimistic"
	"github.com/okian/mitiplan/internal/domain/reconcile"
	"github.com/okian/mitiplan/pkg/logger"
	"github.com/okian/mitiplan/pkg/metrics"
)

// storeAdapter adapts repository.Store to optimistic.Store.
type storeAdapter struct {
	store repository.Store
}

func (a *storeAdapter) Add(ctx context.Context, eventID string, as model.Assignment) (model.Assignment, model.Assignments, error) {
	written, snap, err := a.store.Add(ctx, eventID, as)
	return written, snap.Assignments, err
}

func (a *storeAdapter) Remove(ctx context.Context, eventID string, slot model.Slot) (model.Assignments, error) {
	snap, err := a.store.Remove(ctx, eventID, slot)
	return snap.Assignments, err
}

func (a *storeAdapter) RemoveID(ctx context.Context, eventID, id string) (model.Assignments, error) {
	snap, err := a.store.RemoveID(ctx, eventID, id)
	return snap.Assignments, err
}

// Service owns one planning session: the engine handle, the authoritative
// store, the optimistic coordinator and the remote snapshot pipeline.
//
// The engine is single-threaded; every call that touches it holds mu.
// A stopped Service cannot be restarted.
type Service struct {
	mu sync.Mutex

	// Core components
	manager     *cooldown.Manager
	store       *repository.MemoryStore
	coordinator *optimistic.Coordinator
	reconciler  *reconcile.Reconciler
	seen        dedupe.Deduper
	queue       *eventqueue.InMemoryQueue
	worker      *worker.Worker

	// Configuration
	editorID       string
	strategy       reconcile.Strategy
	pendingTimeout time.Duration
	queueSize      int
	seenSnapshots  int
	initial        cooldown.State
	now            func() time.Time

	// Lifecycle, guarded by life so Stop never waits on mu.
	life      sync.Mutex
	started   bool
	stopped   bool
	stopCh    chan struct{}
	sweepDone chan struct{}

	logger logger.Logger
}

// New constructs a session over catalog.
func New(catalog *model.Catalog, opts ...Option) *Service {
	s := &Service{
		editorID:       uuid.NewString(),
		strategy:       reconcile.StrategyLatest,
		pendingTimeout: optimistic.DefaultTimeout,
		queueSize:      64,
		seenSnapshots:  1024,
		now:            time.Now,
		stopCh:         make(chan struct{}),
		sweepDone:      make(chan struct{}),
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	ctx := context.Background()
	s.manager = cooldown.NewManager(catalog,
		cooldown.WithLogger(s.logger.Named("cooldown")),
	)
	s.store = repository.NewMemoryStore(
		repository.WithInitial(s.initial.Assignments),
		repository.WithClock(s.now),
	)
	st := s.initial
	st.Assignments = s.store.Snapshot(ctx).Assignments
	s.manager.SetState(ctx, st)

	s.coordinator = optimistic.NewCoordinator(s.manager, &storeAdapter{store: s.store},
		optimistic.WithTimeout(s.pendingTimeout),
		optimistic.WithClock(s.now),
		optimistic.WithLogger(s.logger.Named("optimistic")),
	)
	s.seen = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.seenSnapshots))
	s.reconciler = reconcile.NewReconciler(s.editorID,
		reconcile.WithStrategy(s.strategy),
		reconcile.WithDeduper(s.seen),
		reconcile.WithLogger(s.logger.Named("reconcile")),
	)
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.worker = worker.New(s.queue, s, worker.WithLogger(s.logger))
	metrics.UpdateSnapshotQueueCapacity(s.queueSize)

	return s
}

// Start launches the snapshot worker and the pending marker sweeper.
func (s *Service) Start(ctx context.Context) error {
	s.life.Lock()
	defer s.life.Unlock()

	if s.started || s.stopped {
		return nil
	}

	go s.worker.Run(ctx)
	go s.sweep(ctx)

	s.started = true
	s.logger.Info(ctx, "planning session started",
		logger.String("editor", s.editorID),
		logger.String("strategy", string(s.strategy)),
		logger.Int("queueSize", s.queueSize),
		logger.Duration("pendingTimeout", s.pendingTimeout),
	)
	return nil
}

// Stop closes the snapshot queue, waits for the worker and rejects further
// writes to the store.
func (s *Service) Stop(ctx context.Context) error {
	s.life.Lock()
	defer s.life.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true
	s.logger.Info(ctx, "stopping planning session...")

	_ = s.queue.Close()
	close(s.stopCh)

	var err error
	if s.started {
		err = s.worker.Shutdown(ctx)
		select {
		case <-s.sweepDone:
		case <-ctx.Done():
		}
	}
	_ = s.store.Close()

	s.started = false
	s.logger.Info(ctx, "planning session stopped")
	return err
}

func (s *Service) sweep(ctx context.Context) {
	defer close(s.sweepDone)

	ticker := time.NewTicker(max(s.pendingTimeout/2, time.Millisecond))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			if n := s.coordinator.Sweep(); n > 0 {
				s.logger.Debug(ctx, "expired pending markers", logger.Int("count", n))
			}
		}
	}
}

// EditorID returns the identity of this session.
func (s *Service) EditorID() string { return s.editorID }

// Catalog returns the ability catalogue.
func (s *Service) Catalog() *model.Catalog { return s.manager.Catalog() }

// CheckAvailability implements the single-ability query.
func (s *Service) CheckAvailability(_ context.Context, abilityID string, at float64, eventID string, q cooldown.Query) cooldown.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.CheckAvailability(abilityID, at, eventID, q)
}

// CheckMultiple implements the batch query.
func (s *Service) CheckMultiple(_ context.Context, abilityIDs []string, at float64, eventID string, q cooldown.Query) map[string]cooldown.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.CheckMultiple(abilityIDs, at, eventID, q)
}

// ListAvailableAt implements the assignable-abilities query.
func (s *Service) ListAvailableAt(_ context.Context, at float64, eventID string, q cooldown.Query) []cooldown.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.ListAvailableAt(at, eventID, q)
}

// SimulateUsage implements the what-if preview.
func (s *Service) SimulateUsage(_ context.Context, abilityID string, at float64, eventID string) cooldown.Preview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.SimulateUsage(abilityID, at, eventID)
}

// AddMitigation runs the optimistic add flow. A committed write moves the
// local state stamp forward.
func (s *Service) AddMitigation(ctx context.Context, req optimistic.Request) (optimistic.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := s.coordinator.AddMitigation(ctx, req)
	if err == nil {
		s.reconciler.Touch(out.Assignment.UpdatedAt)
	}
	return out, err
}

// RemoveMitigation drops the first entry of eventID matching slot.
func (s *Service) RemoveMitigation(ctx context.Context, eventID string, slot model.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.coordinator.RemoveMitigation(ctx, eventID, slot); err != nil {
		return err
	}
	s.reconciler.Touch(s.now())
	return nil
}

// Pending returns the unconfirmed assignments, oldest first.
func (s *Service) Pending(_ context.Context) []optimistic.Pending {
	return s.coordinator.Pending()
}

// Assignments returns the authoritative assignment map. It must not be modified.
func (s *Service) Assignments(ctx context.Context) model.Assignments {
	return s.store.Snapshot(ctx).Assignments
}

// UpdateSession re-points the engine at new events, roster or level.
func (s *Service) UpdateSession(ctx context.Context, u cooldown.Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manager.Update(ctx, u)
	s.logger.Debug(ctx, "session updated",
		logger.Bool("events", u.Events != nil),
		logger.Bool("roster", u.Roster != nil),
		logger.Bool("level", u.Level != nil),
	)
}

// Submit enqueues a remote snapshot for the worker.
func (s *Service) Submit(ctx context.Context, snap reconcile.Snapshot) error {
	return s.queue.Enqueue(ctx, snap)
}

// Apply reconciles one remote snapshot with the authoritative state and
// refreshes the engine when the state changed. It implements worker.Applier.
func (s *Service) Apply(ctx context.Context, snap reconcile.Snapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.UpdateSnapshotQueueSize(s.queue.Len(ctx))

	local := s.store.Snapshot(ctx).Assignments
	d := s.reconciler.Reconcile(ctx, local, snap)
	if !d.Changed() {
		return d.Outcome, nil
	}
	next, err := s.store.Replace(ctx, d.Assignments)
	if err != nil {
		return "", err
	}
	s.manager.SetAssignments(ctx, next.Assignments)
	s.logger.Debug(ctx, "remote snapshot applied",
		logger.String("id", snap.ID),
		logger.String("origin", snap.Origin),
		logger.String("outcome", d.Outcome),
		logger.Int("assignments", next.Assignments.Count()),
	)
	return d.Outcome, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.life.Lock()
	started := s.started
	s.life.Unlock()

	s.mu.Lock()
	st := s.manager.State()
	cached := s.manager.CachedResults()
	s.mu.Unlock()

	snap := s.store.Snapshot(ctx)
	pending := s.coordinator.Pending()
	queueLen := s.queue.Len(ctx)

	metrics.UpdateSnapshotQueueSize(queueLen)
	metrics.UpdatePendingMarkers(len(pending))

	return map[string]any{
		"started":       started,
		"editorId":      s.editorID,
		"strategy":      string(s.strategy),
		"level":         st.Level,
		"events":        len(st.Events),
		"jobs":          st.Roster.IDs(),
		"assignments":   snap.Assignments.Count(),
		"storeVersion":  snap.Version,
		"queueLength":   queueLen,
		"queueCapacity": s.queueSize,
		"pending":       len(pending),
		"seenSnapshots": s.seen.Size(),
		"cachedResults": cached,
	}
}
