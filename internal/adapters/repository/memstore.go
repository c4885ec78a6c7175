package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/mitiplan/internal/domain/model"
	"github.com/okian/mitiplan/pkg/metrics"
)

// MemoryStore is an in-memory Store. Writes are serialized and publish a fresh
// copy of the map, so readers never take the lock.
type MemoryStore struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[Snapshot]
	closed   atomic.Bool

	initial model.Assignments
	now     func() time.Time
	newID   func() string
}

// NewMemoryStore constructs a store with configuration options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		initial: model.Assignments{},
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.publish(0, s.initial)
	s.initial = nil
	return s
}

// Snapshot implements Store.Snapshot.
func (s *MemoryStore) Snapshot(_ context.Context) Snapshot {
	return *s.snapshot.Load()
}

// Add implements Store.Add.
func (s *MemoryStore) Add(_ context.Context, eventID string, a model.Assignment) (model.Assignment, Snapshot, error) {
	if eventID == "" {
		return model.Assignment{}, Snapshot{}, ErrInvalidEvent
	}
	if s.closed.Load() {
		return model.Assignment{}, Snapshot{}, ErrClosed
	}
	if a.ID == "" {
		a.ID = s.newID()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = s.now()
	}
	snap := s.write("add", func(as model.Assignments) bool {
		as.Add(eventID, a)
		return true
	})
	return a, snap, nil
}

// Remove implements Store.Remove.
func (s *MemoryStore) Remove(_ context.Context, eventID string, slot model.Slot) (Snapshot, error) {
	return s.remove("remove", func(as model.Assignments) bool { return as.Remove(eventID, slot) },
		fmt.Errorf("%s on %s: %w", slot.AbilityID, eventID, ErrNotFound))
}

// RemoveID implements Store.RemoveID.
func (s *MemoryStore) RemoveID(_ context.Context, eventID, id string) (Snapshot, error) {
	return s.remove("remove_id", func(as model.Assignments) bool { return as.RemoveID(eventID, id) },
		fmt.Errorf("entry %s on %s: %w", id, eventID, ErrNotFound))
}

// Replace implements Store.Replace.
func (s *MemoryStore) Replace(_ context.Context, as model.Assignments) (Snapshot, error) {
	if s.closed.Load() {
		return Snapshot{}, ErrClosed
	}
	next := as.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.RecordStoreMutation("replace")
	return s.publish(s.snapshot.Load().Version+1, next), nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	return s.snapshot.Load().Assignments.Count()
}

// Close rejects further writes. Reads keep working.
func (s *MemoryStore) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *MemoryStore) remove(op string, fn func(model.Assignments) bool, notFound error) (Snapshot, error) {
	if s.closed.Load() {
		return Snapshot{}, ErrClosed
	}
	var found bool
	snap := s.write(op, func(as model.Assignments) bool {
		found = fn(as)
		return found
	})
	if !found {
		return snap, notFound
	}
	return snap, nil
}

// write applies fn to a private copy and publishes it when fn reports a change.
func (s *MemoryStore) write(op string, fn func(model.Assignments) bool) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snapshot.Load()
	next := cur.Assignments.Clone()
	if !fn(next) {
		return *cur
	}
	metrics.RecordStoreMutation(op)
	return s.publish(cur.Version+1, next)
}

// publish stores a new snapshot (assumes lock is held or no readers exist yet).
func (s *MemoryStore) publish(version uint64, as model.Assignments) Snapshot {
	snap := &Snapshot{Version: version, Assignments: as}
	s.snapshot.Store(snap)
	metrics.UpdateStoreAssignments(as.Count())
	return *snap
}
