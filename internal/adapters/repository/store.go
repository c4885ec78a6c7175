// Package repository holds the authoritative assignment store.
package repository

import (
	"context"

	"github.com/okian/mitiplan/internal/domain/model"
)

// Snapshot is an immutable view of the store. Callers must not modify Assignments.
type Snapshot struct {
	Version     uint64
	Assignments model.Assignments
}

// Store provides read/write access to the planned assignments.
// Every write returns the snapshot it produced.
type Store interface {
	// Snapshot returns the current state.
	Snapshot(ctx context.Context) Snapshot

	// Add appends a to eventID. A missing ID is generated; the written entry is returned.
	Add(ctx context.Context, eventID string, a model.Assignment) (model.Assignment, Snapshot, error)

	// Remove drops the first entry of eventID matching slot.
	// Returns ErrNotFound when nothing matches.
	Remove(ctx context.Context, eventID string, slot model.Slot) (Snapshot, error)

	// RemoveID drops the entry with the given id.
	// Returns ErrNotFound when nothing matches.
	RemoveID(ctx context.Context, eventID, id string) (Snapshot, error)

	// Replace swaps the whole assignment map.
	Replace(ctx context.Context, as model.Assignments) (Snapshot, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) int
}
