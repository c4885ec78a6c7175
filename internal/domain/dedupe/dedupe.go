// Package dedupe remembers recently applied snapshot ids so a redelivered
// snapshot is applied at most once.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen snapshot ids.
type Deduper interface {
	// SeenAndRecord reports whether id was already seen and records it if not.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a snapshot that failed to apply can be retried.
	Unrecord(ctx context.Context, id string)

	Size() int
}

// ring keeps at most maxSize ids; the oldest id is forgotten first.
// With maxSize <= 0 nothing is ever forgotten.
type ring struct {
	mu      sync.Mutex
	seen    map[string]int // id -> slot in order, -1 when unbounded
	order   []string
	next    int
	maxSize int
}

// NewInMemoryDeduper creates a deduper bounded by WithMaxSize (default 1024).
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &ring{maxSize: 1024}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.order = make([]string, 0, d.maxSize)
	}
	return d
}

func (d *ring) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.maxSize <= 0 {
		d.seen[id] = -1
		return false
	}
	if len(d.order) < d.maxSize {
		d.seen[id] = len(d.order)
		d.order = append(d.order, id)
		return false
	}
	// full: overwrite the oldest slot, skipping slots freed by Unrecord first
	for i := 0; i < d.maxSize; i++ {
		slot := (d.next + i) % d.maxSize
		if d.order[slot] == "" {
			d.place(slot, id)
			return false
		}
	}
	delete(d.seen, d.order[d.next])
	d.place(d.next, id)
	return false
}

func (d *ring) place(slot int, id string) {
	d.order[slot] = id
	d.seen[id] = slot
	d.next = (slot + 1) % d.maxSize
}

func (d *ring) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	slot, ok := d.seen[id]
	if !ok {
		return
	}
	delete(d.seen, id)
	if slot >= 0 {
		d.order[slot] = ""
	}
}

func (d *ring) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
