package cooldown

import "github.com/okian/mitiplan/internal/domain/model"

// Cache is an unbounded memo table dropped as a whole on Invalidate.
type Cache[K comparable, V any] struct {
	entries map[K]V
}

// NewCache creates an empty cache.
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]V)}
}

// Get returns the cached value for k.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	v, ok := c.entries[k]
	return v, ok
}

// Put stores v under k.
func (c *Cache[K, V]) Put(k K, v V) {
	c.entries[k] = v
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	return len(c.entries)
}

// Invalidate drops every entry.
func (c *Cache[K, V]) Invalidate() {
	clear(c.entries)
}

// queryKey holds every input a Result depends on besides the session state.
type queryKey struct {
	abilityID string
	at        float64
	eventID   string
	caster    string
	position  model.TankPosition
}
