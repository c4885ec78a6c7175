package repository

import (
	"time"

	"github.com/okian/mitiplan/internal/domain/model"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithClock sets the time source used to stamp UpdatedAt on written entries.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithInitial seeds the store. The map is copied.
func WithInitial(as model.Assignments) Option {
	return func(s *MemoryStore) {
		s.initial = as.Clone()
	}
}

// WithIDGenerator overrides how entry ids are generated.
func WithIDGenerator(gen func() string) Option {
	return func(s *MemoryStore) {
		if gen != nil {
			s.newID = gen
		}
	}
}
