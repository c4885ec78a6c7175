package service

import (
	"time"

	"github.com/okian/mitiplan/internal/domain/cooldown"
	"github.com/okian/mitiplan/internal/domain/reconcile"
	"github.com/okian/mitiplan/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEditorID sets the identity stamped on snapshots this process broadcasts.
func WithEditorID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.editorID = id
		}
	}
}

// WithStrategy sets how remote snapshots are reconciled.
func WithStrategy(strategy reconcile.Strategy) Option {
	return func(s *Service) {
		if strategy != "" {
			s.strategy = strategy
		}
	}
}

// WithPendingTimeout sets how long an unconfirmed assignment stays visible.
func WithPendingTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pendingTimeout = d
		}
	}
}

// WithQueueSize sets the capacity of the inbound snapshot queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithSeenSnapshots sets how many snapshot ids are remembered.
func WithSeenSnapshots(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.seenSnapshots = n
		}
	}
}

// WithState seeds the session with events, roster, level and assignments.
func WithState(st cooldown.State) Option {
	return func(s *Service) {
		s.initial = st
	}
}

// WithClock sets the time source for local write stamps and pending expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
