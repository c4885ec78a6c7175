package reconcile

import (
	"github.com/okian/mitiplan/internal/domain/dedupe"
	"github.com/okian/mitiplan/pkg/logger"
)

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithStrategy sets the conflict strategy.
func WithStrategy(s Strategy) Option {
	return func(r *Reconciler) {
		r.strategy = s
	}
}

// WithDeduper sets the seen-snapshot set.
func WithDeduper(d dedupe.Deduper) Option {
	return func(r *Reconciler) {
		if d != nil {
			r.seen = d
		}
	}
}

// WithLogger sets the reconciler logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}
