package optimistic

import (
	"time"

	"github.com/okian/mitiplan/pkg/logger"
)

// DefaultTimeout bounds how long a pending marker stays visible.
const DefaultTimeout = 5 * time.Second

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithTimeout sets the pending marker lifetime.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClock sets the time source for marker expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the coordinator logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}
