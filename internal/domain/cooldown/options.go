package cooldown

import (
	"github.com/okian/mitiplan/internal/domain/model"
	"github.com/okian/mitiplan/pkg/logger"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithLogger sets the logger used for data-integrity warnings.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithLevel sets the initial encounter level.
func WithLevel(level int) Option {
	return func(m *Manager) {
		if level > 0 {
			m.level = level
		}
	}
}

// Query narrows an availability question.
type Query struct {
	// CasterJobID restricts role-shared abilities to one provider's lane.
	CasterJobID string
	// TankPosition scopes the already-assigned rule for tank-bound abilities.
	TankPosition model.TankPosition
}
