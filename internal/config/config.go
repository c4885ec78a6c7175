// Package config defines service configuration structures and loading hooks.
package config

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/okian/mitiplan/internal/domain/reconcile"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// EditorID identifies this process in broadcast snapshots. Snapshots
	// carrying it as origin are discarded.
	EditorID string `koanf:"editor_id"`

	// ReconcileStrategy is latest, oldest or merge.
	ReconcileStrategy string `koanf:"reconcile_strategy"`

	// PendingTimeoutMS bounds how long an unconfirmed assignment stays visible.
	PendingTimeoutMS int `koanf:"pending_timeout_ms"`

	// SnapshotQueueSize bounds the inbound snapshot queue.
	SnapshotQueueSize int `koanf:"snapshot_queue_size"`

	// SeenSnapshots is how many snapshot ids are remembered for duplicate discard.
	SeenSnapshots int `koanf:"seen_snapshots"`

	// CatalogPath and PlanPath point at the YAML ability catalogue and plan.
	CatalogPath string `koanf:"catalog_path"`
	PlanPath    string `koanf:"plan_path"`

	// Level overrides the plan's encounter level when positive.
	Level int `koanf:"level"`
}

// New creates a Config with defaults. A fresh editor id is generated.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		EditorID:          uuid.NewString(),
		ReconcileStrategy: string(reconcile.StrategyLatest),
		PendingTimeoutMS:  5000,
		SnapshotQueueSize: 64,
		SeenSnapshots:     1024,
		CatalogPath:       "catalog.yaml",
	}
}

// Validate checks the values Load cannot coerce.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.EditorID == "":
		return fmt.Errorf("%w: editor_id must not be empty", ErrInvalidConfig)
	case c.PendingTimeoutMS <= 0:
		return fmt.Errorf("%w: pending_timeout_ms must be positive", ErrInvalidConfig)
	case c.SnapshotQueueSize <= 0:
		return fmt.Errorf("%w: snapshot_queue_size must be positive", ErrInvalidConfig)
	case c.Level < 0:
		return fmt.Errorf("%w: level must not be negative", ErrInvalidConfig)
	}
	if _, err := reconcile.ParseStrategy(c.ReconcileStrategy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
