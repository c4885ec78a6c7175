// Package worker applies queued remote snapshots one at a time.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/mitiplan/internal/adapters/mq/queue"
	"github.com/okian/mitiplan/pkg/logger"
	"github.com/okian/mitiplan/pkg/metrics"
)

// Applier reconciles and applies one snapshot and reports the outcome label.
type Applier interface {
	Apply(ctx context.Context, s queue.Snapshot) (string, error)
}

// Queue defines how the worker receives snapshots.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Snapshot
}

// Worker drains the queue serially.
type Worker struct {
	queue   Queue
	applier Applier
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// New creates a worker with configuration options.
func New(q Queue, applier Applier, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		applier:  applier,
		name:     "snapshot-worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run processes snapshots until ctx is canceled, Shutdown is called or the
// queue is closed and drained.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	ch := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case s, ok := <-ch:
			if !ok {
				return
			}
			if err := w.process(ctx, s); err != nil {
				w.logger.Error(ctx, "error applying snapshot", logger.Error(err))
			}
		}
	}
}

// Done is closed once Run has returned.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Shutdown stops the worker and waits for Run to return.
func (w *Worker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *Worker) process(ctx context.Context, s queue.Snapshot) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	start := time.Now()
	outcome, err := w.applier.Apply(ctx, s)
	metrics.RecordSnapshotApplyLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordSnapshot("error")
		metrics.RecordErrorByComponent("worker", "apply")
		return fmt.Errorf("snapshot %s from %s: %w", s.ID, s.Origin, err)
	}
	metrics.RecordSnapshot(outcome)
	w.logger.Debug(ctx, "snapshot processed",
		logger.String("id", s.ID),
		logger.String("origin", s.Origin),
		logger.String("outcome", outcome),
	)
	return nil
}
