package analytics

import (
	"context"

	"product-tour-builder/internal/worker"
)

// Sender is what the dispatcher forwards events through
type Sender interface {
	Send(ctx context.Context, event Event) error
}

// Dispatcher hands events to the worker pool and returns immediately.
// Delivery is at-most-once: a full queue or a failed send drops the
// event, playback is never blocked on analytics.
type Dispatcher struct {
	pool   *worker.Pool
	sender Sender
}

func NewDispatcher(pool *worker.Pool, sender Sender) *Dispatcher {
	return &Dispatcher{pool: pool, sender: sender}
}

func (d *Dispatcher) Emit(event Event) {
	d.pool.Submit(func(ctx context.Context) error {
		return d.sender.Send(ctx, event)
	})
}
