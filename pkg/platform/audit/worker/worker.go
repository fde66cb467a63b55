package worker

import (
	"context"

	"pawport/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them. It
// decouples emission from storage latency without wiring a queue for
// single-node deployments.
type Worker struct {
	store audit.Store
	inbox <-chan audit.Event
}

func NewWorker(store audit.Store, inbox <-chan audit.Event) *Worker {
	return &Worker{store: store, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}

// ChannelPublisher emits events into a worker inbox. Emission drops the
// event when the inbox is full rather than blocking the request path.
type ChannelPublisher struct {
	inbox chan<- audit.Event
}

func NewChannelPublisher(inbox chan<- audit.Event) *ChannelPublisher {
	return &ChannelPublisher{inbox: inbox}
}

func (p *ChannelPublisher) Emit(_ context.Context, event audit.Event) error {
	select {
	case p.inbox <- event:
		return nil
	default:
		return audit.ErrInboxFull
	}
}

// DirectPublisher appends events to a store synchronously. Tests and
// single-process setups use it to skip the worker hop.
type DirectPublisher struct {
	store audit.Store
}

func NewDirectPublisher(store audit.Store) *DirectPublisher {
	return &DirectPublisher{store: store}
}

func (p *DirectPublisher) Emit(ctx context.Context, event audit.Event) error {
	return p.store.Append(ctx, event)
}
