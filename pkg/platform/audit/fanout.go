package audit

import (
	"context"
	"io"
)

// storePublisher adapts a durable Store to the Publisher interface so an
// outbox can sit behind the same fan-out as the ledger publisher.
type storePublisher struct {
	store Store
}

func (p storePublisher) Emit(ctx context.Context, event Event) error {
	return p.store.Append(ctx, event)
}

func (p storePublisher) Close() error {
	if closer, ok := p.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// PublisherFromStore wraps a Store as a Publisher.
func PublisherFromStore(store Store) Publisher {
	return storePublisher{store: store}
}

// Fanout emits every event to all sinks. The first error is returned after
// all sinks have been attempted; emission is best-effort end to end, so a
// failing sink never blocks the others.
type Fanout struct {
	sinks []Publisher
}

// NewFanout builds a fan-out over the non-nil sinks. Returns nil when no
// sink is configured, which callers treat as publishing disabled.
func NewFanout(sinks ...Publisher) *Fanout {
	kept := make([]Publisher, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			kept = append(kept, sink)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return &Fanout{sinks: kept}
}

func (f *Fanout) Emit(ctx context.Context, event Event) error {
	var firstErr error
	for _, sink := range f.sinks {
		if err := sink.Emit(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes every sink, returning the first error.
func (f *Fanout) Close() error {
	var firstErr error
	for _, sink := range f.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
