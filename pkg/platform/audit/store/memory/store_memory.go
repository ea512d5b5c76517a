// Package memory provides an in-memory audit store for tests and
// single-process deployments.
package memory

import (
	"context"
	"sync"

	"renalmatch/pkg/platform/audit"
)

// Store accumulates events in order of arrival.
type Store struct {
	mu     sync.RWMutex
	events []audit.Event
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything appended so far.
func (s *Store) Events() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Emit lets the memory store double as a Publisher in tests.
func (s *Store) Emit(ctx context.Context, event audit.Event) error {
	return s.Append(ctx, event)
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}
