package service

import (
	"sync"

	id "renalmatch/pkg/domain"
)

// sessionLocks serializes mutating operations per session. The engine is
// single-writer per session: no two submissions or match runs against the
// same pair may interleave, while unrelated sessions proceed concurrently.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[id.SessionID]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[id.SessionID]*sessionLock)}
}

// acquire blocks until the session lock is held and returns the release
// function. Lock entries are reference-counted so the map does not grow
// with dead sessions.
func (l *sessionLocks) acquire(sessionID id.SessionID) func() {
	l.mu.Lock()
	entry, ok := l.locks[sessionID]
	if !ok {
		entry = &sessionLock{}
		l.locks[sessionID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, sessionID)
		}
		l.mu.Unlock()
	}
}
