// Package store provides session store implementations: in-memory for tests
// and single-process deployments, Redis and PostgreSQL for shared state.
package store

import (
	"context"
	"sync"

	id "renalmatch/pkg/domain"
	"renalmatch/pkg/platform/sentinel"

	"renalmatch/internal/match/session"
)

// InMemoryStore keeps sessions in a map. Stored sessions are deep-copied on
// read and write so callers can never mutate shared state in place.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*session.Session
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[id.SessionID]*session.Session),
	}
}

func (s *InMemoryStore) Create(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.ID]; exists {
		return sentinel.ErrConflict
	}
	s.sessions[sess.ID] = copySession(sess)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, sessionID id.SessionID) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[sessionID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return copySession(sess), nil
}

func (s *InMemoryStore) Update(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.sessions[sess.ID] = copySession(sess)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sessionID]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// copySession clones the aggregate including its profile records.
func copySession(sess *session.Session) *session.Session {
	out := *sess
	if sess.Donor != nil {
		donor := *sess.Donor
		donor.HLA = append([]string(nil), sess.Donor.HLA...)
		out.Donor = &donor
	}
	if sess.Patient != nil {
		patient := *sess.Patient
		patient.HLA = append([]string(nil), sess.Patient.HLA...)
		out.Patient = &patient
	}
	if sess.Result != nil {
		result := *sess.Result
		out.Result = &result
	}
	return &out
}
