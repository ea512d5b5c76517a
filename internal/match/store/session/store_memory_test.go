package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "renalmatch/pkg/domain"
	"renalmatch/pkg/platform/sentinel"

	"renalmatch/internal/match/models"
	"renalmatch/internal/match/session"
)

func newStoredSession(t *testing.T, s *InMemoryStore) *session.Session {
	t.Helper()
	sess := session.New(id.NewSessionID(), id.HospitalID{}, time.Now())
	require.NoError(t, s.Create(context.Background(), sess))
	return sess
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Get for missing session returns ErrNotFound", func(t *testing.T) {
		s := NewInMemory()
		_, err := s.Get(ctx, id.NewSessionID())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("Create then Get round-trips", func(t *testing.T) {
		s := NewInMemory()
		sess := newStoredSession(t, s)

		got, err := s.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, sess.ID, got.ID)
		assert.Equal(t, session.StateEmpty, got.State)
	})

	t.Run("Create twice returns ErrConflict", func(t *testing.T) {
		s := NewInMemory()
		sess := newStoredSession(t, s)
		assert.ErrorIs(t, s.Create(ctx, sess), sentinel.ErrConflict)
	})

	t.Run("Update missing session returns ErrNotFound", func(t *testing.T) {
		s := NewInMemory()
		sess := session.New(id.NewSessionID(), id.HospitalID{}, time.Now())
		assert.ErrorIs(t, s.Update(ctx, sess), sentinel.ErrNotFound)
	})

	t.Run("Delete removes the session", func(t *testing.T) {
		s := NewInMemory()
		sess := newStoredSession(t, s)
		require.NoError(t, s.Delete(ctx, sess.ID))
		_, err := s.Get(ctx, sess.ID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("Get returns a defensive copy", func(t *testing.T) {
		s := NewInMemory()
		sess := newStoredSession(t, s)

		donor, err := models.NewDonor(45, []string{"A1"}, "O", 110, "560001")
		require.NoError(t, err)
		sess.ApplyDonor(donor, time.Now())
		require.NoError(t, s.Update(ctx, sess))

		got, err := s.Get(ctx, sess.ID)
		require.NoError(t, err)
		got.Donor.HLA[0] = "MUTATED"
		got.State = session.StateEvaluated

		again, err := s.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, "A1", again.Donor.HLA[0], "store must not observe caller mutations")
		assert.Equal(t, session.StateDonorOnly, again.State)
	})
}

func TestInMemoryStore_ConcurrentCreates(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)

	ids := make([]id.SessionID, goroutines)
	for i := range ids {
		ids[i] = id.NewSessionID()
	}

	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			sess := session.New(ids[i], id.HospitalID{}, time.Now())
			assert.NoError(t, s.Create(ctx, sess))
		}(i)
	}
	wg.Wait()

	for _, sid := range ids {
		_, err := s.Get(ctx, sid)
		assert.NoError(t, err)
	}
}
