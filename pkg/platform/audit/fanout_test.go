package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "renalmatch/pkg/domain"
	"renalmatch/pkg/platform/audit"
	"renalmatch/pkg/platform/audit/store/memory"
)

type failingPublisher struct{}

func (failingPublisher) Emit(context.Context, audit.Event) error { return errors.New("sink down") }
func (failingPublisher) Close() error                            { return nil }

func TestFanout(t *testing.T) {
	event := audit.Event{
		Category:  audit.CategoryOperations,
		Timestamp: time.Now(),
		SessionID: id.NewSessionID(),
		Action:    string(audit.EventDonorRecorded),
	}

	t.Run("no sinks means publishing disabled", func(t *testing.T) {
		assert.Nil(t, audit.NewFanout())
		assert.Nil(t, audit.NewFanout(nil, nil))
	})

	t.Run("emits to every sink", func(t *testing.T) {
		first := memory.New()
		second := memory.New()

		fanout := audit.NewFanout(first, second)
		require.NotNil(t, fanout)
		require.NoError(t, fanout.Emit(context.Background(), event))

		assert.Len(t, first.Events(), 1)
		assert.Len(t, second.Events(), 1)
	})

	t.Run("failing sink does not block the others", func(t *testing.T) {
		sink := memory.New()

		fanout := audit.NewFanout(failingPublisher{}, sink)
		require.NotNil(t, fanout)

		err := fanout.Emit(context.Background(), event)
		assert.Error(t, err)
		assert.Len(t, sink.Events(), 1)
	})

	t.Run("store adapter appends on emit", func(t *testing.T) {
		sink := memory.New()
		pub := audit.PublisherFromStore(sink)

		require.NoError(t, pub.Emit(context.Background(), event))
		assert.Len(t, sink.Events(), 1)
	})
}
