//go:build unit

package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"service-marketplace/internal/domain/booking"
	"service-marketplace/internal/infra/queue"
	"service-marketplace/internal/infra/repository"
	"service-marketplace/internal/pkg/clock"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeNotificationStore struct {
	seen map[string]bool
	rows []repository.Notification
	err  error
}

func (s *fakeNotificationStore) Insert(_ context.Context, n repository.Notification) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	key := n.BookingID.String() + n.RecipientID.String() + n.Type + n.OccurredAt.String()
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	s.rows = append(s.rows, n)
	return true, nil
}

type fakePurger struct {
	before time.Time
	err    error
}

func (p *fakePurger) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	p.before = before
	return 3, p.err
}

func sampleEvent() booking.Event {
	client, provider := uuid.New(), uuid.New()
	return booking.Event{
		Type:        booking.EventConfirmed,
		BookingID:   uuid.New(),
		ClientID:    client,
		ProviderID:  provider,
		ActorID:     provider,
		Status:      booking.StatusConfirmed,
		ScheduledAt: time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC),
		Recipients:  []uuid.UUID{client},
		OccurredAt:  time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC),
	}
}

func TestNewBookingNotifyTask(t *testing.T) {
	event := sampleEvent()
	task, err := queue.NewBookingNotifyTask(event)
	require.NoError(t, err)
	assert.Equal(t, queue.TypeBookingNotify, task.Type())

	var decoded booking.Event
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, event.BookingID, decoded.BookingID)
	assert.Equal(t, event.Recipients, decoded.Recipients)
}

func TestNotificationHandler(t *testing.T) {
	t.Run("one row per recipient and retries are absorbed", func(t *testing.T) {
		event := sampleEvent()
		event.Recipients = append(event.Recipients, event.ProviderID)
		task, err := queue.NewBookingNotifyTask(event)
		require.NoError(t, err)

		store := &fakeNotificationStore{}
		h := queue.NewNotificationHandler(store, zap.NewNop())

		require.NoError(t, h.ProcessTask(context.Background(), task))
		require.NoError(t, h.ProcessTask(context.Background(), task))

		require.Len(t, store.rows, 2)
		for _, row := range store.rows {
			assert.Equal(t, event.BookingID, row.BookingID)
			assert.Equal(t, "booking_confirmed", row.Type)
			assert.True(t, row.OccurredAt.Equal(event.OccurredAt))
		}
		assert.ElementsMatch(t, event.Recipients, []uuid.UUID{store.rows[0].RecipientID, store.rows[1].RecipientID})
	})

	t.Run("malformed payload is not retried", func(t *testing.T) {
		h := queue.NewNotificationHandler(&fakeNotificationStore{}, zap.NewNop())
		err := h.ProcessTask(context.Background(), asynq.NewTask(queue.TypeBookingNotify, []byte("{")))
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("store failure is retried", func(t *testing.T) {
		boom := errors.New("db down")
		task, err := queue.NewBookingNotifyTask(sampleEvent())
		require.NoError(t, err)

		err = queue.NewNotificationHandler(&fakeNotificationStore{err: boom}, zap.NewNop()).ProcessTask(context.Background(), task)
		assert.ErrorIs(t, err, boom)
		assert.False(t, errors.Is(err, asynq.SkipRetry))
	})
}

func TestPurgeHandler(t *testing.T) {
	now := time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)
	purger := &fakePurger{}
	core, logs := observer.New(zap.InfoLevel)

	h := queue.NewPurgeHandler(purger, clock.NewMockClock(now), zap.New(core))
	require.NoError(t, h.ProcessTask(context.Background(), queue.NewPurgeIdempotencyTask()))

	assert.Equal(t, now, purger.before)
	entries := logs.FilterMessage("purged expired idempotency keys").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(3), entries[0].ContextMap()["deleted"])
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := queue.NewLogPublisher(zap.New(core))

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	entries := logs.FilterMessage("booking event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "booking_confirmed", entries[0].ContextMap()["type"])
}

func TestAsynqPublisher_RedisDown(t *testing.T) {
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })

	p := queue.NewAsynqPublisher(client, 1, 200*time.Millisecond)
	assert.Error(t, p.Publish(context.Background(), sampleEvent()))
}
