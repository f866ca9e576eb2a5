//go:build unit

package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"service-marketplace/internal/infra/cache"
	"service-marketplace/internal/pkg/metrics"
	"service-marketplace/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubStore struct {
	calls int
	views []*queries.AvailabilityView
	err   error
}

func (s *stubStore) ListByProvider(_ context.Context, _ uuid.UUID) ([]*queries.AvailabilityView, error) {
	s.calls++
	return s.views, s.err
}

// unreachableClient points at a port nothing listens on so every command fails fast.
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestAvailabilityKey(t *testing.T) {
	id := uuid.MustParse("3f0a4a43-3f5b-4c1e-9d8e-2c4f4e3a9b10")
	assert.Equal(t, "availability:provider:{3f0a4a43-3f5b-4c1e-9d8e-2c4f4e3a9b10}", cache.AvailabilityKey(id))
	assert.Equal(t, "availability:provider:{3f0a4a43-3f5b-4c1e-9d8e-2c4f4e3a9b10}:gen", cache.GenerationKey(id))
}

func TestAvailabilityCache_Passthrough(t *testing.T) {
	store := &stubStore{views: []*queries.AvailabilityView{{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"}}}
	c := cache.NewAvailabilityCache(store, nil, time.Minute, nil, nil)

	got, err := c.ListByProvider(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, store.views, got)
	assert.Equal(t, 1, store.calls)
	assert.NoError(t, c.Invalidate(context.Background(), uuid.New()))
}

func TestAvailabilityCache_RedisDownFallsBackToStore(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	reg := prometheus.NewRegistry()
	store := &stubStore{}
	c := cache.NewAvailabilityCache(store, unreachableClient(t), time.Minute, zap.New(core), metrics.New(reg))

	got, err := c.ListByProvider(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 1, store.calls)

	assert.Equal(t, 1, logs.FilterMessage("availability cache read failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("availability cache write failed").Len())

	count, err := testutil.GatherAndCount(reg, "marketplace_availability_cache_lookups_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAvailabilityCache_StoreErrorIsReturned(t *testing.T) {
	boom := errors.New("boom")
	c := cache.NewAvailabilityCache(&stubStore{err: boom}, unreachableClient(t), time.Minute, nil, nil)

	_, err := c.ListByProvider(context.Background(), uuid.New())
	assert.ErrorIs(t, err, boom)
}

func TestAvailabilityCache_InvalidateSurfacesRedisErrors(t *testing.T) {
	c := cache.NewAvailabilityCache(&stubStore{}, unreachableClient(t), time.Minute, nil, nil)
	assert.Error(t, c.Invalidate(context.Background(), uuid.New()))
}
