package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"service-marketplace/internal/pkg/metrics"
	"service-marketplace/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const availabilityKeyPrefix = "availability:provider:"

var errStaleRead = errors.New("availability changed while loading")

// AvailabilityKey holds the cached slot list. The braces keep it in the same cluster
// slot as GenerationKey so both can be used in one transaction.
func AvailabilityKey(providerID uuid.UUID) string {
	return availabilityKeyPrefix + "{" + providerID.String() + "}"
}

// GenerationKey is bumped on every invalidation. A list loaded under an older
// generation is never written back.
func GenerationKey(providerID uuid.UUID) string {
	return AvailabilityKey(providerID) + ":gen"
}

// AvailabilityCache is a read-through cache in front of the availability read store.
// Redis failures degrade to the underlying store; a nil client disables caching.
type AvailabilityCache struct {
	next    queries.AvailabilityReadStore
	client  redis.UniversalClient
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewAvailabilityCache(next queries.AvailabilityReadStore, client redis.UniversalClient, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *AvailabilityCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityCache{next: next, client: client, ttl: ttl, logger: logger, metrics: m}
}

func (c *AvailabilityCache) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*queries.AvailabilityView, error) {
	if c.client == nil {
		return c.next.ListByProvider(ctx, providerID)
	}

	key := AvailabilityKey(providerID)
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var views []*queries.AvailabilityView
		if jerr := json.Unmarshal(raw, &views); jerr == nil {
			c.metrics.CacheLookup("hit")
			return views, nil
		}
		c.logger.Warn("discarding malformed availability cache entry", zap.String("key", key))
		c.metrics.CacheLookup("error")
	case errors.Is(err, redis.Nil):
		c.metrics.CacheLookup("miss")
	default:
		c.logger.Warn("availability cache read failed", zap.String("key", key), zap.Error(err))
		c.metrics.CacheLookup("error")
	}

	gen, genErr := c.generation(ctx, c.client, providerID)

	views, err := c.next.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []*queries.AvailabilityView{}
	}

	if genErr == nil {
		genErr = c.store(ctx, providerID, gen, views)
	}
	switch {
	case genErr == nil:
	case errors.Is(genErr, errStaleRead), errors.Is(genErr, redis.TxFailedErr):
		c.logger.Debug("skipped caching a stale availability list", zap.String("key", key))
	default:
		c.logger.Warn("availability cache write failed", zap.String("key", key), zap.Error(genErr))
	}
	return views, nil
}

// store writes views only if no invalidation happened since gen was read.
func (c *AvailabilityCache) store(ctx context.Context, providerID uuid.UUID, gen string, views []*queries.AvailabilityView) error {
	payload, err := json.Marshal(views)
	if err != nil {
		return err
	}
	genKey := GenerationKey(providerID)
	return c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.generation(ctx, tx, providerID)
		if err != nil {
			return err
		}
		if current != gen {
			return errStaleRead
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, AvailabilityKey(providerID), payload, c.ttl)
			return nil
		})
		return err
	}, genKey)
}

// getter is satisfied by both the client and a WATCH transaction.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *AvailabilityCache) generation(ctx context.Context, cmd getter, providerID uuid.UUID) (string, error) {
	gen, err := cmd.Get(ctx, GenerationKey(providerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return gen, err
}

// Invalidate drops the cached slots of a provider after a write and bumps the
// generation so that reads already in flight do not repopulate the old list.
func (c *AvailabilityCache) Invalidate(ctx context.Context, providerID uuid.UUID) error {
	if c.client == nil {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenerationKey(providerID))
		pipe.Del(ctx, AvailabilityKey(providerID))
		return nil
	})
	return err
}
