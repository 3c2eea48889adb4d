// Package cache provides an explicit read-through cache combinator over
// Redis. Call sites compose a key builder with a delegate fetch; the cache is
// a pure accelerator and never a source of truth: every Redis failure falls
// through to the delegate.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"notification-engine/internal/common/logger"
	"notification-engine/internal/common/metrics"
)

// Store wraps a Redis connection with a default TTL.
type Store struct {
	client redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewStore(client redis.Cmdable, ttl time.Duration, log logger.Logger) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

// BuildWorkflowKey keys the workflow-by-trigger-identifier lookup.
func BuildWorkflowKey(environmentID, triggerIdentifier string) string {
	return fmt.Sprintf("workflow:trigger:%s:%s", environmentID, triggerIdentifier)
}

// BuildTenantKey keys the tenant-by-identifier lookup.
func BuildTenantKey(environmentID, identifier string) string {
	return fmt.Sprintf("tenant:%s:%s", environmentID, identifier)
}

// Fetch runs the read-through protocol for one key: return the cached value
// when present and decodable, otherwise call the delegate and store its
// result best-effort. Concurrent misses may fetch twice; that is accepted,
// no single-flight de-duplication is attempted. A nil delegate result is not
// cached so negative lookups keep hitting the origin.
func Fetch[T any](ctx context.Context, s *Store, entity, key string, fetch func(context.Context) (*T, error)) (*T, error) {
	if s != nil && s.client != nil {
		raw, err := s.client.Get(ctx, key).Result()
		switch {
		case err == nil:
			var cached T
			if decodeErr := json.Unmarshal([]byte(raw), &cached); decodeErr == nil {
				metrics.CacheLookups.WithLabelValues(entity, "hit").Inc()
				return &cached, nil
			}
			// Undecodable entry counts as a miss and gets overwritten below.
			metrics.CacheLookups.WithLabelValues(entity, "decode_error").Inc()
		case err == redis.Nil:
			metrics.CacheLookups.WithLabelValues(entity, "miss").Inc()
		default:
			metrics.CacheLookups.WithLabelValues(entity, "error").Inc()
			s.logger.Warn("cache read failed, falling through to origin", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}

	value, err := fetch(ctx)
	if err != nil || value == nil {
		return value, err
	}

	if s != nil && s.client != nil {
		if encoded, encodeErr := json.Marshal(value); encodeErr == nil {
			if setErr := s.client.Set(ctx, key, encoded, s.ttl).Err(); setErr != nil {
				s.logger.Warn("cache write failed", map[string]interface{}{
					"key":   key,
					"error": setErr.Error(),
				})
			}
		}
	}

	return value, nil
}
