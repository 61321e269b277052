// Package idempotency caches HTTP responses by Idempotency-Key so network
// retries replay the original response without re-entering the ledger. The
// ledger itself already deduplicates by operation id; this cache only spares
// a replayed request the trip through the lock.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound     = errors.New("idempotency key not found")
	ErrHashMismatch = errors.New("idempotency key body mismatch")
)

const keyPrefix = "idempotency"

// Record is one cached response.
type Record struct {
	Key         string `json:"key"`
	RequestHash string `json:"request_hash"`
	Status      int    `json:"status"`
	Body        []byte `json:"body"`
	ContentType string `json:"content_type"`
}

// Cache stores records in Redis with a TTL.
type Cache struct {
	redis redis.Cmdable
	ttl   time.Duration
}

func NewCache(redis redis.Cmdable, ttl time.Duration) *Cache {
	return &Cache{redis: redis, ttl: ttl}
}

// Lookup returns the cached record for key. ErrHashMismatch signals the same
// key was reused with a different request payload.
func (c *Cache) Lookup(ctx context.Context, key, requestHash string) (*Record, error) {
	raw, err := c.redis.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("idempotency lookup: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode idempotency record: %w", err)
	}
	if rec.RequestHash != requestHash {
		return nil, ErrHashMismatch
	}
	return &rec, nil
}

// Store caches the response served for key.
func (c *Cache) Store(ctx context.Context, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode idempotency record: %w", err)
	}
	if err := c.redis.Set(ctx, redisKey(rec.Key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("store idempotency record: %w", err)
	}
	return nil
}

func redisKey(key string) string {
	return keyPrefix + ":" + key
}
