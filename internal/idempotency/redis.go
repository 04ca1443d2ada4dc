// Package idempotency replays the response of a create that the front end
// retried with the same Idempotency-Key, so a double click never creates two
// opportunities.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a stored response is replayed.
const DefaultTTL = 24 * time.Hour

// CachedResponse represents a cached response from an idempotent request
type CachedResponse struct {
	Status  int               `json:"status"`
	Body    json.RawMessage   `json:"body"`
	Headers map[string]string `json:"headers,omitempty"`
}

// HashKey generates SHA256 hash of idempotency key
func HashKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// RedisStore keeps responses in Redis, scoped per BFF session.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore returns a store whose entries live for ttl (DefaultTTL when zero).
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(sessionID, keyHash string) string {
	return fmt.Sprintf("idempotency:session:%s:%s", sessionID, keyHash)
}

// CheckKey returns the stored response, or nil when the key is unknown.
func (s *RedisStore) CheckKey(ctx context.Context, sessionID, keyHash string) (*CachedResponse, error) {
	raw, err := s.client.Get(ctx, redisKey(sessionID, keyHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}

	var cached CachedResponse
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("failed to decode cached response: %w", err)
	}
	return &cached, nil
}

// StoreResult saves resp under the key. An existing entry is kept.
func (s *RedisStore) StoreResult(ctx context.Context, sessionID, keyHash string, resp CachedResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	if err := s.client.SetNX(ctx, redisKey(sessionID, keyHash), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotency result: %w", err)
	}
	return nil
}
