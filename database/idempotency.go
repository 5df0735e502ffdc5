package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore records checkout outcomes keyed by the caller's
// Idempotency-Key header so a retried checkout is not executed twice.
// A key is reserved with an atomic set-if-absent before the checkout
// runs, so two concurrent requests with the same key cannot both
// execute; the winner later overwrites the reservation with the
// outcome payload.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// pending marks a reserved key whose checkout has not finished yet.
const pending = "__pending__"

func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *IdempotencyStore) getKey(key string) string {
	return "idem:cart:" + key
}

// Reserve claims the key atomically. It returns false when the key is
// already held, either by an in-flight checkout or a recorded outcome.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (bool, error) {
	return s.client.SetNX(ctx, s.getKey(key), pending, s.ttl).Result()
}

// GetResult returns the recorded outcome for key, or "" when none has
// been recorded (unknown key or still-pending reservation).
func (s *IdempotencyStore) GetResult(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.getKey(key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if val == pending {
		return "", nil
	}
	return val, nil
}

// SetResult overwrites the reservation with the outcome payload.
func (s *IdempotencyStore) SetResult(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.getKey(key), value, s.ttl).Err()
}

// Release drops the reservation after a failed checkout so a retry with
// the same key can run.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.getKey(key)).Err()
}
