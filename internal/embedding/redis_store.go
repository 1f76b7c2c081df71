package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "screening:embedding:v1:"

// RedisStore keeps embeddings in Redis so instances share model work
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed tier; ttl 0 keeps keys without expiry
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: defaultKeyPrefix,
		ttl:    ttl,
	}
}

// Get returns the stored embedding, ok=false on a miss
func (s *RedisStore) Get(ctx context.Context, key string) ([]float64, bool, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var vec []float64
	if err := json.Unmarshal(data, &vec); err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

// Set stores an embedding
func (s *RedisStore) Set(ctx context.Context, key string, vec []float64) error {
	data, err := json.Marshal(vec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+key, data, s.ttl).Err()
}
