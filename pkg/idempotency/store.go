package idempotency

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Seen records key and reports whether it was already present.
func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (s *Store) Forget(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
