package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the token under prefix + ":" + key. Useful when the
// client runs as several stateless replicas of one logical session, such
// as a dashboard backend serving a single kiosk.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	key    string
	ttl    time.Duration
}

// NewRedisStore returns a store on client. An empty key uses [DefaultKey];
// ttl <= 0 stores without expiry.
func NewRedisStore(client redis.UniversalClient, prefix, key string, ttl time.Duration) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{
		redis:  client,
		prefix: prefix,
		key:    key,
		ttl:    ttl,
	}
}

func (s *RedisStore) redisKey() string {
	if s.prefix == "" {
		return s.key
	}
	return s.prefix + ":" + s.key
}

func (s *RedisStore) Get(ctx context.Context) (string, bool, error) {
	token, err := s.redis.Get(ctx, s.redisKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return token, token != "", nil
}

func (s *RedisStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}
	if err := s.redis.Set(ctx, s.redisKey(), token, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.redisKey()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return time.Since(start), nil
}
