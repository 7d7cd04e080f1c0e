package permcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const versionKeyPrefix = "authz:ver:"

// RedisStore backs the permission cache with a shared Redis instance so
// decisions and invalidations are visible cluster-wide.
type RedisStore struct {
	client *redis.Client
}

// RedisConfig holds connection settings for the permission cache store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (bool, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("redis get failed: %w", err)
	}
	return value == "1", true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value bool, ttl time.Duration) error {
	stored := "0"
	if value {
		stored = "1"
	}
	if err := s.client.Set(ctx, key, stored, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// IncrVersion uses Redis INCR, which is atomic across clients. Version
// keys carry no TTL: they are one small counter per entity and must
// outlive the decisions keyed on them.
func (s *RedisStore) IncrVersion(ctx context.Context, entity string) (int64, error) {
	version, err := s.client.Incr(ctx, versionKeyPrefix+entity).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr failed: %w", err)
	}
	return version, nil
}

func (s *RedisStore) GetVersion(ctx context.Context, entity string) (int64, error) {
	version, err := s.client.Get(ctx, versionKeyPrefix+entity).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get failed: %w", err)
	}
	return version, nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
