package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

const defaultKeyPrefix = "wtg:idem:"

// IdempotencyStore claims request keys for a bounded time so a retried
// mutation runs at most once.
type IdempotencyStore interface {
	// Acquire claims key for ttl. It reports false when the key is already held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
	Close() error
}

type idempotencyStore struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
}

// NewIdempotencyStore dials addr and verifies the connection.
func NewIdempotencyStore(addr string, log *logger.Logger) (IdempotencyStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewIdempotencyStoreFromClient(rdb, defaultKeyPrefix, log), nil
}

func NewIdempotencyStoreFromClient(rdb goredis.UniversalClient, prefix string, log *logger.Logger) IdempotencyStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &idempotencyStore{
		log:    log.With("service", "RedisIdempotencyStore"),
		rdb:    rdb,
		prefix: prefix,
	}
}

func (s *idempotencyStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if s == nil || s.rdb == nil {
		return false, fmt.Errorf("redis idempotency store not initialized")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return false, fmt.Errorf("idempotency key required")
	}
	ok, err := s.rdb.SetNX(ctx, s.prefix+key, time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (s *idempotencyStore) Release(ctx context.Context, key string) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redis idempotency store not initialized")
	}
	if err := s.rdb.Del(ctx, s.prefix+strings.TrimSpace(key)).Err(); err != nil {
		s.log.Warn("Failed to release idempotency key", "error", err)
		return err
	}
	return nil
}

func (s *idempotencyStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
