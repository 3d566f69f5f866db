package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tessera-contracts/tessera/internal/logging"
)

// RedisBackend adapts a go-redis client to the Backend interface. Every
// method swallows backend errors after logging them at debug level: cache
// unavailability must never propagate as a request failure (spec.md §4.8).
type RedisBackend struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisBackend wraps an existing *redis.Client. Pass a DSN through
// redis.ParseURL at the call site in cmd/tessera-api to build the client.
func NewRedisBackend(client *redis.Client, logger *zap.Logger) *RedisBackend {
	return &RedisBackend{client: client, logger: logger}
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Debug("cache get degraded to miss", logging.NewFields().Component("cache").Operation("get").Err(err).Zap()...)
		}
		return nil, false
	}
	return val, true
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Debug("cache set degraded to no-op", logging.NewFields().Component("cache").Operation("set").Err(err).Zap()...)
		return false
	}
	return true
}

func (r *RedisBackend) Delete(ctx context.Context, keys ...string) bool {
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Debug("cache delete degraded to no-op", logging.NewFields().Component("cache").Operation("delete").Err(err).Zap()...)
		return false
	}
	return true
}
