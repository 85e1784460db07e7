package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ KV = (*RedisKV)(nil)

// RedisKV keeps saves as plain string keys, optionally namespaced.
type RedisKV struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisKV wraps client. prefix is prepended to every key, e.g. a player
// id, so several players can share one Redis.
func NewRedisKV(client *redis.Client, prefix string, logger *zap.Logger) *RedisKV {
	return &RedisKV{
		client: client,
		prefix: prefix,
		logger: logger.Named("RedisKV"),
	}
}

func (r *RedisKV) key(k string) string { return r.prefix + k }

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to read save from redis", zap.String("key", r.key(key)), zap.Error(err))
		return nil, fmt.Errorf("redis get %s: %w", r.key(key), err)
	}
	return data, nil
}

func (r *RedisKV) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		r.logger.Error("Failed to write save to redis", zap.String("key", r.key(key)), zap.Error(err))
		return fmt.Errorf("redis set %s: %w", r.key(key), err)
	}
	r.logger.Debug("Save written", zap.String("key", r.key(key)), zap.Int("bytes", len(value)))
	return nil
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", r.key(key), err)
	}
	return nil
}

func (r *RedisKV) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", r.key(key), err)
	}
	return n > 0, nil
}
