package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/johnquangdev/minutes-service/pkg/config"
)

// RedisStore backs the result cache with Redis so cached minutes survive
// restarts and are shared across replicas
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(cfg *config.Config, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client, logger: logger}, nil
}

// Set stores a key-value pair with expiration. Errors are logged and
// swallowed: a cache write failure must not degrade the request.
func (rs *RedisStore) Set(ctx context.Context, key, value string, expiration time.Duration) {
	if err := rs.client.Set(ctx, key, value, expiration).Err(); err != nil {
		if rs.logger != nil {
			rs.logger.Warn("redis set failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// Get retrieves a value by key; any error counts as a miss
func (rs *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	value, err := rs.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil && rs.logger != nil {
			rs.logger.Warn("redis get failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return value, true
}

// Delete removes a key
func (rs *RedisStore) Delete(ctx context.Context, key string) {
	if err := rs.client.Del(ctx, key).Err(); err != nil {
		if rs.logger != nil {
			rs.logger.Warn("redis delete failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// Close releases the underlying client
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
