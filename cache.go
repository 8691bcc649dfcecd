package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Flush(ctx context.Context) error
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
	}
}

// Set stores value as JSON under key.
func (c *RedisCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	p, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, p, expiration).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

func (c *RedisCache) Flush(ctx context.Context) error {
	return c.client.FlushDB(ctx).Err()
}

// noopCache is used when REDIS_URL is not set. Every lookup is a miss.
type noopCache struct{}

func (noopCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return nil
}

func (noopCache) Get(ctx context.Context, key string) (string, error) {
	return "", redis.Nil
}

func (noopCache) Flush(ctx context.Context) error {
	return nil
}

// ConnectCache connects to Redis when REDIS_URL is set and keeps the no-op
// cache otherwise.
func (cfg *apiConfig) ConnectCache(ctx context.Context) error {
	if cfg.redisURL == "" {
		cfg.logger.Info("REDIS_URL not set, result cache disabled")
		return nil
	}
	opt, err := redis.ParseURL(cfg.redisURL)
	if err != nil {
		cfg.logger.Error("could not parse Redis URL", "error", err)
		return err
	}
	client := cfg.newRedisClientFunc(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		cfg.logger.Error("couldn't connect to cache", "error", err)
		return fmt.Errorf("could not connect to Redis: %w", err)
	}
	cfg.cache = NewRedisCache(client)
	cfg.logger.Info("connected to cache")
	return nil
}
