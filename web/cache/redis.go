// Package cache provides the Redis client used for sessions, identity caching
// and rate limiting. It runs against an external Redis server or an embedded
// miniredis instance.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mhsanaei/taskpanel/logger"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key does not exist.
var ErrMiss = errors.New("cache: key not found")

// Cache wraps a Redis client and, when embedded, the in-process server behind it.
type Cache struct {
	client *redis.Client
	mini   *miniredis.Miniredis
}

// New connects to the Redis server at addr. An empty addr starts an embedded server.
func New(ctx context.Context, addr, password string) (*Cache, error) {
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("failed to start embedded Redis: %w", err)
		}
		logger.Info("Embedded Redis started on", mr.Addr())
		return &Cache{
			client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
			mini:   mr,
		}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	logger.Info("Connected to external Redis at", addr)
	return &Cache{client: client}, nil
}

func (c *Cache) Client() *redis.Client {
	return c.client
}

func (c *Cache) IsEmbedded() bool {
	return c.mini != nil
}

// Close closes the client and stops the embedded server if any.
func (c *Cache) Close() error {
	err := c.client.Close()
	if c.mini != nil {
		c.mini.Close()
	}
	return err
}

func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return c.client.Set(ctx, key, value, expiration).Err()
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	result, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return result, err
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// Incr increments key, starting a new window of length window when the key is new.
func (c *Cache) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 && window > 0 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}
