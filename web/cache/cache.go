package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/mhsanaei/taskpanel/logger"
)

const (
	// TTLUser bounds how stale a signed-in user's record may be.
	TTLUser = 30 * time.Second

	KeyUserPrefix      = "user:"
	KeyRateLimitPrefix = "ratelimit:"
	KeySessionPrefix   = "session:"
)

func UserKey(id int) string {
	return fmt.Sprintf("%s%d", KeyUserPrefix, id)
}

// GetJSON retrieves a value and unmarshals it into dest.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) error {
	val, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if val == "" {
		return ErrMiss
	}
	return json.Unmarshal([]byte(val), dest)
}

// SetJSON marshals value as JSON and stores it.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.Set(ctx, key, data, expiration)
}

// GetOrSet fills dest from the cache, or from fn on a miss, storing fn's result.
// Cache failures degrade to calling fn.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, expiration time.Duration, fn func() (T, error)) (T, error) {
	var cached T
	err := c.GetJSON(ctx, key, &cached)
	if err == nil {
		logger.Debugf("Cache hit for key: %s", key)
		return cached, nil
	}
	if !errors.Is(err, ErrMiss) {
		logger.Warningf("Cache read for key %s failed: %v", key, err)
	}

	value, err := fn()
	if err != nil {
		return value, err
	}
	if err := c.SetJSON(ctx, key, value, expiration); err != nil {
		logger.Warningf("Failed to set cache for key %s: %v", key, err)
	}
	return value, nil
}

// InvalidateUser drops the cached record for a user.
func (c *Cache) InvalidateUser(ctx context.Context, id int) error {
	return c.Delete(ctx, UserKey(id))
}
