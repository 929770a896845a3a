package projects

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/onyxandcode/onyx-site/pkg/logging"
)

const cacheKeyPrefix = "projects:list:"

// CachedRepository fronts a Repository with a Redis JSON cache. Cache errors are
// logged and the source is read instead.
type CachedRepository struct {
	source Repository
	redis  redis.Cmdable
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedRepository returns source unchanged when redis is nil or ttl is not positive.
func NewCachedRepository(source Repository, client *redis.Client, ttl time.Duration, logger *logging.Logger) Repository {
	if client == nil || ttl <= 0 {
		return source
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedRepository{source: source, redis: client, ttl: ttl, logger: logger}
}

// List implements Repository.
func (c *CachedRepository) List(ctx context.Context, order Order) ([]Project, error) {
	key := cacheKeyPrefix + order.String()

	raw, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []Project
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached, nil
		}
		c.logger.Warn("projects cache entry corrupt", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("projects cache read failed", "key", key, "error", err)
	}

	list, err := c.source.List(ctx, order)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(list); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("projects cache write failed", "key", key, "error", err)
		}
	}
	return list, nil
}
