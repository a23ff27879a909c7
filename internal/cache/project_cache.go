package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zippyboards/backend/internal/model"
)

const keyProjectPage = "zippy:project:page:"

// ProjectPageCache caches rendered project pages in Redis.
// A nil *ProjectPageCache, or one without a client, behaves as an always-empty cache.
type ProjectPageCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewProjectPageCache returns a cache using rdb. rdb may be nil to disable caching.
func NewProjectPageCache(rdb *redis.Client, ttl time.Duration) *ProjectPageCache {
	if ttl < 0 {
		ttl = 0
	}
	return &ProjectPageCache{rdb: rdb, ttl: ttl}
}

func (c *ProjectPageCache) enabled() bool {
	return c != nil && c.rdb != nil
}

// Get returns the cached page or nil on a miss.
func (c *ProjectPageCache) Get(ctx context.Context, projectID string) (*model.ProjectPage, error) {
	if !c.enabled() {
		return nil, nil
	}
	b, err := c.rdb.Get(ctx, keyProjectPage+projectID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var page model.ProjectPage
	if err := json.Unmarshal(b, &page); err != nil {
		// a corrupt entry is dropped and treated as a miss
		_ = c.rdb.Del(ctx, keyProjectPage+projectID).Err()
		return nil, nil
	}
	return &page, nil
}

// Set stores the page under its project id.
func (c *ProjectPageCache) Set(ctx context.Context, page *model.ProjectPage) error {
	if !c.enabled() || page == nil || page.Project == nil {
		return nil
	}
	b, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyProjectPage+page.Project.ID, b, c.ttl).Err()
}

// Invalidate drops the cached page so the next read rebuilds it.
func (c *ProjectPageCache) Invalidate(ctx context.Context, projectID string) error {
	if !c.enabled() {
		return nil
	}
	return c.rdb.Del(ctx, keyProjectPage+projectID).Err()
}

// NewRedisClient connects to the redis:// or rediss:// URL and pings it.
// An empty URL returns a nil client, which disables caching.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
