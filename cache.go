package minipress

import (
	"context"
	"sync"
	"time"

	"github.com/minipress/minipress/blog"
)

// PostCache is an in-memory cache of published posts and the known tag and
// category names, with a TTL. Feeds, the sitemap, and navigation read from
// it; every write path invalidates it.
type PostCache struct {
	mu         sync.RWMutex
	posts      []*blog.Post
	tags       []string
	categories []string
	fetched    time.Time
	ttl        time.Duration
	svc        *blog.Service
}

// NewPostCache creates a PostCache backed by the given blog service.
func NewPostCache(svc *blog.Service, ttl time.Duration) *PostCache {
	return &PostCache{svc: svc, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return !c.fetched.IsZero() && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.tags = nil
	c.categories = nil
	c.fetched = time.Time{}
	c.mu.Unlock()
}

// ensureLoaded returns the cached data after ensuring it is fresh. It tries
// a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded(ctx context.Context) ([]*blog.Post, []string, []string, error) {
	c.mu.RLock()
	if c.valid() {
		posts, tags, categories := c.posts, c.tags, c.categories
		c.mu.RUnlock()
		return posts, tags, categories, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.posts, c.tags, c.categories, nil
	}
	posts, err := c.svc.Published(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	tags, err := c.svc.Tags(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	categories, err := c.svc.Categories(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	c.posts = posts
	c.tags = tags
	c.categories = categories
	c.fetched = time.Now()
	return c.posts, c.tags, c.categories, nil
}

// Published returns all published posts, newest first.
func (c *PostCache) Published(ctx context.Context) ([]*blog.Post, error) {
	posts, _, _, err := c.ensureLoaded(ctx)
	return posts, err
}

// Tags returns all known tag names.
func (c *PostCache) Tags(ctx context.Context) ([]string, error) {
	_, tags, _, err := c.ensureLoaded(ctx)
	return tags, err
}

// Categories returns all known category names.
func (c *PostCache) Categories(ctx context.Context) ([]string, error) {
	_, _, categories, err := c.ensureLoaded(ctx)
	return categories, err
}
