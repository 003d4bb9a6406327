package cache

import (
	"context"
	"sync"
)

// InMemoryProjectViewCache is a process-local ProjectViewCache for
// development and tests. Field-level merge semantics match the Redis
// implementation.
type InMemoryProjectViewCache struct {
	mu    sync.RWMutex
	views map[uint]ProjectView
}

// NewInMemoryProjectViewCache creates an empty in-memory cache
func NewInMemoryProjectViewCache() *InMemoryProjectViewCache {
	return &InMemoryProjectViewCache{views: make(map[uint]ProjectView)}
}

// Read implements ProjectViewCache
func (c *InMemoryProjectViewCache) Read(ctx context.Context, projectID uint) (*ProjectView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	view := c.views[projectID]
	return &view, nil
}

// Write implements ProjectViewCache; only carried fields are updated
func (c *InMemoryProjectViewCache) Write(ctx context.Context, projectID uint, view *ProjectView) error {
	if view == nil || view.IsEmpty() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[projectID] = view.MergeOver(c.views[projectID])
	return nil
}

// Invalidate implements ProjectViewCache
func (c *InMemoryProjectViewCache) Invalidate(ctx context.Context, projectID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.views, projectID)
	return nil
}
