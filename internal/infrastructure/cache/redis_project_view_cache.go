package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	fieldProgress   = "progress"
	fieldDueDate    = "due_date"
	fieldBudget     = "budget"
	fieldFixedPrice = "fixed_price"
	fieldVisible    = "visible"
)

// RedisProjectViewCache stores each project view as a Redis hash so fields
// are written and merged independently.
type RedisProjectViewCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisProjectViewCache creates a Redis-backed project view cache
func NewRedisProjectViewCache(client *redis.Client, keyPrefix string, logger *zap.Logger) *RedisProjectViewCache {
	return &RedisProjectViewCache{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    logger.Named("project_view_cache"),
	}
}

func (c *RedisProjectViewCache) key(projectID uint) string {
	return fmt.Sprintf("%s%d", c.keyPrefix, projectID)
}

// Read returns the cached view for a project. A missing key or an
// unreachable Redis yields an empty view, never an error.
func (c *RedisProjectViewCache) Read(ctx context.Context, projectID uint) (*ProjectView, error) {
	values, err := c.client.HGetAll(ctx, c.key(projectID)).Result()
	if err != nil {
		c.logger.Warn("cache read failed, serving without cached fields",
			zap.Uint("project_id", projectID), zap.Error(err))
		return &ProjectView{}, nil
	}

	view := &ProjectView{}
	if s, ok := values[fieldProgress]; ok {
		if n, err := strconv.Atoi(s); err == nil {
			view.Progress = &n
		}
	}
	if s, ok := values[fieldDueDate]; ok {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			view.DueDate = &t
		}
	}
	if s, ok := values[fieldBudget]; ok {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			view.Budget = &n
		}
	}
	if s, ok := values[fieldFixedPrice]; ok {
		b := s == "1"
		view.FixedPrice = &b
	}
	if s, ok := values[fieldVisible]; ok {
		b := s == "1"
		view.Visible = &b
	}
	return view, nil
}

// Write persists the fields the view carries. Failures are logged and
// swallowed; the durable store already has the authoritative record.
func (c *RedisProjectViewCache) Write(ctx context.Context, projectID uint, view *ProjectView) error {
	if view == nil || view.IsEmpty() {
		return nil
	}

	fields := map[string]any{}
	if view.Progress != nil {
		fields[fieldProgress] = strconv.Itoa(*view.Progress)
	}
	if view.DueDate != nil {
		fields[fieldDueDate] = view.DueDate.Format(time.RFC3339)
	}
	if view.Budget != nil {
		fields[fieldBudget] = strconv.FormatInt(*view.Budget, 10)
	}
	if view.FixedPrice != nil {
		fields[fieldFixedPrice] = boolField(*view.FixedPrice)
	}
	if view.Visible != nil {
		fields[fieldVisible] = boolField(*view.Visible)
	}

	if err := c.client.HSet(ctx, c.key(projectID), fields).Err(); err != nil {
		c.logger.Warn("cache write failed",
			zap.Uint("project_id", projectID), zap.Error(err))
	}
	return nil
}

// Invalidate drops every cached field for a project
func (c *RedisProjectViewCache) Invalidate(ctx context.Context, projectID uint) error {
	if err := c.client.Del(ctx, c.key(projectID)).Err(); err != nil {
		c.logger.Warn("cache invalidation failed",
			zap.Uint("project_id", projectID), zap.Error(err))
	}
	return nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
