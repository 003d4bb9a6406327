package cache

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/clientportal/backend/internal/infrastructure/config"
)

// NewProjectViewCache builds the configured cache backend
func NewProjectViewCache(cfg *config.CacheConfig, client *redis.Client, logger *zap.Logger) ProjectViewCache {
	if cfg.Backend == "memory" || client == nil {
		logger.Info("using in-memory project view cache")
		return NewInMemoryProjectViewCache()
	}
	return NewRedisProjectViewCache(client, cfg.KeyPrefix, logger)
}
