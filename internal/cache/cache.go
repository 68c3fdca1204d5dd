// Package cache provides a Redis read-through cache for the service
// catalog. The catalog is read on nearly every page and changes only
// on admin writes, so a short TTL plus explicit invalidation keeps it
// cheap without staleness issues.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"venuebook/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const servicesKey = "catalog:services"

// Catalog caches the service list in Redis.
type Catalog struct {
	client *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

func NewCatalog(client *redis.Client, ttl time.Duration, logger *zerolog.Logger) *Catalog {
	return &Catalog{client: client, ttl: ttl, logger: logger}
}

// GetServices returns the cached catalog, or false on a miss. Redis
// errors are treated as misses; the caller falls back to the store.
func (c *Catalog) GetServices(ctx context.Context) ([]models.Service, bool) {
	if c.client == nil || c.ttl <= 0 {
		return nil, false
	}
	val, err := c.client.Get(ctx, servicesKey).Result()
	if err != nil {
		return nil, false
	}
	var services []models.Service
	if err := json.Unmarshal([]byte(val), &services); err != nil {
		c.logger.Warn().Err(err).Msg("corrupt catalog cache entry")
		return nil, false
	}
	return services, true
}

// SetServices stores the catalog. Write failures are logged and
// otherwise ignored.
func (c *Catalog) SetServices(ctx context.Context, services []models.Service) {
	if c.client == nil || c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(services)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, servicesKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("write catalog cache")
	}
}

// Invalidate drops the cached catalog after an admin write.
func (c *Catalog) Invalidate(ctx context.Context) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, servicesKey).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("invalidate catalog cache")
	}
}
