package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"

	"github.com/platinummonkey/poolguide/pkg/config"
	"github.com/platinummonkey/poolguide/pkg/middleware"
	"github.com/platinummonkey/poolguide/pkg/observability"
	"github.com/platinummonkey/poolguide/pkg/storage"
	"github.com/platinummonkey/poolguide/pkg/storage/cache"
	"github.com/platinummonkey/poolguide/pkg/storage/sqlstore"
)

// Maintenance schedules
const (
	limiterCleanupSchedule = "@every 1m"
	replicaCheckSchedule   = "@every 30s"
	statsSchedule          = "@every 5m"
)

// newRedisClient accepts either a redis:// URL or a host:port address
func newRedisClient(cfg storage.Config) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(cfg.RedisURL, "://") {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis URL: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: cfg.RedisURL}
	}

	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	if cfg.RedisDB > 0 {
		opts.DB = cfg.RedisDB
	}
	opts.MaxRetries = cfg.RedisMaxRetries
	opts.PoolSize = cfg.RedisPoolSize

	return redis.NewClient(opts), nil
}

// limiterSet holds the two rate limit classes. Both are nil when limiting is disabled.
type limiterSet struct {
	General middleware.Limiter
	Auth    middleware.Limiter

	// memory limiters that need periodic cleanup
	memory []*middleware.MemoryLimiter
}

func newLimiters(cfg config.RateLimitConfig, client *redis.Client) (limiterSet, error) {
	var set limiterSet
	if !cfg.Enabled {
		return set, nil
	}

	switch cfg.Backend {
	case config.RateLimitRedis:
		if client == nil {
			return set, fmt.Errorf("redis rate limit backend requires a redis client")
		}
		set.General = middleware.NewRedisLimiter(client, cfg.GeneralLimit, cfg.GeneralWindow, cfg.RedisPrefix)
		set.Auth = middleware.NewRedisLimiter(client, cfg.AuthLimit, cfg.AuthWindow, cfg.RedisPrefix)
	default:
		general := middleware.NewMemoryLimiter(cfg.GeneralLimit, cfg.GeneralWindow)
		authLimiter := middleware.NewMemoryLimiter(cfg.AuthLimit, cfg.AuthWindow)
		set.General = general
		set.Auth = authLimiter
		set.memory = []*middleware.MemoryLimiter{general, authLimiter}
	}
	return set, nil
}

// maintenance collects the components swept by scheduled jobs. Any may be nil.
type maintenance struct {
	limiters limiterSet
	conns    *sqlstore.ConnectionManager
	cache    *cache.PoolCache
}

func scheduleMaintenance(logger *observability.Logger, m maintenance) (*cron.Cron, error) {
	c := cron.New()

	if len(m.limiters.memory) > 0 {
		if _, err := c.AddFunc(limiterCleanupSchedule, func() {
			removed, tracked := 0, 0
			for _, l := range m.limiters.memory {
				removed += l.Cleanup()
				tracked += l.Len()
			}
			if removed > 0 {
				logger.WithFields(map[string]interface{}{
					"removed": removed,
					"tracked": tracked,
				}).Debug("Expired rate limit windows removed")
			}
		}); err != nil {
			return nil, fmt.Errorf("failed to schedule limiter cleanup: %w", err)
		}
	}

	if m.conns != nil {
		if _, err := c.AddFunc(replicaCheckSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			m.conns.RemoveUnhealthyReplicas(ctx)
		}); err != nil {
			return nil, fmt.Errorf("failed to schedule replica checks: %w", err)
		}
	}

	if _, err := c.AddFunc(statsSchedule, func() {
		fields := map[string]interface{}{}
		if m.conns != nil {
			stats := m.conns.Stats()
			fields["db_open_connections"] = stats.Primary.OpenConnections
			fields["db_in_use"] = stats.Primary.InUse
			fields["db_replicas"] = len(stats.Replicas)
		}
		if m.cache != nil {
			stats := m.cache.Stats()
			fields["cache_hits"] = stats.Hits
			fields["cache_misses"] = stats.Misses
			fields["cache_items"] = stats.ItemCount
		}
		logger.WithFields(fields).Info("Runtime stats")
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule stats logging: %w", err)
	}

	return c, nil
}
