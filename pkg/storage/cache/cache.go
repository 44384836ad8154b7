// Package cache provides an in-process read cache in front of the catalog stores.
package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/platinummonkey/poolguide/pkg/catalog"
	"github.com/platinummonkey/poolguide/pkg/observability"
	"github.com/platinummonkey/poolguide/pkg/storage"
)

// CatalogStore is the part of the backend the cache decorates
type CatalogStore interface {
	storage.PoolStore
	storage.ReviewStore
}

const (
	keyPoolList = "pools:list"

	cacheTypePoolList = "pool_list"
	cacheTypePool     = "pool"
	cacheTypeReviews  = "reviews"
)

// Config for the catalog cache
type Config struct {
	Size int
	TTL  time.Duration
}

// Stats reports cache effectiveness
type Stats struct {
	Hits      int64
	Misses    int64
	ItemCount int
}

type entry struct {
	pools   []catalog.Pool
	pool    *catalog.Pool
	reviews []catalog.Review
}

// PoolCache serves pool and review reads from an expiring LRU.
// Any write through the cache purges it.
type PoolCache struct {
	next    CatalogStore
	cache   *lru.LRU[string, entry]
	metrics *observability.Metrics

	hits   atomic.Int64
	misses atomic.Int64

	// gen counts purges. A read only fills the cache if no purge ran while it was in flight.
	mu  sync.Mutex
	gen uint64
}

var _ CatalogStore = (*PoolCache)(nil)

// NewPoolCache wraps next. metrics may be nil.
func NewPoolCache(next CatalogStore, cfg Config, metrics *observability.Metrics) *PoolCache {
	if cfg.Size < 1 {
		cfg.Size = 256
	}
	return &PoolCache{
		next:    next,
		cache:   lru.NewLRU[string, entry](cfg.Size, nil, cfg.TTL),
		metrics: metrics,
	}
}

func poolKey(id int64) string    { return fmt.Sprintf("pool:%d", id) }
func reviewsKey(id int64) string { return fmt.Sprintf("reviews:%d", id) }

func (c *PoolCache) lookup(key, cacheType string) (entry, bool) {
	e, ok := c.cache.Get(key)
	if ok {
		c.hits.Add(1)
		if c.metrics != nil {
			c.metrics.CacheHitsTotal.WithLabelValues(cacheType).Inc()
		}
		return e, true
	}
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.WithLabelValues(cacheType).Inc()
	}
	return entry{}, false
}

func (c *PoolCache) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *PoolCache) store(key string, gen uint64, e entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == gen {
		c.cache.Add(key, e)
	}
}

// ListPools returns the cached pool list when present
func (c *PoolCache) ListPools(ctx context.Context) ([]catalog.Pool, error) {
	if e, ok := c.lookup(keyPoolList, cacheTypePoolList); ok {
		return clonePools(e.pools), nil
	}

	gen := c.generation()
	pools, err := c.next.ListPools(ctx)
	if err != nil {
		return nil, err
	}
	c.store(keyPoolList, gen, entry{pools: clonePools(pools)})
	return pools, nil
}

// GetPool returns the cached pool when present. Misses are not cached.
func (c *PoolCache) GetPool(ctx context.Context, id int64) (*catalog.Pool, error) {
	key := poolKey(id)
	if e, ok := c.lookup(key, cacheTypePool); ok {
		p := *e.pool
		return &p, nil
	}

	gen := c.generation()
	p, err := c.next.GetPool(ctx, id)
	if err != nil {
		return nil, err
	}
	cached := *p
	c.store(key, gen, entry{pool: &cached})
	return p, nil
}

// ListReviews returns the cached reviews of a pool when present
func (c *PoolCache) ListReviews(ctx context.Context, poolID int64) ([]catalog.Review, error) {
	key := reviewsKey(poolID)
	if e, ok := c.lookup(key, cacheTypeReviews); ok {
		return append([]catalog.Review(nil), e.reviews...), nil
	}

	gen := c.generation()
	reviews, err := c.next.ListReviews(ctx, poolID)
	if err != nil {
		return nil, err
	}
	c.store(key, gen, entry{reviews: append([]catalog.Review(nil), reviews...)})
	return reviews, nil
}

// GetReview is not cached
func (c *PoolCache) GetReview(ctx context.Context, id int64) (*catalog.Review, error) {
	return c.next.GetReview(ctx, id)
}

func (c *PoolCache) CreatePool(ctx context.Context, p *catalog.Pool, f *catalog.Facility) error {
	defer c.Purge()
	return c.next.CreatePool(ctx, p, f)
}

func (c *PoolCache) UpdatePool(ctx context.Context, p *catalog.Pool, f *catalog.Facility) error {
	defer c.Purge()
	return c.next.UpdatePool(ctx, p, f)
}

func (c *PoolCache) DeletePool(ctx context.Context, id int64) error {
	defer c.Purge()
	return c.next.DeletePool(ctx, id)
}

func (c *PoolCache) CreateReview(ctx context.Context, r *catalog.Review) error {
	defer c.Purge()
	return c.next.CreateReview(ctx, r)
}

func (c *PoolCache) DeleteReview(ctx context.Context, id int64) error {
	defer c.Purge()
	return c.next.DeleteReview(ctx, id)
}

// Purge drops every cached entry
func (c *PoolCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.cache.Purge()
}

// Stats returns cache statistics. Expired entries are not counted.
func (c *PoolCache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		ItemCount: len(c.cache.Keys()),
	}
}

func clonePools(pools []catalog.Pool) []catalog.Pool {
	if pools == nil {
		return nil
	}
	return append(make([]catalog.Pool, 0, len(pools)), pools...)
}
