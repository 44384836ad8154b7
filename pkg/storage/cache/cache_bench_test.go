package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/platinummonkey/poolguide/pkg/catalog"
	"github.com/platinummonkey/poolguide/pkg/storage"
	"github.com/platinummonkey/poolguide/pkg/storage/sqlstore"
)

func openBenchStore(b *testing.B) (*sqlstore.Store, int64) {
	b.Helper()
	cfg := storage.DefaultConfig()
	cfg.Type = storage.TypeSQLite
	cfg.SQLitePath = filepath.Join(b.TempDir(), "bench.db")

	store, err := sqlstore.Open(context.Background(), cfg, nil)
	if err != nil {
		b.Fatalf("Failed to open store: %v", err)
	}
	b.Cleanup(func() { store.Close() })

	pool := &catalog.Pool{Name: "Laugardalslaug"}
	if err := store.CreatePool(context.Background(), pool, &catalog.Facility{HotTub: true}); err != nil {
		b.Fatalf("Failed to create pool: %v", err)
	}
	return store, pool.ID
}

// BenchmarkGetPoolUncached benchmarks pool lookups straight from SQLite
func BenchmarkGetPoolUncached(b *testing.B) {
	store, id := openBenchStore(b)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := store.GetPool(ctx, id); err != nil {
			b.Errorf("Failed to get pool: %v", err)
		}
	}
}

// BenchmarkGetPoolCached benchmarks pool lookups through the LRU cache
func BenchmarkGetPoolCached(b *testing.B) {
	store, id := openBenchStore(b)
	c := NewPoolCache(store, Config{Size: 128, TTL: time.Minute}, nil)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.GetPool(ctx, id); err != nil {
			b.Errorf("Failed to get pool: %v", err)
		}
	}
}
