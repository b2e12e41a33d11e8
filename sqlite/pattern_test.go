package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/shelfscout"
	"github.com/fwojciec/shelfscout/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternStore(t *testing.T) {
	t.Parallel()

	t.Run("empty store is not found", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewPatternStore(setupTestDB(t))

		_, err := store.LoadPatterns(context.Background())

		assert.Equal(t, shelfscout.ENOTFOUND, shelfscout.ErrorCode(err))
	})

	t.Run("round trips patterns", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewPatternStore(setupTestDB(t))
		ctx := context.Background()
		failed := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

		err := store.SavePatterns(ctx, map[string]*shelfscout.DomainPattern{
			"shop.com": {
				FailureCount:   1,
				LastFailure:    &failed,
				LastError:      "timeout",
				AttemptedPaths: []string{"/shop"},
				Learned: shelfscout.LearnedFields{
					PLPPath:     "/collections/all",
					ProductURLs: []string{"https://shop.com/products/a"},
					SpecsRatio:  0.25,
				},
			},
			"myshopify.com": {Learned: shelfscout.LearnedFields{PLPPath: "/collections/all"}},
		})
		require.NoError(t, err)

		got, err := store.LoadPatterns(ctx)
		require.NoError(t, err)

		require.Len(t, got, 2)
		p := got["shop.com"]
		require.NotNil(t, p)
		assert.Equal(t, 1, p.FailureCount)
		assert.Nil(t, p.LastSuccess)
		require.NotNil(t, p.LastFailure)
		assert.True(t, failed.Equal(*p.LastFailure))
		assert.Equal(t, "timeout", p.LastError)
		assert.Equal(t, []string{"/shop"}, p.AttemptedPaths)
		assert.Equal(t, []string{"https://shop.com/products/a"}, p.Learned.ProductURLs)
		assert.InDelta(t, 0.25, p.Learned.SpecsRatio, 1e-9)
	})

	t.Run("save replaces previous patterns", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewPatternStore(setupTestDB(t))
		ctx := context.Background()

		require.NoError(t, store.SavePatterns(ctx, map[string]*shelfscout.DomainPattern{"a.com": {}, "b.com": {}}))
		require.NoError(t, store.SavePatterns(ctx, map[string]*shelfscout.DomainPattern{"b.com": {SuccessCount: 4}}))

		got, err := store.LoadPatterns(ctx)
		require.NoError(t, err)

		assert.Len(t, got, 1)
		assert.Equal(t, 4, got["b.com"].SuccessCount)
	})
}

func TestProxyCache(t *testing.T) {
	t.Parallel()

	t.Run("empty cache is not found", func(t *testing.T) {
		t.Parallel()

		cache := sqlite.NewProxyCache(setupTestDB(t))

		_, err := cache.LoadProxyCache(context.Background())

		assert.Equal(t, shelfscout.ENOTFOUND, shelfscout.ErrorCode(err))
	})

	t.Run("round trips entries", func(t *testing.T) {
		t.Parallel()

		cache := sqlite.NewProxyCache(setupTestDB(t))
		ctx := context.Background()
		ts := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
		proxies := []shelfscout.ProxyRecord{
			{Proxy: "1.1.1.1:80", ResponseTimeMs: 90, Working: true, Country: "GB"},
			{Proxy: "2.2.2.2:80", ResponseTimeMs: 300, Working: true, Country: "GB"},
		}

		require.NoError(t, cache.SaveProxyCache(ctx, map[string]*shelfscout.ProxyCacheEntry{
			"GB": {Proxies: proxies, Timestamp: ts, Count: 2},
		}))
		got, err := cache.LoadProxyCache(ctx)
		require.NoError(t, err)

		require.Contains(t, got, "GB")
		assert.Equal(t, proxies, got["GB"].Proxies)
		assert.Equal(t, 2, got["GB"].Count)
		assert.True(t, ts.Equal(got["GB"].Timestamp))
	})
}
