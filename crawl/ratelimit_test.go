package crawl_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/shelfscout/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLimiter(t *testing.T) {
	t.Parallel()

	t.Run("first request to a store is immediate", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewStoreLimiter(10, 1)

		start := time.Now()
		err := limiter.Wait(context.Background(), "shop.com")

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("spaces requests to the same store", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewStoreLimiter(10, 1)
		require.NoError(t, limiter.Wait(context.Background(), "shop.com"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "shop.com")

		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("www and bare host share a bucket", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewStoreLimiter(10, 1)
		require.NoError(t, limiter.Wait(context.Background(), "https://www.shop.com/products/tee"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "shop.com")

		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
		assert.Equal(t, 1, limiter.Stores())
	})

	t.Run("stores are limited independently", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewStoreLimiter(10, 1)
		require.NoError(t, limiter.Wait(context.Background(), "shop.com"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "store.com")

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
		assert.Equal(t, 2, limiter.Stores())
	})

	t.Run("burst allows back-to-back requests", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewStoreLimiter(1, 3)

		start := time.Now()
		for range 3 {
			require.NoError(t, limiter.Wait(context.Background(), "shop.com"))
		}

		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("zero rate never waits", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewStoreLimiter(0, 1)

		start := time.Now()
		for range 20 {
			require.NoError(t, limiter.Wait(context.Background(), "shop.com"))
		}

		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("returns when the context expires", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewStoreLimiter(1, 1)
		require.NoError(t, limiter.Wait(context.Background(), "shop.com"))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		assert.Error(t, limiter.Wait(ctx, "shop.com"))
	})

	t.Run("concurrent waits all complete", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewStoreLimiter(100, 1)

		var wg sync.WaitGroup
		errs := make([]error, 5)
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = limiter.Wait(context.Background(), "shop.com")
			}()
		}
		wg.Wait()

		for _, err := range errs {
			assert.NoError(t, err)
		}
	})
}
