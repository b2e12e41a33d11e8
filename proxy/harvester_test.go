package proxy_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/shelfscout"
	"github.com/fwojciec/shelfscout/mock"
	"github.com/fwojciec/shelfscout/proxy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCache is a ProxyCache mock holding entries in memory.
func memCache() *mock.ProxyCache {
	var mu sync.Mutex
	var stored map[string]*shelfscout.ProxyCacheEntry
	return &mock.ProxyCache{
		LoadProxyCacheFn: func(context.Context) (map[string]*shelfscout.ProxyCacheEntry, error) {
			mu.Lock()
			defer mu.Unlock()
			if stored == nil {
				return nil, shelfscout.Errorf(shelfscout.ENOTFOUND, "no cache")
			}
			out := make(map[string]*shelfscout.ProxyCacheEntry, len(stored))
			for k, v := range stored {
				out[k] = v
			}
			return out, nil
		},
		SaveProxyCacheFn: func(_ context.Context, entries map[string]*shelfscout.ProxyCacheEntry) error {
			mu.Lock()
			defer mu.Unlock()
			stored = entries
			return nil
		},
	}
}

func staticSource(name string, proxies ...string) *mock.ProxySource {
	return &mock.ProxySource{
		FetchFn: func(context.Context, string) ([]string, error) { return proxies, nil },
		NameFn:  func() string { return name },
	}
}

func okVerifier(calls *atomic.Int32) *mock.ProxyVerifier {
	return &mock.ProxyVerifier{
		VerifyFn: func(context.Context, string, string) (*shelfscout.VerifyResult, error) {
			calls.Add(1)
			return &shelfscout.VerifyResult{Success: true, Origin: "203.0.113.7"}, nil
		},
	}
}

func newHarvester(sources []shelfscout.ProxySource, v shelfscout.ProxyVerifier, c shelfscout.ProxyCache) *proxy.Harvester {
	h := proxy.NewHarvester(sources, v, c)
	h.Fallbacks = nil
	h.BatchPause = 0
	return h
}

func TestHarvester_GetProxiesForCountry(t *testing.T) {
	t.Parallel()

	t.Run("second call within the hour is served from cache", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		h := newHarvester(
			[]shelfscout.ProxySource{staticSource("a", "1.1.1.1:80", "2.2.2.2:80")},
			okVerifier(&calls),
			memCache(),
		)
		now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
		h.Now = func() time.Time { return now }

		first, err := h.GetProxiesForCountry(context.Background(), "us")
		require.NoError(t, err)
		require.Len(t, first, 2)

		now = now.Add(59 * time.Minute)
		second, err := h.GetProxiesForCountry(context.Background(), "US")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("expired entry triggers a new harvest", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		h := newHarvester(
			[]shelfscout.ProxySource{staticSource("a", "1.1.1.1:80")},
			okVerifier(&calls),
			memCache(),
		)
		now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
		h.Now = func() time.Time { return now }

		_, err := h.GetProxiesForCountry(context.Background(), "US")
		require.NoError(t, err)

		now = now.Add(61 * time.Minute)
		_, err = h.GetProxiesForCountry(context.Background(), "US")
		require.NoError(t, err)

		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("failing source does not abort the harvest", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		broken := &mock.ProxySource{
			FetchFn: func(context.Context, string) ([]string, error) { return nil, errors.New("503") },
			NameFn:  func() string { return "broken" },
		}
		h := newHarvester(
			[]shelfscout.ProxySource{broken, staticSource("ok", "1.1.1.1:80")},
			okVerifier(&calls),
			memCache(),
		)

		got, err := h.GetProxiesForCountry(context.Background(), "US")

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "1.1.1.1:80", got[0].Proxy)
		assert.Equal(t, "US", got[0].Country)
		assert.True(t, got[0].Working)
	})

	t.Run("deduplicates and appends fallbacks", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var tested []string
		v := &mock.ProxyVerifier{
			VerifyFn: func(_ context.Context, p, _ string) (*shelfscout.VerifyResult, error) {
				mu.Lock()
				tested = append(tested, p)
				mu.Unlock()
				return &shelfscout.VerifyResult{Success: true, Origin: "x"}, nil
			},
		}
		h := newHarvester(
			[]shelfscout.ProxySource{
				staticSource("a", "1.1.1.1:80", "2.2.2.2:80"),
				staticSource("b", "2.2.2.2:80"),
			},
			v,
			memCache(),
		)
		h.Fallbacks = map[string][]string{"US": {"9.9.9.9:3128", "1.1.1.1:80"}}

		_, err := h.GetProxiesForCountry(context.Background(), "US")

		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"1.1.1.1:80", "2.2.2.2:80", "9.9.9.9:3128"}, tested)
	})

	t.Run("caps candidates and results", func(t *testing.T) {
		t.Parallel()

		proxies := make([]string, 0, 70)
		for i := 0; i < 70; i++ {
			proxies = append(proxies, fmt.Sprintf("10.0.0.%d:8080", i))
		}
		var calls atomic.Int32
		h := newHarvester([]shelfscout.ProxySource{staticSource("big", proxies...)}, okVerifier(&calls), memCache())

		var batches []int
		h.Progress = func(tested, total int) {
			assert.Equal(t, proxy.DefaultMaxCandidates, total)
			batches = append(batches, tested)
		}

		got, err := h.GetProxiesForCountry(context.Background(), "US")

		require.NoError(t, err)
		assert.Equal(t, int32(proxy.DefaultMaxCandidates), calls.Load())
		assert.Len(t, got, proxy.DefaultMaxResults)
		assert.Equal(t, []int{10, 20, 30, 40, 50}, batches)
	})

	t.Run("responses without origin are not working", func(t *testing.T) {
		t.Parallel()

		v := &mock.ProxyVerifier{
			VerifyFn: func(_ context.Context, p, _ string) (*shelfscout.VerifyResult, error) {
				switch p {
				case "1.1.1.1:80":
					return &shelfscout.VerifyResult{Success: true}, nil
				case "2.2.2.2:80":
					return nil, errors.New("connection refused")
				}
				return &shelfscout.VerifyResult{Success: true, Origin: "x"}, nil
			},
		}
		h := newHarvester(
			[]shelfscout.ProxySource{staticSource("a", "1.1.1.1:80", "2.2.2.2:80", "3.3.3.3:80")},
			v,
			memCache(),
		)

		got, err := h.GetProxiesForCountry(context.Background(), "US")

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "3.3.3.3:80", got[0].Proxy)
	})

	t.Run("no working proxies is an empty result", func(t *testing.T) {
		t.Parallel()

		h := newHarvester(nil, &mock.ProxyVerifier{}, memCache())

		got, err := h.GetProxiesForCountry(context.Background(), "ZZ")

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("slow proxy times out without failing siblings", func(t *testing.T) {
		t.Parallel()

		v := &mock.ProxyVerifier{
			VerifyFn: func(ctx context.Context, p, _ string) (*shelfscout.VerifyResult, error) {
				if p == "slow:80" {
					<-ctx.Done()
					return nil, ctx.Err()
				}
				return &shelfscout.VerifyResult{Success: true, Origin: "x"}, nil
			},
		}
		h := newHarvester(
			[]shelfscout.ProxySource{staticSource("a", "slow:80", "fast:80")},
			v,
			memCache(),
		)
		h.TestTimeout = 20 * time.Millisecond

		got, err := h.GetProxiesForCountry(context.Background(), "US")

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "fast:80", got[0].Proxy)
	})

	t.Run("returns the list with a cache save error", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		c := memCache()
		c.SaveProxyCacheFn = func(context.Context, map[string]*shelfscout.ProxyCacheEntry) error {
			return errors.New("read-only filesystem")
		}
		h := newHarvester([]shelfscout.ProxySource{staticSource("a", "1.1.1.1:80")}, okVerifier(&calls), c)

		got, err := h.GetProxiesForCountry(context.Background(), "US")

		require.Error(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("cancelled context is returned", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		h := newHarvester([]shelfscout.ProxySource{staticSource("a", "1.1.1.1:80")}, okVerifier(&calls), memCache())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := h.GetProxiesForCountry(ctx, "US")

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("empty country is invalid", func(t *testing.T) {
		t.Parallel()

		h := newHarvester(nil, &mock.ProxyVerifier{}, memCache())

		_, err := h.GetProxiesForCountry(context.Background(), " ")

		assert.Equal(t, shelfscout.EINVALID, shelfscout.ErrorCode(err))
	})
}

func TestRankProxies(t *testing.T) {
	t.Parallel()

	t.Run("orders by response time", func(t *testing.T) {
		t.Parallel()

		got := proxy.RankProxies([]shelfscout.ProxyRecord{
			{Proxy: "a", ResponseTimeMs: 500, Working: true},
			{Proxy: "b", ResponseTimeMs: 100, Working: true},
			{Proxy: "c", ResponseTimeMs: 800, Working: true},
		}, 20)

		require.Len(t, got, 3)
		assert.Equal(t, []int64{100, 500, 800}, []int64{got[0].ResponseTimeMs, got[1].ResponseTimeMs, got[2].ResponseTimeMs})
	})

	t.Run("drops non-working and truncates", func(t *testing.T) {
		t.Parallel()

		got := proxy.RankProxies([]shelfscout.ProxyRecord{
			{Proxy: "a", ResponseTimeMs: 5, Working: false},
			{Proxy: "b", ResponseTimeMs: 30, Working: true},
			{Proxy: "c", ResponseTimeMs: 20, Working: true},
			{Proxy: "d", ResponseTimeMs: 10, Working: true},
		}, 2)

		require.Len(t, got, 2)
		assert.Equal(t, "d", got[0].Proxy)
		assert.Equal(t, "c", got[1].Proxy)
	})
}
