package mock

import (
	"context"

	"github.com/fwojciec/shelfscout"
)

var _ shelfscout.PatternStore = (*PatternStore)(nil)

// PatternStore is a mock implementation of shelfscout.PatternStore.
type PatternStore struct {
	LoadPatternsFn func(ctx context.Context) (map[string]*shelfscout.DomainPattern, error)
	SavePatternsFn func(ctx context.Context, patterns map[string]*shelfscout.DomainPattern) error
}

func (s *PatternStore) LoadPatterns(ctx context.Context) (map[string]*shelfscout.DomainPattern, error) {
	return s.LoadPatternsFn(ctx)
}

func (s *PatternStore) SavePatterns(ctx context.Context, patterns map[string]*shelfscout.DomainPattern) error {
	return s.SavePatternsFn(ctx, patterns)
}

var _ shelfscout.RunHistory = (*RunHistory)(nil)

// RunHistory is a mock implementation of shelfscout.RunHistory.
type RunHistory struct {
	LoadRunsFn func(ctx context.Context) ([]*shelfscout.RunSummary, error)
	SaveRunsFn func(ctx context.Context, runs []*shelfscout.RunSummary) error
}

func (h *RunHistory) LoadRuns(ctx context.Context) ([]*shelfscout.RunSummary, error) {
	return h.LoadRunsFn(ctx)
}

func (h *RunHistory) SaveRuns(ctx context.Context, runs []*shelfscout.RunSummary) error {
	return h.SaveRunsFn(ctx, runs)
}

var _ shelfscout.ProxyCache = (*ProxyCache)(nil)

// ProxyCache is a mock implementation of shelfscout.ProxyCache.
type ProxyCache struct {
	LoadProxyCacheFn func(ctx context.Context) (map[string]*shelfscout.ProxyCacheEntry, error)
	SaveProxyCacheFn func(ctx context.Context, entries map[string]*shelfscout.ProxyCacheEntry) error
}

func (c *ProxyCache) LoadProxyCache(ctx context.Context) (map[string]*shelfscout.ProxyCacheEntry, error) {
	return c.LoadProxyCacheFn(ctx)
}

func (c *ProxyCache) SaveProxyCache(ctx context.Context, entries map[string]*shelfscout.ProxyCacheEntry) error {
	return c.SaveProxyCacheFn(ctx, entries)
}
