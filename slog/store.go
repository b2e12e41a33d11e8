package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/shelfscout"
)

// Ensure the logging stores implement their interfaces.
var (
	_ shelfscout.PatternStore = (*LoggingPatternStore)(nil)
	_ shelfscout.RunHistory   = (*LoggingRunHistory)(nil)
	_ shelfscout.ProxyCache   = (*LoggingProxyCache)(nil)
)

// LoggingPatternStore wraps a PatternStore with debug logging.
type LoggingPatternStore struct {
	next   shelfscout.PatternStore
	logger *slog.Logger
}

// NewLoggingPatternStore creates a new LoggingPatternStore.
func NewLoggingPatternStore(next shelfscout.PatternStore, logger *slog.Logger) *LoggingPatternStore {
	return &LoggingPatternStore{next: next, logger: logger}
}

func (s *LoggingPatternStore) LoadPatterns(ctx context.Context) (patterns map[string]*shelfscout.DomainPattern, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("load patterns", "count", len(patterns), "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.LoadPatterns(ctx)
}

func (s *LoggingPatternStore) SavePatterns(ctx context.Context, patterns map[string]*shelfscout.DomainPattern) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("save patterns", "count", len(patterns), "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.SavePatterns(ctx, patterns)
}

// LoggingRunHistory wraps a RunHistory with debug logging.
type LoggingRunHistory struct {
	next   shelfscout.RunHistory
	logger *slog.Logger
}

// NewLoggingRunHistory creates a new LoggingRunHistory.
func NewLoggingRunHistory(next shelfscout.RunHistory, logger *slog.Logger) *LoggingRunHistory {
	return &LoggingRunHistory{next: next, logger: logger}
}

func (h *LoggingRunHistory) LoadRuns(ctx context.Context) (runs []*shelfscout.RunSummary, err error) {
	defer func(begin time.Time) {
		h.logger.Debug("load runs", "count", len(runs), "duration", time.Since(begin), "err", err)
	}(time.Now())
	return h.next.LoadRuns(ctx)
}

func (h *LoggingRunHistory) SaveRuns(ctx context.Context, runs []*shelfscout.RunSummary) (err error) {
	defer func(begin time.Time) {
		h.logger.Debug("save runs", "count", len(runs), "duration", time.Since(begin), "err", err)
	}(time.Now())
	return h.next.SaveRuns(ctx, runs)
}

// LoggingProxyCache wraps a ProxyCache with debug logging.
type LoggingProxyCache struct {
	next   shelfscout.ProxyCache
	logger *slog.Logger
}

// NewLoggingProxyCache creates a new LoggingProxyCache.
func NewLoggingProxyCache(next shelfscout.ProxyCache, logger *slog.Logger) *LoggingProxyCache {
	return &LoggingProxyCache{next: next, logger: logger}
}

func (c *LoggingProxyCache) LoadProxyCache(ctx context.Context) (entries map[string]*shelfscout.ProxyCacheEntry, err error) {
	defer func(begin time.Time) {
		c.logger.Debug("load proxy cache", "countries", len(entries), "duration", time.Since(begin), "err", err)
	}(time.Now())
	return c.next.LoadProxyCache(ctx)
}

func (c *LoggingProxyCache) SaveProxyCache(ctx context.Context, entries map[string]*shelfscout.ProxyCacheEntry) (err error) {
	defer func(begin time.Time) {
		c.logger.Debug("save proxy cache", "countries", len(entries), "duration", time.Since(begin), "err", err)
	}(time.Now())
	return c.next.SaveProxyCache(ctx, entries)
}
