// Package proxy harvests, verifies, ranks and caches proxy endpoints per
// country.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/fwojciec/shelfscout"
	"golang.org/x/sync/errgroup"
)

// Defaults for the harvest and test cycle.
const (
	DefaultBatchSize     = 10
	DefaultMaxCandidates = 50
	DefaultMaxResults    = 20
	DefaultTestTimeout   = 8 * time.Second
	DefaultBatchPause    = time.Second
	DefaultTTL           = time.Hour
	DefaultVerifyURL     = "https://httpbin.org/ip"
)

var _ shelfscout.ProxyHarvester = (*Harvester)(nil)

// Harvester implements shelfscout.ProxyHarvester.
//
// GetProxiesForCountry is not safe for concurrent calls on the same
// Harvester: cache reads and writes are not synchronized.
type Harvester struct {
	Sources   []shelfscout.ProxySource
	Verifier  shelfscout.ProxyVerifier
	Cache     shelfscout.ProxyCache
	Fallbacks map[string][]string
	Logger    *slog.Logger

	VerifyURL     string
	BatchSize     int
	MaxCandidates int
	MaxResults    int
	TestTimeout   time.Duration
	BatchPause    time.Duration
	TTL           time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Progress, if set, is called after every finished batch with the
	// number of candidates tested so far and the total.
	Progress func(tested, total int)
}

// NewHarvester returns a Harvester with default limits and fallbacks.
func NewHarvester(sources []shelfscout.ProxySource, verifier shelfscout.ProxyVerifier, cache shelfscout.ProxyCache) *Harvester {
	return &Harvester{
		Sources:       sources,
		Verifier:      verifier,
		Cache:         cache,
		Fallbacks:     DefaultFallbacks(),
		Logger:        slog.New(slog.DiscardHandler),
		VerifyURL:     DefaultVerifyURL,
		BatchSize:     DefaultBatchSize,
		MaxCandidates: DefaultMaxCandidates,
		MaxResults:    DefaultMaxResults,
		TestTimeout:   DefaultTestTimeout,
		BatchPause:    DefaultBatchPause,
		TTL:           DefaultTTL,
		Now:           time.Now,
	}
}

// GetProxiesForCountry returns working proxies for country ranked by
// response time. A fresh cache entry is returned as is. Otherwise the
// sources are harvested, candidates tested and the cache entry replaced.
//
// No proxies found is not an error. Errors are returned only when ctx is
// done or the cache cannot be saved; the best list obtained is still
// returned alongside a save error.
func (h *Harvester) GetProxiesForCountry(ctx context.Context, country string) ([]shelfscout.ProxyRecord, error) {
	code := strings.ToUpper(strings.TrimSpace(country))
	if code == "" {
		return nil, shelfscout.Errorf(shelfscout.EINVALID, "country code required")
	}

	entries, err := h.Cache.LoadProxyCache(ctx)
	if err != nil {
		if shelfscout.ErrorCode(err) != shelfscout.ENOTFOUND {
			h.logger().Warn("proxy cache unreadable, starting empty", "err", err)
		}
		entries = make(map[string]*shelfscout.ProxyCacheEntry)
	}
	if e, ok := entries[code]; ok && e.Fresh(h.now(), h.TTL) {
		return e.Proxies, nil
	}

	candidates := h.harvest(ctx, code)
	working, err := h.test(ctx, code, candidates)
	if err != nil {
		return nil, err
	}
	ranked := RankProxies(working, h.MaxResults)

	entries[code] = &shelfscout.ProxyCacheEntry{
		Proxies:   ranked,
		Timestamp: h.now(),
		Count:     len(ranked),
	}
	if err := h.Cache.SaveProxyCache(ctx, entries); err != nil {
		return ranked, fmt.Errorf("saving proxy cache: %w", err)
	}
	return ranked, nil
}

// harvest collects deduplicated candidates from every source, then the
// country's fallbacks, capped at MaxCandidates.
func (h *Harvester) harvest(ctx context.Context, code string) []string {
	seen := make(map[string]bool)
	var candidates []string
	add := func(p string) {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		candidates = append(candidates, p)
	}

	for _, src := range h.Sources {
		proxies, err := src.Fetch(ctx, code)
		if err != nil {
			h.logger().Warn("proxy source failed", "source", src.Name(), "country", code, "err", err)
			continue
		}
		for _, p := range proxies {
			add(p)
		}
	}
	for _, p := range h.Fallbacks[code] {
		add(p)
	}

	if h.MaxCandidates > 0 && len(candidates) > h.MaxCandidates {
		candidates = candidates[:h.MaxCandidates]
	}
	return candidates
}

// test verifies candidates in sequential batches. Within a batch every
// candidate is tested concurrently under its own timeout.
func (h *Harvester) test(ctx context.Context, code string, candidates []string) ([]shelfscout.ProxyRecord, error) {
	size := h.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	var working []shelfscout.ProxyRecord
	for start := 0; start < len(candidates); start += size {
		if start > 0 && h.BatchPause > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(h.BatchPause):
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+size, len(candidates))
		batch := candidates[start:end]
		results := make([]shelfscout.ProxyRecord, len(batch))

		// Tasks never return errors so one failure cannot cancel siblings.
		var g errgroup.Group
		for i, p := range batch {
			g.Go(func() error {
				results[i] = h.testOne(ctx, code, p)
				return nil
			})
		}
		_ = g.Wait()

		for _, r := range results {
			if r.Working {
				working = append(working, r)
			}
		}
		if h.Progress != nil {
			h.Progress(end, len(candidates))
		}
	}
	return working, nil
}

func (h *Harvester) testOne(ctx context.Context, code, proxy string) shelfscout.ProxyRecord {
	rec := shelfscout.ProxyRecord{Proxy: proxy, Country: code}

	tctx, cancel := context.WithTimeout(ctx, h.TestTimeout)
	defer cancel()

	start := time.Now()
	res, err := h.Verifier.Verify(tctx, proxy, h.VerifyURL)
	rec.ResponseTimeMs = time.Since(start).Milliseconds()
	if err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			h.logger().Debug("proxy failed", "proxy", proxy, "err", err)
		}
		return rec
	}
	rec.Working = res != nil && res.Success && res.Origin != ""
	return rec
}

// RankProxies returns the working records sorted ascending by response
// time, keeping at most limit. Ties keep their input order.
func RankProxies(records []shelfscout.ProxyRecord, limit int) []shelfscout.ProxyRecord {
	ranked := make([]shelfscout.ProxyRecord, 0, len(records))
	for _, r := range records {
		if r.Working {
			ranked = append(ranked, r)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ResponseTimeMs < ranked[j].ResponseTimeMs
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func (h *Harvester) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

func (h *Harvester) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}
