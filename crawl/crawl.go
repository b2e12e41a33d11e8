// Package crawl runs extraction batches. It resolves store roots to product
// pages, fetches and extracts them concurrently, and feeds the outcomes to
// the knowledge base and the stats tracker.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/shelfscout"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of targets processed at once.
const DefaultConcurrency = 5

// Frontier sizing for a run.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate for deduplication.
	frontierFalsePositiveRate = 0.01
)

// Runner processes a batch of store and product URLs as one run.
//
// Fetching and extraction fan out across goroutines; learning, recording and
// writing happen on the calling goroutine in input order, so the knowledge
// base and tracker need no locking of their own.
type Runner struct {
	Fetcher   shelfscout.Fetcher
	Extractor shelfscout.ContentExtractor
	Knowledge shelfscout.KnowledgeBase
	Tracker   shelfscout.StatsTracker

	// Links finds product links on listing pages. Without it store roots
	// can only be resolved through Sitemaps.
	Links shelfscout.LinkExtractor
	// Sitemaps is tried before listing pages when set.
	Sitemaps shelfscout.SitemapService
	// Writer receives every successful extraction when set.
	Writer shelfscout.ExtractionWriter
	// Limiter throttles requests per store when set.
	Limiter Limiter
	// ProductFilter returns the learned product URL filter of a domain.
	ProductFilter func(domain string) (*shelfscout.URLFilter, bool)

	Logger      *slog.Logger
	Concurrency int
	RetryDelays []time.Duration
}

// Result holds the outcome of a run.
type Result struct {
	Run       *shelfscout.RunSummary
	Succeeded int
	Failed    int
	// Bytes is the total HTML size of fetched product pages.
	Bytes int
}

// ProgressEvent reports progress during a run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	Domain    string
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting run progress.
type ProgressFunc func(event ProgressEvent)

// outcome is what processing one target produced.
type outcome struct {
	position   int
	target     Target
	domain     string
	url        string
	discovery  *Discovery
	extraction *shelfscout.ProductExtraction
	bytes      int
	err        error
}

// Run processes urls, records every outcome and saves the run.
// Bare store URLs go through listing discovery first; URLs with a path are
// extracted directly. Duplicates are processed once.
func (r *Runner) Run(ctx context.Context, urls []string, progress ProgressFunc) (*Result, error) {
	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	for _, u := range urls {
		if t, ok := NewTarget(u); ok {
			frontier.Push(t)
		}
	}
	targets := frontier.Drain()
	total := len(targets)

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	resultCh := make(chan outcome, total)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, t := range targets {
			g.Go(func() error {
				resultCh <- r.process(gctx, i, t)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	// Collect results in order
	outcomes := make([]outcome, total)
	completed := 0
	for out := range resultCh {
		completed++
		outcomes[out.position] = out
		if progress == nil {
			continue
		}
		event := ProgressEvent{
			Type:      ProgressCompleted,
			Completed: completed,
			Total:     total,
			Domain:    out.domain,
			URL:       out.url,
		}
		if out.err != nil {
			event.Type = ProgressFailed
			event.Error = out.err
		}
		progress(event)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result Result
	for _, out := range outcomes {
		if r.record(ctx, out) {
			result.Succeeded++
			result.Bytes += out.bytes
		} else {
			result.Failed++
		}
	}

	summary, err := r.Tracker.SaveRun(ctx)
	if err != nil {
		return &result, fmt.Errorf("saving run: %w", err)
	}
	result.Run = summary

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	}

	return &result, nil
}

// NewTarget classifies a user-supplied URL. A missing scheme defaults to
// https. URLs without a host are rejected.
func NewTarget(raw string) (Target, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Target{}, false
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return Target{}, false
	}
	if u.Path == "" || u.Path == "/" {
		return Target{URL: u.Scheme + "://" + u.Host, Priority: PriorityStore}, true
	}
	return Target{URL: raw, Priority: PriorityProduct}, true
}

// process resolves, fetches and extracts a single target.
func (r *Runner) process(ctx context.Context, position int, t Target) outcome {
	out := outcome{
		position: position,
		target:   t,
		domain:   shelfscout.NormalizeHostname(t.URL),
		url:      t.URL,
	}

	if t.Priority == PriorityStore {
		d, err := r.Discover(ctx, t.URL)
		out.discovery = d
		if err != nil {
			out.err = err
			return out
		}
		out.url = d.ProductURLs[0]
	}

	res, err := r.fetch(ctx, out.url)
	if err != nil {
		out.err = err
		return out
	}
	if !res.Success {
		out.err = shelfscout.Errorf(shelfscout.EINTERNAL, "fetch %s: %s", out.url, res.Error)
		return out
	}

	pageURL := out.url
	if res.FinalURL != "" {
		pageURL = res.FinalURL
	}
	out.bytes = len(res.Content)
	out.extraction = r.Extractor.Extract(res.Content, pageURL)
	if out.extraction.Outcome == shelfscout.OutcomeEmpty {
		out.err = shelfscout.Errorf(shelfscout.ENOTFOUND, "no product content found at %s", pageURL)
	}
	return out
}

// fetch waits for the store's rate limit and fetches url with retries.
func (r *Runner) fetch(ctx context.Context, rawURL string) (*shelfscout.FetchResult, error) {
	if r.Limiter != nil {
		if err := r.Limiter.Wait(ctx, rawURL); err != nil {
			return nil, err
		}
	}
	delays := r.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return FetchWithRetryDelays(ctx, r.Fetcher, rawURL, r.Logger, delays)
}

// record applies one outcome to the knowledge base, the writer and the
// tracker. It reports whether the outcome was a success.
func (r *Runner) record(ctx context.Context, out outcome) bool {
	logger := r.logger()

	result := shelfscout.DomainResult{
		Domain:     out.domain,
		URL:        out.url,
		Success:    out.err == nil,
		Extraction: out.extraction,
	}
	if out.extraction != nil {
		result.Platform = out.extraction.Platform
		result.DetectionSuccess = out.extraction.Platform.IsKnown()
	}

	var obs shelfscout.Observation
	var attempted []string
	if out.discovery != nil {
		obs.PLPPath = out.discovery.PLPPath
		obs.ProductURLs = out.discovery.ProductURLs
		attempted = out.discovery.Attempted
	}

	if result.Success {
		obs.Extraction = out.extraction
		if err := r.Knowledge.LearnFromSuccess(ctx, out.domain, obs); err != nil {
			logger.Warn("learning from success", "domain", out.domain, "err", err)
		}
		if r.Writer != nil {
			if err := r.Writer.WriteExtraction(ctx, out.extraction); err != nil {
				logger.Warn("writing extraction", "url", out.extraction.URL, "err", err)
			}
		}
	} else {
		result.Error = failureReason(out.err)
		if err := r.Knowledge.LearnFromFailure(ctx, out.domain, result.Error, attempted); err != nil {
			logger.Warn("learning from failure", "domain", out.domain, "err", err)
		}
	}

	r.Tracker.RecordDomainResult(result)
	return result.Success
}

// failureReason is the message stored with a failed domain record.
func failureReason(err error) string {
	var e *shelfscout.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}
