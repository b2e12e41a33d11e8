package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fwojciec/shelfscout"
	"github.com/fwojciec/shelfscout/crawl"
	"github.com/fwojciec/shelfscout/fs"
	shelfhttp "github.com/fwojciec/shelfscout/http"
	"github.com/fwojciec/shelfscout/learn"
	"github.com/fwojciec/shelfscout/proxy"
	shelfslog "github.com/fwojciec/shelfscout/slog"
	"github.com/fwojciec/shelfscout/sqlite"
	"github.com/fwojciec/shelfscout/stats"
)

// DomainHistory finds the records of one domain across runs.
type DomainHistory interface {
	FindDomainHistory(ctx context.Context, domain string, limit int) ([]sqlite.DomainEntry, error)
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Config *Config

	// Fetcher, when set, is used instead of an HTTP fetcher built from Config.
	Fetcher   shelfscout.Fetcher
	Extractor shelfscout.ContentExtractor
	Links     shelfscout.LinkExtractor
	Sitemaps  shelfscout.SitemapService
	Knowledge *learn.KnowledgeBase
	Tracker   *stats.Tracker
	Harvester *proxy.Harvester
	// DomainHistory is only available with the sqlite backend.
	DomainHistory DomainHistory
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"C" env:"SHELFSCOUT_CONFIG" help:"YAML configuration file" type:"path"`
	DataDir string `short:"d" env:"SHELFSCOUT_DATA" help:"Directory for patterns, run history and proxy cache" type:"path"`
	Storage string `help:"Storage backend (fs or sqlite)"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Extract  ExtractCmd  `cmd:"" help:"Extract product content from one page"`
	Run      RunCmd      `cmd:"" help:"Extract a batch of stores or product pages as one run"`
	Proxies  ProxiesCmd  `cmd:"" help:"List working proxies for a country"`
	Suggest  SuggestCmd  `cmd:"" help:"Show what is known about a store and where to look for products"`
	History  HistoryCmd  `cmd:"" help:"Show past runs"`
	Schedule ScheduleCmd `cmd:"" help:"Run a batch on a cron schedule"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	Source  string `arg:"" help:"Product page URL or saved HTML file"`
	URL     string `help:"Page URL to record when Source is a file"`
	JSON    bool   `help:"Print the extraction as JSON"`
	Out     string `short:"o" help:"Write a Markdown review file under this directory" type:"path"`
	Country string `help:"Fetch through a proxy of this country"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	URLs        []string `arg:"" optional:"" help:"Store or product URLs (defaults to the configured stores)"`
	Sitemap     bool     `help:"Try store sitemaps before listing pages"`
	Concurrency int      `short:"c" help:"Concurrent fetch limit"`
	Out         string   `short:"o" help:"Write Markdown review files under this directory" type:"path"`
	Country     string   `help:"Fetch through a proxy of this country"`
}

// ProxiesCmd is the "proxies" subcommand.
type ProxiesCmd struct {
	Country string `arg:"" help:"ISO country code"`
	Refresh bool   `help:"Ignore the cached list"`
}

// SuggestCmd is the "suggest" subcommand.
type SuggestCmd struct {
	Domain string `arg:"" help:"Store domain or URL"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Limit  int    `short:"n" default:"10" help:"Number of runs or records to show"`
	Domain string `help:"Show the records of one domain instead of runs"`
}

// ScheduleCmd is the "schedule" subcommand.
type ScheduleCmd struct {
	URLs    []string `arg:"" optional:"" help:"Store or product URLs (defaults to the configured stores)"`
	Cron    string   `help:"Five-field cron expression (defaults to the configured schedule)"`
	Sitemap bool     `help:"Try store sitemaps before listing pages"`
	Country string   `help:"Fetch through a proxy of this country"`
}

// runOptions are the per-invocation settings of a batch.
type runOptions struct {
	Sitemap     bool
	Concurrency int
	Out         string
	Country     string
}

// fetcher returns the injected fetcher, or an HTTP fetcher routed through
// the fastest working proxy of country. An empty country fetches directly.
func (d *Dependencies) fetcher(ctx context.Context, country string) (shelfscout.Fetcher, error) {
	if d.Fetcher != nil {
		return d.Fetcher, nil
	}
	if country == "" {
		country = d.Config.Fetch.Country
	}
	opts := []shelfhttp.Option{shelfhttp.WithTimeout(d.Config.Fetch.Timeout)}
	if country != "" {
		proxies, err := shelfslog.NewLoggingProxyHarvester(d.Harvester, d.Logger).GetProxiesForCountry(ctx, country)
		if err != nil && len(proxies) == 0 {
			return nil, fmt.Errorf("finding proxies for %s: %w", country, err)
		}
		if len(proxies) == 0 {
			return nil, shelfscout.Errorf(shelfscout.ENOTFOUND, "no working proxies for %s", country)
		}
		opts = append(opts, shelfhttp.WithProxy(proxies[0].Proxy))
	}
	return shelfslog.NewLoggingFetcher(shelfhttp.NewFetcher(opts...), d.Logger), nil
}

// runner builds a batch runner over the shared services.
func (d *Dependencies) runner(ctx context.Context, opts runOptions) (*crawl.Runner, error) {
	fetcher, err := d.fetcher(ctx, opts.Country)
	if err != nil {
		return nil, err
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = d.Config.Fetch.Concurrency
	}

	r := &crawl.Runner{
		Fetcher:       fetcher,
		Extractor:     d.Extractor,
		Knowledge:     shelfslog.NewLoggingKnowledgeBase(d.Knowledge, d.Logger),
		Tracker:       shelfslog.NewLoggingStatsTracker(d.Tracker, d.Logger),
		Links:         d.Links,
		ProductFilter: d.Knowledge.ProductURLFilter,
		Logger:        d.Logger,
		Concurrency:   concurrency,
	}
	r.Limiter = crawl.NewStoreLimiter(d.Config.Fetch.RateLimit, d.Config.Fetch.Burst)
	if opts.Sitemap || d.Config.Fetch.Sitemaps {
		r.Sitemaps = d.Sitemaps
	}
	out := opts.Out
	if out == "" {
		out = d.Config.OutputDir
	}
	if out != "" {
		r.Writer = fs.NewWriter(out)
	}
	return r, nil
}

// targets returns urls, or the configured stores when urls is empty.
func (d *Dependencies) targets(urls []string) ([]string, error) {
	if len(urls) > 0 {
		return urls, nil
	}
	if len(d.Config.Stores) > 0 {
		return d.Config.Stores, nil
	}
	return nil, shelfscout.Errorf(shelfscout.EINVALID, "no URLs given and no stores configured")
}
