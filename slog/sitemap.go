package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/shelfscout"
)

var _ shelfscout.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService logs every sitemap lookup of a store.
type LoggingSitemapService struct {
	next   shelfscout.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService wraps next.
func NewLoggingSitemapService(next shelfscout.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverURLs logs the store, the number of product URLs kept and whether
// a filter narrowed them. A missing sitemap is common, so failures are
// logged at debug level.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *shelfscout.URLFilter) (urls []string, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"store", shelfscout.NormalizeHostname(baseURL),
			"filtered", filter != nil,
			"duration", time.Since(begin),
		}
		if err != nil {
			s.logger.Debug("sitemap unavailable", append(attrs, "err", err)...)
			return
		}
		s.logger.Info("sitemap products", append(attrs, "count", len(urls))...)
	}(time.Now())
	return s.next.DiscoverURLs(ctx, baseURL, filter)
}
