package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/shelfscout"
)

// Ensure LoggingFetcher implements shelfscout.Fetcher.
var _ shelfscout.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging.
type LoggingFetcher struct {
	next   shelfscout.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next shelfscout.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (res *shelfscout.FetchResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", url, "duration", time.Since(begin)}
		if res != nil {
			attrs = append(attrs, "success", res.Success, "bytes", len(res.Content))
			if res.FinalURL != "" && res.FinalURL != url {
				attrs = append(attrs, "final_url", res.FinalURL)
			}
			if res.Error != "" {
				attrs = append(attrs, "reason", res.Error)
			}
		}
		attrs = append(attrs, "err", err)
		f.logger.Info("fetch", attrs...)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
