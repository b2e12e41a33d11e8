package crawl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/shelfscout"
)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// FetchWithRetry fetches url with the default backoff.
func FetchWithRetry(ctx context.Context, fetcher shelfscout.Fetcher, url string, logger *slog.Logger) (*shelfscout.FetchResult, error) {
	return FetchWithRetryDelays(ctx, fetcher, url, logger, DefaultRetryDelays())
}

// FetchWithRetryDelays fetches url, retrying transport errors and
// unsuccessful responses once per delay. The last unsuccessful result is
// returned as is so callers can report its reason; an error is returned
// only when the final attempt failed at the transport level or ctx ended.
func FetchWithRetryDelays(ctx context.Context, fetcher shelfscout.Fetcher, url string, logger *slog.Logger, delays []time.Duration) (*shelfscout.FetchResult, error) {
	maxAttempts := len(delays) + 1

	var (
		last    *shelfscout.FetchResult
		lastErr error
	)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		res, err := fetcher.Fetch(ctx, url)
		if err == nil && res != nil && res.Success {
			return res, nil
		}
		last, lastErr = res, err
		if err == nil && res == nil {
			lastErr = errors.New("fetcher returned no result")
		}

		if attempt >= maxAttempts-1 {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if logger != nil {
			logger.Debug("retry", "url", url, "attempt", attempt+2, "err", retryReason(res, lastErr))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return last, nil
}

func retryReason(res *shelfscout.FetchResult, err error) string {
	if err != nil {
		return err.Error()
	}
	if res != nil {
		return res.Error
	}
	return ""
}
