package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/shelfscout"
)

// Ensure the logging proxy types implement their interfaces.
var (
	_ shelfscout.ProxySource    = (*LoggingProxySource)(nil)
	_ shelfscout.ProxyVerifier  = (*LoggingProxyVerifier)(nil)
	_ shelfscout.ProxyHarvester = (*LoggingProxyHarvester)(nil)
)

// LoggingProxySource wraps a ProxySource with logging.
type LoggingProxySource struct {
	next   shelfscout.ProxySource
	logger *slog.Logger
}

// NewLoggingProxySource creates a new LoggingProxySource.
func NewLoggingProxySource(next shelfscout.ProxySource, logger *slog.Logger) *LoggingProxySource {
	return &LoggingProxySource{next: next, logger: logger}
}

func (s *LoggingProxySource) Name() string {
	return s.next.Name()
}

func (s *LoggingProxySource) Fetch(ctx context.Context, country string) (proxies []string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("proxy source",
			"source", s.next.Name(),
			"country", country,
			"count", len(proxies),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Fetch(ctx, country)
}

// LoggingProxyVerifier wraps a ProxyVerifier with debug logging.
type LoggingProxyVerifier struct {
	next   shelfscout.ProxyVerifier
	logger *slog.Logger
}

// NewLoggingProxyVerifier creates a new LoggingProxyVerifier.
func NewLoggingProxyVerifier(next shelfscout.ProxyVerifier, logger *slog.Logger) *LoggingProxyVerifier {
	return &LoggingProxyVerifier{next: next, logger: logger}
}

func (v *LoggingProxyVerifier) Verify(ctx context.Context, proxy string, target string) (res *shelfscout.VerifyResult, err error) {
	defer func(begin time.Time) {
		v.logger.Debug("proxy verify",
			"proxy", proxy,
			"working", res != nil && res.Success,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return v.next.Verify(ctx, proxy, target)
}

// LoggingProxyHarvester wraps a ProxyHarvester with logging.
type LoggingProxyHarvester struct {
	next   shelfscout.ProxyHarvester
	logger *slog.Logger
}

// NewLoggingProxyHarvester creates a new LoggingProxyHarvester.
func NewLoggingProxyHarvester(next shelfscout.ProxyHarvester, logger *slog.Logger) *LoggingProxyHarvester {
	return &LoggingProxyHarvester{next: next, logger: logger}
}

func (h *LoggingProxyHarvester) GetProxiesForCountry(ctx context.Context, country string) (proxies []shelfscout.ProxyRecord, err error) {
	defer func(begin time.Time) {
		attrs := []any{"country", country, "count", len(proxies)}
		if len(proxies) > 0 {
			attrs = append(attrs, "fastest_ms", proxies[0].ResponseTimeMs)
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		h.logger.Info("proxies", attrs...)
	}(time.Now())
	return h.next.GetProxiesForCountry(ctx, country)
}
