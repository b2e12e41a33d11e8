package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/shelfscout"
)

// Ensure LoggingExtractor implements shelfscout.ContentExtractor.
var _ shelfscout.ContentExtractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps a ContentExtractor with logging of the
// completeness metrics of every extraction.
type LoggingExtractor struct {
	next   shelfscout.ContentExtractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next shelfscout.ContentExtractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the result.
func (e *LoggingExtractor) Extract(html, url string) *shelfscout.ProductExtraction {
	begin := time.Now()
	p := e.next.Extract(html, url)
	e.logger.Info("extract",
		"url", url,
		"platform", p.Platform.String(),
		"outcome", p.Outcome,
		"chars", p.Metrics.TotalChars,
		"estimated", p.Metrics.EstimatedTotalChars,
		"capture_rate", p.Metrics.CaptureRate,
		"quality", p.Metrics.Quality,
		"sources", p.ExtractedSources,
		"missed", p.MissedContent,
		"duration", time.Since(begin),
	)
	return p
}

// Ensure LoggingDetector implements shelfscout.PlatformDetector.
var _ shelfscout.PlatformDetector = (*LoggingDetector)(nil)

// LoggingDetector wraps a PlatformDetector with debug logging.
type LoggingDetector struct {
	next   shelfscout.PlatformDetector
	logger *slog.Logger
}

// NewLoggingDetector creates a new LoggingDetector.
func NewLoggingDetector(next shelfscout.PlatformDetector, logger *slog.Logger) *LoggingDetector {
	return &LoggingDetector{next: next, logger: logger}
}

// Detect detects the platform and logs it.
func (d *LoggingDetector) Detect(html string) shelfscout.Platform {
	begin := time.Now()
	platform := d.next.Detect(html)
	d.logger.Debug("platform detection",
		"platform", platform.String(),
		"duration", time.Since(begin),
	)
	return platform
}

// Ensure LoggingLinkExtractor implements shelfscout.LinkExtractor.
var _ shelfscout.LinkExtractor = (*LoggingLinkExtractor)(nil)

// LoggingLinkExtractor wraps a LinkExtractor with debug logging.
type LoggingLinkExtractor struct {
	next   shelfscout.LinkExtractor
	logger *slog.Logger
}

// NewLoggingLinkExtractor creates a new LoggingLinkExtractor.
func NewLoggingLinkExtractor(next shelfscout.LinkExtractor, logger *slog.Logger) *LoggingLinkExtractor {
	return &LoggingLinkExtractor{next: next, logger: logger}
}

// ProductLinks delegates to the wrapped extractor and logs how many links it found.
func (l *LoggingLinkExtractor) ProductLinks(html, baseURL string) []string {
	links := l.next.ProductLinks(html, baseURL)
	l.logger.Debug("product links", "url", baseURL, "count", len(links))
	return links
}
