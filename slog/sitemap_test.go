package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"regexp"
	"testing"

	"github.com/fwojciec/shelfscout"
	"github.com/fwojciec/shelfscout/mock"
	shelfslog "github.com/fwojciec/shelfscout/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingSitemapService_DiscoverURLs(t *testing.T) {
	t.Parallel()

	t.Run("logs store, count and filter use", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.SitemapService{
			DiscoverURLsFn: func(context.Context, string, *shelfscout.URLFilter) ([]string, error) {
				return []string{"https://shop.com/products/a", "https://shop.com/products/b"}, nil
			},
		}
		filter := &shelfscout.URLFilter{Include: []*regexp.Regexp{regexp.MustCompile(`/products/`)}}

		svc := shelfslog.NewLoggingSitemapService(inner, logger)
		urls, err := svc.DiscoverURLs(context.Background(), "https://www.shop.com", filter)

		require.NoError(t, err)
		assert.Len(t, urls, 2)
		output := buf.String()
		assert.Contains(t, output, "sitemap products")
		assert.Contains(t, output, "store=shop.com")
		assert.Contains(t, output, "count=2")
		assert.Contains(t, output, "filtered=true")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs failures at debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.SitemapService{
			DiscoverURLsFn: func(context.Context, string, *shelfscout.URLFilter) ([]string, error) {
				return nil, errors.New("connection failed")
			},
		}

		svc := shelfslog.NewLoggingSitemapService(inner, logger)
		_, err := svc.DiscoverURLs(context.Background(), "https://shop.com", nil)

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "level=DEBUG")
		assert.Contains(t, output, "sitemap unavailable")
		assert.Contains(t, output, "filtered=false")
		assert.Contains(t, output, "err=\"connection failed\"")
	})

	t.Run("failures are quiet at info level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.SitemapService{
			DiscoverURLsFn: func(context.Context, string, *shelfscout.URLFilter) ([]string, error) {
				return nil, errors.New("status 404")
			},
		}

		_, _ = shelfslog.NewLoggingSitemapService(inner, logger).DiscoverURLs(context.Background(), "https://shop.com", nil)

		assert.Empty(t, buf.String())
	})
}
