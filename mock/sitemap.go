package mock

import (
	"context"

	"github.com/fwojciec/shelfscout"
)

var _ shelfscout.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of shelfscout.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *shelfscout.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *shelfscout.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}
