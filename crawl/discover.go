package crawl

import (
	"context"
	"net/url"
	"regexp"
	"slices"

	"github.com/fwojciec/shelfscout"
)

// MaxDiscoveredProducts caps the product URLs kept from one discovery.
const MaxDiscoveredProducts = 20

// defaultProductFilter narrows sitemap URLs to product pages when nothing
// has been learned about a store yet.
var defaultProductFilter = &shelfscout.URLFilter{
	Include: []*regexp.Regexp{
		regexp.MustCompile(`(?i)/(products?|product-page|p|dp)/[^/]+`),
		regexp.MustCompile(`(?i)-p-\d+`),
	},
}

// Discovery is what listing discovery found for a store.
type Discovery struct {
	// PLPPath is the listing path the products were found on. Empty when
	// they came from the sitemap.
	PLPPath     string
	ProductURLs []string
	// Attempted lists the listing paths that were fetched.
	Attempted []string
}

// Discover resolves a store root to product page URLs. The sitemap is tried
// first; then the knowledge base's listing path suggestions are fetched in
// order until one links to products. A store with no reachable listing
// returns the attempted paths together with an ENOTFOUND error.
func (r *Runner) Discover(ctx context.Context, storeURL string) (*Discovery, error) {
	u, err := url.Parse(storeURL)
	if err != nil || u.Host == "" {
		return &Discovery{}, shelfscout.Errorf(shelfscout.EINVALID, "invalid store URL %q", storeURL)
	}
	base := u.Scheme + "://" + u.Host
	domain := shelfscout.NormalizeHostname(u.Host)
	learned, hasLearned := r.learnedFilter(domain)
	filter := defaultProductFilter
	if hasLearned {
		filter = learned
	}
	logger := r.logger()

	d := &Discovery{}

	if r.Sitemaps != nil {
		urls, err := r.Sitemaps.DiscoverURLs(ctx, base, filter)
		switch {
		case err != nil && ctx.Err() != nil:
			return d, ctx.Err()
		case err != nil:
			logger.Debug("sitemap unavailable", "domain", domain, "err", err)
		case len(urls) > 0:
			d.ProductURLs = capURLs(urls)
			return d, nil
		}
	}

	if r.Links == nil {
		return d, shelfscout.Errorf(shelfscout.ENOTFOUND, "no product URLs found for %s", domain)
	}

	for _, s := range r.Knowledge.SuggestionsForDomain(domain) {
		if slices.Contains(d.Attempted, s.Path) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return d, err
		}
		d.Attempted = append(d.Attempted, s.Path)

		pageURL := base + s.Path
		res, err := r.fetch(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return d, ctx.Err()
			}
			logger.Debug("listing fetch failed", "url", pageURL, "err", err)
			continue
		}
		if !res.Success {
			logger.Debug("listing unavailable", "url", pageURL, "reason", res.Error)
			continue
		}
		if res.FinalURL != "" {
			pageURL = res.FinalURL
		}

		links := r.Links.ProductLinks(res.Content, pageURL)
		if hasLearned {
			links = learned.Filter(links)
		}
		if len(links) == 0 {
			continue
		}

		d.PLPPath = s.Path
		d.ProductURLs = capURLs(links)
		return d, nil
	}

	return d, shelfscout.Errorf(shelfscout.ENOTFOUND, "no product listing found for %s after %d path(s)", domain, len(d.Attempted))
}

func (r *Runner) learnedFilter(domain string) (*shelfscout.URLFilter, bool) {
	if r.ProductFilter == nil {
		return nil, false
	}
	return r.ProductFilter(domain)
}

func capURLs(urls []string) []string {
	if len(urls) > MaxDiscoveredProducts {
		urls = urls[:MaxDiscoveredProducts]
	}
	return append([]string(nil), urls...)
}
