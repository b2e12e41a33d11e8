package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/shelfscout"
)

// Ensure SitemapService implements shelfscout.SitemapService.
var _ shelfscout.SitemapService = (*SitemapService)(nil)

// SitemapService discovers product URLs from store sitemaps via HTTP.
type SitemapService struct {
	client *http.Client

	// MaxURLs stops discovery once this many URLs are collected. Zero
	// means no limit.
	MaxURLs int
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client}
}

// DiscoverURLs finds URLs in a store's sitemaps.
// Returns an empty slice (not nil) if no sitemaps are found.
//
// Sitemap indexes that split products into their own sitemaps, as Shopify
// and BigCommerce do, are narrowed to the product sitemaps. When baseURL has
// a non-root path only URLs below it are returned.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *shelfscout.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	pathPrefix := base.Path
	if pathPrefix == "/" {
		pathPrefix = ""
	}

	sitemapBase := *base
	sitemapBase.Path = ""

	sitemapURLs, err := s.storeSitemaps(ctx, &sitemapBase)
	if err != nil {
		return nil, err
	}
	if len(sitemapURLs) == 0 {
		return []string{}, nil
	}

	allURLs := []string{}
	seenSitemaps := make(map[string]bool)
	seenURLs := make(map[string]bool)

	for _, sitemapURL := range sitemapURLs {
		urls, err := s.processSitemap(ctx, sitemapURL, seenSitemaps)
		if err != nil {
			return nil, err
		}
		for _, u := range urls {
			if seenURLs[u] {
				continue
			}
			seenURLs[u] = true
			if pathPrefix != "" && !matchesPathPrefix(u, pathPrefix) {
				continue
			}
			if filter != nil && !filter.Match(u) {
				continue
			}
			allURLs = append(allURLs, u)
			if s.MaxURLs > 0 && len(allURLs) >= s.MaxURLs {
				return allURLs, nil
			}
		}
	}

	return allURLs, nil
}

// matchesPathPrefix checks if a URL's path starts with the given prefix,
// respecting path boundaries: /shop matches /shop/ and /shop/mug but not
// /shopping.
func matchesPathPrefix(rawURL, prefix string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return strings.HasPrefix(parsed.Path, prefix)
}

// fallbackSitemaps are tried in order when robots.txt names no sitemap.
// WordPress stores running WooCommerce publish their index at
// /sitemap_index.xml.
var fallbackSitemaps = []string{"/sitemap.xml", "/sitemap_index.xml"}

// storeSitemaps returns the sitemaps to read for a store, product sitemaps
// first so MaxURLs is spent on product pages.
func (s *SitemapService) storeSitemaps(ctx context.Context, base *url.URL) ([]string, error) {
	robotsURL := base.ResolveReference(&url.URL{Path: "/robots.txt"})
	if sitemaps, err := s.robotsSitemaps(ctx, robotsURL.String()); err == nil && len(sitemaps) > 0 {
		return productFirst(sitemaps), nil
	}

	for _, path := range fallbackSitemaps {
		sitemapURL := base.ResolveReference(&url.URL{Path: path}).String()
		ok, err := s.exists(ctx, sitemapURL)
		if err != nil {
			// Anything but cancellation counts as missing.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if ok {
			return []string{sitemapURL}, nil
		}
	}
	return nil, nil
}

// robotsSitemaps reads the unique Sitemap: directives of robots.txt.
func (s *SitemapService) robotsSitemaps(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.fetchURL(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "sitemap") {
			continue
		}
		if value = strings.TrimSpace(value); value != "" && !slices.Contains(sitemaps, value) {
			sitemaps = append(sitemaps, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}
	return sitemaps, nil
}

// productFirst moves product sitemaps ahead of the rest, keeping their
// relative order.
func productFirst(sitemaps []string) []string {
	out := slices.Clone(sitemaps)
	slices.SortStableFunc(out, func(a, b string) int {
		pa, pb := isProductSitemap(a), isProductSitemap(b)
		switch {
		case pa && !pb:
			return -1
		case pb && !pa:
			return 1
		}
		return 0
	})
	return out
}

// processSitemap fetches and parses a sitemap, handling both urlset and sitemapindex.
func (s *SitemapService) processSitemap(ctx context.Context, sitemapURL string, seen map[string]bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if seen[sitemapURL] {
		return nil, nil
	}
	seen[sitemapURL] = true

	body, err := s.fetchURL(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return nil, fmt.Errorf("parsing sitemap XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty sitemap XML")
	}

	if root.Tag == "sitemapindex" {
		return s.processSitemapIndex(ctx, root, seen)
	}
	return parseURLSet(root), nil
}

// processSitemapIndex processes a <sitemapindex> element recursively,
// restricted to product sitemaps when the index names any.
func (s *SitemapService) processSitemapIndex(ctx context.Context, root *etree.Element, seen map[string]bool) ([]string, error) {
	var children, products []string
	for _, sitemap := range root.SelectElements("sitemap") {
		loc := sitemap.SelectElement("loc")
		if loc == nil {
			continue
		}
		sitemapURL := strings.TrimSpace(loc.Text())
		if sitemapURL == "" {
			continue
		}
		children = append(children, sitemapURL)
		if isProductSitemap(sitemapURL) {
			products = append(products, sitemapURL)
		}
	}
	if len(products) > 0 {
		children = products
	}

	var allURLs []string
	for _, sitemapURL := range children {
		urls, err := s.processSitemap(ctx, sitemapURL, seen)
		if err != nil {
			return nil, err
		}
		allURLs = append(allURLs, urls...)
	}
	return allURLs, nil
}

func isProductSitemap(sitemapURL string) bool {
	u, err := url.Parse(sitemapURL)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(u.Path), "product")
}

// parseURLSet extracts URLs from a <urlset> element.
func parseURLSet(root *etree.Element) []string {
	var urls []string
	for _, urlEl := range root.SelectElements("url") {
		loc := urlEl.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// fetchURL fetches a URL and returns the response body.
func (s *SitemapService) fetchURL(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	req, err := newRequest(ctx, http.MethodGet, targetURL)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, targetURL)
	}

	return resp.Body, nil
}

// exists reports whether targetURL answers a HEAD request with 200 OK.
func (s *SitemapService) exists(ctx context.Context, targetURL string) (bool, error) {
	req, err := newRequest(ctx, http.MethodHead, targetURL)
	if err != nil {
		return false, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
