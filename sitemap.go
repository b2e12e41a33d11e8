package shelfscout

import (
	"context"
	"regexp"
	"slices"
)

// SitemapService lists a store's URLs from its sitemaps.
type SitemapService interface {
	// DiscoverURLs reads the sitemaps announced in robots.txt, or
	// /sitemap.xml when none are, following sitemap indexes. Only URLs
	// accepted by filter are returned; a nil filter accepts everything.
	DiscoverURLs(ctx context.Context, baseURL string, filter *URLFilter) ([]string, error)
}

// URLFilter selects URLs by pattern. Product URL templates learned for a
// store are compiled into filters of this kind.
type URLFilter struct {
	// Include, when non-empty, keeps only URLs matching one of the patterns.
	Include []*regexp.Regexp

	// Exclude drops URLs matching any pattern, after Include.
	Exclude []*regexp.Regexp
}

// Match reports whether url passes the filter. A nil filter passes all URLs.
func (f *URLFilter) Match(url string) bool {
	if f == nil {
		return true
	}
	matches := func(re *regexp.Regexp) bool { return re.MatchString(url) }
	if len(f.Include) > 0 && !slices.ContainsFunc(f.Include, matches) {
		return false
	}
	return !slices.ContainsFunc(f.Exclude, matches)
}

// Filter returns the urls that pass the filter, in order.
func (f *URLFilter) Filter(urls []string) []string {
	var kept []string
	for _, u := range urls {
		if f.Match(u) {
			kept = append(kept, u)
		}
	}
	return kept
}
