package goquery

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/shelfscout"
)

var _ shelfscout.LinkExtractor = (*LinkExtractor)(nil)

// productPathPatterns match product page paths of the supported platforms
// and the common generic layouts.
var productPathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/products?/[^/]+`),
	regexp.MustCompile(`/product-page/[^/]+`),
	regexp.MustCompile(`/shop/p/[^/]+`),
	regexp.MustCompile(`/p/[^/]+`),
	regexp.MustCompile(`/dp/[A-Za-z0-9]+`),
	regexp.MustCompile(`-p-\d+`),
	regexp.MustCompile(`/[^/]+\.html$`),
}

// nonProductPaths are listing and account paths that happen to match the
// generic patterns above.
var nonProductPaths = []string{"/cart", "/account", "/login", "/checkout", "/search", "/pages/", "/blogs/"}

// LinkExtractor collects product links from listing pages.
type LinkExtractor struct {
	// Filter, when set, replaces the built-in product path heuristics.
	Filter *shelfscout.URLFilter
}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// ProductLinks returns product URLs linked from a listing page.
func (l *LinkExtractor) ProductLinks(rawHTML string, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u, err := base.Parse(strings.TrimSpace(href))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return
		}
		if shelfscout.NormalizeHostname(u.Host) != shelfscout.NormalizeHostname(base.Host) {
			return
		}
		u.Fragment = ""
		u.RawQuery = ""
		abs := u.String()
		if seen[abs] || !l.isProduct(u.Path, abs) {
			return
		}
		seen[abs] = true
		links = append(links, abs)
	})
	return links
}

func (l *LinkExtractor) isProduct(path, abs string) bool {
	if l.Filter != nil {
		return l.Filter.Match(abs)
	}
	lower := strings.ToLower(path)
	for _, p := range nonProductPaths {
		if strings.Contains(lower, p) {
			return false
		}
	}
	for _, re := range productPathPatterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
