package mock

import "github.com/fwojciec/shelfscout"

var _ shelfscout.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of shelfscout.LinkExtractor.
type LinkExtractor struct {
	ProductLinksFn func(html string, baseURL string) []string
}

func (l *LinkExtractor) ProductLinks(html string, baseURL string) []string {
	return l.ProductLinksFn(html, baseURL)
}
