package shelfscout

// LinkExtractor finds product page links on a listing page.
type LinkExtractor interface {
	// ProductLinks returns absolute, same-host product URLs found in html,
	// in document order and without duplicates. baseURL resolves relative
	// hrefs.
	ProductLinks(html string, baseURL string) []string
}
