package shelfscout

import "context"

// FetchResult is the output of the page fetch service.
type FetchResult struct {
	Success bool
	Content string
	// FinalURL is the URL after redirects.
	FinalURL string
	// Error describes why an unsuccessful fetch failed.
	Error string
}

// Fetcher turns a URL into HTML. The extraction core never calls it; it
// belongs to the outer fetch layer.
type Fetcher interface {
	// Fetch retrieves the page at url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (*FetchResult, error)

	// Close releases resources held by the fetcher.
	Close() error
}
