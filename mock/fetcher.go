package mock

import (
	"context"

	"github.com/fwojciec/shelfscout"
)

var _ shelfscout.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of shelfscout.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*shelfscout.FetchResult, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*shelfscout.FetchResult, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}
