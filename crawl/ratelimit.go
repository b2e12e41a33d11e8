package crawl

import (
	"context"
	"sync"

	"github.com/fwojciec/shelfscout"
	"golang.org/x/time/rate"
)

// Limiter throttles requests per store.
type Limiter interface {
	// Wait blocks until a request to store is allowed.
	Wait(ctx context.Context, store string) error
}

var _ Limiter = (*StoreLimiter)(nil)

// StoreLimiter gives every store its own token bucket. Stores are keyed by
// normalized hostname, so www.shop.com and shop.com share one budget.
type StoreLimiter struct {
	mu     sync.Mutex
	stores map[string]*rate.Limiter
	limit  rate.Limit
	burst  int
}

// NewStoreLimiter returns a limiter allowing perSecond requests to each
// store with the given burst. A perSecond of zero or less never waits.
func NewStoreLimiter(perSecond float64, burst int) *StoreLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &StoreLimiter{
		stores: make(map[string]*rate.Limiter),
		limit:  limit,
		burst:  max(burst, 1),
	}
}

// Wait blocks until the store's bucket has a token or ctx is done.
func (l *StoreLimiter) Wait(ctx context.Context, store string) error {
	return l.bucket(shelfscout.NormalizeHostname(store)).Wait(ctx)
}

// Stores returns the number of stores seen so far.
func (l *StoreLimiter) Stores() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.stores)
}

func (l *StoreLimiter) bucket(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.stores[host]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.stores[host] = b
	}
	return b
}
