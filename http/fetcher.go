// Package http provides the HTTP adapters of shelfscout: a page fetcher for
// stores that don't require JavaScript rendering, sitemap discovery, proxy
// list sources and a proxy verifier.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/shelfscout"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgent identifies requests made by shelfscout.
const DefaultUserAgent = "Mozilla/5.0 (compatible; shelfscout/1.0)"

// MaxBodySize caps how much of a page is read.
const MaxBodySize = 10 << 20

// Ensure Fetcher implements shelfscout.Fetcher at compile time.
var _ shelfscout.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using HTTP requests.
// It does not execute JavaScript.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	proxy   *url.URL
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithProxy routes every request through the given "host:port" proxy.
// An empty proxy is ignored.
func WithProxy(proxy string) Option {
	return func(f *Fetcher) {
		if proxy == "" {
			return
		}
		if u, err := ProxyURL(proxy); err == nil {
			f.proxy = u
		}
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}
	if f.proxy != nil {
		f.client.Transport = proxyTransport(f.proxy)
	}

	return f
}

// Fetch retrieves the HTML content from the given URL. A non-200 response
// is reported as an unsuccessful result rather than an error; errors are
// reserved for transport failures.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*shelfscout.FetchResult, error) {
	req, err := newRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	result := &shelfscout.FetchResult{FinalURL: rawURL}
	if resp.Request != nil && resp.Request.URL != nil {
		result.FinalURL = resp.Request.URL.String()
	}

	if resp.StatusCode != http.StatusOK {
		result.Error = fmt.Sprintf("HTTP %d for %s", resp.StatusCode, rawURL)
		return result, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, err
	}

	result.Success = true
	result.Content = string(body)
	return result, nil
}

// Close releases idle connections.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

func newRequest(ctx context.Context, method, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	return req, nil
}
