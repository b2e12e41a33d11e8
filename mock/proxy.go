package mock

import (
	"context"

	"github.com/fwojciec/shelfscout"
)

var _ shelfscout.ProxySource = (*ProxySource)(nil)

// ProxySource is a mock implementation of shelfscout.ProxySource.
type ProxySource struct {
	FetchFn func(ctx context.Context, country string) ([]string, error)
	NameFn  func() string
}

func (s *ProxySource) Fetch(ctx context.Context, country string) ([]string, error) {
	return s.FetchFn(ctx, country)
}

func (s *ProxySource) Name() string {
	return s.NameFn()
}

var _ shelfscout.ProxyVerifier = (*ProxyVerifier)(nil)

// ProxyVerifier is a mock implementation of shelfscout.ProxyVerifier.
type ProxyVerifier struct {
	VerifyFn func(ctx context.Context, proxy string, target string) (*shelfscout.VerifyResult, error)
}

func (v *ProxyVerifier) Verify(ctx context.Context, proxy string, target string) (*shelfscout.VerifyResult, error) {
	return v.VerifyFn(ctx, proxy, target)
}

var _ shelfscout.ProxyHarvester = (*ProxyHarvester)(nil)

// ProxyHarvester is a mock implementation of shelfscout.ProxyHarvester.
type ProxyHarvester struct {
	GetProxiesForCountryFn func(ctx context.Context, country string) ([]shelfscout.ProxyRecord, error)
}

func (h *ProxyHarvester) GetProxiesForCountry(ctx context.Context, country string) ([]shelfscout.ProxyRecord, error) {
	return h.GetProxiesForCountryFn(ctx, country)
}
