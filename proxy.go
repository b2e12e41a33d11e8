package shelfscout

import (
	"context"
	"time"
)

// ProxyRecord is a tested proxy endpoint.
type ProxyRecord struct {
	Proxy          string `json:"proxy"`
	ResponseTimeMs int64  `json:"responseTime"`
	Working        bool   `json:"working"`
	Country        string `json:"country"`
}

// ProxyCacheEntry is the cached, ranked proxy list of one country.
// Entries are replaced wholesale, never merged.
type ProxyCacheEntry struct {
	Proxies   []ProxyRecord `json:"proxies"`
	Timestamp time.Time     `json:"timestamp"`
	Count     int           `json:"count"`
}

// Fresh reports whether the entry is younger than ttl at now.
func (e *ProxyCacheEntry) Fresh(now time.Time, ttl time.Duration) bool {
	return e != nil && now.Sub(e.Timestamp) < ttl
}

// ProxyCache persists the country code → entry map.
type ProxyCache interface {
	// LoadProxyCache returns ENOTFOUND if nothing has been stored yet.
	LoadProxyCache(ctx context.Context) (map[string]*ProxyCacheEntry, error)
	SaveProxyCache(ctx context.Context, entries map[string]*ProxyCacheEntry) error
}

// ProxySource is an external proxy-list provider.
type ProxySource interface {
	// Fetch returns candidate "host:port" endpoints for a country.
	Fetch(ctx context.Context, country string) ([]string, error)

	// Name identifies the source in logs.
	Name() string
}

// VerifyResult is the response of a proxy verification endpoint.
type VerifyResult struct {
	Success bool
	// Origin is the identity the verification target observed.
	Origin string
}

// ProxyVerifier sends a request to target through proxy.
type ProxyVerifier interface {
	Verify(ctx context.Context, proxy string, target string) (*VerifyResult, error)
}

// ProxyHarvester returns ranked, working proxies for a country.
type ProxyHarvester interface {
	GetProxiesForCountry(ctx context.Context, country string) ([]ProxyRecord, error)
}
