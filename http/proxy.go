package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/fwojciec/shelfscout"
	"github.com/tidwall/gjson"
)

// MaxListSize caps how much of a proxy list response is read.
const MaxListSize = 2 << 20

// ProxyURL turns "host:port" into an http proxy URL. Values that already
// carry a scheme are parsed as is.
func ProxyURL(proxy string) (*url.URL, error) {
	if !strings.Contains(proxy, "://") {
		proxy = "http://" + proxy
	}
	u, err := url.Parse(proxy)
	if err != nil {
		return nil, shelfscout.Errorf(shelfscout.EINVALID, "invalid proxy %q", proxy)
	}
	if u.Host == "" {
		return nil, shelfscout.Errorf(shelfscout.EINVALID, "invalid proxy %q", proxy)
	}
	return u, nil
}

func proxyTransport(proxy *url.URL) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.Proxy = http.ProxyURL(proxy)
	return t
}

// Ensure the sources implement shelfscout.ProxySource at compile time.
var (
	_ shelfscout.ProxySource = (*TextListSource)(nil)
	_ shelfscout.ProxySource = (*JSONListSource)(nil)
)

// TextListSource reads a plain-text list with one "host:port" per line.
// URLTemplate may contain {country}, replaced with the country code.
type TextListSource struct {
	SourceName  string
	URLTemplate string
	Client      *http.Client
}

func (s *TextListSource) Name() string { return s.SourceName }

// Fetch returns the valid endpoints of the list. Lines that are not
// host:port pairs are skipped.
func (s *TextListSource) Fetch(ctx context.Context, country string) ([]string, error) {
	body, err := getList(ctx, s.Client, expandCountry(s.URLTemplate, country))
	if err != nil {
		return nil, err
	}

	var proxies []string
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if p, ok := hostPort(line); ok {
			proxies = append(proxies, p)
		}
	}
	return proxies, scanner.Err()
}

// JSONListSource reads a JSON list of {ip, port} objects, either as a
// top-level array or under a "data" key. Port may be a number or a string.
// Entries with a "country" field naming another country are skipped.
type JSONListSource struct {
	SourceName  string
	URLTemplate string
	Client      *http.Client
}

func (s *JSONListSource) Name() string { return s.SourceName }

// Fetch returns the endpoints of the list. A malformed response yields no
// endpoints and no error.
func (s *JSONListSource) Fetch(ctx context.Context, country string) ([]string, error) {
	body, err := getList(ctx, s.Client, expandCountry(s.URLTemplate, country))
	if err != nil {
		return nil, err
	}
	return ParseJSONProxyList(body, country), nil
}

// ParseJSONProxyList extracts host:port endpoints from a proxy-list JSON
// document.
func ParseJSONProxyList(body, country string) []string {
	if !gjson.Valid(body) {
		return nil
	}

	list := gjson.Parse(body)
	if !list.IsArray() {
		list = list.Get("data")
	}
	if !list.IsArray() {
		return nil
	}

	var proxies []string
	list.ForEach(func(_, item gjson.Result) bool {
		host := item.Get("ip").String()
		port := item.Get("port").String()
		if c := item.Get("country").String(); c != "" && country != "" && !strings.EqualFold(c, country) {
			return true
		}
		if p, ok := hostPort(net.JoinHostPort(host, port)); ok {
			proxies = append(proxies, p)
		}
		return true
	})
	return proxies
}

func expandCountry(template, country string) string {
	return strings.ReplaceAll(template, "{country}", url.QueryEscape(strings.ToUpper(country)))
}

// hostPort validates and normalizes a "host:port" pair.
func hostPort(s string) (string, bool) {
	host, port, err := net.SplitHostPort(strings.TrimSpace(s))
	if err != nil || host == "" || port == "" {
		return "", false
	}
	for _, r := range port {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return net.JoinHostPort(host, port), true
}

func getList(ctx context.Context, client *http.Client, target string) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := newRequest(ctx, http.MethodGet, target)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, target)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxListSize))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Ensure ProxyVerifier implements shelfscout.ProxyVerifier at compile time.
var _ shelfscout.ProxyVerifier = (*ProxyVerifier)(nil)

// ProxyVerifier requests an echo endpoint through a candidate proxy and
// reads the "origin" field of its JSON response.
type ProxyVerifier struct{}

// NewProxyVerifier creates a new ProxyVerifier.
func NewProxyVerifier() *ProxyVerifier {
	return &ProxyVerifier{}
}

// Verify sends a GET to target through proxy. A response without an
// origin field is unsuccessful but not an error.
func (v *ProxyVerifier) Verify(ctx context.Context, proxy string, target string) (*shelfscout.VerifyResult, error) {
	proxyURL, err := ProxyURL(proxy)
	if err != nil {
		return nil, err
	}

	transport := proxyTransport(proxyURL)
	defer transport.CloseIdleConnections()
	client := &http.Client{Transport: transport}

	body, err := getList(ctx, client, target)
	if err != nil {
		return nil, err
	}

	origin := gjson.Get(body, "origin").String()
	return &shelfscout.VerifyResult{Success: origin != "", Origin: origin}, nil
}
