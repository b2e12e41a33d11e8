package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	StorageFS     = "fs"
	StorageSQLite = "sqlite"
)

// Config is the optional YAML configuration file.
type Config struct {
	// DataDir holds the pattern store, run history and proxy cache.
	DataDir string `yaml:"data_dir"`
	// Storage is "fs" (JSON files) or "sqlite".
	Storage string `yaml:"storage"`
	// OutputDir receives Markdown review files when set.
	OutputDir string `yaml:"output_dir"`
	// Stores are the default targets of run and schedule.
	Stores []string `yaml:"stores"`
	// Schedule is the default cron expression of schedule.
	Schedule string `yaml:"schedule"`

	Fetch FetchConfig `yaml:"fetch"`
	Proxy ProxyConfig `yaml:"proxy"`
}

// FetchConfig configures page fetching.
type FetchConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
	// RateLimit is the number of requests per second sent to one store.
	RateLimit float64 `yaml:"rate_limit"`
	// Burst is the number of back-to-back requests a store may receive.
	Burst int `yaml:"burst"`
	// Country routes fetches through a harvested proxy of that country.
	Country string `yaml:"country"`
	// Sitemaps enables sitemap discovery for store roots.
	Sitemaps bool `yaml:"sitemaps"`
}

// ProxyConfig configures the proxy harvester.
type ProxyConfig struct {
	VerifyURL string              `yaml:"verify_url"`
	TTL       time.Duration       `yaml:"ttl"`
	Sources   []SourceConfig      `yaml:"sources"`
	Fallbacks map[string][]string `yaml:"fallbacks"`
}

// SourceConfig is one proxy-list provider. URL may contain {country}.
type SourceConfig struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Format string `yaml:"format"`
}

// Proxy-list formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// DefaultSources are used when the configuration names no proxy sources.
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{
			Name:   "proxyscrape",
			URL:    "https://api.proxyscrape.com/v2/?request=displayproxies&protocol=http&timeout=5000&country={country}",
			Format: FormatText,
		},
		{
			Name:   "geonode",
			URL:    "https://proxylist.geonode.com/api/proxy-list?limit=100&protocols=http&country={country}",
			Format: FormatJSON,
		},
	}
}

// LoadConfig reads the YAML file at path and applies defaults.
// A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}
	cfg.applyDefaults()
	return cfg, cfg.Validate()
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
	if c.Storage == "" {
		c.Storage = StorageFS
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 15 * time.Second
	}
	if c.Fetch.Concurrency == 0 {
		c.Fetch.Concurrency = 5
	}
	if c.Fetch.RateLimit == 0 {
		c.Fetch.RateLimit = 1
	}
	if c.Fetch.Burst == 0 {
		c.Fetch.Burst = 1
	}
	if len(c.Proxy.Sources) == 0 {
		c.Proxy.Sources = DefaultSources()
	}
	for i := range c.Proxy.Sources {
		if c.Proxy.Sources[i].Format == "" {
			c.Proxy.Sources[i].Format = FormatText
		}
	}
}

// Validate reports configuration values that cannot be used.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageFS, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage %q (want %q or %q)", c.Storage, StorageFS, StorageSQLite)
	}
	for _, s := range c.Proxy.Sources {
		if s.URL == "" {
			return fmt.Errorf("proxy source %q has no url", s.Name)
		}
		if s.Format != FormatText && s.Format != FormatJSON {
			return fmt.Errorf("proxy source %q: unknown format %q", s.Name, s.Format)
		}
	}
	if c.Fetch.RateLimit < 0 {
		return fmt.Errorf("fetch.rate_limit must not be negative")
	}
	return nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".shelfscout"
	}
	return filepath.Join(home, ".shelfscout")
}
