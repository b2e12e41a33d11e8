package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/shelfscout"
	"github.com/fwojciec/shelfscout/fs"
	"github.com/fwojciec/shelfscout/goquery"
	"github.com/fwojciec/shelfscout/htmltomarkdown"
	shelfhttp "github.com/fwojciec/shelfscout/http"
	"github.com/fwojciec/shelfscout/learn"
	"github.com/fwojciec/shelfscout/proxy"
	shelfslog "github.com/fwojciec/shelfscout/slog"
	"github.com/fwojciec/shelfscout/sqlite"
	"github.com/fwojciec/shelfscout/stats"
)

// DatabaseFile is the SQLite database name inside the data directory.
const DatabaseFile = "shelfscout.db"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database, open only with the sqlite backend.
	DB *sqlite.DB

	// Fetcher replaces the HTTP fetcher for end-to-end testing.
	Fetcher shelfscout.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("shelfscout"),
		kong.Description("Extract product descriptions from online stores and track extraction quality"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'shelfscout --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := m.config(cli)
	if err != nil {
		return err
	}
	deps.Config = cfg
	deps.Logger = newLogger(stderr, cli.Verbose)

	if err := m.wire(ctx, deps); err != nil {
		return err
	}
	defer m.Close()

	return kongCtx.Run(deps)
}

// config loads the configuration file and applies flag overrides.
func (m *Main) config(cli *CLI) (*Config, error) {
	path := cli.Config
	if path == "" {
		dir := cli.DataDir
		if dir == "" {
			dir = defaultDataDir()
		}
		path = filepath.Join(dir, "config.yaml")
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if cli.DataDir != "" {
		cfg.DataDir = cli.DataDir
	}
	if cli.Storage != "" {
		cfg.Storage = cli.Storage
	}
	return cfg, cfg.Validate()
}

// wire opens the stores and builds the shared services.
func (m *Main) wire(ctx context.Context, deps *Dependencies) error {
	cfg, logger := deps.Config, deps.Logger

	var (
		patterns shelfscout.PatternStore
		runs     shelfscout.RunHistory
		cache    shelfscout.ProxyCache
	)
	switch cfg.Storage {
	case StorageSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
		path := filepath.Join(cfg.DataDir, DatabaseFile)
		m.DB = sqlite.NewDB(path)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(deps.Stderr, "Hint: Set SHELFSCOUT_DATA to use a different data directory\n")
			return fmt.Errorf("failed to open database at %q: %w", path, err)
		}
		history := sqlite.NewRunHistory(m.DB)
		patterns, runs, cache = sqlite.NewPatternStore(m.DB), history, sqlite.NewProxyCache(m.DB)
		deps.DomainHistory = history
	default:
		store := fs.NewStore(cfg.DataDir)
		patterns, runs, cache = store, store, store
	}

	deps.Knowledge = learn.Open(ctx, shelfslog.NewLoggingPatternStore(patterns, logger))
	deps.Tracker = stats.Open(ctx, shelfslog.NewLoggingRunHistory(runs, logger))
	deps.Harvester = newHarvester(cfg, shelfslog.NewLoggingProxyCache(cache, logger), logger)

	deps.Extractor = shelfslog.NewLoggingExtractor(
		goquery.NewExtractor(
			goquery.WithDetector(shelfslog.NewLoggingDetector(goquery.NewDetector(), logger)),
			goquery.WithConverter(htmltomarkdown.NewConverter()),
		),
		logger,
	)
	deps.Links = shelfslog.NewLoggingLinkExtractor(goquery.NewLinkExtractor(), logger)
	sitemaps := shelfhttp.NewSitemapService(nil)
	sitemaps.MaxURLs = learn.MaxProductURLs
	deps.Sitemaps = shelfslog.NewLoggingSitemapService(sitemaps, logger)
	deps.Fetcher = m.Fetcher

	return nil
}

// newHarvester builds the proxy harvester from the configured sources.
func newHarvester(cfg *Config, cache shelfscout.ProxyCache, logger *slog.Logger) *proxy.Harvester {
	var sources []shelfscout.ProxySource
	for _, s := range cfg.Proxy.Sources {
		var src shelfscout.ProxySource
		switch s.Format {
		case FormatJSON:
			src = &shelfhttp.JSONListSource{SourceName: s.Name, URLTemplate: s.URL}
		default:
			src = &shelfhttp.TextListSource{SourceName: s.Name, URLTemplate: s.URL}
		}
		sources = append(sources, shelfslog.NewLoggingProxySource(src, logger))
	}

	h := proxy.NewHarvester(sources, shelfslog.NewLoggingProxyVerifier(shelfhttp.NewProxyVerifier(), logger), cache)
	h.Logger = logger
	if cfg.Proxy.VerifyURL != "" {
		h.VerifyURL = cfg.Proxy.VerifyURL
	}
	if cfg.Proxy.TTL > 0 {
		h.TTL = cfg.Proxy.TTL
	}
	for country, proxies := range cfg.Proxy.Fallbacks {
		h.Fallbacks[strings.ToUpper(country)] = proxies
	}
	return h
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
