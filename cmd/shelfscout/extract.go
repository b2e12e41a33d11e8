package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/shelfscout"
	"github.com/fwojciec/shelfscout/crawl"
	"github.com/fwojciec/shelfscout/fs"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	html, pageURL, err := c.load(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		return err
	}

	ext := deps.Extractor.Extract(html, pageURL)

	if c.Out != "" {
		if err := fs.NewWriter(c.Out).WriteExtraction(deps.Ctx, ext); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
			return err
		}
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ext)
	}
	printExtraction(deps.Stdout, ext)
	return nil
}

// load reads the page from a URL or a local file.
func (c *ExtractCmd) load(deps *Dependencies) (string, string, error) {
	if isURL(c.Source) {
		fetcher, err := deps.fetcher(deps.Ctx, c.Country)
		if err != nil {
			return "", "", err
		}
		defer fetcher.Close()

		res, err := crawl.FetchWithRetry(deps.Ctx, fetcher, c.Source, deps.Logger)
		if err != nil {
			return "", "", err
		}
		if !res.Success {
			return "", "", shelfscout.Errorf(shelfscout.EINTERNAL, "fetch %s: %s", c.Source, res.Error)
		}
		pageURL := c.Source
		if res.FinalURL != "" {
			pageURL = res.FinalURL
		}
		return res.Content, pageURL, nil
	}

	data, err := os.ReadFile(c.Source)
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", c.Source, err)
	}
	return string(data), c.URL, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// printExtraction writes a human-readable report of one extraction.
func printExtraction(w io.Writer, p *shelfscout.ProductExtraction) {
	fmt.Fprintf(w, "Title:     %s\n", p.DisplayTitle())
	if p.URL != "" {
		fmt.Fprintf(w, "URL:       %s\n", p.URL)
	}
	fmt.Fprintf(w, "Platform:  %s\n", p.Platform)
	fmt.Fprintf(w, "Outcome:   %s\n", p.Outcome)
	fmt.Fprintf(w, "Captured:  %d of ~%d chars, %s\n",
		p.Metrics.TotalChars, p.Metrics.EstimatedTotalChars, crawl.FormatRate(p.Metrics.CaptureRate))
	if len(p.ExtractedSources) > 0 {
		fmt.Fprintf(w, "Sources:   %s\n", strings.Join(p.ExtractedSources, ", "))
	}
	if len(p.MissedContent) > 0 {
		fmt.Fprintf(w, "Missed:    %s\n", strings.Join(p.MissedContent, ", "))
	}
	for _, s := range p.Specifications {
		fmt.Fprintf(w, "  %s: %s\n", s.Label, s.Value)
	}

	body := p.DescriptionMarkdown
	if body == "" {
		body = p.Description
	}
	if body != "" {
		fmt.Fprintf(w, "\n%s\n", body)
	}
}

// errorText is the message shown to users: the application message when
// there is one, the full error otherwise.
func errorText(err error) string {
	var e *shelfscout.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
