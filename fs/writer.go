// Package fs provides file-based storage: JSON stores for patterns, proxy
// cache and run history, and Markdown output of extractions.
package fs

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/shelfscout"
)

// URLToPath converts a product URL to a relative file path under its host.
// Example: https://shop.com/products/mug → shop.com/products/mug.md
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	host := shelfscout.NormalizeHostname(u.Host)
	if host == "" {
		return "", shelfscout.Errorf(shelfscout.EINVALID, "url has no host: %q", rawURL)
	}

	path := u.Path

	// Handle root or trailing slash → index.md
	if path == "" || path == "/" {
		return filepath.Join(host, "index.md"), nil
	}

	// Remove leading slash
	path = strings.TrimPrefix(path, "/")

	// Trailing slash becomes index.md in that directory
	if strings.HasSuffix(path, "/") {
		return filepath.Join(host, path+"index.md"), nil
	}

	// Otherwise append .md
	return filepath.Join(host, path+".md"), nil
}

// FormatExtraction formats an extraction as Markdown with YAML frontmatter.
func FormatExtraction(p *shelfscout.ProductExtraction, extracted time.Time) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(p.URL)
	b.WriteString("\ntitle: ")
	b.WriteString(p.DisplayTitle())
	b.WriteString("\nplatform: ")
	b.WriteString(p.Platform.String())
	fmt.Fprintf(&b, "\ncapture_rate: %d", p.Metrics.CaptureRate)
	b.WriteString("\nquality: ")
	b.WriteString(string(p.Metrics.Quality))
	if len(p.ExtractedSources) > 0 {
		b.WriteString("\nsources: ")
		b.WriteString(strings.Join(p.ExtractedSources, ", "))
	}
	if len(p.MissedContent) > 0 {
		b.WriteString("\nmissed: ")
		b.WriteString(strings.Join(p.MissedContent, ", "))
	}
	b.WriteString("\nextracted: ")
	b.WriteString(extracted.Format("2006-01-02"))
	b.WriteString("\n---\n\n")

	body := p.DescriptionMarkdown
	if body == "" {
		body = p.Description
	}
	b.WriteString(body)

	if len(p.Specifications) > 0 {
		b.WriteString("\n\n## Specifications\n\n| Label | Value |\n|---|---|\n")
		for _, s := range p.Specifications {
			fmt.Fprintf(&b, "| %s | %s |\n", escapeCell(s.Label), escapeCell(s.Value))
		}
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Ensure Writer implements shelfscout.ExtractionWriter at compile time.
var _ shelfscout.ExtractionWriter = (*Writer)(nil)

// Writer writes extractions as markdown files to a directory.
type Writer struct {
	baseDir string

	// Now returns the extraction date written to frontmatter.
	Now func() time.Time
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir, Now: time.Now}
}

// WriteExtraction writes an extraction to disk as a markdown file.
func (w *Writer) WriteExtraction(ctx context.Context, p *shelfscout.ProductExtraction) error {
	if p == nil || p.URL == "" {
		return shelfscout.Errorf(shelfscout.EINVALID, "extraction URL required")
	}

	relPath, err := URLToPath(p.URL)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(w.baseDir, relPath)

	// Create parent directories
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	return WriteFileAtomic(fullPath, []byte(FormatExtraction(p, w.Now())))
}
