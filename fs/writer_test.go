package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/shelfscout"
	"github.com/fwojciec/shelfscout/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLToPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "simple path",
			url:  "https://shop.com/products/mug",
			want: "shop.com/products/mug.md",
		},
		{
			name: "www is dropped",
			url:  "https://www.Shop.com/products/mug",
			want: "shop.com/products/mug.md",
		},
		{
			name: "trailing slash becomes index",
			url:  "https://shop.com/mug/",
			want: "shop.com/mug/index.md",
		},
		{
			name: "root path becomes index",
			url:  "https://shop.com/",
			want: "shop.com/index.md",
		},
		{
			name:    "missing host",
			url:     "/products/mug",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := fs.URLToPath(tt.url)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestFormatExtraction(t *testing.T) {
	t.Parallel()

	t.Run("formats extraction with frontmatter", func(t *testing.T) {
		t.Parallel()

		p := &shelfscout.ProductExtraction{
			URL:                 "https://shop.com/products/mug",
			Title:               "Mug",
			Description:         "A mug.",
			DescriptionMarkdown: "A **mug**.",
			Platform:            shelfscout.PlatformShopify,
			ExtractedSources:    []string{shelfscout.SourceMainDescription},
			Specifications:      []shelfscout.Specification{{Label: "Volume", Value: "350 ml"}},
			Metrics:             shelfscout.Metrics{CaptureRate: 82, Quality: shelfscout.QualityExcellent},
		}

		got := fs.FormatExtraction(p, time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC))

		want := `---
source: https://shop.com/products/mug
title: Mug
platform: shopify
capture_rate: 82
quality: excellent
sources: main_description
extracted: 2026-01-08
---

A **mug**.

## Specifications

| Label | Value |
|---|---|
| Volume | 350 ml |
`

		assert.Equal(t, want, got)
	})

	t.Run("falls back to plain description", func(t *testing.T) {
		t.Parallel()

		p := &shelfscout.ProductExtraction{URL: "https://shop.com/p/1", Description: "Plain text."}

		got := fs.FormatExtraction(p, time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC))

		assert.Contains(t, got, "title: "+shelfscout.UnknownTitle)
		assert.Contains(t, got, "\n---\n\nPlain text.")
	})
}

func TestWriter_ImplementsInterface(t *testing.T) {
	t.Parallel()

	var _ shelfscout.ExtractionWriter = &fs.Writer{}
}

func TestWriter_WriteExtraction(t *testing.T) {
	t.Parallel()

	t.Run("writes extraction under its host", func(t *testing.T) {
		t.Parallel()

		baseDir := t.TempDir()
		w := fs.NewWriter(baseDir)
		w.Now = func() time.Time { return time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC) }

		err := w.WriteExtraction(context.Background(), &shelfscout.ProductExtraction{
			URL:         "https://shop.com/products/mug",
			Title:       "Mug",
			Description: "A mug.",
		})

		require.NoError(t, err)
		content, err := os.ReadFile(filepath.Join(baseDir, "shop.com", "products", "mug.md"))
		require.NoError(t, err)
		assert.Contains(t, string(content), "source: https://shop.com/products/mug")
		assert.Contains(t, string(content), "extracted: 2026-01-08")
	})

	t.Run("rejects extraction without URL", func(t *testing.T) {
		t.Parallel()

		w := fs.NewWriter(t.TempDir())

		err := w.WriteExtraction(context.Background(), &shelfscout.ProductExtraction{Title: "Mug"})

		assert.Equal(t, shelfscout.EINVALID, shelfscout.ErrorCode(err))
	})
}
