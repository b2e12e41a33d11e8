package crawl_test

import (
	"testing"

	"github.com/fwojciec/shelfscout/crawl"
	"github.com/stretchr/testify/assert"
)

func TestTruncateURL(t *testing.T) {
	t.Parallel()

	const product = "https://shop.example.com/collections/all/to/teapot-xl"

	tests := []struct {
		name   string
		url    string
		maxLen int
		want   string
	}{
		{"short URL unchanged", "https://x.com", 50, "https://x.com"},
		{"exact length unchanged", "https://shop.com", 16, "https://shop.com"},
		{"keeps the product slug", product, 20, ".../all/to/teapot-xl"},
		{"zero length", product, 0, ""},
		{"negative length", product, -1, ""},
		{"no room for ellipsis", product, 3, "htt"},
		{"tiny URL with tiny limit", "ab", 3, "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := crawl.TruncateURL(tt.url, tt.maxLen)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), max(tt.maxLen, 0))
		})
	}
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "512 B", crawl.FormatBytes(512))
	assert.Equal(t, "1.5 KB", crawl.FormatBytes(1536))
	assert.Equal(t, "2.0 MB", crawl.FormatBytes(2*1024*1024))
}

func TestFormatRate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "82% (excellent)", crawl.FormatRate(82))
	assert.Equal(t, "45% (fair)", crawl.FormatRate(45))
	assert.Equal(t, "0% (poor)", crawl.FormatRate(0))
}
