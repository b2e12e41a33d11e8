package mock

import "github.com/fwojciec/shelfscout"

var _ shelfscout.ContentExtractor = (*Extractor)(nil)

// Extractor is a mock implementation of shelfscout.ContentExtractor.
type Extractor struct {
	ExtractFn func(html string, url string) *shelfscout.ProductExtraction
}

func (e *Extractor) Extract(html string, url string) *shelfscout.ProductExtraction {
	return e.ExtractFn(html, url)
}

var _ shelfscout.PlatformDetector = (*PlatformDetector)(nil)

// PlatformDetector is a mock implementation of shelfscout.PlatformDetector.
type PlatformDetector struct {
	DetectFn func(html string) shelfscout.Platform
}

func (d *PlatformDetector) Detect(html string) shelfscout.Platform {
	return d.DetectFn(html)
}
