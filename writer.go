package shelfscout

import "context"

// ExtractionWriter writes extraction results for human review.
type ExtractionWriter interface {
	WriteExtraction(ctx context.Context, p *ProductExtraction) error
}
