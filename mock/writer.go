package mock

import (
	"context"

	"github.com/fwojciec/shelfscout"
)

var _ shelfscout.ExtractionWriter = (*ExtractionWriter)(nil)

// ExtractionWriter is a mock implementation of shelfscout.ExtractionWriter.
type ExtractionWriter struct {
	WriteExtractionFn func(ctx context.Context, p *shelfscout.ProductExtraction) error
}

func (w *ExtractionWriter) WriteExtraction(ctx context.Context, p *shelfscout.ProductExtraction) error {
	return w.WriteExtractionFn(ctx, p)
}
