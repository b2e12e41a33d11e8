package mock

import "github.com/fwojciec/shelfscout"

var _ shelfscout.Converter = (*Converter)(nil)

// Converter is a mock implementation of shelfscout.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
