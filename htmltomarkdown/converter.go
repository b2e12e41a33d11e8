// Package htmltomarkdown renders product description HTML as Markdown.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/shelfscout"
	"github.com/microcosm-cc/bluemonday"
)

// Ensure Converter implements shelfscout.Converter at compile time.
var _ shelfscout.Converter = (*Converter)(nil)

// Converter sanitizes description HTML with a user-generated-content policy
// and converts what remains to Markdown. Store descriptions are merchant
// supplied, so scripts, event handlers and embeds never reach the output.
type Converter struct {
	conv   *converter.Converter
	policy *bluemonday.Policy
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv, policy: bluemonday.UGCPolicy()}
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", shelfscout.Errorf(shelfscout.EINVALID, "empty HTML input")
	}

	clean := c.policy.Sanitize(html)
	if strings.TrimSpace(clean) == "" {
		return "", nil
	}

	result, err := c.conv.ConvertString(clean)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(result), nil
}
