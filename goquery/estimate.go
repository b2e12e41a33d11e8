package goquery

import (
	"math"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DefaultEstimateFallbackRatio is the share of the whole document's text
// assumed to be product content when no product container is found.
const DefaultEstimateFallbackRatio = 0.3

// estimateTotalChars returns the text length of the narrowest product
// container enclosing anchor, or ratio of the document text length when
// there is no such container. A nil anchor accepts any container.
func estimateTotalChars(doc *goquery.Document, anchor *html.Node, ratio float64) int {
	best := -1
	doc.Find(productContainers).Each(func(_ int, sel *goquery.Selection) {
		n := sel.Get(0)
		if anchor != nil && !isAncestor(n, anchor) {
			return
		}
		length := runeLen(nodeText(n))
		if length == 0 {
			return
		}
		if best < 0 || length < best {
			best = length
		}
	})
	if best >= 0 {
		return best
	}

	total := runeLen(nodeText(doc.Nodes...))
	return int(math.Round(float64(total) * ratio))
}
