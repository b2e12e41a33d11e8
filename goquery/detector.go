package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/shelfscout"
)

var _ shelfscout.PlatformDetector = (*Detector)(nil)

// Detector identifies storefront platforms from HTML content.
// It checks the meta generator tag, then platform-specific script hosts,
// CSS classes and global objects.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect analyzes HTML and returns the identified platform.
// Returns PlatformUnknown if the platform cannot be determined.
func (d *Detector) Detect(html string) shelfscout.Platform {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return shelfscout.PlatformUnknown
	}
	return d.detectDocument(doc)
}

func (d *Detector) detectDocument(doc *goquery.Document) shelfscout.Platform {
	// Meta generator is the most reliable signal when present
	if platform := d.detectFromMetaGenerator(doc); platform != shelfscout.PlatformUnknown {
		return platform
	}

	// Shopify serves assets from its CDN and exposes window.Shopify
	if d.hasSelector(doc, "script[src*='cdn.shopify.com'], link[href*='cdn.shopify.com']") ||
		d.hasSelector(doc, ".shopify-section") ||
		d.scriptContains(doc, "Shopify.shop") {
		return shelfscout.PlatformShopify
	}

	if d.hasSelector(doc, "body.woocommerce, .woocommerce-product-gallery, link[href*='woocommerce']") ||
		d.hasSelector(doc, ".woocommerce-Tabs-panel") {
		return shelfscout.PlatformWooCommerce
	}

	if d.hasSelector(doc, "script[type='text/x-magento-init'], [data-mage-init]") ||
		d.hasSelector(doc, ".page-title-wrapper.product") {
		return shelfscout.PlatformMagento
	}

	if d.hasSelector(doc, ".productView, script[src*='bigcommerce.com']") ||
		d.scriptContains(doc, "BCData") {
		return shelfscout.PlatformBigCommerce
	}

	if d.hasSelector(doc, "script[src*='demandware'], link[href*='demandware']") ||
		d.scriptContains(doc, "dwAnalytics") {
		return shelfscout.PlatformSalesforce
	}

	if d.hasSelector(doc, "script[src*='squarespace'], link[href*='squarespace']") {
		return shelfscout.PlatformSquarespace
	}

	if d.hasSelector(doc, "script[src*='parastorage.com'], meta[name='wix-dynamic-custom-elements']") {
		return shelfscout.PlatformWix
	}

	return shelfscout.PlatformUnknown
}

// detectFromMetaGenerator checks the meta generator tag for platform identification.
func (d *Detector) detectFromMetaGenerator(doc *goquery.Document) shelfscout.Platform {
	generator := ""
	doc.Find("meta[name='generator']").Each(func(_ int, s *goquery.Selection) {
		if content, exists := s.Attr("content"); exists {
			generator += " " + strings.ToLower(content)
		}
	})

	if generator == "" {
		return shelfscout.PlatformUnknown
	}

	switch {
	case strings.Contains(generator, "shopify"):
		return shelfscout.PlatformShopify
	case strings.Contains(generator, "woocommerce"):
		return shelfscout.PlatformWooCommerce
	case strings.Contains(generator, "magento"):
		return shelfscout.PlatformMagento
	case strings.Contains(generator, "bigcommerce"):
		return shelfscout.PlatformBigCommerce
	case strings.Contains(generator, "squarespace"):
		return shelfscout.PlatformSquarespace
	case strings.Contains(generator, "wix"):
		return shelfscout.PlatformWix
	}

	return shelfscout.PlatformUnknown
}

// hasSelector checks if the document contains at least one element matching the selector.
func (d *Detector) hasSelector(doc *goquery.Document, selector string) bool {
	return doc.Find(selector).Length() > 0
}

// scriptContains checks inline scripts for a marker string.
func (d *Detector) scriptContains(doc *goquery.Document, marker string) bool {
	found := false
	doc.Find("script:not([src])").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(s.Text(), marker) {
			found = true
			return false
		}
		return true
	})
	return found
}
