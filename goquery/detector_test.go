package goquery_test

import (
	"testing"

	"github.com/fwojciec/shelfscout"
	"github.com/fwojciec/shelfscout/goquery"
	"github.com/stretchr/testify/assert"
)

// Ensure Detector implements shelfscout.PlatformDetector at compile time.
var _ shelfscout.PlatformDetector = (*goquery.Detector)(nil)

func TestDetector_Detect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want shelfscout.Platform
	}{
		{
			name: "Shopify from CDN script",
			html: `<html><head><script src="https://cdn.shopify.com/s/files/theme.js"></script></head><body></body></html>`,
			want: shelfscout.PlatformShopify,
		},
		{
			name: "Shopify from inline Shopify.shop global",
			html: `<html><head><script>Shopify.shop = "demo.myshopify.com";</script></head><body></body></html>`,
			want: shelfscout.PlatformShopify,
		},
		{
			name: "WooCommerce from body class",
			html: `<html><body class="product-template woocommerce"><div></div></body></html>`,
			want: shelfscout.PlatformWooCommerce,
		},
		{
			name: "Magento from x-magento-init script",
			html: `<html><body><script type="text/x-magento-init">{}</script></body></html>`,
			want: shelfscout.PlatformMagento,
		},
		{
			name: "BigCommerce from productView",
			html: `<html><body><div class="productView"></div></body></html>`,
			want: shelfscout.PlatformBigCommerce,
		},
		{
			name: "Salesforce Commerce Cloud from demandware assets",
			html: `<html><head><link rel="stylesheet" href="/on/demandware.static/Sites-Site/global.css"></head></html>`,
			want: shelfscout.PlatformSalesforce,
		},
		{
			name: "Squarespace from script host",
			html: `<html><head><script src="https://static1.squarespace.com/static/vta/site.js"></script></head></html>`,
			want: shelfscout.PlatformSquarespace,
		},
		{
			name: "Wix from parastorage script",
			html: `<html><head><script src="https://static.parastorage.com/services/wix-thunderbolt.js"></script></head></html>`,
			want: shelfscout.PlatformWix,
		},
		{
			name: "meta generator wins over markup",
			html: `<html><head><meta name="generator" content="Magento 2"></head><body class="woocommerce"></body></html>`,
			want: shelfscout.PlatformMagento,
		},
		{
			name: "unknown for plain pages",
			html: `<html><body><h1>Hello</h1></body></html>`,
			want: shelfscout.PlatformUnknown,
		},
		{
			name: "unknown for empty input",
			html: ``,
			want: shelfscout.PlatformUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := goquery.NewDetector()

			assert.Equal(t, tt.want, d.Detect(tt.html))
		})
	}
}
