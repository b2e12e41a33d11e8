package shelfscout

// Platform identifies an e-commerce storefront platform.
type Platform string

// Supported storefront platforms.
const (
	PlatformUnknown     Platform = ""
	PlatformShopify     Platform = "shopify"
	PlatformWooCommerce Platform = "woocommerce"
	PlatformMagento     Platform = "magento"
	PlatformBigCommerce Platform = "bigcommerce"
	PlatformSalesforce  Platform = "salesforce"
	PlatformSquarespace Platform = "squarespace"
	PlatformWix         Platform = "wix"
)

// KnownPlatforms lists every recognised platform in reporting order.
func KnownPlatforms() []Platform {
	return []Platform{
		PlatformShopify,
		PlatformWooCommerce,
		PlatformMagento,
		PlatformBigCommerce,
		PlatformSalesforce,
		PlatformSquarespace,
		PlatformWix,
	}
}

// IsKnown reports whether p is one of KnownPlatforms.
func (p Platform) IsKnown() bool {
	for _, k := range KnownPlatforms() {
		if p == k {
			return true
		}
	}
	return false
}

// String returns the platform name, or "(unknown)".
func (p Platform) String() string {
	if p == PlatformUnknown {
		return "(unknown)"
	}
	return string(p)
}

// PlatformDetector identifies storefront platforms from HTML.
type PlatformDetector interface {
	// Detect analyzes HTML and returns the identified platform.
	// Returns PlatformUnknown if the platform cannot be determined.
	Detect(html string) Platform
}
