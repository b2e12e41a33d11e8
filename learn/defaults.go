package learn

import "github.com/fwojciec/shelfscout"

// PlatformPath is a listing-page path commonly used by a platform.
type PlatformPath struct {
	Path     string
	Platform string
}

// PlatformPaths returns the fixed platform pattern table. The order is the
// order suggestions are emitted in; it is not ranked by evidence.
func PlatformPaths() []PlatformPath {
	return []PlatformPath{
		{Path: "/collections/all", Platform: "Shopify"},
		{Path: "/shop", Platform: "WooCommerce"},
		{Path: "/products", Platform: "generic"},
		{Path: "/catalog", Platform: "Magento"},
		{Path: "/category", Platform: "generic"},
		{Path: "/collections", Platform: "Shopify"},
		{Path: "/store", Platform: "generic"},
		{Path: "/c/", Platform: "Salesforce"},
	}
}

// familyHosts lists the hosted-platform domains seeded by DefaultPatterns.
func familyHosts() []string {
	return []string{"myshopify.com", "mybigcommerce.com", "wixsite.com", "squarespace.com"}
}

// DefaultPatterns returns the patterns a new knowledge base is seeded with:
// one per hosted platform family, with zero counters.
func DefaultPatterns() map[string]*shelfscout.DomainPattern {
	return map[string]*shelfscout.DomainPattern{
		"myshopify.com": {Learned: shelfscout.LearnedFields{
			PLPPath:            "/collections/all",
			ProductURLTemplate: "/products/{slug}",
			Platform:           shelfscout.PlatformShopify,
		}},
		"mybigcommerce.com": {Learned: shelfscout.LearnedFields{
			PLPPath:            "/categories",
			ProductURLTemplate: "/{slug}/",
			Platform:           shelfscout.PlatformBigCommerce,
		}},
		"wixsite.com": {Learned: shelfscout.LearnedFields{
			PLPPath:            "/shop",
			ProductURLTemplate: "/product-page/{slug}",
			Platform:           shelfscout.PlatformWix,
		}},
		"squarespace.com": {Learned: shelfscout.LearnedFields{
			PLPPath:            "/shop",
			ProductURLTemplate: "/shop/p/{slug}",
			Platform:           shelfscout.PlatformSquarespace,
		}},
	}
}
