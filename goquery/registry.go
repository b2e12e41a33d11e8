package goquery

import "github.com/fwojciec/shelfscout"

// MatcherSet holds the title and description matchers for one platform.
type MatcherSet struct {
	Title       []Matcher
	Description []Matcher
}

// Registry manages platform-specific matcher sets. Platform matchers are
// tried before the generic chains, so a recognised platform gets its own
// markup checked first without losing the generic fallbacks.
type Registry struct {
	sets map[shelfscout.Platform]MatcherSet
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sets: make(map[shelfscout.Platform]MatcherSet)}
}

// NewDefaultRegistry creates a Registry with matchers for the common platforms.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(shelfscout.PlatformShopify, MatcherSet{
		Title:       selectorMatchers(0, ".product-single__title", ".product__title h1", ".product__title"),
		Description: selectorMatchers(MinDescriptionLen, ".product-single__description", ".product__description"),
	})
	r.Register(shelfscout.PlatformWooCommerce, MatcherSet{
		Title:       selectorMatchers(0, ".product_title"),
		Description: selectorMatchers(MinDescriptionLen, ".woocommerce-product-details__short-description", "#tab-description"),
	})
	r.Register(shelfscout.PlatformMagento, MatcherSet{
		Title:       selectorMatchers(0, ".page-title-wrapper.product .page-title span", ".page-title span"),
		Description: selectorMatchers(MinDescriptionLen, ".product.attribute.description .value", ".product.attribute.overview .value"),
	})
	r.Register(shelfscout.PlatformBigCommerce, MatcherSet{
		Title:       selectorMatchers(0, ".productView-title"),
		Description: selectorMatchers(MinDescriptionLen, ".productView-description"),
	})
	r.Register(shelfscout.PlatformSalesforce, MatcherSet{
		Title:       selectorMatchers(0, ".product-name"),
		Description: selectorMatchers(MinDescriptionLen, ".long-description", ".product-description"),
	})
	return r
}

// Get returns the matcher set for a platform.
func (r *Registry) Get(platform shelfscout.Platform) (MatcherSet, bool) {
	set, ok := r.sets[platform]
	return set, ok
}

// Register adds a matcher set for a platform, replacing any existing one.
func (r *Registry) Register(platform shelfscout.Platform, set MatcherSet) {
	r.sets[platform] = set
}

// List returns all registered platforms.
func (r *Registry) List() []shelfscout.Platform {
	platforms := make([]shelfscout.Platform, 0, len(r.sets))
	for p := range r.sets {
		platforms = append(platforms, p)
	}
	return platforms
}
