package goquery

import "github.com/fwojciec/shelfscout"

// MinDescriptionLen is the length a main description must exceed.
// Shorter matches are usually "add to cart" blurbs or badges.
const MinDescriptionLen = 50

// MinPanelLen is the shortest tab or accordion panel kept; shorter panels are noise.
const MinPanelLen = 20

// genericTitleMatchers are tried after platform-specific ones.
// Most specific product-title markup first, a bare h1 last.
func genericTitleMatchers() []Matcher {
	matchers := selectorMatchers(0,
		"h1.product-title",
		"h1.product-name",
		".product-title h1",
		"h1[itemprop='name']",
		".product-single__title",
		".product__title",
		".product_title",
		".productView-title",
		"[data-testid='product-title']",
		"[itemprop='name']",
	)
	matchers = append(matchers, AttrMatcher{Selector: "meta[property='og:title']", Attr: "content"})
	return append(matchers, SelectorMatcher{Selector: "h1"})
}

func genericDescriptionMatchers() []Matcher {
	return selectorMatchers(MinDescriptionLen,
		".product-single__description",
		".product__description",
		".product-description",
		"#product-description",
		".product-details__description",
		"[itemprop='description']",
		".woocommerce-product-details__short-description",
		".productView-description",
		".product.attribute.description",
		"#description",
		".description",
		".rte",
	)
}

// tabNavLinks are anchors whose href points at a tab panel id.
var tabNavLinks = joinSelectors(
	".tabs a[href^='#']",
	".nav-tabs a[href^='#']",
	".tabs-nav a[href^='#']",
	".product-tabs a[href^='#']",
	".wc-tabs a[href^='#']",
	"[role='tablist'] a[href^='#']",
)

// tabTriggers link to their panel through an attribute.
var tabTriggers = joinSelectors(
	"[role='tab'][aria-controls]",
	"[data-tab-target]",
	"[data-target^='#']",
	"[data-bs-target^='#']",
)

var accordionTriggers = joinSelectors(
	".accordion-trigger",
	".accordion__trigger",
	".accordion-button",
	".accordion-toggle",
	".collapsible-trigger",
	".collapsible__button",
)

var accordionPanels = joinSelectors(
	".accordion-content",
	".accordion__content",
	".accordion-panel",
	".accordion-body",
	".collapsible-content",
	".collapse",
)

// descriptionTabs are checked independently of the tab strategies.
var descriptionTabs = []string{
	"#tab-description",
	"#description-tab",
	"#tab-product-description",
	".woocommerce-Tabs-panel--description",
	"[data-tab='description']",
	"#product-description-tab",
}

var accordionItems = joinSelectors(
	".accordion-item",
	".accordion__item",
	".product-accordion__item",
	"details",
)

var accordionTitles = joinSelectors(
	".accordion-title",
	".accordion__title",
	".accordion-header",
	".accordion-button",
	"summary",
)

// featureListSets are independent list-item matcher sets.
var featureListSets = []string{
	joinSelectors(".product-features li", ".product__features li", ".features-list li", ".key-features li"),
	joinSelectors(".product-highlights li", ".highlights li", "[class*='feature-list'] li", "[class*='bullet'] li"),
	joinSelectors("#feature-bullets li", ".a-unordered-list.a-vertical li"),
}

// tabNavs hold tab labels; their list items are never features.
var tabNavs = joinSelectors(".tabs", ".nav-tabs", ".tabs-nav", "[role='tablist']", ".wc-tabs")

var specRows = "table tr"

// productContainers bound the product area used to estimate available content.
var productContainers = joinSelectors(
	"[itemtype*='schema.org/Product']",
	".product-single",
	".product__info-wrapper",
	".product-info-main",
	".product-details",
	".product-detail",
	".product-info",
	".product-main",
	"#product",
	".product",
	"main",
)

// contentCategory describes a kind of content that is commonly present on
// product pages but easy to miss.
type contentCategory struct {
	Name     string
	Selector string
	// Source, when set, is the captured source tag that covers the category.
	Source string
}

var contentCategories = []contentCategory{
	{Name: shelfscout.ContentSizeGuide, Selector: joinSelectors("[class*='size-guide']", "[class*='size-chart']", "[class*='sizeguide']", "[id*='size-guide']", "a[href*='size-guide']")},
	{Name: shelfscout.ContentCareInstructions, Selector: joinSelectors("[class*='care-instructions']", "[class*='care-']", "[id*='care-']", "[class*='care_']")},
	{Name: shelfscout.ContentShippingInfo, Selector: joinSelectors("[class*='shipping']", "[id*='shipping']", "[class*='delivery']")},
	{Name: shelfscout.ContentIngredients, Selector: joinSelectors("[class*='ingredient']", "[id*='ingredient']")},
	{Name: shelfscout.ContentReviews, Selector: joinSelectors("[class*='review']", "[id*='review']", "[itemprop='review']")},
	{Name: shelfscout.ContentFeatureLists, Selector: joinSelectors("[class*='feature']", "[class*='highlight']", "[class*='benefit']"), Source: shelfscout.SourceFeatureLists},
}
