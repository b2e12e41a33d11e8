package goquery_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/fwojciec/shelfscout"
	"github.com/fwojciec/shelfscout/goquery"
	"github.com/fwojciec/shelfscout/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Extractor implements shelfscout.ContentExtractor at compile time.
var _ shelfscout.ContentExtractor = (*goquery.Extractor)(nil)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("aggregates main description and linked tab panel", func(t *testing.T) {
		t.Parallel()

		// The panel sits inside the description container. Its text is what
		// lifts the container past MinDescriptionLen, since "A great shoe."
		// alone is too short to match.
		html := `<html><body>
<div class="product-single__description">A great shoe.
	<ul class="tabs"><li><a href="#tab-materials">Materials &amp; Care</a></li></ul>
	<div id="tab-materials">Made of leather, 30 day returns.</div>
</div>
</body></html>`

		result := goquery.NewExtractor().Extract(html, "https://shop.example.com/products/shoe")

		assert.Contains(t, result.Description, "A great shoe.")
		assert.Contains(t, result.Description, "Made of leather, 30 day returns.")
		assert.Contains(t, result.ExtractedSources, shelfscout.SourceMainDescription)
		assert.Contains(t, result.ExtractedSources, shelfscout.SourceTabContent)
		assert.NotContains(t, result.ExtractedSources, shelfscout.SourceFeatureLists, "tab labels are not features")
		assert.Contains(t, result.Description, "Materials & Care:\nMade of leather, 30 day returns.")
		assert.Equal(t, 1, strings.Count(result.Description, "Made of leather"))
		assert.Equal(t, "A great shoe.\n\nMaterials & Care:\nMade of leather, 30 day returns.", result.Description)
		assert.Equal(t, runeCount("A great shoe."), result.Chars.MainDescription)
		assert.Equal(t, runeCount(result.Description), result.Metrics.TotalChars)
	})

	t.Run("counts tab panel that is the main description once", func(t *testing.T) {
		t.Parallel()

		text := "Soft merino wool knit in a relaxed crew neck, warm without bulk and easy to layer."
		html := `<html><body><div class="product">
<h1 class="product-title">Merino Crew</h1>
<ul class="tabs"><li><a href="#description">Description</a></li></ul>
<div id="description">` + text + `</div>
</div></body></html>`

		result := goquery.NewExtractor().Extract(html, "https://example.com/merino-crew")

		assert.Equal(t, text, result.Description)
		assert.Equal(t, 1, strings.Count(result.Description, "Soft merino"))
		assert.Equal(t, runeCount(text), result.Metrics.TotalChars)
		assert.Zero(t, result.Chars.TabContent)
		assert.Contains(t, result.ExtractedSources, shelfscout.SourceMainDescription)
		assert.NotContains(t, result.ExtractedSources, shelfscout.SourceTabContent)
	})

	t.Run("keeps only own text of tab panel wrapping the main description", func(t *testing.T) {
		t.Parallel()

		text := "Hand-thrown stoneware mug with a speckled glaze, holds twelve ounces of coffee."
		html := `<html><body>
<div class="wc-tabs"><a href="#tab-details">Details</a></div>
<div id="tab-details">
	<div class="product-description">` + text + `</div>
	<p>Ships in recycled packaging.</p>
</div>
</body></html>`

		result := goquery.NewExtractor().Extract(html, "https://example.com/mug")

		assert.Equal(t, text+"\n\nDetails:\nShips in recycled packaging.", result.Description)
		assert.Equal(t, 1, strings.Count(result.Description, "Hand-thrown"))
		assert.Equal(t, runeCount("Details:\nShips in recycled packaging."), result.Chars.TabContent)
	})

	t.Run("uses configured platform detector", func(t *testing.T) {
		t.Parallel()

		var got string
		detector := &mock.PlatformDetector{
			DetectFn: func(html string) shelfscout.Platform {
				got = html
				return shelfscout.PlatformShopify
			},
		}
		html := `<html><body><div class="product-description">A product description that is comfortably longer than fifty characters.</div></body></html>`

		result := goquery.NewExtractor(goquery.WithDetector(detector)).Extract(html, "")

		assert.Equal(t, shelfscout.PlatformShopify, result.Platform)
		assert.Equal(t, html, got)
	})

	t.Run("computes capture rate against narrowest product container", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><main><div class="product">
<h1 class="product-title">Trail Runner</h1>
<div class="product-description">Lightweight trail running shoe built for rocky terrain and long distances.</div>
<div class="reviews">Great shoes!</div>
<script>var tracking = "this text is never counted";</script>
</div></main></body></html>`

		result := goquery.NewExtractor().Extract(html, "https://example.com/p/trail-runner")

		assert.Equal(t, "Trail Runner", result.Title)
		assert.Equal(t, shelfscout.OutcomeFull, result.Outcome)
		assert.Equal(t, 74, result.Metrics.TotalChars)
		assert.Equal(t, 100, result.Metrics.EstimatedTotalChars)
		assert.Equal(t, 74, result.Metrics.CaptureRate)
		assert.Equal(t, shelfscout.QualityGood, result.Metrics.Quality)
		assert.Equal(t, []string{shelfscout.ContentReviews}, result.MissedContent)
	})

	t.Run("ignores descriptions of fifty characters or fewer", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<h1>Mug</h1>
<div class="product-description">Free shipping on orders over $50.</div>
<div class="description">A sturdy stoneware mug that keeps coffee warm through long mornings.</div>
</body></html>`

		result := goquery.NewExtractor().Extract(html, "https://example.com/mug")

		assert.Equal(t, "A sturdy stoneware mug that keeps coffee warm through long mornings.", result.Description)
		assert.Equal(t, "Mug", result.Title)
	})

	t.Run("prefers specific title markup over first heading", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<h1>Store Name</h1>
<div class="product__title">Canvas Tote</div>
</body></html>`

		result := goquery.NewExtractor().Extract(html, "https://example.com/tote")

		assert.Equal(t, "Canvas Tote", result.Title)
		assert.Equal(t, shelfscout.OutcomePartial, result.Outcome)
	})

	t.Run("uses aria-controls tabs before anchor tabs", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<div role="tablist">
	<button role="tab" aria-controls="panel-details">Details</button>
	<button role="tab" aria-controls="panel-short">Short</button>
</div>
<div id="panel-details">Hand-stitched in Portugal from full-grain leather.</div>
<div id="panel-short">Too short</div>
<ul class="tabs"><li><a href="#other">Other</a></li></ul>
<div id="other">Content that only the anchor strategy would find.</div>
</body></html>`

		result := goquery.NewExtractor().Extract(html, "https://example.com/bag")

		assert.Contains(t, result.Description, "Details:\nHand-stitched in Portugal from full-grain leather.")
		assert.NotContains(t, result.Description, "Too short")
		assert.NotContains(t, result.Description, "only the anchor strategy")
		assert.Equal(t, runeCount("Details:\nHand-stitched in Portugal from full-grain leather."), result.Chars.TabContent)
	})

	t.Run("falls back to accordion trigger linkage", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<div class="accordion">
	<button class="accordion-button">Care</button>
	<div class="accordion-body">Machine wash cold, tumble dry low.</div>
</div>
</body></html>`

		result := goquery.NewExtractor().Extract(html, "https://example.com/shirt")

		assert.Contains(t, result.Description, "Care:\nMachine wash cold, tumble dry low.")
		assert.Contains(t, result.ExtractedSources, shelfscout.SourceTabContent)
		assert.NotContains(t, result.ExtractedSources, shelfscout.SourceAccordionContent, "already captured as tab content")
	})

	t.Run("merges description tabs with tab strategy panels", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<ul class="tabs"><li><a href="#tab-reviews">Reviews</a></li></ul>
<div id="tab-reviews">No reviews yet, be the first to write one.</div>
<div class="woocommerce-Tabs-panel--description">Crafted from recycled ocean plastic.</div>
</body></html>`

		result := goquery.NewExtractor().Extract(html, "https://example.com/bottle")

		assert.Contains(t, result.Description, "Reviews:\nNo reviews yet")
		assert.Contains(t, result.Description, "Description:\nCrafted from recycled ocean plastic.")
	})

	t.Run("appends accordion blocks as title and content", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<details><summary>Shipping</summary><p>Ships within two business days worldwide.</p></details>
<div class="accordion-item">
	<div class="accordion-title">Fit</div>
	<div class="accordion-content">Runs small</div>
</div>
</body></html>`

		result := goquery.NewExtractor().Extract(html, "https://example.com/jacket")

		assert.Contains(t, result.Description, "Shipping:\nShips within two business days worldwide.")
		assert.NotContains(t, result.Description, "Runs small", "content under 20 characters is noise")
		assert.Contains(t, result.ExtractedSources, shelfscout.SourceAccordionContent)
		assert.Positive(t, result.Chars.AccordionContent)
	})

	t.Run("deduplicates feature list items", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<ul class="product-features"><li>Waterproof</li><li>Breathable</li></ul>
<ul class="highlights"><li>Breathable</li><li>Vegan</li></ul>
<div class="product-description">
	<p>A rain shell designed for hikers who want to move fast in bad weather.</p>
	<ul><li>Packable</li><li>Waterproof</li></ul>
</div>
</body></html>`

		result := goquery.NewExtractor().Extract(html, "https://example.com/shell")

		assert.Contains(t, result.Description, "Key Features:\n• Waterproof\n• Breathable\n• Vegan\n• Packable")
		assert.Equal(t, runeCount("Key Features:\n• Waterproof\n• Breathable\n• Vegan\n• Packable"), result.Chars.FeatureLists)
		assert.NotContains(t, result.MissedContent, shelfscout.ContentFeatureLists)
	})

	t.Run("reads specifications from tables then definition lists", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<table>
	<tr><th>Material:</th><td>Cotton</td></tr>
	<tr><td>Weight</td><td>ignored</td><td>200 g</td></tr>
	<tr><td>single cell</td></tr>
</table>
<dl><dt>Material</dt><dd>Wool</dd><dt>Origin</dt><dd>Peru</dd></dl>
</body></html>`

		result := goquery.NewExtractor().Extract(html, "https://example.com/scarf")

		require.Len(t, result.Specifications, 3)
		material, _ := result.Spec("Material")
		assert.Equal(t, "Cotton", material)
		weight, _ := result.Spec("Weight")
		assert.Equal(t, "200 g", weight)
		origin, _ := result.Spec("Origin")
		assert.Equal(t, "Peru", origin)
		assert.Contains(t, result.ExtractedSources, shelfscout.SourceSpecifications)
	})

	t.Run("flags missed categories that exist but were not captured", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<div class="product-description">Everyday sneaker with a cushioned sole and a breathable knit upper.</div>
<a href="/pages/size-guide">Size guide</a>
<div class="shipping-info">Free returns within 30 days.</div>
<div class="product-feature-grid"><span>Icon</span></div>
</body></html>`

		result := goquery.NewExtractor().Extract(html, "https://example.com/sneaker")

		assert.Equal(t, []string{
			shelfscout.ContentSizeGuide,
			shelfscout.ContentShippingInfo,
			shelfscout.ContentFeatureLists,
		}, result.MissedContent)
	})

	t.Run("does not flag categories whose text was captured", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<ul class="tabs"><li><a href="#ingredients">Ingredients</a></li></ul>
<div id="ingredients" class="ingredients-list">Aqua, glycerin, shea butter, vitamin E.</div>
</body></html>`

		result := goquery.NewExtractor().Extract(html, "https://example.com/lotion")

		assert.NotContains(t, result.MissedContent, shelfscout.ContentIngredients)
	})

	t.Run("falls back to a share of document text without product container", func(t *testing.T) {
		t.Parallel()

		body := strings.Repeat("word ", 40)
		html := `<html><body><div class="description">` + body + `</div><p>` + body + `</p></body></html>`

		result := goquery.NewExtractor().Extract(html, "https://example.com/x")

		// 30% of 80 four-letter words plus 79 spaces, rounded
		assert.Equal(t, 120, result.Metrics.EstimatedTotalChars)
		assert.Equal(t, 100, result.Metrics.CaptureRate)

		result = goquery.NewExtractor(goquery.WithEstimateFallbackRatio(1)).Extract(html, "https://example.com/x")
		assert.Equal(t, 399, result.Metrics.EstimatedTotalChars)
		assert.Equal(t, 50, result.Metrics.CaptureRate)
		assert.Equal(t, shelfscout.QualityFair, result.Metrics.Quality)
	})

	t.Run("returns empty outcome for structureless input", func(t *testing.T) {
		t.Parallel()

		for _, html := range []string{"", "plain text", "<html><body><div></div></body></html>", "<<<>>>"} {
			result := goquery.NewExtractor().Extract(html, "https://example.com/")

			assert.Equal(t, shelfscout.OutcomeEmpty, result.Outcome)
			assert.Empty(t, result.Title)
			assert.Equal(t, shelfscout.UnknownTitle, result.DisplayTitle())
			assert.Empty(t, result.Description)
			assert.Equal(t, 0, result.Metrics.CaptureRate)
			assert.Equal(t, shelfscout.QualityPoor, result.Metrics.Quality)
			assert.NotNil(t, result.ExtractedSources)
		}
	})

	t.Run("keeps capture rate within bounds", func(t *testing.T) {
		t.Parallel()

		inputs := []string{
			`<div class="product"><div class="description">` + strings.Repeat("long text ", 30) + `</div></div>`,
			`<main><h1>x</h1></main>`,
			`<div class="product-description">` + strings.Repeat("a", 60) + `</div>`,
		}
		for _, html := range inputs {
			result := goquery.NewExtractor().Extract(html, "")
			assert.GreaterOrEqual(t, result.Metrics.CaptureRate, 0)
			assert.LessOrEqual(t, result.Metrics.CaptureRate, 100)
		}
	})

	t.Run("detects platform and prefers its matchers", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><meta name="generator" content="WooCommerce 8.2"></head><body>
<h1>Shop</h1>
<h2 class="product_title">Espresso Grinder</h2>
<div class="woocommerce-product-details__short-description">Conical burr grinder with forty grind settings for espresso and filter.</div>
</body></html>`

		result := goquery.NewExtractor().Extract(html, "https://example.com/product/grinder/")

		assert.Equal(t, shelfscout.PlatformWooCommerce, result.Platform)
		assert.Equal(t, "Espresso Grinder", result.Title)
	})

	t.Run("renders description markdown with converter", func(t *testing.T) {
		t.Parallel()

		var got string
		converter := &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				got = html
				return "**converted**", nil
			},
		}
		html := `<div class="product-description"><b>Bold</b> claims about a product that needs more than fifty characters.</div>`

		result := goquery.NewExtractor(goquery.WithConverter(converter)).Extract(html, "")

		assert.Equal(t, "**converted**", result.DescriptionMarkdown)
		assert.Contains(t, got, "<b>Bold</b>")
	})

	t.Run("leaves markdown empty when conversion fails", func(t *testing.T) {
		t.Parallel()

		converter := &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				return "", errors.New("boom")
			},
		}
		html := `<div class="product-description">A product description that is comfortably longer than fifty characters.</div>`

		result := goquery.NewExtractor(goquery.WithConverter(converter)).Extract(html, "")

		assert.Empty(t, result.DescriptionMarkdown)
		assert.NotEmpty(t, result.Description)
	})
}

func runeCount(s string) int {
	return len([]rune(s))
}
