// Package goquery implements product content extraction and platform
// detection on top of goquery CSS selectors.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/shelfscout"
	"golang.org/x/net/html"
)

var _ shelfscout.ContentExtractor = (*Extractor)(nil)

// Extractor aggregates product description content from several on-page
// sources and scores how much of the page's product content it captured.
type Extractor struct {
	detector      shelfscout.PlatformDetector
	registry      *Registry
	converter     shelfscout.Converter
	fallbackRatio float64
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRegistry sets the platform matcher registry.
// Defaults to NewDefaultRegistry().
func WithRegistry(r *Registry) Option {
	return func(e *Extractor) {
		e.registry = r
	}
}

// WithDetector sets the platform detector used to pick matcher sets.
// Defaults to NewDetector().
func WithDetector(d shelfscout.PlatformDetector) Option {
	return func(e *Extractor) {
		e.detector = d
	}
}

// WithConverter renders the main description to Markdown with c.
func WithConverter(c shelfscout.Converter) Option {
	return func(e *Extractor) {
		e.converter = c
	}
}

// WithEstimateFallbackRatio sets the share of document text assumed to be
// product content when no product container is found.
func WithEstimateFallbackRatio(ratio float64) Option {
	return func(e *Extractor) {
		e.fallbackRatio = ratio
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		detector:      NewDetector(),
		registry:      NewDefaultRegistry(),
		fallbackRatio: DefaultEstimateFallbackRatio,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract aggregates the product content of a page. It never fails:
// unparseable or structureless pages produce OutcomeEmpty.
func (e *Extractor) Extract(rawHTML string, url string) *shelfscout.ProductExtraction {
	result := &shelfscout.ProductExtraction{
		URL:              url,
		ExtractedSources: []string{},
		MissedContent:    []string{},
		Outcome:          shelfscout.OutcomeEmpty,
		Metrics:          shelfscout.Metrics{Quality: shelfscout.QualityPoor},
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return result
	}

	if d, ok := e.detector.(*Detector); ok {
		result.Platform = d.detectDocument(doc)
	} else {
		result.Platform = e.detector.Detect(rawHTML)
	}
	set, _ := e.registry.Get(result.Platform)

	var blocks []string
	var anchor *html.Node

	title, titleOK := FirstMatch(doc, append(append([]Matcher{}, set.Title...), genericTitleMatchers()...))
	if titleOK {
		result.Title = title.Text
		if title.Selection != nil {
			anchor = title.Selection.Get(0)
		}
	}

	main, mainOK := FirstMatch(doc, append(append([]Matcher{}, set.Description...), genericDescriptionMatchers()...))
	var mainNode *html.Node
	if mainOK && main.Selection != nil {
		mainNode = main.Selection.Get(0)
	}
	tabs, nested := claimPanels(extractTabs(doc), mainNode)

	if mainOK {
		text := main.Text
		if len(nested) > 0 {
			text = textWithout(nested, mainNode)
		}
		if text != "" {
			blocks = append(blocks, text)
		}
		result.Chars.MainDescription = runeLen(text)
		result.ExtractedSources = append(result.ExtractedSources, shelfscout.SourceMainDescription)
		if mainNode != nil {
			anchor = mainNode
			result.DescriptionMarkdown = e.markdown(main.Selection)
		}
	}

	captured := make(map[string]bool)
	if len(tabs) > 0 {
		for _, p := range tabs {
			captured[p.Text] = true
			block := p.block()
			blocks = append(blocks, block)
			result.Chars.TabContent += runeLen(block)
		}
		result.ExtractedSources = append(result.ExtractedSources, shelfscout.SourceTabContent)
	}

	if accordion := extractAccordionBlocks(doc, captured); len(accordion) > 0 {
		for _, p := range accordion {
			block := p.block()
			blocks = append(blocks, block)
			result.Chars.AccordionContent += runeLen(block)
		}
		result.ExtractedSources = append(result.ExtractedSources, shelfscout.SourceAccordionContent)
	}

	var mainSel *goquery.Selection
	if mainOK {
		mainSel = main.Selection
	}
	if features := extractFeatures(doc, mainSel); len(features) > 0 {
		block := featureBlock(features)
		blocks = append(blocks, block)
		result.Chars.FeatureLists = runeLen(block)
		result.ExtractedSources = append(result.ExtractedSources, shelfscout.SourceFeatureLists)
	}

	if specs := extractSpecifications(doc); len(specs) > 0 {
		result.Specifications = specs
		result.ExtractedSources = append(result.ExtractedSources, shelfscout.SourceSpecifications)
	}

	result.Description = strings.Join(blocks, "\n\n")
	result.MissedContent = missedContent(doc, result)

	total := runeLen(result.Description)
	estimated := estimateTotalChars(doc, anchor, e.fallbackRatio)
	rate := shelfscout.CaptureRate(total, estimated)
	result.Metrics = shelfscout.Metrics{
		TotalChars:          total,
		EstimatedTotalChars: estimated,
		CaptureRate:         rate,
		Quality:             shelfscout.QualityFromCaptureRate(rate),
	}

	switch {
	case titleOK && mainOK:
		result.Outcome = shelfscout.OutcomeFull
	case titleOK || total > 0 || len(result.Specifications) > 0:
		result.Outcome = shelfscout.OutcomePartial
	}

	return result
}

// markdown converts the main description container, if a converter is set.
func (e *Extractor) markdown(sel *goquery.Selection) string {
	if e.converter == nil {
		return ""
	}
	h, err := goquery.OuterHtml(sel)
	if err != nil {
		return ""
	}
	md, err := e.converter.Convert(h)
	if err != nil {
		return ""
	}
	return md
}

// missedContent flags categories whose markup exists on the page while
// none of their text made it into the description.
func missedContent(doc *goquery.Document, result *shelfscout.ProductExtraction) []string {
	missed := []string{}
	for _, c := range contentCategories {
		matches := doc.Find(c.Selector)
		if matches.Length() == 0 {
			continue
		}
		if c.Source != "" {
			if !result.HasSource(c.Source) {
				missed = append(missed, c.Name)
			}
			continue
		}
		captured := false
		matches.EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := selectionText(sel)
			if text != "" && strings.Contains(result.Description, text) {
				captured = true
				return false
			}
			return true
		})
		if !captured {
			missed = append(missed, c.Name)
		}
	}
	return missed
}
