package shelfscout

import "math"

// Source tags identify where a piece of description content was captured from.
const (
	SourceMainDescription  = "main_description"
	SourceTabContent       = "tab_content"
	SourceAccordionContent = "accordion_content"
	SourceFeatureLists     = "feature_lists"
	SourceSpecifications   = "specifications"
)

// Content categories checked for plausible-but-missed content.
const (
	ContentSizeGuide        = "size_guide"
	ContentCareInstructions = "care_instructions"
	ContentShippingInfo     = "shipping_info"
	ContentIngredients      = "ingredients"
	ContentReviews          = "reviews"
	ContentFeatureLists     = "feature_lists"
)

// Quality is a categorical bucket derived from a capture rate or quality score.
type Quality string

// Quality labels, best first.
const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityFair      Quality = "fair"
	QualityPoor      Quality = "poor"
)

// QualityFromCaptureRate maps a capture rate percentage to a quality label.
func QualityFromCaptureRate(rate int) Quality {
	switch {
	case rate >= 80:
		return QualityExcellent
	case rate >= 60:
		return QualityGood
	case rate >= 40:
		return QualityFair
	default:
		return QualityPoor
	}
}

// Outcome tags how much of a page an extraction managed to recognise.
type Outcome string

// Extraction outcomes.
const (
	// OutcomeFull means both a title and a main description were found.
	OutcomeFull Outcome = "full"
	// OutcomePartial means some product content was found.
	OutcomePartial Outcome = "partial"
	// OutcomeEmpty means no recognizable product structure was found.
	OutcomeEmpty Outcome = "empty"
)

// UnknownTitle is shown in place of a title when none was extracted.
const UnknownTitle = "Unknown Product"

// SourceChars holds per-source character counts.
type SourceChars struct {
	MainDescription  int `json:"mainDescription"`
	TabContent       int `json:"tabContent"`
	AccordionContent int `json:"accordionContent"`
	FeatureLists     int `json:"featureLists"`
}

// Specification is a single label/value pair from a spec table or definition list.
type Specification struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Metrics describe how complete an extraction is.
type Metrics struct {
	TotalChars          int     `json:"totalChars"`
	EstimatedTotalChars int     `json:"estimatedTotalChars"`
	CaptureRate         int     `json:"captureRate"`
	Quality             Quality `json:"quality"`
}

// ProductExtraction is the aggregated product content of a single page.
// It is owned by the caller and never persisted by the extractor.
type ProductExtraction struct {
	URL                 string          `json:"url"`
	Title               string          `json:"title"`
	Description         string          `json:"description"`
	DescriptionMarkdown string          `json:"descriptionMarkdown,omitempty"`
	Platform            Platform        `json:"platform"`
	Chars               SourceChars     `json:"chars"`
	Specifications      []Specification `json:"specifications,omitempty"`
	ExtractedSources    []string        `json:"extractedSources"`
	MissedContent       []string        `json:"missedContent"`
	Metrics             Metrics         `json:"metrics"`
	Outcome             Outcome         `json:"outcome"`
}

// DisplayTitle returns the title, or UnknownTitle when none was extracted.
func (p *ProductExtraction) DisplayTitle() string {
	if p.Title == "" {
		return UnknownTitle
	}
	return p.Title
}

// HasSource reports whether the given source tag was captured.
func (p *ProductExtraction) HasSource(source string) bool {
	return contains(p.ExtractedSources, source)
}

// HasMissed reports whether the given content category was flagged as missed.
func (p *ProductExtraction) HasMissed(category string) bool {
	return contains(p.MissedContent, category)
}

// Spec returns the value for a specification label.
func (p *ProductExtraction) Spec(label string) (string, bool) {
	for _, s := range p.Specifications {
		if s.Label == label {
			return s.Value, true
		}
	}
	return "", false
}

// Issues lists human-readable problems with the extraction, used for
// per-platform issue ranking.
func (p *ProductExtraction) Issues() []string {
	var issues []string
	if p.Title == "" {
		issues = append(issues, "missing title")
	}
	switch {
	case p.Metrics.TotalChars == 0:
		issues = append(issues, "no description")
	case p.Metrics.TotalChars < 200:
		issues = append(issues, "short description")
	}
	if p.Metrics.TotalChars > 0 && p.Metrics.CaptureRate < 50 {
		issues = append(issues, "low capture rate")
	}
	for _, m := range p.MissedContent {
		issues = append(issues, "missed "+m)
	}
	return issues
}

// CaptureRate returns round(100*total/estimated) clamped to [0,100].
// A zero or negative estimate yields 0.
func CaptureRate(total, estimated int) int {
	if estimated <= 0 || total <= 0 {
		return 0
	}
	rate := int(math.Round(100 * float64(total) / float64(estimated)))
	return min(max(rate, 0), 100)
}

// ContentExtractor aggregates product description content from HTML.
type ContentExtractor interface {
	// Extract never fails: pages without recognizable structure produce a
	// result with OutcomeEmpty.
	Extract(html string, url string) *ProductExtraction
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
