package shelfscout

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// NormalizeHostname reduces a URL or bare host to the key used for domain
// patterns: lowercase, scheme, port and path removed, leading "www." stripped.
func NormalizeHostname(domain string) string {
	s := strings.ToLower(strings.TrimSpace(domain))
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	host := strings.TrimSuffix(u.Hostname(), ".")
	return strings.TrimPrefix(host, "www.")
}

// LearnedFields are the structural facts learned from successful extractions.
type LearnedFields struct {
	PLPPath                  string   `json:"plpPath,omitempty"`
	ProductURLTemplate       string   `json:"productUrlTemplate,omitempty"`
	ProductURLs              []string `json:"productUrls,omitempty"`
	AverageDescriptionLength int      `json:"averageDescriptionLength"`
	BulletsRatio             float64  `json:"bulletsRatio"`
	ParagraphsRatio          float64  `json:"paragraphsRatio"`
	SpecsRatio               float64  `json:"specsRatio"`
	Platform                 Platform `json:"platform,omitempty"`
}

// DomainPattern is the learned, per-hostname record of how a store is structured.
// Counters only grow; patterns are never deleted.
type DomainPattern struct {
	SuccessCount   int           `json:"successCount"`
	FailureCount   int           `json:"failureCount"`
	LastSuccess    *time.Time    `json:"lastSuccess,omitempty"`
	LastFailure    *time.Time    `json:"lastFailure,omitempty"`
	LastError      string        `json:"lastError,omitempty"`
	AttemptedPaths []string      `json:"attemptedPaths,omitempty"`
	Learned        LearnedFields `json:"learned"`
}

// Clone returns a deep copy of the pattern.
func (p *DomainPattern) Clone() *DomainPattern {
	if p == nil {
		return nil
	}
	c := *p
	if p.LastSuccess != nil {
		t := *p.LastSuccess
		c.LastSuccess = &t
	}
	if p.LastFailure != nil {
		t := *p.LastFailure
		c.LastFailure = &t
	}
	c.AttemptedPaths = append([]string(nil), p.AttemptedPaths...)
	c.Learned.ProductURLs = append([]string(nil), p.Learned.ProductURLs...)
	return &c
}

// Observation is what a successful extraction attempt teaches about a domain.
type Observation struct {
	// PLPPath is the listing page path products were discovered from, if any.
	PLPPath     string
	ProductURLs []string
	Extraction  *ProductExtraction
}

// Confidence of a suggestion.
type Confidence string

// Suggestion confidence levels.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
)

// Suggestion is a listing-page path worth trying for a domain.
type Suggestion struct {
	Path       string     `json:"path"`
	Confidence Confidence `json:"confidence"`
	Reason     string     `json:"reason"`
}

// PatternStore persists the full hostname → DomainPattern map.
type PatternStore interface {
	// LoadPatterns returns ENOTFOUND if nothing has been stored yet.
	LoadPatterns(ctx context.Context) (map[string]*DomainPattern, error)

	// SavePatterns replaces the stored map.
	SavePatterns(ctx context.Context, patterns map[string]*DomainPattern) error
}

// KnowledgeBase learns per-domain patterns from extraction outcomes.
type KnowledgeBase interface {
	LearnFromSuccess(ctx context.Context, domain string, obs Observation) error
	LearnFromFailure(ctx context.Context, domain string, errMsg string, attemptedPaths []string) error
	SuggestionsForDomain(domain string) []Suggestion
	Pattern(domain string) (*DomainPattern, bool)
}
