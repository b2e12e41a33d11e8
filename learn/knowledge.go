// Package learn keeps the per-domain knowledge base: what worked on each
// store, how its product URLs are shaped, and where to look next time.
package learn

import (
	"context"
	"fmt"
	"maps"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/fwojciec/shelfscout"
)

// MaxProductURLs bounds the sample of product URLs kept per domain.
const MaxProductURLs = 50

var _ shelfscout.KnowledgeBase = (*KnowledgeBase)(nil)

// KnowledgeBase is an in-memory hostname → pattern map backed by a
// PatternStore and rewritten in full after every mutation.
//
// KnowledgeBase is not safe for concurrent use. Callers must serialize
// Learn* calls against the same instance.
type KnowledgeBase struct {
	store    shelfscout.PatternStore
	patterns map[string]*shelfscout.DomainPattern

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Open loads patterns from store. When nothing can be loaded, including a
// store that does not exist yet, the knowledge base starts from
// DefaultPatterns.
func Open(ctx context.Context, store shelfscout.PatternStore) *KnowledgeBase {
	k := &KnowledgeBase{store: store, Now: time.Now}
	patterns, err := store.LoadPatterns(ctx)
	if err != nil || patterns == nil {
		patterns = DefaultPatterns()
	}
	// A stored null entry decodes to a nil pattern.
	maps.DeleteFunc(patterns, func(_ string, p *shelfscout.DomainPattern) bool {
		return p == nil
	})
	k.patterns = patterns
	return k
}

// LearnFromSuccess records a successful extraction for domain and
// refreshes its learned fields.
func (k *KnowledgeBase) LearnFromSuccess(ctx context.Context, domain string, obs shelfscout.Observation) error {
	host := shelfscout.NormalizeHostname(domain)
	if host == "" {
		return shelfscout.Errorf(shelfscout.EINVALID, "invalid domain %q", domain)
	}

	p := k.pattern(host)
	p.SuccessCount++
	now := k.Now()
	p.LastSuccess = &now

	if obs.PLPPath != "" {
		p.Learned.PLPPath = obs.PLPPath
	}

	urls := obs.ProductURLs
	if obs.Extraction != nil && obs.Extraction.URL != "" {
		urls = append(append([]string{}, urls...), obs.Extraction.URL)
	}
	p.Learned.ProductURLs = appendBounded(p.Learned.ProductURLs, urls, MaxProductURLs)
	if t := MostFrequentTemplate(p.Learned.ProductURLs); t != "" {
		p.Learned.ProductURLTemplate = t
	}

	if e := obs.Extraction; e != nil {
		n := float64(p.SuccessCount)
		avg := runningMean(float64(p.Learned.AverageDescriptionLength), float64(e.Metrics.TotalChars), n)
		p.Learned.AverageDescriptionLength = int(math.Round(avg))
		p.Learned.BulletsRatio = runningMean(p.Learned.BulletsRatio, indicator(e.HasSource(shelfscout.SourceFeatureLists)), n)
		p.Learned.ParagraphsRatio = runningMean(p.Learned.ParagraphsRatio, indicator(e.Chars.MainDescription > 0), n)
		p.Learned.SpecsRatio = runningMean(p.Learned.SpecsRatio, indicator(e.HasSource(shelfscout.SourceSpecifications)), n)
		if e.Platform.IsKnown() {
			p.Learned.Platform = e.Platform
		}
	}

	return k.Save(ctx)
}

// LearnFromFailure records a failed attempt for domain.
func (k *KnowledgeBase) LearnFromFailure(ctx context.Context, domain string, errMsg string, attemptedPaths []string) error {
	host := shelfscout.NormalizeHostname(domain)
	if host == "" {
		return shelfscout.Errorf(shelfscout.EINVALID, "invalid domain %q", domain)
	}

	p := k.pattern(host)
	p.FailureCount++
	now := k.Now()
	p.LastFailure = &now
	p.LastError = errMsg
	p.AttemptedPaths = append([]string(nil), attemptedPaths...)

	return k.Save(ctx)
}

// SuggestionsForDomain returns listing-page paths worth trying for domain:
// the learned path first, then seeded platform-family paths, then the fixed
// platform table in its declared order.
func (k *KnowledgeBase) SuggestionsForDomain(domain string) []shelfscout.Suggestion {
	host := shelfscout.NormalizeHostname(domain)
	var suggestions []shelfscout.Suggestion

	if p, ok := k.patterns[host]; ok && p.SuccessCount > 0 && p.Learned.PLPPath != "" {
		suggestions = append(suggestions, shelfscout.Suggestion{
			Path:       p.Learned.PLPPath,
			Confidence: shelfscout.ConfidenceHigh,
			Reason:     fmt.Sprintf("learned from %d successful extraction(s)", p.SuccessCount),
		})
	}

	for _, family := range k.families(host) {
		suggestions = append(suggestions, shelfscout.Suggestion{
			Path:       k.patterns[family].Learned.PLPPath,
			Confidence: shelfscout.ConfidenceMedium,
			Reason:     "hosted on " + family,
		})
	}

	for _, pp := range PlatformPaths() {
		suggestions = append(suggestions, shelfscout.Suggestion{
			Path:       pp.Path,
			Confidence: shelfscout.ConfidenceMedium,
			Reason:     "common " + pp.Platform + " listing path",
		})
	}
	return suggestions
}

// Pattern returns a copy of the pattern for domain.
func (k *KnowledgeBase) Pattern(domain string) (*shelfscout.DomainPattern, bool) {
	p, ok := k.patterns[shelfscout.NormalizeHostname(domain)]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Domains returns the stored hostnames in sorted order.
func (k *KnowledgeBase) Domains() []string {
	hosts := make([]string, 0, len(k.patterns))
	for h := range k.patterns {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

// ProductURLFilter returns a filter matching URLs shaped like the domain's
// learned product URL template.
func (k *KnowledgeBase) ProductURLFilter(domain string) (*shelfscout.URLFilter, bool) {
	p, ok := k.patterns[shelfscout.NormalizeHostname(domain)]
	if !ok || p.Learned.ProductURLTemplate == "" {
		return nil, false
	}
	re, err := TemplateRegexp(p.Learned.ProductURLTemplate)
	if err != nil {
		return nil, false
	}
	return &shelfscout.URLFilter{Include: []*regexp.Regexp{re}}, true
}

// Save writes the full pattern map to the store.
func (k *KnowledgeBase) Save(ctx context.Context) error {
	if err := k.store.SavePatterns(ctx, k.patterns); err != nil {
		return fmt.Errorf("saving patterns: %w", err)
	}
	return nil
}

// pattern returns the pattern for host, creating it on first observation.
func (k *KnowledgeBase) pattern(host string) *shelfscout.DomainPattern {
	p, ok := k.patterns[host]
	if !ok {
		p = &shelfscout.DomainPattern{}
		k.patterns[host] = p
	}
	return p
}

// families returns seeded platform-family hosts that host is a subdomain of.
func (k *KnowledgeBase) families(host string) []string {
	var out []string
	for _, family := range familyHosts() {
		p, ok := k.patterns[family]
		if !ok || p.Learned.PLPPath == "" {
			continue
		}
		if strings.HasSuffix(host, "."+family) {
			out = append(out, family)
		}
	}
	return out
}

// appendBounded appends new unique values and keeps the most recent max.
func appendBounded(list, values []string, max int) []string {
	for _, v := range values {
		if v == "" {
			continue
		}
		dup := false
		for _, existing := range list {
			if existing == v {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, v)
		}
	}
	if len(list) > max {
		list = append([]string(nil), list[len(list)-max:]...)
	}
	return list
}

func runningMean(prev, x, n float64) float64 {
	if n <= 1 {
		return x
	}
	return prev + (x-prev)/n
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
