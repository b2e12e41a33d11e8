package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Match is a piece of text found by a Matcher.
type Match struct {
	Text string
	// Selection is the element the text came from; empty for attribute matches.
	Selection *goquery.Selection
}

// Matcher is a single extraction strategy.
type Matcher interface {
	// Match returns the first qualifying text in doc.
	Match(doc *goquery.Document) (Match, bool)
}

// SelectorMatcher matches the first element for Selector whose text is
// longer than MinLen characters.
type SelectorMatcher struct {
	Selector string
	MinLen   int
}

// Match implements Matcher.
func (m SelectorMatcher) Match(doc *goquery.Document) (Match, bool) {
	var found Match
	ok := false
	doc.Find(m.Selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := selectionText(sel)
		if runeLen(text) > m.MinLen {
			found = Match{Text: text, Selection: sel}
			ok = true
			return false
		}
		return true
	})
	return found, ok
}

// AttrMatcher matches the first non-empty attribute value for Selector.
type AttrMatcher struct {
	Selector string
	Attr     string
}

// Match implements Matcher.
func (m AttrMatcher) Match(doc *goquery.Document) (Match, bool) {
	var found Match
	ok := false
	doc.Find(m.Selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		v, exists := sel.Attr(m.Attr)
		v = normalizeSpace(v)
		if exists && v != "" {
			found = Match{Text: v}
			ok = true
			return false
		}
		return true
	})
	return found, ok
}

// FirstMatch evaluates matchers in order and returns the first success.
func FirstMatch(doc *goquery.Document, matchers []Matcher) (Match, bool) {
	for _, m := range matchers {
		if match, ok := m.Match(doc); ok {
			return match, true
		}
	}
	return Match{}, false
}

// selectorMatchers builds one SelectorMatcher per selector, preserving order.
func selectorMatchers(minLen int, selectors ...string) []Matcher {
	matchers := make([]Matcher, 0, len(selectors))
	for _, s := range selectors {
		matchers = append(matchers, SelectorMatcher{Selector: s, MinLen: minLen})
	}
	return matchers
}

// joinSelectors joins selector groups into one comma-separated selector.
func joinSelectors(selectors ...string) string {
	return strings.Join(selectors, ", ")
}
