package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/shelfscout"
)

// maxSpecLabelLen guards against whole paragraphs parsed as labels.
const maxSpecLabelLen = 80

// extractFeatures collects list items from every feature list set and from
// bullet lists inside the main description, deduplicated by exact text.
func extractFeatures(doc *goquery.Document, main *goquery.Selection) []string {
	var features []string
	seen := make(map[string]bool)
	add := func(_ int, li *goquery.Selection) {
		if li.Closest(tabNavs).Length() > 0 {
			return
		}
		text := selectionText(li)
		if text == "" || seen[text] {
			return
		}
		seen[text] = true
		features = append(features, text)
	}

	for _, set := range featureListSets {
		doc.Find(set).Each(add)
	}
	if main != nil {
		main.Find("ul li").Each(add)
	}
	return features
}

// featureBlock renders features as the "Key Features" description block.
func featureBlock(features []string) string {
	if len(features) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Key Features:")
	for _, f := range features {
		b.WriteString("\n• ")
		b.WriteString(f)
	}
	return b.String()
}

// extractSpecifications reads table rows, then definition lists.
// The first source to provide a label wins.
func extractSpecifications(doc *goquery.Document) []shelfscout.Specification {
	var specs []shelfscout.Specification
	seen := make(map[string]bool)
	add := func(label, value string) {
		if label == "" || value == "" || seen[label] || runeLen(label) > maxSpecLabelLen {
			return
		}
		seen[label] = true
		specs = append(specs, shelfscout.Specification{Label: label, Value: value})
	}

	doc.Find(specRows).Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("th, td")
		if cells.Length() < 2 {
			return
		}
		label := strings.TrimSuffix(selectionText(cells.First()), ":")
		add(label, selectionText(cells.Last()))
	})

	doc.Find("dl").Each(func(_ int, dl *goquery.Selection) {
		dl.ChildrenFiltered("dt").Each(func(_ int, dt *goquery.Selection) {
			dd := dt.NextFiltered("dd")
			label := strings.TrimSuffix(selectionText(dt), ":")
			add(label, selectionText(dd))
		})
	})

	return specs
}
