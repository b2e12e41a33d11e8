package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// panel is a labelled block of tab or accordion content.
type panel struct {
	Label string
	Text  string

	// node is the panel element and trigger the element that labels it.
	// Either may be nil.
	node    *html.Node
	trigger *html.Node
}

// block renders the panel the way it is appended to the description.
func (p panel) block() string {
	if p.Label == "" {
		return p.Text
	}
	return p.Label + ":\n" + p.Text
}

// tabStrategy finds tab panels using one kind of trigger/panel linkage.
type tabStrategy func(doc *goquery.Document) []panel

// tabStrategies are tried in order; the first yielding any panel wins.
var tabStrategies = []tabStrategy{
	attributeLinkedTabs,
	anchorLinkedTabs,
	accordionLinkedTabs,
}

// extractTabs returns panels from the first productive strategy merged with
// any description-tab hits.
func extractTabs(doc *goquery.Document) []panel {
	var panels []panel
	for _, strategy := range tabStrategies {
		if found := strategy(doc); len(found) > 0 {
			panels = found
			break
		}
	}

	seen := make(map[string]bool, len(panels))
	for _, p := range panels {
		seen[p.Text] = true
	}
	for _, selector := range descriptionTabs {
		sel := doc.Find(selector).First()
		text := selectionText(sel)
		if runeLen(text) < MinPanelLen || seen[text] {
			continue
		}
		seen[text] = true
		panels = append(panels, panel{Label: "Description", Text: text, node: sel.Get(0)})
	}
	return panels
}

// claimPanels reconciles tab panels with the main description element so
// no text is counted twice. A panel that is the main element is dropped. A
// panel nested in it is kept, and it is returned with its trigger among the
// nodes to leave out of the main text. A panel wrapping the main element
// keeps only its own text.
func claimPanels(panels []panel, main *html.Node) ([]panel, []*html.Node) {
	if main == nil {
		return panels, nil
	}
	var kept []panel
	var nested []*html.Node
	for _, p := range panels {
		switch {
		case p.node == nil:
		case p.node == main:
			continue
		case isAncestor(main, p.node):
			nested = append(nested, p.node)
		case isAncestor(p.node, main):
			p.Text = textWithout([]*html.Node{main}, p.node)
			if runeLen(p.Text) < MinPanelLen {
				continue
			}
		}
		if p.trigger != nil && isAncestor(main, p.trigger) {
			nested = append(nested, p.trigger)
		}
		kept = append(kept, p)
	}
	return kept, nested
}

// attributeLinkedTabs follows aria-controls and data-*target attributes.
func attributeLinkedTabs(doc *goquery.Document) []panel {
	return collectPanels(doc.Find(tabTriggers), func(trigger *goquery.Selection) *goquery.Selection {
		for _, attr := range []string{"aria-controls", "data-tab-target", "data-target", "data-bs-target"} {
			if id, ok := trigger.Attr(attr); ok && id != "" {
				return byID(doc, id)
			}
		}
		return nil
	})
}

// anchorLinkedTabs follows href="#id" anchors inside tab navigation.
func anchorLinkedTabs(doc *goquery.Document) []panel {
	return collectPanels(doc.Find(tabNavLinks), func(trigger *goquery.Selection) *goquery.Selection {
		href, _ := trigger.Attr("href")
		if len(href) < 2 {
			return nil
		}
		return byID(doc, href)
	})
}

// accordionLinkedTabs pairs accordion triggers with their panels via
// aria-controls, a following sibling or the trigger's parent.
func accordionLinkedTabs(doc *goquery.Document) []panel {
	return collectPanels(doc.Find(accordionTriggers), func(trigger *goquery.Selection) *goquery.Selection {
		if id, ok := trigger.Attr("aria-controls"); ok && id != "" {
			if target := byID(doc, id); target.Length() > 0 {
				return target
			}
		}
		if next := trigger.NextAllFiltered(accordionPanels).First(); next.Length() > 0 {
			return next
		}
		return trigger.Parent().Find(accordionPanels).First()
	})
}

// collectPanels resolves each trigger to a panel, dropping short and duplicate panels.
func collectPanels(triggers *goquery.Selection, resolve func(*goquery.Selection) *goquery.Selection) []panel {
	var panels []panel
	seen := make(map[string]bool)
	triggers.Each(func(_ int, trigger *goquery.Selection) {
		target := resolve(trigger)
		if target == nil || target.Length() == 0 {
			return
		}
		text := selectionText(target)
		if runeLen(text) < MinPanelLen || seen[text] {
			return
		}
		seen[text] = true
		panels = append(panels, panel{
			Label:   selectionText(trigger),
			Text:    text,
			node:    target.Get(0),
			trigger: trigger.Get(0),
		})
	})
	return panels
}

// extractAccordionBlocks returns title/content pairs from accordion items.
// Blocks whose content is already captured in skip are dropped.
func extractAccordionBlocks(doc *goquery.Document, skip map[string]bool) []panel {
	var blocks []panel
	doc.Find(accordionItems).Each(func(_ int, item *goquery.Selection) {
		titleSel := item.Find(accordionTitles).First()
		title := selectionText(titleSel)
		if title == "" {
			return
		}

		var content string
		if contentSel := item.Find(accordionPanels).First(); contentSel.Length() > 0 {
			content = selectionText(contentSel)
		} else if goquery.NodeName(item) == "details" {
			// details without a content wrapper: everything but the summary
			content = selectionText(item)
			content = strings.TrimSpace(strings.TrimPrefix(content, title))
		}

		if runeLen(content) < MinPanelLen || skip[content] {
			return
		}
		skip[content] = true
		blocks = append(blocks, panel{Label: title, Text: content})
	})
	return blocks
}
