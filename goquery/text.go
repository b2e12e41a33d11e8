package goquery

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// nodeText returns the whitespace-normalized text of nodes, skipping
// script, style, noscript and template subtrees.
func nodeText(nodes ...*html.Node) string {
	return textWithout(nil, nodes...)
}

// textWithout is nodeText with the subtrees rooted at skip left out.
func textWithout(skip []*html.Node, nodes ...*html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template:
				return
			}
			if slices.Contains(skip, n) {
				return
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return normalizeSpace(b.String())
}

// selectionText returns the normalized text of the first node in sel.
func selectionText(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	return nodeText(sel.Get(0))
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// isAncestor reports whether a is a strict ancestor of n.
func isAncestor(a, n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == a {
			return true
		}
	}
	return false
}

// byID finds an element by id without going through a CSS id selector,
// which would reject ids that are not valid identifiers.
func byID(doc *goquery.Document, id string) *goquery.Selection {
	id = strings.TrimPrefix(strings.TrimSpace(id), "#")
	return doc.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("id")
		return id != "" && v == id
	}).First()
}
