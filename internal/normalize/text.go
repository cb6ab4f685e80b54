// Package normalize holds the pure helpers extractors share: text and HTML
// flattening, duration and ISBN parsing, language names, category
// classification and high-resolution cover resolution.
package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HTMLToText flattens a subtree to text. <br> becomes "\n" and every <p> is
// wrapped in "\n" on both sides; all other markup is dropped. The selection
// itself is left untouched.
func HTMLToText(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	clone := sel.First().Clone()
	for _, n := range clone.Nodes {
		rewriteBreaks(n)
	}
	return strings.TrimSpace(clone.Text())
}

// HTMLStringToText is HTMLToText for a markup fragment held in a string.
func HTMLStringToText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<div>" + fragment + "</div>"))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return HTMLToText(doc.Find("body > div"))
}

func rewriteBreaks(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode {
			switch c.Data {
			case "br":
				n.InsertBefore(newline(), c)
				n.RemoveChild(c)
				c = next
				continue
			case "p":
				rewriteBreaks(c)
				if c.FirstChild != nil {
					c.InsertBefore(newline(), c.FirstChild)
				} else {
					c.AppendChild(newline())
				}
				c.AppendChild(newline())
				c = next
				continue
			}
		}
		rewriteBreaks(c)
		c = next
	}
}

func newline() *html.Node {
	return &html.Node{Type: html.TextNode, Data: "\n"}
}

// CleanText collapses runs of whitespace and strips the directional and
// zero-width marks Amazon sprinkles into its detail labels.
func CleanText(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u200e', '\u200f', '\u200b', '\ufeff':
			return -1
		case '\u00a0':
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// TitleCase capitalises each word of s.
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}
