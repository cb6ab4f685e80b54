package extractor

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/bookmeta/internal/entity"
	"github.com/user/bookmeta/internal/normalize"
	"github.com/user/bookmeta/pkg/utils"
)

// firstText returns the cleaned text of the first selector that yields a
// non-blank value.
func firstText(doc *goquery.Document, selectors ...string) string {
	for _, selector := range selectors {
		if t := normalize.CleanText(doc.Find(selector).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// ownText is the text of sel without the text of its child elements.
func ownText(sel *goquery.Selection) string {
	return normalize.CleanText(sel.Clone().Children().Remove().End().Text())
}

// firstAttr returns the first non-blank attribute value among names.
func firstAttr(sel *goquery.Selection, names ...string) string {
	for _, name := range names {
		if v, ok := sel.Attr(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// labelKey normalizes a details-table label: "ISBN-13 ‏ : ‎" -> "isbn-13".
func labelKey(s string) string {
	s = normalize.CleanText(s)
	s = strings.TrimRight(s, ": ")
	return strings.ToLower(strings.TrimSpace(s))
}

// afterLabel strips label from the front of full along with any separator.
func afterLabel(full, label string) string {
	full = normalize.CleanText(full)
	label = normalize.CleanText(label)
	v := strings.TrimPrefix(full, label)
	return strings.TrimSpace(strings.TrimLeft(v, ": "))
}

func absolute(base *url.URL, src string) string {
	src = strings.TrimSpace(src)
	if src == "" || strings.HasPrefix(src, "data:") {
		return ""
	}
	abs, err := utils.ToAbsoluteURL(base, src)
	if err != nil {
		return ""
	}
	return abs
}

// submatch returns the first capture group of re in s, or "".
func submatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func texts(sel *goquery.Selection) []string {
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if t := normalize.CleanText(s.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// assignISBN classifies raw by length and fills the matching slot.
func assignISBN(rec *entity.BookRecord, raw string) bool {
	clean, kind := normalize.ClassifyISBN(raw)
	switch kind {
	case normalize.ISBN13:
		return entity.SetString(&rec.ISBN13, clean)
	case normalize.ISBN10:
		return entity.SetString(&rec.ISBN10, clean)
	}
	return false
}
