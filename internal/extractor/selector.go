package extractor

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// Selector picks the extractor for a page. Extractors are asked in order and
// the first whose Detect accepts the page wins; pages are never blended.
type Selector struct {
	extractors []Extractor
}

func NewSelector(extractors ...Extractor) *Selector {
	return &Selector{extractors: extractors}
}

// Select returns the extractor that applies to the page, if any. doc may be
// nil when only the URL is known.
func (s *Selector) Select(u *url.URL, doc *goquery.Document) (Extractor, bool) {
	if u == nil {
		return nil, false
	}
	for _, e := range s.extractors {
		if e.Detect(u, doc) {
			return e, true
		}
	}
	return nil, false
}

// Names lists the sources in priority order.
func (s *Selector) Names() []string {
	names := make([]string, 0, len(s.extractors))
	for _, e := range s.extractors {
		names = append(names, e.Name())
	}
	return names
}
