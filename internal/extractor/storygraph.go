package extractor

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/user/bookmeta/internal/dedup"
	"github.com/user/bookmeta/internal/entity"
	"github.com/user/bookmeta/internal/normalize"
	"github.com/user/bookmeta/internal/repository"
)

const (
	storyGraphTitleBlock  = ".book-title-author-and-series"
	storyGraphEditionInfo = ".edition-info"
	storyGraphBlurb       = ".blurb-pane"
	storyGraphTitle       = ".book-title-author-and-series h3"
	storyGraphParagraphs  = ".book-title-author-and-series p"
	storyGraphSeriesLink  = "a[href*='/series/']"
	storyGraphCover       = ".book-cover img"
	storyGraphReadMore    = ".blurb-pane .read-more-btn"
	storyGraphDescription = ".blurb-pane .trix-content"
	storyGraphEditionRows = ".edition-info p"
	storyGraphLength      = "p.text-sm.font-light"
	storyGraphTags        = ".book-pane-tag-section span"
)

var (
	storyGraphSlug         = regexp.MustCompile(`/books/([^/?#]+)`)
	storyGraphSeriesNumber = regexp.MustCompile(`#(\d+(?:\.\d+)?)`)
	storyGraphRole         = regexp.MustCompile(`^\s*\(([^)]+)\)`)
	storyGraphASIN         = regexp.MustCompile(`^B0[A-Z0-9]{8}$`)
)

// StoryGraph reads app.thestorygraph.com book pages.
type StoryGraph struct {
	opts    Options
	edition map[string]func(r *run, value string) error
}

var _ Extractor = (*StoryGraph)(nil)

func NewStoryGraph(opts Options) *StoryGraph {
	return &StoryGraph{
		opts: opts.withDefaults(),
		edition: map[string]func(r *run, value string) error{
			"isbn/uid":         storyGraphISBN,
			"format":           storyGraphFormat,
			"language":         storyGraphLanguage,
			"publisher":        storyGraphPublisher,
			"edition pub date": storyGraphPubDate,
		},
	}
}

func (s *StoryGraph) Name() string { return SourceStoryGraph }

// Detect needs both the page structure and a /books/ path; neither alone
// tells a book page apart on that site.
func (s *StoryGraph) Detect(u *url.URL, doc *goquery.Document) bool {
	if u == nil || doc == nil || !strings.Contains(u.Path, "/books/") {
		return false
	}
	return doc.Find(storyGraphTitleBlock+", "+storyGraphEditionInfo+", "+storyGraphBlurb).Length() > 0
}

func (s *StoryGraph) Extract(ctx context.Context, page repository.PageReader) entity.ExtractionResult {
	r := newRun(s.opts, SourceStoryGraph, page)
	doc := r.document(ctx, page)
	if doc == nil {
		return r.result()
	}

	collapsed := len(doc.Find(storyGraphDescription).Text())
	doc = r.expand(ctx, page, doc, "description", storyGraphReadMore, func(d *goquery.Document) bool {
		return d.Find(storyGraphReadMore).Length() == 0 || len(d.Find(storyGraphDescription).Text()) > collapsed
	})

	r.step("title", func() error {
		sel := doc.Find(storyGraphTitle).First()
		if sel.Length() == 0 {
			return missing(storyGraphTitle)
		}
		r.rec.Title = ownText(sel)
		return nil
	})

	paragraphs := doc.Find(storyGraphParagraphs)
	hasSeries := paragraphs.First().Find(storyGraphSeriesLink).Length() > 0
	r.step("series", func() error {
		if !hasSeries {
			return nil
		}
		links := paragraphs.First().Find("a")
		r.rec.SeriesName = normalize.CleanText(links.First().Text())
		number := submatch(storyGraphSeriesNumber, links.Eq(1).Text())
		if number == "" {
			number = submatch(storyGraphSeriesNumber, paragraphs.First().Text())
		}
		if number == "" {
			return mismatch("series %q has no #number", r.rec.SeriesName)
		}
		r.rec.SeriesNumber = number
		return nil
	})
	r.step("authors", func() error {
		idx := 0
		if hasSeries {
			idx = 1
		}
		p := paragraphs.Eq(idx)
		if p.Length() == 0 {
			return missing(storyGraphParagraphs)
		}
		s.contributors(r, p)
		return nil
	})
	r.step("cover", func() error {
		src := firstAttr(doc.Find(storyGraphCover).First(), "src")
		if src == "" {
			return missing(storyGraphCover)
		}
		r.rec.Cover = r.cover(ctx, src)
		return nil
	})
	r.step("description", func() error {
		sel := doc.Find(storyGraphDescription).First()
		if sel.Length() == 0 {
			return missing(storyGraphDescription)
		}
		r.rec.Description = normalize.HTMLToText(sel)
		return nil
	})
	r.step("edition", func() error { return s.editionInfo(r, doc) })
	r.step("length", func() error {
		t := firstText(doc, storyGraphLength)
		if t == "" {
			return missing(storyGraphLength)
		}
		// A book has either a page count or a running time, so both are tried.
		r.rec.SetDuration(normalize.ParseDuration(t))
		r.rec.SetPageCount(normalize.ParsePageCount(t))
		return nil
	})
	r.step("tags", func() error {
		tags := texts(doc.Find(storyGraphTags))
		if len(tags) == 0 {
			return nil
		}
		c := normalize.ClassifyCategories(tags)
		r.rec.LiteraryType, r.rec.BookCategory, r.rec.Compilation = c.LiteraryType, c.BookCategory, c.Compilation
		return nil
	})
	r.step("sourceId", func() error {
		entity.SetString(&r.rec.SourceID, submatch(storyGraphSlug, r.url.Path))
		return nil
	})
	return r.result()
}

// contributors reads the author links of p. A parenthesised role in the text
// right after a link, e.g. "(translator)", marks a contributor; anything else
// is an author. A person listed under several roles is merged into one entry.
func (s *StoryGraph) contributors(r *run, p *goquery.Selection) {
	var (
		authors      []string
		contributors []entity.Contributor
	)
	p.Find("a").Each(func(_ int, link *goquery.Selection) {
		name := normalize.CleanText(link.Text())
		if name == "" {
			return
		}
		role := trailingRole(link)
		if role == "" {
			authors = append(authors, name)
			return
		}
		contributors = append(contributors, entity.Contributor{Name: name, Role: normalize.TitleCase(role)})
	})
	r.rec.Authors = dedup.Authors(authors)
	r.rec.Contributors = dedup.Normalize(contributors, r.rec.Authors)
}

func trailingRole(link *goquery.Selection) string {
	if len(link.Nodes) == 0 {
		return ""
	}
	next := link.Nodes[0].NextSibling
	if next == nil || next.Type != html.TextNode {
		return ""
	}
	return strings.TrimSpace(submatch(storyGraphRole, next.Data))
}

func (s *StoryGraph) editionInfo(r *run, doc *goquery.Document) error {
	rows := doc.Find(storyGraphEditionRows)
	if rows.Length() == 0 {
		return missing(storyGraphEditionRows)
	}
	rows.Each(func(_ int, row *goquery.Selection) {
		label := row.Find("span").First().Text()
		key := labelKey(label)
		handler, ok := s.edition[key]
		if !ok {
			return
		}
		value := afterLabel(row.Text(), label)
		if value == "" || strings.EqualFold(value, "not specified") || strings.EqualFold(value, "none") {
			return
		}
		r.step("edition."+key, func() error { return handler(r, value) })
	})
	return nil
}

func storyGraphISBN(r *run, value string) error {
	if _, kind := normalize.ClassifyISBN(value); kind != "" {
		assignISBN(&r.rec, value)
		return nil
	}
	if storyGraphASIN.MatchString(strings.ToUpper(value)) {
		entity.SetString(&r.rec.ASIN, strings.ToUpper(value))
		return nil
	}
	return mismatch("unclassified identifier %q", value)
}

func storyGraphFormat(r *run, value string) error {
	lower := strings.ToLower(value)
	switch {
	case strings.Contains(lower, "audio"):
		entity.SetString(&r.rec.ReadingFormat, entity.FormatAudiobook)
	case strings.Contains(lower, "digital"):
		entity.SetString(&r.rec.ReadingFormat, entity.FormatEBook)
	default:
		entity.SetString(&r.rec.ReadingFormat, entity.FormatPhysical)
		entity.SetString(&r.rec.EditionFormat, value)
	}
	return nil
}

func storyGraphLanguage(r *run, value string) error {
	entity.SetString(&r.rec.ReleaseLanguage, value)
	return nil
}

func storyGraphPublisher(r *run, value string) error {
	entity.SetString(&r.rec.Publisher, value)
	return nil
}

func storyGraphPubDate(r *run, value string) error {
	entity.SetString(&r.rec.ReleaseDate, value)
	return nil
}
