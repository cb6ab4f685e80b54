package extractor

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/bookmeta/internal/dedup"
	"github.com/user/bookmeta/internal/entity"
	"github.com/user/bookmeta/internal/normalize"
	"github.com/user/bookmeta/internal/repository"
	"github.com/user/bookmeta/pkg/utils"
)

const (
	goodreadsTitle           = "h1[data-testid='bookTitle']"
	goodreadsCover           = ".BookCover__image img"
	goodreadsContributors    = ".BookPageMetadataSection__contributor .ContributorLinksList"
	goodreadsMoreButton      = ".BookPageMetadataSection__contributor .ContributorLinksList button"
	goodreadsContributorLink = ".ContributorLink"
	goodreadsContributorName = ".ContributorLink__name"
	goodreadsContributorRole = ".ContributorLink__role"
	goodreadsSeries          = ".BookPageTitleSection__title h3 a"
	goodreadsDescription     = ".BookPageMetadataSection__description .Formatted"
	goodreadsGenres          = ".BookPageMetadataSection__genres .Button__labelItem"
	goodreadsDetailsButton   = "button[aria-label='Book details and editions']"
	goodreadsDetails         = ".EditionDetails .DescListItem"
	goodreadsPagesFormat     = "p[data-testid='pagesFormat']"
	goodreadsPublication     = "p[data-testid='publicationInfo']"
)

var (
	goodreadsBookID      = regexp.MustCompile(`/book/show/(\d+)`)
	goodreadsSeriesParts = regexp.MustCompile(`^(.*?)[,\s]*#(\d+(?:\.\d+)?)\s*$`)
	goodreadsISBNPair    = regexp.MustCompile(`(\d{13})\s*\(\s*ISBN10:\s*([\dX]{10})\s*\)`)
)

type goodreadsFormat struct {
	reading string
	edition string
}

// Goodreads format strings with a known reading format. Anything else is
// stored verbatim as the edition format.
var goodreadsFormats = map[string]goodreadsFormat{
	"audible audio":  {entity.FormatAudiobook, "Audible"},
	"audio cd":       {entity.FormatAudiobook, "CD"},
	"kindle edition": {entity.FormatEBook, "Kindle"},
	"ebook":          {entity.FormatEBook, ""},
	"paperback":      {entity.FormatPhysical, "Paperback"},
	"hardcover":      {entity.FormatPhysical, "Hardcover"},
}

// Goodreads reads goodreads.com book pages.
type Goodreads struct {
	opts    Options
	details map[string]func(r *run, value string) error
}

var _ Extractor = (*Goodreads)(nil)

func NewGoodreads(opts Options) *Goodreads {
	return &Goodreads{
		opts: opts.withDefaults(),
		details: map[string]func(r *run, value string) error{
			"format":    goodreadsFormatDetail,
			"published": goodreadsPublished,
			"isbn":      goodreadsISBN,
			"asin":      goodreadsASIN,
			"language":  goodreadsLanguage,
		},
	}
}

func (g *Goodreads) Name() string { return SourceGoodreads }

func (g *Goodreads) Detect(u *url.URL, _ *goquery.Document) bool {
	return u != nil && utils.HostLabel(u.Host, "goodreads")
}

func (g *Goodreads) Extract(ctx context.Context, page repository.PageReader) entity.ExtractionResult {
	r := newRun(g.opts, SourceGoodreads, page)
	doc := r.document(ctx, page)
	if doc == nil {
		return r.result()
	}

	// The contributor list is truncated behind a "...more" button and the
	// edition details are collapsed until their toggle is clicked.
	before := doc.Find(goodreadsContributorLink).Length()
	doc = r.expand(ctx, page, doc, "contributors", goodreadsMoreButton, func(d *goquery.Document) bool {
		return d.Find(goodreadsContributorLink).Length() > before || d.Find(goodreadsMoreButton).Length() == 0
	})
	doc = r.expand(ctx, page, doc, "details", goodreadsDetailsButton, func(d *goquery.Document) bool {
		return d.Find(goodreadsDetails).Length() > 0
	})

	r.step("title", func() error {
		t := firstText(doc, goodreadsTitle)
		if t == "" {
			return missing(goodreadsTitle)
		}
		r.rec.Title = t
		return nil
	})
	r.step("cover", func() error {
		src := firstAttr(doc.Find(goodreadsCover).First(), "src")
		if src == "" {
			return missing(goodreadsCover)
		}
		r.rec.Cover = r.cover(ctx, src)
		return nil
	})
	r.step("authors", func() error { return g.contributors(r, doc) })
	r.step("series", func() error {
		t := firstText(doc, goodreadsSeries)
		if t == "" {
			return missing(goodreadsSeries)
		}
		name, number, ok := splitGoodreadsSeries(t)
		r.rec.SeriesName, r.rec.SeriesNumber = name, number
		if !ok {
			return mismatch("series %q has no #number", t)
		}
		return nil
	})
	r.step("description", func() error {
		sel := doc.Find(goodreadsDescription).First()
		if sel.Length() == 0 {
			return missing(goodreadsDescription)
		}
		r.rec.Description = normalize.HTMLToText(sel)
		return nil
	})
	r.step("details", func() error { return g.editionDetails(r, doc) })
	r.step("pagesFormat", func() error {
		if t := firstText(doc, goodreadsPagesFormat); t != "" {
			return goodreadsFormatDetail(r, t)
		}
		return nil
	})
	r.step("releaseDate", func() error {
		t := firstText(doc, goodreadsPublication)
		if rest, ok := strings.CutPrefix(t, "Published "); ok {
			entity.SetString(&r.rec.ReleaseDate, rest)
		}
		return nil
	})
	r.step("genres", func() error {
		genres := texts(doc.Find(goodreadsGenres))
		if len(genres) == 0 {
			return missing(goodreadsGenres)
		}
		c := normalize.ClassifyCategories(genres)
		r.rec.LiteraryType, r.rec.BookCategory, r.rec.Compilation = c.LiteraryType, c.BookCategory, c.Compilation
		return nil
	})
	r.step("sourceId", func() error {
		id := submatch(goodreadsBookID, r.url.Path)
		if id == "" {
			return mismatch("no book id in %s", r.url.Path)
		}
		r.rec.SourceID = id
		return nil
	})
	return r.result()
}

// contributors separates authors (links without a role label) from credited
// contributors. When no link carries the structured markup, every listed name
// is taken as an author.
func (g *Goodreads) contributors(r *run, doc *goquery.Document) error {
	list := doc.Find(goodreadsContributors).First()
	if list.Length() == 0 {
		return missing(goodreadsContributors)
	}

	firstPass := texts(list.Find(goodreadsContributorName))
	links := list.Find(goodreadsContributorLink)
	if links.Length() == 0 {
		r.rec.Authors = dedup.Authors(firstPass)
		return nil
	}

	var (
		authors      []string
		contributors []entity.Contributor
	)
	links.Each(func(_ int, link *goquery.Selection) {
		name := normalize.CleanText(link.Find(goodreadsContributorName).Text())
		if name == "" {
			return
		}
		role := strings.Trim(normalize.CleanText(link.Find(goodreadsContributorRole).Text()), "() ")
		if isGoodreadsAuthorRole(role) {
			authors = append(authors, name)
			return
		}
		contributors = append(contributors, entity.Contributor{Name: name, Role: role})
	})
	if len(authors) == 0 {
		authors = firstPass
	}
	r.rec.Authors = dedup.Authors(authors)
	r.rec.Contributors = dedup.Normalize(contributors, r.rec.Authors)
	return nil
}

// Author accounts are labelled "(Goodreads Author)"; plain authors carry no
// label at all.
func isGoodreadsAuthorRole(role string) bool {
	switch strings.ToLower(role) {
	case "", "author", "goodreads author":
		return true
	}
	return false
}

// splitGoodreadsSeries reads "The Expanse #2" or "(The Expanse, #2)".
func splitGoodreadsSeries(text string) (name, number string, ok bool) {
	text = strings.TrimSpace(strings.Trim(text, "()"))
	m := goodreadsSeriesParts.FindStringSubmatch(text)
	if m == nil {
		return text, "", false
	}
	return strings.TrimSpace(m[1]), m[2], true
}

func (g *Goodreads) editionDetails(r *run, doc *goquery.Document) error {
	items := doc.Find(goodreadsDetails)
	if items.Length() == 0 {
		return missing(goodreadsDetails)
	}
	items.Each(func(_ int, item *goquery.Selection) {
		key := labelKey(item.Find("dt").First().Text())
		value := normalize.CleanText(item.Find("dd").First().Text())
		handler, ok := g.details[key]
		if !ok || value == "" {
			return
		}
		r.step("details."+key, func() error { return handler(r, value) })
	})
	return nil
}

// goodreadsFormatDetail reads "320 pages, Paperback" or "Audible Audio".
func goodreadsFormatDetail(r *run, value string) error {
	r.rec.SetPageCount(normalize.ParsePageCount(value))
	r.rec.SetDuration(normalize.ParseDuration(value))

	parts := nonBlank(strings.Split(value, ","))
	if len(parts) == 0 {
		return mismatch("empty format %q", value)
	}
	format := parts[len(parts)-1]
	if normalize.ParsePageCount(format) > 0 {
		return nil
	}
	if f, ok := goodreadsFormats[strings.ToLower(format)]; ok {
		entity.SetString(&r.rec.ReadingFormat, f.reading)
		entity.SetString(&r.rec.EditionInfo, f.edition)
		return nil
	}
	entity.SetString(&r.rec.EditionFormat, format)
	return nil
}

// goodreadsPublished reads "March 3, 2020 by Tor Books".
func goodreadsPublished(r *run, value string) error {
	date, publisher, _ := strings.Cut(value, " by ")
	entity.SetString(&r.rec.ReleaseDate, date)
	entity.SetString(&r.rec.Publisher, publisher)
	return nil
}

// goodreadsISBN reads "9780316129084 (ISBN10: 0316129089)" and falls back to
// classifying each token by length.
func goodreadsISBN(r *run, value string) error {
	if m := goodreadsISBNPair.FindStringSubmatch(value); m != nil {
		entity.SetString(&r.rec.ISBN13, m[1])
		entity.SetString(&r.rec.ISBN10, m[2])
		return nil
	}
	found := false
	for _, token := range strings.Fields(strings.NewReplacer("(", " ", ")", " ", ":", " ").Replace(value)) {
		if assignISBN(&r.rec, token) {
			found = true
		}
	}
	if !found {
		return mismatch("no ISBN in %q", value)
	}
	return nil
}

func goodreadsASIN(r *run, value string) error {
	entity.SetString(&r.rec.ASIN, value)
	return nil
}

func goodreadsLanguage(r *run, value string) error {
	entity.SetString(&r.rec.ReleaseLanguage, value)
	return nil
}
