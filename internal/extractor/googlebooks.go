package extractor

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/user/bookmeta/internal/dedup"
	"github.com/user/bookmeta/internal/entity"
	"github.com/user/bookmeta/internal/normalize"
	"github.com/user/bookmeta/internal/repository"
	"github.com/user/bookmeta/pkg/utils"
)

const (
	googleTitle       = ".booktitle .fn, h1.booktitle, [data-attrid='title'] [role='heading']"
	googleSubtitle    = ".booktitle .subtitle, [data-attrid='subtitle']"
	googleAuthors     = ".bookinfo_sectionwrap a[href*='inauthor'], [data-attrid='author'] a"
	googleDescription = "#synopsistext, #synopsis, [data-attrid='description']"
	googleCover       = "#summary-frontcover, .bookcover img"
	googleMetaRows    = "#metadata_content_table tr"
	googleMetaLabel   = ".metadata_label"
	googleMetaValue   = ".metadata_value"

	// googleFifeCover is the publisher front-cover endpoint. It serves a larger
	// asset than any imageLinks entry of the volume document.
	googleFifeCover = "https://books.google.com/books/publisher/content/images/frontcover/%s?fife=w800-h1200&source=gbs_api"
)

var googleVolumeID = []*regexp.Regexp{
	regexp.MustCompile(`/books/edition/[^/]+/([\w-]+)`),
	regexp.MustCompile(`[?&]id=([\w-]+)`),
	regexp.MustCompile(`/books/v1/volumes/([\w-]+)`),
}

var googlePublisherDate = regexp.MustCompile(`^(.*?),\s*((?:[A-Za-z]{3,9}\.?\s+)?(?:\d{1,2},?\s+)?\d{4})$`)

// imageLinks keys from largest to smallest.
var googleImageSizes = []string{"extraLarge", "large", "medium", "small", "thumbnail", "smallThumbnail"}

// GoogleBooksOptions configures the remote half of the Google Books extractor.
type GoogleBooksOptions struct {
	Catalog        repository.CatalogClient
	CatalogTimeout time.Duration
	Languages      *normalize.LanguageNamer
	// VerifyConstructedCover probes the constructed cover URL before using it.
	VerifyConstructedCover bool
	Prober                 repository.ImageProber
}

// GoogleBooks blends the volumes API with the rendered page. Remote values win
// over the DOM except for the release date and the cover.
type GoogleBooks struct {
	opts   Options
	remote GoogleBooksOptions
}

var _ Extractor = (*GoogleBooks)(nil)

func NewGoogleBooks(opts Options, remote GoogleBooksOptions) *GoogleBooks {
	if remote.CatalogTimeout <= 0 {
		remote.CatalogTimeout = 10 * time.Second
	}
	if remote.Languages == nil {
		remote.Languages = normalize.NewLanguageNamer("en")
	}
	return &GoogleBooks{opts: opts.withDefaults(), remote: remote}
}

func (g *GoogleBooks) Name() string { return SourceGoogleBooks }

func (g *GoogleBooks) Detect(u *url.URL, _ *goquery.Document) bool {
	if u == nil {
		return false
	}
	host := utils.NormalizeHost(u.Host)
	if strings.HasPrefix(host, "books.google.") {
		return true
	}
	return utils.HostLabel(host, "google") && strings.HasPrefix(u.Path, "/books")
}

// VolumeID finds the volume id in any of the known URL shapes.
func VolumeID(u *url.URL) string {
	if u == nil {
		return ""
	}
	for _, re := range googleVolumeID {
		if id := submatch(re, u.RequestURI()); id != "" {
			return id
		}
	}
	return ""
}

func (g *GoogleBooks) Extract(ctx context.Context, page repository.PageReader) entity.ExtractionResult {
	r := newRun(g.opts, SourceGoogleBooks, page)
	id := VolumeID(r.url)

	var vol *entity.CatalogVolume
	r.step("catalog", func() error {
		var err error
		vol, err = g.fetch(ctx, id)
		return err
	})

	remote := entity.NewBookRecord()
	if vol != nil {
		r.step("catalog", func() error {
			remote = g.fromVolume(vol)
			return nil
		})
	}

	dom := entity.NewBookRecord()
	if doc := r.document(ctx, page); doc != nil {
		dom = g.fromDocument(r, doc)
	}

	r.rec = remote
	r.rec.ReleaseDate = dom.ReleaseDate
	entity.SetString(&r.rec.ReleaseDate, remote.ReleaseDate)
	r.step("cover", func() error {
		r.rec.Cover = g.cover(ctx, r, id, vol, dom.Cover)
		return nil
	})
	r.rec.FillGaps(dom)
	entity.SetString(&r.rec.SourceID, id)
	return r.result()
}

func (g *GoogleBooks) fetch(ctx context.Context, id string) (*entity.CatalogVolume, error) {
	if id == "" {
		return nil, mismatch("no volume id in page URL")
	}
	if g.remote.Catalog == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, g.remote.CatalogTimeout)
	defer cancel()
	vol, err := g.remote.Catalog.Volume(ctx, id)
	if err != nil {
		return nil, &diagError{kind: entity.DiagNetwork, msg: "catalog lookup: " + err.Error()}
	}
	return vol, nil
}

// fromVolume maps the catalog document onto a record.
func (g *GoogleBooks) fromVolume(vol *entity.CatalogVolume) entity.BookRecord {
	info, sale := vol.VolumeInfo, vol.SaleInfo
	rec := entity.NewBookRecord()
	rec.SourceID = vol.ID
	entity.SetString(&rec.Title, info.Title)
	entity.SetString(&rec.Subtitle, info.Subtitle)
	rec.Description = normalize.HTMLStringToText(info.Description)
	rec.Authors = dedup.Authors(info.Authors)
	entity.SetString(&rec.Publisher, info.Publisher)
	entity.SetString(&rec.ReleaseDate, info.PublishedDate)
	rec.ReleaseLanguage = g.remote.Languages.Name(info.Language)
	if !rec.SetPageCount(info.PageCount) {
		rec.SetPageCount(info.PrintedPageCount)
	}
	for _, ident := range info.IndustryIdentifiers {
		switch ident.Type {
		case "ISBN_13":
			entity.SetString(&rec.ISBN13, normalize.CleanISBN(ident.Identifier))
		case "ISBN_10":
			entity.SetString(&rec.ISBN10, normalize.CleanISBN(ident.Identifier))
		}
	}
	switch {
	case sale.IsEbook, sale.Saleability == "FOR_SALE" && info.ReadingModes.Text:
		rec.ReadingFormat = entity.FormatEBook
	case info.PrintType == "BOOK":
		rec.ReadingFormat = entity.FormatPhysical
	}
	if len(info.Categories) > 0 {
		c := normalize.ClassifyCategories(info.Categories)
		rec.LiteraryType, rec.BookCategory, rec.Compilation = c.LiteraryType, c.BookCategory, c.Compilation
	}
	return rec
}

// fromDocument reads the classic "about this book" page.
func (g *GoogleBooks) fromDocument(r *run, doc *goquery.Document) entity.BookRecord {
	rec := entity.NewBookRecord()
	r.step("dom.title", func() error {
		rec.Title = firstText(doc, googleTitle)
		rec.Subtitle = firstText(doc, googleSubtitle)
		return nil
	})
	r.step("dom.authors", func() error {
		rec.Authors = dedup.Authors(texts(doc.Find(googleAuthors)))
		return nil
	})
	r.step("dom.description", func() error {
		if sel := doc.Find(googleDescription).First(); sel.Length() > 0 {
			rec.Description = normalize.HTMLToText(sel)
		}
		return nil
	})
	r.step("dom.cover", func() error {
		rec.Cover = absolute(r.url, firstAttr(doc.Find(googleCover).First(), "src"))
		return nil
	})
	r.step("dom.metadata", func() error {
		rows := doc.Find(googleMetaRows)
		if rows.Length() == 0 {
			return missing(googleMetaRows)
		}
		var subjects []string
		rows.Each(func(_ int, row *goquery.Selection) {
			key := labelKey(row.Find(googleMetaLabel).Text())
			value := normalize.CleanText(row.Find(googleMetaValue).Text())
			if value == "" {
				return
			}
			switch key {
			case "title":
				entity.SetString(&rec.Title, value)
			case "author", "authors":
				if len(rec.Authors) == 0 {
					rec.Authors = dedup.Authors(nonBlank(strings.Split(value, ",")))
				}
			case "publisher":
				if m := googlePublisherDate.FindStringSubmatch(value); m != nil {
					entity.SetString(&rec.Publisher, m[1])
					entity.SetString(&rec.ReleaseDate, m[2])
				} else {
					entity.SetString(&rec.Publisher, value)
				}
			case "published":
				entity.SetString(&rec.ReleaseDate, value)
			case "isbn":
				for _, token := range nonBlank(strings.Split(value, ",")) {
					assignISBN(&rec, token)
				}
			case "length", "page count":
				if n := normalize.ParsePageCount(value); n > 0 {
					rec.SetPageCount(n)
				} else {
					rec.SetPageCount(normalize.FirstInt(value))
				}
			case "language":
				entity.SetString(&rec.ReleaseLanguage, value)
			case "subjects", "genres":
				subjects = append(subjects, nonBlank(strings.FieldsFunc(value, func(c rune) bool {
					return c == '›' || c == '/' || c == ','
				}))...)
			case "edition":
				entity.SetString(&rec.EditionInfo, value)
			}
		})
		if len(subjects) > 0 {
			c := normalize.ClassifyCategories(subjects)
			rec.LiteraryType, rec.BookCategory, rec.Compilation = c.LiteraryType, c.BookCategory, c.Compilation
		}
		return nil
	})
	return rec
}

// cover prefers the constructed publisher cover. It is only probed when
// verification is switched on; otherwise it is flagged as unverified.
func (g *GoogleBooks) cover(ctx context.Context, r *run, id string, vol *entity.CatalogVolume, domCover string) string {
	if id != "" {
		constructed := fmt.Sprintf(googleFifeCover, url.PathEscape(id))
		if !g.remote.VerifyConstructedCover || g.remote.Prober == nil {
			r.note("cover", entity.DiagUnverified, "constructed cover not probed")
			return constructed
		}
		area, err := g.remote.Prober.Probe(ctx, constructed)
		if err == nil && area > 0 {
			return constructed
		}
		r.log.Debug("constructed cover rejected", zap.String("url", constructed), zap.Error(err))
	}
	if vol != nil {
		for _, size := range googleImageSizes {
			if link := vol.VolumeInfo.ImageLinks[size]; link != "" {
				link = strings.Replace(link, "http://", "https://", 1)
				return strings.Replace(link, "&edge=curl", "", 1)
			}
		}
	}
	if domCover == "" {
		return ""
	}
	return r.cover(ctx, domCover)
}
