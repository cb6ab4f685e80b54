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
	amazonTitle       = "#productTitle, #ebooksProductTitle"
	amazonSubtitle    = "#productSubtitle"
	amazonBinding     = "#productBinding"
	amazonVersion     = "#productVersion"
	amazonByline      = "#bylineInfo .author"
	amazonCover       = "#landingImage, #imgBlkFront, #ebooksImgBlkFront, #main-image"
	amazonDescription = "#bookDescription_feature_div .a-expander-content, #productDescription"
	amazonSeries      = "#rpi-attribute-book_details-series .rpi-attribute-value"
	amazonBullets     = "#detailBullets_feature_div li"
	amazonAudibleRows = "#audibleProductDetails tr"
)

// Subtitle delimiters in the order they are tried.
var amazonDelimiters = []string{"–", "-", "|", "•"}

var (
	amazonASINPath      = regexp.MustCompile(`/(?:dp|gp/product|gp/aw/d)/([A-Z0-9]{10})(?:[/?]|$)`)
	amazonAudibleDate   = regexp.MustCompile(`^audible\.[a-z.]+ release date$`)
	amazonSeriesPattern = regexp.MustCompile(`(?i)^book\s+(\d+(?:\.\d+)?)\s+of\s+\d+\s*:?\s*(.*)$`)
	amazonPublisherTail = regexp.MustCompile(`^(.*?)\s*\(([^()]*)\)\s*$`)
	amazonYear          = regexp.MustCompile(`\b\d{4}\b`)
)

// Amazon reads product pages on any Amazon storefront.
type Amazon struct {
	opts    Options
	details map[string]func(r *run, value string) error
	ignored map[string]struct{}
}

var _ Extractor = (*Amazon)(nil)

func NewAmazon(opts Options) *Amazon {
	a := &Amazon{opts: opts.withDefaults()}
	a.details = map[string]func(r *run, value string) error{
		"isbn-10":          amazonISBN,
		"isbn-13":          amazonISBN,
		"publisher":        amazonPublisher,
		"publication date": amazonReleaseDate,
		"release date":     amazonReleaseDate,
		"language":         amazonLanguage,
		"print length":     amazonPrintLength,
		"part of series":   amazonPartOfSeries,
		"listening length": amazonListeningLength,
		"asin":             amazonASIN,
		"version":          amazonVersionDetail,
		"narrator":         amazonNarrator,
		"program type":     amazonProgramType,
	}
	a.ignored = map[string]struct{}{}
	for _, label := range []string{
		"author", "format", "item weight", "dimensions", "best sellers rank",
		"customer reviews", "reading age", "grade level", "lexile measure",
		"file size", "text-to-speech", "screen reader", "enhanced typesetting",
		"x-ray", "word wise", "sticky notes", "simultaneous device usage",
		"page numbers source isbn", "edition", "paperback", "hardcover",
	} {
		a.ignored[label] = struct{}{}
	}
	return a
}

func (a *Amazon) Name() string { return SourceAmazon }

func (a *Amazon) Detect(u *url.URL, _ *goquery.Document) bool {
	return u != nil && utils.HostLabel(u.Host, "amazon")
}

func (a *Amazon) Extract(ctx context.Context, page repository.PageReader) entity.ExtractionResult {
	r := newRun(a.opts, SourceAmazon, page)
	doc := r.document(ctx, page)
	if doc == nil {
		return r.result()
	}

	r.step("title", func() error {
		t := firstText(doc, amazonTitle)
		if t == "" {
			return missing(amazonTitle)
		}
		r.rec.Title = t
		return nil
	})
	r.step("readingFormat", func() error { return a.format(r, doc) })
	r.step("authors", func() error { return a.byline(r, doc) })
	r.step("cover", func() error {
		img := doc.Find(amazonCover).First()
		src := firstAttr(img, "data-old-hires", "src")
		if src == "" {
			return missing(amazonCover)
		}
		r.rec.Cover = r.cover(ctx, src)
		return nil
	})
	r.step("description", func() error {
		sel := doc.Find(amazonDescription).First()
		if sel.Length() == 0 {
			return missing(amazonDescription)
		}
		r.rec.Description = normalize.HTMLToText(sel)
		return nil
	})
	r.step("series", func() error {
		t := firstText(doc, amazonSeries)
		if t == "" {
			return nil
		}
		return amazonPartOfSeries(r, t)
	})
	r.step("details", func() error { return a.productDetails(r, doc) })
	r.step("sourceId", func() error {
		entity.SetString(&r.rec.SourceID, submatch(amazonASINPath, r.url.Path))
		return nil
	})
	return r.result()
}

// format classifies the edition from the subtitle line, falling back to the
// binding and version pair used by audiobook listings.
func (a *Amazon) format(r *run, doc *goquery.Document) error {
	if subtitle := firstText(doc, amazonSubtitle); subtitle != "" {
		segments := splitSubtitle(subtitle)
		applyAmazonFormat(&r.rec, segments[0])
		if len(segments) > 1 {
			entity.SetString(&r.rec.ReleaseDate, segments[len(segments)-1])
		}
		return nil
	}

	binding := firstText(doc, amazonBinding)
	if binding == "" {
		return missing(amazonSubtitle + ", " + amazonBinding)
	}
	applyAmazonFormat(&r.rec, binding)
	entity.SetString(&r.rec.EditionInfo, firstText(doc, amazonVersion))
	return nil
}

func splitSubtitle(s string) []string {
	for _, delim := range amazonDelimiters {
		if parts := nonBlank(strings.Split(s, delim)); len(parts) > 1 {
			return parts
		}
	}
	return []string{strings.TrimSpace(s)}
}

func nonBlank(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// applyAmazonFormat maps a binding segment onto the format fields.
func applyAmazonFormat(rec *entity.BookRecord, segment string) {
	lower := strings.ToLower(segment)
	switch {
	case strings.Contains(lower, "kindle"):
		entity.SetString(&rec.ReadingFormat, entity.FormatEBook)
		entity.SetString(&rec.EditionFormat, "Kindle")
	case strings.Contains(lower, "ebook"), strings.Contains(lower, "e-book"):
		entity.SetString(&rec.ReadingFormat, entity.FormatEBook)
	case strings.Contains(lower, "audio cd"):
		entity.SetString(&rec.ReadingFormat, entity.FormatAudiobook)
		entity.SetString(&rec.EditionInfo, "CD")
	case strings.Contains(lower, "audiobook"), strings.Contains(lower, "audible"):
		entity.SetString(&rec.ReadingFormat, entity.FormatAudiobook)
		entity.SetString(&rec.EditionFormat, "Audible")
	case strings.Contains(lower, "hardcover"), strings.Contains(lower, "paperback"),
		strings.Contains(lower, "mass market"), strings.Contains(lower, "large print"),
		strings.Contains(lower, "board book"), strings.Contains(lower, "spiral"):
		entity.SetString(&rec.ReadingFormat, entity.FormatPhysical)
		entity.SetString(&rec.EditionInfo, segment)
	default:
		entity.SetString(&rec.ReadingFormat, segment)
	}
}

// byline reads "#bylineInfo": every author span carries a name link and an
// optional "(Author, Narrator)" role list.
func (a *Amazon) byline(r *run, doc *goquery.Document) error {
	spans := doc.Find(amazonByline)
	if spans.Length() == 0 {
		return missing(amazonByline)
	}

	var (
		order []string
		roles = map[string][]string{}
	)
	spans.Each(func(_ int, s *goquery.Selection) {
		name := normalize.CleanText(s.Find("a").First().Text())
		if name == "" {
			return
		}
		if _, ok := roles[name]; !ok {
			order = append(order, name)
			roles[name] = nil
		}
		roles[name] = append(roles[name], parseRoles(s.Find(".contribution").Text())...)
	})

	var (
		authors      []string
		contributors []entity.Contributor
	)
	for _, name := range order {
		isAuthor, isPublisher := len(roles[name]) == 0, false
		var other []string
		for _, role := range roles[name] {
			switch strings.ToLower(role) {
			case "author":
				isAuthor = true
			case "publisher":
				isPublisher = true
			default:
				other = append(other, normalize.TitleCase(role))
			}
		}
		if isAuthor {
			authors = append(authors, name)
		}
		if isPublisher {
			entity.SetString(&r.rec.Publisher, name)
		}
		if len(other) > 0 {
			contributors = append(contributors, entity.Contributor{Name: name, Role: strings.Join(other, ", ")})
		}
	}

	r.rec.Authors = dedup.Authors(append(r.rec.Authors, authors...))
	r.rec.Contributors = dedup.Normalize(append(r.rec.Contributors, contributors...), r.rec.Authors)
	return nil
}

// parseRoles turns "(Author, Translator)" into its role names.
func parseRoles(text string) []string {
	text = strings.NewReplacer("(", "", ")", "").Replace(normalize.CleanText(text))
	return nonBlank(strings.Split(text, ","))
}

// productDetails walks the details bullets of print and e-book listings, or
// the key-value table of audiobook listings.
func (a *Amazon) productDetails(r *run, doc *goquery.Document) error {
	var pairs [][2]string
	if rows := doc.Find(amazonAudibleRows); rows.Length() > 0 {
		rows.Each(func(_ int, row *goquery.Selection) {
			pairs = append(pairs, [2]string{row.Find("th").First().Text(), normalize.CleanText(row.Find("td").First().Text())})
		})
	} else {
		doc.Find(amazonBullets).Each(func(_ int, item *goquery.Selection) {
			label := item.Find(".a-text-bold").First().Text()
			if normalize.CleanText(label) == "" {
				return
			}
			pairs = append(pairs, [2]string{label, afterLabel(item.Text(), label)})
		})
	}
	if len(pairs) == 0 {
		return missing(amazonBullets + ", " + amazonAudibleRows)
	}

	for _, pair := range pairs {
		key, value := labelKey(pair[0]), pair[1]
		if key == "" || value == "" {
			continue
		}
		handler, ok := a.details[key]
		if !ok && amazonAudibleDate.MatchString(key) {
			handler, ok = amazonReleaseDate, true
		}
		if !ok {
			if _, skip := a.ignored[key]; !skip {
				r.note("details", entity.DiagParseMismatch, "unrecognized detail label "+key)
			}
			continue
		}
		r.step("details."+key, func() error { return handler(r, value) })
	}
	return nil
}

func amazonISBN(r *run, value string) error {
	if !assignISBN(&r.rec, value) {
		if _, kind := normalize.ClassifyISBN(value); kind == "" {
			return mismatch("not an ISBN: %q", value)
		}
	}
	return nil
}

// amazonPublisher splits "Tor Books; 1st edition (March 3, 2020)". A
// trailing parenthetical without a year is part of the name.
func amazonPublisher(r *run, value string) error {
	rest := value
	if m := amazonPublisherTail.FindStringSubmatch(rest); m != nil && amazonYear.MatchString(m[2]) {
		rest = m[1]
		entity.SetString(&r.rec.ReleaseDate, m[2])
	}
	name, edition, _ := strings.Cut(rest, ";")
	entity.SetString(&r.rec.Publisher, name)
	entity.SetString(&r.rec.EditionInfo, edition)
	return nil
}

func amazonReleaseDate(r *run, value string) error {
	entity.SetString(&r.rec.ReleaseDate, value)
	return nil
}

func amazonLanguage(r *run, value string) error {
	entity.SetString(&r.rec.ReleaseLanguage, value)
	return nil
}

func amazonPrintLength(r *run, value string) error {
	n := normalize.FirstInt(value)
	if n <= 0 {
		return mismatch("no page count in %q", value)
	}
	r.rec.SetPageCount(n)
	return nil
}

// amazonPartOfSeries reads "Book 2 of 9: The Expanse". Text without that
// shape is kept whole as the series name.
func amazonPartOfSeries(r *run, value string) error {
	m := amazonSeriesPattern.FindStringSubmatch(value)
	if m == nil {
		entity.SetString(&r.rec.SeriesName, value)
		return nil
	}
	entity.SetString(&r.rec.SeriesNumber, m[1])
	entity.SetString(&r.rec.SeriesName, m[2])
	return nil
}

func amazonListeningLength(r *run, value string) error {
	d := normalize.ParseDuration(value)
	if len(d) == 0 {
		return mismatch("no duration in %q", value)
	}
	r.rec.SetDuration(d)
	return nil
}

func amazonASIN(r *run, value string) error {
	entity.SetString(&r.rec.ASIN, value)
	entity.SetString(&r.rec.SourceID, value)
	return nil
}

func amazonVersionDetail(r *run, value string) error {
	entity.SetString(&r.rec.EditionInfo, value)
	return nil
}

func amazonNarrator(r *run, value string) error {
	var narrators []entity.Contributor
	for _, name := range nonBlank(strings.Split(value, ",")) {
		narrators = append(narrators, entity.Contributor{Name: name, Role: "Narrator"})
	}
	r.rec.Contributors = dedup.Normalize(append(r.rec.Contributors, narrators...), r.rec.Authors)
	return nil
}

func amazonProgramType(r *run, value string) error {
	if strings.Contains(strings.ToLower(value), "audiobook") {
		entity.SetString(&r.rec.ReadingFormat, entity.FormatAudiobook)
	}
	return nil
}
