package extractor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/bookmeta/internal/entity"
)

type fakeCatalog struct {
	vol   *entity.CatalogVolume
	err   error
	asked []string
}

func (f *fakeCatalog) Volume(_ context.Context, id string) (*entity.CatalogVolume, error) {
	f.asked = append(f.asked, id)
	return f.vol, f.err
}

type stubProber struct {
	area int
	err  error
}

func (p stubProber) Probe(context.Context, string) (int, error) { return p.area, p.err }

const googleAboutPage = `<html><body>
<div class="bookcover"><img src="/books/content?id=abc123XYZ&printsec=frontcover&img=1"></div>
<h1 class="booktitle"><span class="fn">Bar</span></h1>
<div id="synopsistext">A <b>DOM</b> synopsis.</div>
<table id="metadata_content_table">
  <tr><td class="metadata_label">Publisher</td><td class="metadata_value">Tor Books, Mar 3, 2020</td></tr>
  <tr><td class="metadata_label">ISBN</td><td class="metadata_value">0123456789, 9780123456789</td></tr>
  <tr><td class="metadata_label">Length</td><td class="metadata_value">312 pages</td></tr>
  <tr><td class="metadata_label">Subjects</td><td class="metadata_value">Fiction › Science Fiction › General</td></tr>
</table>
</body></html>`

func remoteVolume() *entity.CatalogVolume {
	return &entity.CatalogVolume{
		ID: "abc123XYZ",
		VolumeInfo: entity.CatalogVolumeInfo{
			Title:         "Foo",
			Authors:       []string{"Remote Author", "Remote Author"},
			PublishedDate: "2020",
			Description:   "Remote <i>blurb</i>.<br>Second line.",
			Language:      "en",
			PrintType:     "BOOK",
			IndustryIdentifiers: []entity.IndustryIdentifier{
				{Type: "ISBN_13", Identifier: "9780123456789"},
				{Type: "OTHER", Identifier: "UOM:39015"},
			},
			ImageLinks: map[string]string{
				"smallThumbnail": "http://books.google.com/books/content?id=abc123XYZ&zoom=5&edge=curl&source=gbs_api",
				"thumbnail":      "http://books.google.com/books/content?id=abc123XYZ&zoom=1&edge=curl&source=gbs_api",
			},
		},
	}
}

func TestGoogleBooksRemoteWinsAndDOMFillsGaps(t *testing.T) {
	catalog := &fakeCatalog{vol: remoteVolume()}
	g := NewGoogleBooks(testOptions(), GoogleBooksOptions{Catalog: catalog})
	page := newPage(t, "https://books.google.com/books?id=abc123XYZ&hl=en", googleAboutPage)

	res := g.Extract(context.Background(), page)
	rec := res.Record

	assert.Equal(t, []string{"abc123XYZ"}, catalog.asked)
	assert.Equal(t, "Foo", rec.Title)
	assert.Equal(t, []string{"Remote Author"}, rec.Authors)
	assert.Equal(t, "Remote blurb.\nSecond line.", rec.Description)
	assert.Equal(t, "English", rec.ReleaseLanguage)
	assert.Equal(t, "9780123456789", rec.ISBN13)
	assert.Equal(t, entity.FormatPhysical, rec.ReadingFormat)
	assert.Equal(t, "abc123XYZ", rec.SourceID)

	// Gaps in the catalog document come from the page.
	require.NotNil(t, rec.PageCount)
	assert.Equal(t, 312, *rec.PageCount)
	assert.Equal(t, "Tor Books", rec.Publisher)
	assert.Equal(t, "0123456789", rec.ISBN10)
	assert.Equal(t, entity.LiteraryFiction, rec.LiteraryType)
	assert.Equal(t, "Book", rec.BookCategory)

	// The page's release date is preferred.
	assert.Equal(t, "Mar 3, 2020", rec.ReleaseDate)

	assert.Equal(t, "https://books.google.com/books/publisher/content/images/frontcover/abc123XYZ?fife=w800-h1200&source=gbs_api", rec.Cover)
	d, ok := diagFor(res.Diagnostics, "cover")
	require.True(t, ok)
	assert.Equal(t, entity.DiagUnverified, d.Kind)
}

func TestGoogleBooksVerifiedCoverFallsBackToImageLinks(t *testing.T) {
	g := NewGoogleBooks(testOptions(), GoogleBooksOptions{
		Catalog:                &fakeCatalog{vol: remoteVolume()},
		VerifyConstructedCover: true,
		Prober:                 stubProber{err: errors.New("404")},
	})
	page := newPage(t, "https://www.google.com/books/edition/Foo/abc123XYZ?hl=en&gbpv=0", googleAboutPage)

	res := g.Extract(context.Background(), page)
	assert.Equal(t, "https://books.google.com/books/content?id=abc123XYZ&zoom=1&source=gbs_api", res.Record.Cover)
	_, ok := diagFor(res.Diagnostics, "cover")
	assert.False(t, ok)
}

func TestGoogleBooksVerifiedCoverAccepted(t *testing.T) {
	g := NewGoogleBooks(testOptions(), GoogleBooksOptions{
		Catalog:                &fakeCatalog{vol: remoteVolume()},
		VerifyConstructedCover: true,
		Prober:                 stubProber{area: 800 * 1200},
	})
	res := g.Extract(context.Background(), newPage(t, "https://books.google.com/books?id=abc123XYZ", googleAboutPage))
	assert.Contains(t, res.Record.Cover, "/frontcover/abc123XYZ?")
}

func TestGoogleBooksCatalogFailureUsesPage(t *testing.T) {
	g := NewGoogleBooks(testOptions(), GoogleBooksOptions{
		Catalog:                &fakeCatalog{err: errors.New("connection refused")},
		VerifyConstructedCover: true,
		Prober:                 stubProber{err: errors.New("404")},
	})
	res := g.Extract(context.Background(), newPage(t, "https://books.google.com/books?id=abc123XYZ", googleAboutPage))
	rec := res.Record

	assert.Equal(t, "Bar", rec.Title)
	assert.Equal(t, "A DOM synopsis.", rec.Description)
	assert.Equal(t, "Tor Books", rec.Publisher)
	assert.Equal(t, "abc123XYZ", rec.SourceID)
	assert.Equal(t, "https://books.google.com/books/content?id=abc123XYZ&printsec=frontcover&img=1", rec.Cover)
	assert.Equal(t, "", rec.ReadingFormat)

	d, ok := diagFor(res.Diagnostics, "catalog")
	require.True(t, ok)
	assert.Equal(t, entity.DiagNetwork, d.Kind)
}

func TestGoogleBooksEbookRule(t *testing.T) {
	g := NewGoogleBooks(testOptions(), GoogleBooksOptions{})

	vol := remoteVolume()
	vol.SaleInfo = entity.CatalogSaleInfo{Saleability: "FOR_SALE"}
	vol.VolumeInfo.ReadingModes.Text = true
	assert.Equal(t, entity.FormatEBook, g.fromVolume(vol).ReadingFormat)

	vol.VolumeInfo.ReadingModes.Text = false
	assert.Equal(t, entity.FormatPhysical, g.fromVolume(vol).ReadingFormat)

	vol.SaleInfo.IsEbook = true
	assert.Equal(t, entity.FormatEBook, g.fromVolume(vol).ReadingFormat)

	vol.SaleInfo.IsEbook = false
	vol.VolumeInfo.PrintType = "MAGAZINE"
	assert.Equal(t, "", g.fromVolume(vol).ReadingFormat)
}

func TestGoogleBooksPrintedPageCountFallback(t *testing.T) {
	g := NewGoogleBooks(testOptions(), GoogleBooksOptions{})
	vol := remoteVolume()
	vol.VolumeInfo.PrintedPageCount = 400
	rec := g.fromVolume(vol)
	require.NotNil(t, rec.PageCount)
	assert.Equal(t, 400, *rec.PageCount)
}

func TestVolumeID(t *testing.T) {
	for raw, want := range map[string]string{
		"https://www.google.com/books/edition/The_Title/abc123XYZ?hl=en": "abc123XYZ",
		"https://books.google.co.uk/books?hl=en&id=abc-12_3":             "abc-12_3",
		"https://www.googleapis.com/books/v1/volumes/zzTop1":             "zzTop1",
		"https://books.google.com/books?q=dune":                          "",
	} {
		assert.Equal(t, want, VolumeID(mustURL(t, raw)), raw)
	}
	assert.Equal(t, "", VolumeID(nil))
}

func TestGoogleBooksDetect(t *testing.T) {
	g := NewGoogleBooks(testOptions(), GoogleBooksOptions{})
	for raw, want := range map[string]bool{
		"https://books.google.com/books?id=x":         true,
		"https://books.google.co.jp/books?id=x":       true,
		"https://www.google.com/books/edition/_/x":    true,
		"https://www.google.com/search?q=books":       false,
		"https://play.google.com/store/books/details": false,
		"https://www.amazon.com/books/dp/0123456789":  false,
	} {
		assert.Equal(t, want, g.Detect(mustURL(t, raw), nil), raw)
	}
}
