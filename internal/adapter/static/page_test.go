package static

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/bookmeta/internal/proxy"
	"github.com/user/bookmeta/internal/repository"
)

func TestPageClickReplacesOnce(t *testing.T) {
	p, err := NewPage("https://example.com/books/1", `<button id="more">more</button><p>short</p>`)
	require.NoError(t, err)
	p.OnClick("#more", `<button id="more">more</button><p>long text</p>`)

	ctx := context.Background()
	require.NoError(t, p.Click(ctx, "#more"))
	doc, err := p.Document(ctx)
	require.NoError(t, err)
	assert.Equal(t, "long text", doc.Find("p").Text())

	// A second click finds no script and leaves the page alone.
	require.NoError(t, p.Click(ctx, "#more"))
	doc, err = p.Document(ctx)
	require.NoError(t, err)
	assert.Equal(t, "long text", doc.Find("p").Text())
}

func TestPageClickMissingElement(t *testing.T) {
	p, err := NewPage("https://example.com", `<p>hi</p>`)
	require.NoError(t, err)
	err = p.Click(context.Background(), "#nope")
	assert.ErrorIs(t, err, repository.ErrElementNotFound)
}

func TestPageWaitFor(t *testing.T) {
	p, err := NewPage("https://example.com", `<p class="a">hi</p>`)
	require.NoError(t, err)
	ctx := context.Background()

	doc, err := p.WaitFor(ctx, func(d *goquery.Document) bool { return d.Find(".a").Length() == 1 }, time.Second)
	require.NoError(t, err)
	assert.NotNil(t, doc)

	doc, err = p.WaitFor(ctx, func(d *goquery.Document) bool { return d.Find(".b").Length() == 1 }, time.Second)
	assert.ErrorIs(t, err, repository.ErrWaitTimeout)
	assert.NotNil(t, doc)
}

func TestPageCancelledContext(t *testing.T) {
	p, err := NewPage("https://example.com", `<p>hi</p>`)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Document(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPageURLIsCopied(t *testing.T) {
	p, err := NewPage("https://example.com/a", ``)
	require.NoError(t, err)
	u := p.URL()
	u.Path = "/changed"
	assert.Equal(t, "/a", p.URL().Path)
}

func TestFetchIsNotInteractive(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><span id="productTitle">Fetched</span><button id="more">more</button></body></html>`))
	}))
	defer srv.Close()

	pm := proxy.NewManager("", "test-agent/1.0")
	page, err := Fetch(context.Background(), resty.New(), pm, srv.URL+"/dp/0123456789")
	require.NoError(t, err)
	assert.Equal(t, "test-agent/1.0", gotUA)

	doc, err := page.Document(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Fetched", doc.Find("#productTitle").Text())
	assert.ErrorIs(t, page.Click(context.Background(), "#more"), repository.ErrNotInteractive)
}

func TestFetchRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewFetcher(time.Second, nil).Open(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
