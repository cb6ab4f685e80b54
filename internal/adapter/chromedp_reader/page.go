package chromedp_reader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/user/bookmeta/internal/repository"
)

// Page is one live browser tab.
type Page struct {
	ctx      context.Context
	cancel   context.CancelFunc
	poll     time.Duration
	location string
	url      *url.URL
}

var _ repository.PageReader = (*Page)(nil)

func (p *Page) setURL(fallback string) error {
	raw := p.location
	if raw == "" {
		raw = fallback
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse location %q: %w", raw, err)
	}
	p.url = u
	return nil
}

// bind derives a tab context that also ends when ctx does.
func (p *Page) bind(ctx context.Context) (context.Context, func()) {
	runCtx, cancel := context.WithCancel(p.ctx)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (p *Page) URL() *url.URL {
	u := *p.url
	return &u
}

func (p *Page) Document(ctx context.Context) (*goquery.Document, error) {
	runCtx, done := p.bind(ctx)
	defer done()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (p *Page) evaluate(ctx context.Context, expr string, res any) error {
	runCtx, done := p.bind(ctx)
	defer done()
	return chromedp.Run(runCtx, chromedp.Evaluate(expr, res))
}

// currentURL reads the live location, which moves after a form submits.
func (p *Page) currentURL(ctx context.Context) (string, error) {
	runCtx, done := p.bind(ctx)
	defer done()

	var loc string
	if err := chromedp.Run(runCtx, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

const clickScript = `(() => {
	const el = document.querySelector(%s);
	if (!el) return false;
	el.click();
	return true;
})()`

// Click clicks the first element matching selector from page script, so a
// hidden or detached trigger fails fast instead of blocking on visibility.
func (p *Page) Click(ctx context.Context, selector string) error {
	arg, err := json.Marshal(selector)
	if err != nil {
		return err
	}
	runCtx, done := p.bind(ctx)
	defer done()

	var clicked bool
	if err := chromedp.Run(runCtx, chromedp.Evaluate(fmt.Sprintf(clickScript, arg), &clicked)); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	if !clicked {
		return fmt.Errorf("click %s: %w", selector, repository.ErrElementNotFound)
	}
	return nil
}

// WaitFor re-reads the document every poll interval until cond holds or the
// timeout elapses.
func (p *Page) WaitFor(ctx context.Context, cond func(*goquery.Document) bool, timeout time.Duration) (*goquery.Document, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()

	var last *goquery.Document
	for {
		doc, err := p.Document(ctx)
		if err == nil {
			last = doc
			if cond(doc) {
				return doc, nil
			}
		}
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-deadline.C:
			return last, repository.ErrWaitTimeout
		case <-ticker.C:
		}
	}
}

// Close closes the tab.
func (p *Page) Close() {
	p.cancel()
}

// Opener adapts a Browser to repository.PageOpener.
type Opener struct {
	Browser *Browser
}

var _ repository.PageOpener = Opener{}

func (o Opener) Open(ctx context.Context, rawURL string) (repository.PageReader, error) {
	page, err := o.Browser.Open(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return page, nil
}
