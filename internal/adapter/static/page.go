// Package static serves already-rendered HTML through the PageReader
// contract. Clicks can be scripted to swap in the markup the live page would
// show after an expansion.
package static

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/bookmeta/internal/repository"
)

type Page struct {
	url         *url.URL
	interactive bool

	mu     sync.Mutex
	html   string
	clicks map[string]string
}

var _ repository.PageReader = (*Page)(nil)

// NewPage wraps markup served at rawURL.
func NewPage(rawURL, html string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	return &Page{url: u, interactive: true, html: html, clicks: map[string]string{}}, nil
}

// OnClick makes a click on selector replace the page with html.
func (p *Page) OnClick(selector, html string) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clicks[selector] = html
	return p
}

func (p *Page) URL() *url.URL {
	u := *p.url
	return &u
}

func (p *Page) Document(ctx context.Context) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	html := p.html
	p.mu.Unlock()
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// Click fails with ErrElementNotFound when nothing matches selector, and with
// ErrNotInteractive on fetched pages. A click without a scripted replacement
// leaves the page as it is.
func (p *Page) Click(ctx context.Context, selector string) error {
	doc, err := p.Document(ctx)
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return fmt.Errorf("click %s: %w", selector, repository.ErrElementNotFound)
	}
	if !p.interactive {
		return fmt.Errorf("click %s: %w", selector, repository.ErrNotInteractive)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if next, ok := p.clicks[selector]; ok {
		p.html = next
		delete(p.clicks, selector)
	}
	return nil
}

// WaitFor checks cond once: static markup only changes through Click, so
// there is nothing to wait for.
func (p *Page) WaitFor(ctx context.Context, cond func(*goquery.Document) bool, _ time.Duration) (*goquery.Document, error) {
	doc, err := p.Document(ctx)
	if err != nil {
		return nil, err
	}
	if !cond(doc) {
		return doc, repository.ErrWaitTimeout
	}
	return doc, nil
}

func (p *Page) Close() {}
