package repository

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	// ErrElementNotFound is returned when a selector matches nothing.
	ErrElementNotFound = errors.New("element not found")
	// ErrWaitTimeout is returned by WaitFor when the condition never held.
	ErrWaitTimeout = errors.New("timed out waiting for page content")
	// ErrNotInteractive is returned by readers that cannot simulate input.
	ErrNotInteractive = errors.New("page reader does not support interaction")
)

// PageReader is the capability extractors use to read the page they run on.
// Any call may fail to find content; callers must degrade to defaults.
type PageReader interface {
	// URL returns the address of the loaded page.
	URL() *url.URL
	// Document returns a snapshot of the current DOM.
	Document(ctx context.Context) (*goquery.Document, error)
	// Click simulates a click on the first element matching selector.
	Click(ctx context.Context, selector string) error
	// WaitFor polls the DOM until cond holds or timeout elapses. On timeout
	// the latest snapshot is returned together with ErrWaitTimeout.
	WaitFor(ctx context.Context, cond func(*goquery.Document) bool, timeout time.Duration) (*goquery.Document, error)
	// Close releases the page.
	Close()
}

// PageOpener loads a page by address.
type PageOpener interface {
	Open(ctx context.Context, rawURL string) (PageReader, error)
}
