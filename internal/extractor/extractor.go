// Package extractor maps one book page from a supported site onto the
// canonical record.
package extractor

import (
	"context"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/user/bookmeta/internal/entity"
	"github.com/user/bookmeta/internal/normalize"
	"github.com/user/bookmeta/internal/repository"
	"github.com/user/bookmeta/pkg/metrics"
)

// Source names.
const (
	SourceAmazon      = "amazon"
	SourceGoodreads   = "goodreads"
	SourceGoogleBooks = "googlebooks"
	SourceStoryGraph  = "storygraph"
)

// Extractor is implemented once per supported site.
type Extractor interface {
	// Name identifies the source.
	Name() string
	// Detect is a cheap check of whether this extractor applies to the page.
	Detect(u *url.URL, doc *goquery.Document) bool
	// Extract reads the page into a fresh record. It never fails: anything
	// it could not read is left at its default and noted as a diagnostic.
	Extract(ctx context.Context, page repository.PageReader) entity.ExtractionResult
}

// Options carries the collaborators shared by all extractors.
type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	// Covers upgrades cover URLs to their highest-resolution variant.
	Covers *normalize.CoverResolver
	// SettleTimeout bounds the wait for content revealed by an expansion click.
	SettleTimeout time.Duration
	// Now is the clock used for ExtractedAt.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.SettleTimeout <= 0 {
		o.SettleTimeout = 500 * time.Millisecond
	}
	return o
}

// All returns every extractor in detection priority order.
func All(opts Options, google GoogleBooksOptions) []Extractor {
	return []Extractor{
		NewAmazon(opts),
		NewGoodreads(opts),
		NewGoogleBooks(opts, google),
		NewStoryGraph(opts),
	}
}
