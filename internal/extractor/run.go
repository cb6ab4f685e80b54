package extractor

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/user/bookmeta/internal/entity"
	"github.com/user/bookmeta/internal/repository"
)

// diagError carries the diagnostic kind a failed step should be recorded as.
type diagError struct {
	kind string
	msg  string
}

func (e *diagError) Error() string { return e.msg }

func missing(selector string) error {
	return &diagError{kind: entity.DiagMissingElement, msg: "no element matches " + selector}
}

func mismatch(format string, args ...any) error {
	return &diagError{kind: entity.DiagParseMismatch, msg: fmt.Sprintf(format, args...)}
}

// run is the state of one extraction invocation. Each run owns a fresh
// record so nothing leaks between pages.
type run struct {
	opts   Options
	source string
	url    *url.URL
	rec    entity.BookRecord
	diags  []entity.Diagnostic
	log    *zap.Logger
}

func newRun(opts Options, source string, page repository.PageReader) *run {
	var u *url.URL
	if page != nil {
		u = page.URL()
	}
	if u == nil {
		u = &url.URL{}
	}
	return &run{
		opts:   opts,
		source: source,
		url:    u,
		rec:    entity.NewBookRecord(),
		log:    opts.Logger.With(zap.String("source", source), zap.String("url", u.String())),
	}
}

// note records a diagnostic.
func (r *run) note(field, kind, msg string) {
	r.diags = append(r.diags, entity.Diagnostic{Field: field, Kind: kind, Message: msg})
	r.opts.Metrics.IncDiagnostic(r.source, kind)
	r.log.Debug("extraction diagnostic", zap.String("field", field), zap.String("kind", kind), zap.String("message", msg))
}

// step runs one field's extraction. Errors and panics become diagnostics so
// a single field can never abort the whole run.
func (r *run) step(field string, fn func() error) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Warn("extraction step panicked", zap.String("field", field), zap.Any("panic", p))
			r.note(field, entity.DiagPanic, fmt.Sprint(p))
		}
	}()
	err := fn()
	if err == nil {
		return
	}
	var de *diagError
	switch {
	case errors.As(err, &de):
		r.note(field, de.kind, de.msg)
	case errors.Is(err, repository.ErrElementNotFound):
		r.note(field, entity.DiagMissingElement, err.Error())
	default:
		r.note(field, entity.DiagParseMismatch, err.Error())
	}
}

// document takes the initial snapshot. A failing page reader is the one
// catastrophic case: the run then yields an all-default record.
func (r *run) document(ctx context.Context, page repository.PageReader) *goquery.Document {
	if page == nil {
		r.note("page", entity.DiagMissingElement, "no page reader")
		return nil
	}
	doc, err := page.Document(ctx)
	if err != nil {
		r.log.Warn("page snapshot failed", zap.Error(err))
		r.note("page", entity.DiagMissingElement, err.Error())
		return nil
	}
	return doc
}

// expand clicks trigger when it is on the page and waits, bounded by the
// settle timeout, until ready holds. It returns the freshest snapshot it has.
func (r *run) expand(ctx context.Context, page repository.PageReader, doc *goquery.Document, field, trigger string, ready func(*goquery.Document) bool) *goquery.Document {
	if doc.Find(trigger).Length() == 0 || ready(doc) {
		return doc
	}
	if err := page.Click(ctx, trigger); err != nil {
		r.note(field, entity.DiagMissingElement, "expand "+trigger+": "+err.Error())
		return doc
	}
	next, err := page.WaitFor(ctx, ready, r.opts.SettleTimeout)
	if err != nil {
		r.note(field, entity.DiagMissingElement, "waiting after "+trigger+": "+err.Error())
	}
	if next == nil {
		return doc
	}
	return next
}

// cover resolves src against the page URL and upgrades it to the largest
// variant available.
func (r *run) cover(ctx context.Context, src string) string {
	abs := absolute(r.url, src)
	if abs == "" {
		return ""
	}
	if r.opts.Covers == nil {
		return abs
	}
	return r.opts.Covers.Resolve(ctx, abs)
}

func (r *run) result() entity.ExtractionResult {
	r.rec.Normalize()
	if r.diags == nil {
		r.diags = []entity.Diagnostic{}
	}
	return entity.ExtractionResult{
		Source:      r.source,
		URL:         r.url.String(),
		Record:      r.rec,
		Diagnostics: r.diags,
		ExtractedAt: r.opts.Now(),
	}
}
