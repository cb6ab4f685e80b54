package chromedp_reader

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/user/bookmeta/internal/entity"
	"github.com/user/bookmeta/internal/repository"
)

// FormOptions controls how filled values are made to stick.
type FormOptions struct {
	// SubmitSelector is clicked once the controls are filled. The tab is
	// then held until the page navigates away.
	SubmitSelector string
	SubmitTimeout  time.Duration
	Poll           time.Duration
}

// formTab is the part of a tab the filler drives.
type formTab interface {
	evaluate(ctx context.Context, expr string, res any) error
	currentURL(ctx context.Context) (string, error)
	Click(ctx context.Context, selector string) error
	Close()
}

// FormFiller writes a record into the form controls of a target page.
type FormFiller struct {
	open     func(ctx context.Context, rawURL string) (formTab, error)
	keepOpen bool
	opts     FormOptions
	logger   *zap.Logger
}

var _ repository.FormFiller = (*FormFiller)(nil)

// NewFormFiller fills forms in tabs of b. Tabs of a remote browser are left
// open after filling; tabs of a launched browser are closed, so those need a
// submit selector.
func NewFormFiller(b *Browser, opts FormOptions, logger *zap.Logger) *FormFiller {
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = 10 * time.Second
	}
	if opts.Poll <= 0 {
		opts.Poll = 100 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormFiller{
		open: func(ctx context.Context, rawURL string) (formTab, error) {
			page, err := b.Open(ctx, rawURL)
			if err != nil {
				return nil, err
			}
			return page, nil
		},
		keepOpen: b.Remote(),
		opts:     opts,
		logger:   logger,
	}
}

// fillScript locates a control by id, then name, then label text, sets its
// value and fires the events frameworks listen for.
const fillScript = `((target, label, value) => {
	let el = document.getElementById(target) || document.querySelector('[name="' + CSS.escape(target) + '"]');
	if (!el && label) {
		const want = label.trim().toLowerCase();
		for (const l of document.querySelectorAll('label')) {
			if (l.textContent.trim().toLowerCase() === want) {
				el = l.control || (l.htmlFor && document.getElementById(l.htmlFor));
				break;
			}
		}
	}
	if (!el) return false;
	if (el.type === 'checkbox') {
		el.checked = value === 'true';
	} else {
		el.value = value;
	}
	el.dispatchEvent(new Event('input', { bubbles: true }));
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
})(%s, %s, %s)`

func fillExpression(a entity.FormAssignment) (string, error) {
	args := make([]any, 0, 3)
	for _, v := range []string{a.Target, a.Label, a.Value} {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		args = append(args, string(b))
	}
	return fmt.Sprintf(fillScript, args...), nil
}

// Fill opens targetURL and applies every assignment. It returns how many
// controls were found and filled; missing controls are skipped. With a submit
// selector the form is submitted before the tab goes away.
func (f *FormFiller) Fill(ctx context.Context, targetURL string, assignments []entity.FormAssignment) (int, error) {
	if f.opts.SubmitSelector == "" && !f.keepOpen {
		return 0, repository.ErrFormNotPersisted
	}
	tab, err := f.open(ctx, targetURL)
	if err != nil {
		return 0, err
	}
	keep := false
	defer func() {
		if !keep {
			tab.Close()
		}
	}()

	filled := 0
	for _, a := range assignments {
		expr, err := fillExpression(a)
		if err != nil {
			return filled, err
		}
		var ok bool
		if err := tab.evaluate(ctx, expr, &ok); err != nil {
			return filled, fmt.Errorf("fill %s: %w", a.Field, err)
		}
		if !ok {
			f.logger.Debug("form control not found", zap.String("field", a.Field), zap.String("target", a.Target))
			continue
		}
		filled++
	}
	if filled == 0 {
		f.logger.Warn("no form controls matched", zap.String("url", targetURL), zap.Int("planned", len(assignments)))
		return 0, nil
	}
	keep = f.keepOpen

	if f.opts.SubmitSelector != "" {
		if err := f.submit(ctx, tab); err != nil {
			return filled, err
		}
	}
	f.logger.Info("form filled",
		zap.String("url", targetURL),
		zap.Int("filled", filled),
		zap.Int("planned", len(assignments)),
		zap.Bool("submitted", f.opts.SubmitSelector != ""),
	)
	return filled, nil
}

// submit clicks the submit control and waits for the page to leave its
// current location.
func (f *FormFiller) submit(ctx context.Context, tab formTab) error {
	before, err := tab.currentURL(ctx)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if err := tab.Click(ctx, f.opts.SubmitSelector); err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	deadline := time.NewTimer(f.opts.SubmitTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(f.opts.Poll)
	defer ticker.Stop()

	for {
		// Reads fail while the next document loads.
		if after, err := tab.currentURL(ctx); err == nil && after != before {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("submit %s: %w", f.opts.SubmitSelector, repository.ErrWaitTimeout)
		case <-ticker.C:
		}
	}
}
