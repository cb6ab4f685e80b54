package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/bookmeta/internal/entity"
	"github.com/user/bookmeta/internal/extractor"
	"github.com/user/bookmeta/internal/repository"
	"github.com/user/bookmeta/pkg/metrics"
)

// ErrNoExtractor is returned when no supported site matches the page.
var ErrNoExtractor = errors.New("no extractor applies to this page")

// Extraction runs one extraction and stores its record.
type Extraction interface {
	// Extract reads an already opened page.
	Extract(ctx context.Context, page repository.PageReader) (entity.ExtractionResult, error)
	// ExtractURL opens rawURL, extracts it and closes the page.
	ExtractURL(ctx context.Context, rawURL string) (entity.ExtractionResult, error)
}

type extractionUseCase struct {
	selector *extractor.Selector
	opener   repository.PageOpener
	store    *Store
	logger   *zap.Logger
	metrics  *metrics.Metrics

	// Extractions run one at a time; a new one starts only after the
	// previous record was committed.
	mu sync.Mutex
}

// NewExtractionUseCase creates a new instance of the extraction use case.
// opener may be nil when only Extract is used.
func NewExtractionUseCase(
	selector *extractor.Selector,
	opener repository.PageOpener,
	store *Store,
	logger *zap.Logger,
	m *metrics.Metrics,
) Extraction {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &extractionUseCase{
		selector: selector,
		opener:   opener,
		store:    store,
		logger:   logger,
		metrics:  m,
	}
}

func (uc *extractionUseCase) ExtractURL(ctx context.Context, rawURL string) (entity.ExtractionResult, error) {
	if uc.opener == nil {
		return entity.ExtractionResult{}, errors.New("no page opener configured")
	}
	page, err := uc.opener.Open(ctx, rawURL)
	if err != nil {
		return entity.ExtractionResult{}, fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()
	return uc.Extract(ctx, page)
}

func (uc *extractionUseCase) Extract(ctx context.Context, page repository.PageReader) (entity.ExtractionResult, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	// Detection only needs a best-effort snapshot; extractors take their own.
	doc, err := page.Document(ctx)
	if err != nil {
		uc.logger.Debug("no snapshot for detection", zap.Error(err))
		doc = nil
	}
	ex, ok := uc.selector.Select(page.URL(), doc)
	if !ok {
		uc.metrics.ObserveExtraction("none", "unsupported", 0)
		uc.logger.Info("no extractor for page", zap.String("url", page.URL().String()))
		return entity.ExtractionResult{}, ErrNoExtractor
	}

	start := time.Now()
	res := ex.Extract(ctx, page)
	if d := uc.store.Save(ctx, res.Record); d != nil {
		res.Diagnostics = append(res.Diagnostics, *d)
	}

	status := "ok"
	switch {
	case res.Record.IsEmpty():
		status = "empty"
	case len(res.Diagnostics) > 0:
		status = "partial"
	}
	elapsed := time.Since(start)
	uc.metrics.ObserveExtraction(res.Source, status, elapsed.Seconds())
	uc.logger.Info("extraction finished",
		zap.String("source", res.Source),
		zap.String("url", res.URL),
		zap.String("status", status),
		zap.Int("diagnostics", len(res.Diagnostics)),
		zap.Duration("elapsed", elapsed),
	)
	return res, nil
}
