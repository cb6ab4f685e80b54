package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/user/bookmeta/internal/entity"
	"github.com/user/bookmeta/internal/repository"
	"github.com/user/bookmeta/pkg/metrics"
)

// Store is the record store as the core sees it: Save and Load never fail.
// A failed save comes back as a diagnostic, a failed load as an empty record.
type Store struct {
	repo    repository.RecordStore
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewStore(repo repository.RecordStore, logger *zap.Logger, m *metrics.Metrics) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{repo: repo, logger: logger, metrics: m, now: time.Now}
}

// Save overwrites the stored record. It returns nil on success.
func (s *Store) Save(ctx context.Context, record entity.BookRecord) *entity.Diagnostic {
	if err := s.repo.Save(ctx, record, s.now()); err != nil {
		s.metrics.IncStoreOp("save", "error")
		s.logger.Warn("failed to save record", zap.Error(err))
		return &entity.Diagnostic{Field: "record", Kind: entity.DiagStore, Message: err.Error()}
	}
	s.metrics.IncStoreOp("save", "ok")
	return nil
}

// Load returns the stored record, or an empty one with a zero SavedAt.
func (s *Store) Load(ctx context.Context) entity.StoredRecord {
	stored, err := s.repo.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrRecordNotFound):
		s.metrics.IncStoreOp("load", "empty")
		return entity.StoredRecord{Record: entity.NewBookRecord()}
	case err != nil:
		s.metrics.IncStoreOp("load", "error")
		s.logger.Warn("failed to load record", zap.Error(err))
		return entity.StoredRecord{Record: entity.NewBookRecord()}
	}
	s.metrics.IncStoreOp("load", "ok")
	return *stored
}

// LastWrite is the zero time when nothing was saved. ok is false when the
// backend could not be read, so callers can tell an outage from a clear.
func (s *Store) LastWrite(ctx context.Context) (t time.Time, ok bool) {
	t, err := s.repo.LastWrite(ctx)
	if err != nil {
		s.logger.Debug("failed to read last write time", zap.Error(err))
		return time.Time{}, false
	}
	return t, true
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		s.metrics.IncStoreOp("clear", "error")
		return err
	}
	s.metrics.IncStoreOp("clear", "ok")
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
