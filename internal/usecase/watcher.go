package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/user/bookmeta/internal/entity"
)

// Watcher notices records written by other processes by polling the stored
// write time. The last writer wins; nothing is locked.
type Watcher struct {
	store    *Store
	interval time.Duration
	logger   *zap.Logger
}

func NewWatcher(store *Store, interval time.Duration, logger *zap.Logger) *Watcher {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{store: store, interval: interval, logger: logger}
}

// Watch calls onChange with the freshly loaded record every time the write
// time moves, until ctx is done. The record present at start is not reported.
// Ticks where the store cannot be read are skipped.
func (w *Watcher) Watch(ctx context.Context, onChange func(entity.StoredRecord)) error {
	last, known := w.store.LastWrite(ctx)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		current, ok := w.store.LastWrite(ctx)
		if !ok {
			continue
		}
		if !known {
			last, known = current, true
			continue
		}
		if current.Equal(last) {
			continue
		}
		last = current
		w.logger.Debug("record changed", zap.Time("saved_at", current))
		onChange(w.store.Load(ctx))
	}
}
