package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/bookmeta/internal/adapter/memory"
	"github.com/user/bookmeta/internal/entity"
)

func TestWatcherReportsNewWrites(t *testing.T) {
	repo := memory.NewRecordStore()
	writer := NewStore(repo, nil, nil)
	watcher := NewWatcher(NewStore(repo, nil, nil), 5*time.Millisecond, nil)

	before := entity.NewBookRecord()
	before.Title = "Before"
	require.Nil(t, writer.Save(context.Background(), before))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := make(chan entity.StoredRecord, 1)
	done := make(chan error, 1)
	go func() {
		done <- watcher.Watch(ctx, func(s entity.StoredRecord) {
			select {
			case changes <- s:
			default:
			}
		})
	}()

	// Give the watcher time to take its baseline.
	time.Sleep(20 * time.Millisecond)
	after := entity.NewBookRecord()
	after.Title = "After"
	writer.now = func() time.Time { return time.Now().Add(time.Hour) }
	require.Nil(t, writer.Save(context.Background(), after))

	select {
	case got := <-changes:
		assert.Equal(t, "After", got.Record.Title)
	case <-ctx.Done():
		t.Fatal("no change reported")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatcherStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := NewWatcher(NewStore(memory.NewRecordStore(), nil, nil), 0, nil)
	err := w.Watch(ctx, func(entity.StoredRecord) { t.Fatal("unexpected change") })
	assert.ErrorIs(t, err, context.Canceled)
}

// flakyStore fails LastWrite while down is set.
type flakyStore struct {
	*memory.RecordStore
	down atomic.Bool
}

func (s *flakyStore) LastWrite(ctx context.Context) (time.Time, error) {
	if s.down.Load() {
		return time.Time{}, errors.New("connection reset by peer")
	}
	return s.RecordStore.LastWrite(ctx)
}

func TestWatcherSkipsFailedReads(t *testing.T) {
	repo := &flakyStore{RecordStore: memory.NewRecordStore()}
	writer := NewStore(repo, nil, nil)
	watcher := NewWatcher(NewStore(repo, nil, nil), 5*time.Millisecond, nil)

	before := entity.NewBookRecord()
	before.Title = "Before"
	require.Nil(t, writer.Save(context.Background(), before))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := make(chan string, 8)
	done := make(chan error, 1)
	go func() {
		done <- watcher.Watch(ctx, func(s entity.StoredRecord) {
			select {
			case changes <- s.Record.Title:
			default:
			}
		})
	}()

	time.Sleep(20 * time.Millisecond)
	repo.down.Store(true)
	time.Sleep(30 * time.Millisecond)
	repo.down.Store(false)
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, changes, "an outage must not look like a write")

	after := entity.NewBookRecord()
	after.Title = "After"
	writer.now = func() time.Time { return time.Now().Add(time.Hour) }
	require.Nil(t, writer.Save(context.Background(), after))

	select {
	case title := <-changes:
		assert.Equal(t, "After", title)
	case <-ctx.Done():
		t.Fatal("no change reported")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Empty(t, changes)
}

func TestWatcherTakesBaselineAfterFailedStart(t *testing.T) {
	repo := &flakyStore{RecordStore: memory.NewRecordStore()}
	writer := NewStore(repo, nil, nil)
	require.Nil(t, writer.Save(context.Background(), entity.NewBookRecord()))
	repo.down.Store(true)

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	go func() {
		time.Sleep(20 * time.Millisecond)
		repo.down.Store(false)
	}()
	watcher := NewWatcher(NewStore(repo, nil, nil), 5*time.Millisecond, nil)
	err := watcher.Watch(ctx, func(entity.StoredRecord) { t.Error("unexpected change") })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
