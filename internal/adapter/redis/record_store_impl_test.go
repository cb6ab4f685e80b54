package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/bookmeta/internal/entity"
	"github.com/user/bookmeta/internal/repository"
)

func newStore(t *testing.T) (*RecordStoreImpl, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRecordStore(client, "bookmeta:record"), mr
}

func TestRecordStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	store, mr := newStore(t)

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
	last, err := store.LastWrite(ctx)
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	pages := 312
	rec := entity.NewBookRecord()
	rec.Title = "Cached"
	rec.PageCount = &pages
	at := time.UnixMilli(1714560000123).UTC()
	require.NoError(t, store.Save(ctx, rec, at))

	assert.True(t, mr.Exists("bookmeta:record"))
	ms, err := mr.Get("bookmeta:record:saved_at")
	require.NoError(t, err)
	assert.Equal(t, "1714560000123", ms)

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Cached", got.Record.Title)
	require.NotNil(t, got.Record.PageCount)
	assert.Equal(t, 312, *got.Record.PageCount)
	assert.Equal(t, []string{}, got.Record.Authors)
	assert.True(t, at.Equal(got.SavedAt))

	last, err = store.LastWrite(ctx)
	require.NoError(t, err)
	assert.Equal(t, at.UnixMilli(), last.UnixMilli())
}

func TestRecordStoreClear(t *testing.T) {
	ctx := context.Background()
	store, mr := newStore(t)
	require.NoError(t, store.Save(ctx, entity.NewBookRecord(), time.Now()))
	require.NoError(t, store.Clear(ctx))

	assert.False(t, mr.Exists("bookmeta:record"))
	assert.False(t, mr.Exists("bookmeta:record:saved_at"))
	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
}

func TestRecordStoreCorruptBlob(t *testing.T) {
	ctx := context.Background()
	store, mr := newStore(t)
	require.NoError(t, mr.Set("bookmeta:record", "{not json"))
	_, err := store.Load(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrRecordNotFound)
}

func TestRecordStorePing(t *testing.T) {
	store, mr := newStore(t)
	require.NoError(t, store.Ping(context.Background()))
	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}
