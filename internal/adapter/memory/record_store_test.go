package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/bookmeta/internal/entity"
	"github.com/user/bookmeta/internal/repository"
)

func TestRecordStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewRecordStore()

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
	last, err := s.LastWrite(ctx)
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	rec := entity.NewBookRecord()
	rec.Title = "Stored"
	rec.Authors = []string{"Ann Writer"}
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.Save(ctx, rec, at))

	// Mutating the caller's copy must not reach the slot.
	rec.Authors[0] = "Someone Else"

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Stored", got.Record.Title)
	assert.Equal(t, []string{"Ann Writer"}, got.Record.Authors)
	assert.Equal(t, at, got.SavedAt)

	last, err = s.LastWrite(ctx)
	require.NoError(t, err)
	assert.Equal(t, at, last)

	require.NoError(t, s.Clear(ctx))
	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
}

func TestRecordStoreSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewRecordStore()
	first := entity.NewBookRecord()
	first.Title = "First"
	second := entity.NewBookRecord()
	second.Title = "Second"

	require.NoError(t, s.Save(ctx, first, time.Unix(1, 0)))
	require.NoError(t, s.Save(ctx, second, time.Unix(2, 0)))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Second", got.Record.Title)
}
