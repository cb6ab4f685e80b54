package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/bookmeta/internal/adapter/memory"
	"github.com/user/bookmeta/internal/entity"
	"github.com/user/bookmeta/pkg/metrics"
)

func TestStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	m := metrics.New(prometheus.NewRegistry())
	s := NewStore(memory.NewRecordStore(), nil, m)
	at := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return at }

	empty := s.Load(ctx)
	assert.True(t, empty.SavedAt.IsZero())
	assert.Equal(t, entity.NewBookRecord(), empty.Record)

	rec := entity.NewBookRecord()
	rec.Title = "Saved"
	assert.Nil(t, s.Save(ctx, rec))

	got := s.Load(ctx)
	assert.Equal(t, "Saved", got.Record.Title)
	assert.Equal(t, at, got.SavedAt)
	last, ok := s.LastWrite(ctx)
	assert.True(t, ok)
	assert.Equal(t, at, last)

	require.NoError(t, s.Clear(ctx))
	assert.True(t, s.Load(ctx).SavedAt.IsZero())
	last, ok = s.LastWrite(ctx)
	assert.True(t, ok)
	assert.True(t, last.IsZero())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOpsTotal.WithLabelValues("save", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StoreOpsTotal.WithLabelValues("load", "empty")))
}

func TestStoreFailuresDegrade(t *testing.T) {
	ctx := context.Background()
	s := NewStore(failingStore{}, nil, nil)

	d := s.Save(ctx, entity.NewBookRecord())
	require.NotNil(t, d)
	assert.Equal(t, entity.DiagStore, d.Kind)
	assert.Equal(t, "record", d.Field)

	got := s.Load(ctx)
	assert.Equal(t, entity.NewBookRecord(), got.Record)
	assert.True(t, got.SavedAt.IsZero())
	last, ok := s.LastWrite(ctx)
	assert.False(t, ok)
	assert.True(t, last.IsZero())
	assert.Error(t, s.Clear(ctx))
	assert.Error(t, s.Ping(ctx))
}
