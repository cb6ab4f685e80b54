package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/bookmeta/internal/entity"
	"github.com/user/bookmeta/internal/repository"
)

const savedAtSuffix = ":saved_at"

// RecordStoreImpl keeps the record as one JSON blob under key and the write
// time, in unix milliseconds, under key+":saved_at" so watchers can poll it
// without decoding the record.
type RecordStoreImpl struct {
	client *redis.Client
	key    string
}

var _ repository.RecordStore = (*RecordStoreImpl)(nil)

// NewRecordStore creates a new instance of RecordStoreImpl.
func NewRecordStore(client *redis.Client, key string) *RecordStoreImpl {
	return &RecordStoreImpl{client: client, key: key}
}

// Save overwrites both keys in one MULTI/EXEC.
func (r *RecordStoreImpl) Save(ctx context.Context, record entity.BookRecord, savedAt time.Time) error {
	blob, err := json.Marshal(entity.StoredRecord{Record: record, SavedAt: savedAt})
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key, blob, 0)
		pipe.Set(ctx, r.key+savedAtSuffix, savedAt.UnixMilli(), 0)
		return nil
	})
	return err
}

func (r *RecordStoreImpl) Load(ctx context.Context) (*entity.StoredRecord, error) {
	blob, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	var stored entity.StoredRecord
	if err := json.Unmarshal(blob, &stored); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	stored.Record.Normalize()
	return &stored, nil
}

func (r *RecordStoreImpl) LastWrite(ctx context.Context) (time.Time, error) {
	ms, err := r.client.Get(ctx, r.key+savedAtSuffix).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}

func (r *RecordStoreImpl) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key, r.key+savedAtSuffix).Err()
}

func (r *RecordStoreImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
