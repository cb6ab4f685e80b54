package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/bookmeta/internal/entity"
	"github.com/user/bookmeta/internal/repository"
)

const schema = `
	CREATE TABLE IF NOT EXISTS record_slots (
		slot     TEXT PRIMARY KEY,
		record   JSONB NOT NULL,
		saved_at TIMESTAMPTZ NOT NULL
	);
`

// RecordStoreImpl keeps the record in one row of record_slots, keyed by slot.
type RecordStoreImpl struct {
	db   *pgxpool.Pool
	slot string
}

var _ repository.RecordStore = (*RecordStoreImpl)(nil)

// NewRecordStore creates a new instance of RecordStoreImpl.
func NewRecordStore(db *pgxpool.Pool, slot string) *RecordStoreImpl {
	return &RecordStoreImpl{db: db, slot: slot}
}

// EnsureSchema creates the table when it does not exist yet.
func (r *RecordStoreImpl) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, schema)
	return err
}

// Save stores or replaces the record of the slot.
func (r *RecordStoreImpl) Save(ctx context.Context, record entity.BookRecord, savedAt time.Time) error {
	blob, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	query := `
		INSERT INTO record_slots (slot, record, saved_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (slot) DO UPDATE SET
			record = EXCLUDED.record,
			saved_at = EXCLUDED.saved_at;
	`
	_, err = r.db.Exec(ctx, query, r.slot, blob, savedAt)
	return err
}

func (r *RecordStoreImpl) Load(ctx context.Context) (*entity.StoredRecord, error) {
	query := `SELECT record, saved_at FROM record_slots WHERE slot = $1;`

	var (
		blob   []byte
		stored entity.StoredRecord
	)
	err := r.db.QueryRow(ctx, query, r.slot).Scan(&blob, &stored.SavedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(blob, &stored.Record); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	stored.Record.Normalize()
	return &stored, nil
}

func (r *RecordStoreImpl) LastWrite(ctx context.Context) (time.Time, error) {
	var savedAt time.Time
	err := r.db.QueryRow(ctx, `SELECT saved_at FROM record_slots WHERE slot = $1;`, r.slot).Scan(&savedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, nil
	}
	return savedAt, err
}

func (r *RecordStoreImpl) Clear(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM record_slots WHERE slot = $1;`, r.slot)
	return err
}

func (r *RecordStoreImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
