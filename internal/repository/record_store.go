package repository

import (
	"context"
	"errors"
	"time"

	"github.com/user/bookmeta/internal/entity"
)

// ErrRecordNotFound is returned by Load when the slot has never been written.
var ErrRecordNotFound = errors.New("no record stored")

// RecordStore holds the single most recently extracted record.
type RecordStore interface {
	// Save overwrites the slot and its timestamp.
	Save(ctx context.Context, record entity.BookRecord, savedAt time.Time) error
	// Load returns the stored snapshot or ErrRecordNotFound.
	Load(ctx context.Context) (*entity.StoredRecord, error)
	// LastWrite returns the timestamp of the last Save, zero if none.
	LastWrite(ctx context.Context) (time.Time, error)
	// Clear empties the slot.
	Clear(ctx context.Context) error
	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error
}
