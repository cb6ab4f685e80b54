// Package memory is a process-local record store, used by default and in
// tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/user/bookmeta/internal/entity"
	"github.com/user/bookmeta/internal/repository"
)

// RecordStore holds the encoded snapshot so later mutation of the saved
// value cannot reach the stored one.
type RecordStore struct {
	mu      sync.RWMutex
	blob    []byte
	savedAt time.Time
}

var _ repository.RecordStore = (*RecordStore)(nil)

func NewRecordStore() *RecordStore {
	return &RecordStore{}
}

func (s *RecordStore) Save(_ context.Context, record entity.BookRecord, savedAt time.Time) error {
	blob, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob, s.savedAt = blob, savedAt
	return nil
}

func (s *RecordStore) Load(_ context.Context) (*entity.StoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.blob == nil {
		return nil, repository.ErrRecordNotFound
	}
	stored := &entity.StoredRecord{SavedAt: s.savedAt}
	if err := json.Unmarshal(s.blob, &stored.Record); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	stored.Record.Normalize()
	return stored, nil
}

func (s *RecordStore) LastWrite(_ context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.savedAt, nil
}

func (s *RecordStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob, s.savedAt = nil, time.Time{}
	return nil
}

func (s *RecordStore) Ping(context.Context) error { return nil }
