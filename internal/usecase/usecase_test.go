package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/user/bookmeta/internal/adapter/static"
	"github.com/user/bookmeta/internal/entity"
	"github.com/user/bookmeta/internal/repository"
)

// failingStore fails every operation.
type failingStore struct{}

func (failingStore) Save(context.Context, entity.BookRecord, time.Time) error {
	return errors.New("connection refused")
}
func (failingStore) Load(context.Context) (*entity.StoredRecord, error) {
	return nil, errors.New("connection refused")
}
func (failingStore) LastWrite(context.Context) (time.Time, error) {
	return time.Time{}, errors.New("connection refused")
}
func (failingStore) Clear(context.Context) error { return errors.New("connection refused") }
func (failingStore) Ping(context.Context) error  { return errors.New("connection refused") }

var _ repository.RecordStore = failingStore{}

// pageOpener serves canned markup by URL.
type pageOpener struct {
	pages  map[string]string
	opened []string
}

func (o *pageOpener) Open(_ context.Context, rawURL string) (repository.PageReader, error) {
	o.opened = append(o.opened, rawURL)
	html, ok := o.pages[rawURL]
	if !ok {
		return nil, errors.New("net::ERR_NAME_NOT_RESOLVED")
	}
	return static.NewPage(rawURL, html)
}

// recordingFiller remembers what it was asked to fill.
type recordingFiller struct {
	mu          sync.Mutex
	target      string
	assignments []entity.FormAssignment
	err         error
}

func (f *recordingFiller) Fill(_ context.Context, targetURL string, assignments []entity.FormAssignment) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.target, f.assignments = targetURL, assignments
	if f.err != nil {
		return 0, f.err
	}
	return len(assignments), nil
}
