package googlebooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const volumeJSON = `{
  "kind": "books#volume",
  "volumeInfo": {
    "title": "Leviathan Wakes",
    "authors": ["James S. A. Corey"],
    "publisher": "Orbit",
    "publishedDate": "2011-06-15",
    "industryIdentifiers": [
      {"type": "ISBN_10", "identifier": "0316129089"},
      {"type": "ISBN_13", "identifier": "9780316129084"}
    ],
    "readingModes": {"text": true, "image": false},
    "pageCount": 592,
    "printType": "BOOK",
    "categories": ["Fiction / Science Fiction / Space Opera"],
    "language": "en",
    "imageLinks": {"thumbnail": "http://books.google.com/books/content?id=yud-foo&zoom=1"}
  },
  "saleInfo": {"country": "US", "saleability": "FOR_SALE", "isEbook": true}
}`

func TestVolume(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotKey = r.URL.Path, r.URL.Query().Get("key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(volumeJSON))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", time.Second, nil, nil)
	vol, err := c.Volume(context.Background(), "yud-foo")
	require.NoError(t, err)

	assert.Equal(t, "/volumes/yud-foo", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "yud-foo", vol.ID)
	assert.Equal(t, "Leviathan Wakes", vol.VolumeInfo.Title)
	assert.Equal(t, 592, vol.VolumeInfo.PageCount)
	assert.True(t, vol.VolumeInfo.ReadingModes.Text)
	assert.True(t, vol.SaleInfo.IsEbook)
	assert.Len(t, vol.VolumeInfo.IndustryIdentifiers, 2)
	assert.Equal(t, "http://books.google.com/books/content?id=yud-foo&zoom=1", vol.VolumeInfo.ImageLinks["thumbnail"])
}

func TestVolumeWithoutKey(t *testing.T) {
	var rawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "abc", "volumeInfo": {"title": "T"}}`))
	}))
	defer srv.Close()

	vol, err := New(srv.URL, "", time.Second, nil, nil).Volume(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "", rawQuery)
	assert.Equal(t, "T", vol.VolumeInfo.Title)
}

func TestVolumeNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"code": 404, "message": "The volume ID could not be found."}}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", time.Second, nil, nil).Volume(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrVolumeNotFound)
}

func TestVolumeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", time.Second, nil, nil).Volume(context.Background(), "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrVolumeNotFound)
	assert.Contains(t, err.Error(), "429")
}

func TestVolumeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := New(srv.URL, "", 5*time.Second, nil, nil).Volume(ctx, "slow")
	assert.Error(t, err)
}
