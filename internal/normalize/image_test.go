package normalize

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeProber struct {
	mu     sync.Mutex
	areas  map[string]int
	calls  []string
	failAt map[string]bool
}

func (f *fakeProber) Probe(_ context.Context, url string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if f.failAt[url] {
		return 0, errors.New("failed to load")
	}
	return f.areas[url], nil
}

func TestCoverCandidatesAmazon(t *testing.T) {
	got := CoverCandidates("https://m.media-amazon.com/images/I/81abc._SY75_.jpg")
	assert.Equal(t, []string{
		"https://m.media-amazon.com/images/I/81abc._SY75_.jpg",
		"https://m.media-amazon.com/images/I/81abc.jpg",
	}, got)
}

func TestCoverCandidatesGoodreads(t *testing.T) {
	src := "https://images.gr-assets.com/books/1234567890m/123.jpg"
	got := CoverCandidates(src)
	assert.Equal(t, src, got[0])
	assert.Contains(t, got, "https://images.gr-assets.com/books/1234567890l/123.jpg")
	assert.Contains(t, got, "https://images.gr-assets.com/books/1234567890/123.jpg")

	compressed := "https://compressed.photo.goodreads.com/books/1234567890i/123.jpg"
	got = CoverCandidates(compressed)
	assert.Contains(t, got, "https://goodreads.com/books/1234567890l/123.jpg")
	assert.Len(t, got, len(uniq(got)))
}

func uniq(xs []string) map[string]struct{} {
	m := map[string]struct{}{}
	for _, x := range xs {
		m[x] = struct{}{}
	}
	return m
}

func TestCoverCandidatesEmpty(t *testing.T) {
	assert.Empty(t, CoverCandidates("  "))
}

func TestResolvePicksLargestLoadedCandidate(t *testing.T) {
	src := "https://images.gr-assets.com/books/1234567890m/123.jpg"
	candidates := CoverCandidates(src)
	p := &fakeProber{areas: map[string]int{}, failAt: map[string]bool{}}
	for _, c := range candidates {
		p.failAt[c] = true
	}
	p.failAt[candidates[0]] = false
	p.areas[candidates[0]] = 100
	p.failAt[candidates[1]] = false
	p.areas[candidates[1]] = 500

	r := NewCoverResolver(p, time.Second, nil, nil)
	assert.Equal(t, candidates[1], r.Resolve(context.Background(), src))
	assert.Len(t, p.calls, len(candidates))
}

func TestResolveFallsBackToOriginal(t *testing.T) {
	src := "https://m.media-amazon.com/images/I/81abc._SY75_.jpg"
	p := &fakeProber{failAt: map[string]bool{
		src: true,
		"https://m.media-amazon.com/images/I/81abc.jpg": true,
	}}
	r := NewCoverResolver(p, time.Second, nil, nil)
	assert.Equal(t, src, r.Resolve(context.Background(), src))
}

func TestResolveWithoutProber(t *testing.T) {
	r := NewCoverResolver(nil, time.Second, nil, nil)
	assert.Equal(t, "https://x/y.jpg", r.Resolve(context.Background(), " https://x/y.jpg "))
}
