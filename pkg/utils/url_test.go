package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHost(t *testing.T) {
	assert.Equal(t, "amazon.co.uk", NormalizeHost("WWW.Amazon.co.uk:443"))
	assert.Equal(t, "books.google.com", NormalizeHost(" books.google.com "))
}

func TestHostLabel(t *testing.T) {
	assert.True(t, HostLabel("smile.amazon.co.uk", "amazon"))
	assert.True(t, HostLabel("www.goodreads.com", "goodreads"))
	assert.False(t, HostLabel("notamazon.com", "amazon"))
}

func TestToAbsoluteURL(t *testing.T) {
	base, err := url.Parse("https://app.thestorygraph.com/books/abc")
	require.NoError(t, err)

	abs, err := ToAbsoluteURL(base, "/covers/x.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://app.thestorygraph.com/covers/x.jpg", abs)

	abs, err = ToAbsoluteURL(base, "//cdn.example.com/x.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/x.jpg", abs)

	abs, err = ToAbsoluteURL(nil, "x.jpg")
	require.NoError(t, err)
	assert.Equal(t, "x.jpg", abs)
}
