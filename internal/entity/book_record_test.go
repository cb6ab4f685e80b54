package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookRecordEncodesEmptyLists(t *testing.T) {
	b, err := json.Marshal(NewBookRecord())
	require.NoError(t, err)
	s := string(b)
	assert.Contains(t, s, `"authors":[]`)
	assert.Contains(t, s, `"contributors":[]`)
	assert.Contains(t, s, `"audiobookDuration":[]`)
	assert.Contains(t, s, `"pageCount":null`)
}

func TestNormalizeRestoresLists(t *testing.T) {
	var r BookRecord
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x","audiobookDuration":[{"hours":1},{"hours":2}]}`), &r))
	r.Normalize()
	assert.Equal(t, []string{}, r.Authors)
	assert.Equal(t, []Contributor{}, r.Contributors)
	assert.Equal(t, []Duration{{Hours: 1}}, r.AudiobookDuration)
}

func TestSetStringFirstWriterWins(t *testing.T) {
	var s string
	assert.False(t, SetString(&s, "   "))
	assert.True(t, SetString(&s, " first "))
	assert.False(t, SetString(&s, "second"))
	assert.Equal(t, "first", s)
}

func TestSetPageCountAndDuration(t *testing.T) {
	r := NewBookRecord()
	assert.False(t, r.SetPageCount(0))
	assert.True(t, r.SetPageCount(300))
	assert.False(t, r.SetPageCount(400))
	assert.Equal(t, 300, *r.PageCount)

	assert.False(t, r.SetDuration(nil))
	assert.True(t, r.SetDuration([]Duration{{Hours: 1}, {Hours: 9}}))
	assert.False(t, r.SetDuration([]Duration{{Hours: 2}}))
	assert.Equal(t, []Duration{{Hours: 1}}, r.AudiobookDuration)
}

func TestFillGaps(t *testing.T) {
	pages := 312
	dst := NewBookRecord()
	dst.Title = "Foo"
	dst.Authors = []string{"Remote"}

	src := NewBookRecord()
	src.Title = "Bar"
	src.Publisher = "Tor"
	src.Authors = []string{"Dom"}
	src.Contributors = []Contributor{{Name: "N", Role: "Narrator"}}
	src.PageCount = &pages
	src.AudiobookDuration = []Duration{{Hours: 3}}
	src.Compilation = true

	dst.FillGaps(src)

	assert.Equal(t, "Foo", dst.Title)
	assert.Equal(t, "Tor", dst.Publisher)
	assert.Equal(t, []string{"Remote"}, dst.Authors)
	assert.Equal(t, src.Contributors, dst.Contributors)
	assert.Equal(t, 312, *dst.PageCount)
	assert.Equal(t, []Duration{{Hours: 3}}, dst.AudiobookDuration)
	assert.True(t, dst.Compilation)

	// The copied slices are not shared with src.
	src.Contributors[0].Name = "changed"
	assert.Equal(t, "N", dst.Contributors[0].Name)
}

func TestIsEmpty(t *testing.T) {
	r := NewBookRecord()
	assert.True(t, r.IsEmpty())
	r.Description = "only a description"
	assert.True(t, r.IsEmpty())
	r.ISBN13 = "9780316129084"
	assert.False(t, r.IsEmpty())
}
