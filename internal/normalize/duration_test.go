package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/bookmeta/internal/entity"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want []entity.Duration
	}{
		{"10 hours and 32 minutes", []entity.Duration{{Hours: 10, Minutes: 32}}},
		{"1 hour 2 minutes 3 seconds", []entity.Duration{{Hours: 1, Minutes: 2, Seconds: 3}}},
		{"5 HOURS, 7 hrs", []entity.Duration{{Hours: 7}}},
		{"12 hrs and 4 mins", []entity.Duration{{Hours: 12, Minutes: 4}}},
		{"352 pages", []entity.Duration{}},
		{"", []entity.Duration{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseDuration(tt.in)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePageCount(t *testing.T) {
	assert.Equal(t, 312, ParsePageCount("312 pages"))
	assert.Equal(t, 1024, ParsePageCount("Hardcover, 1,024 pages"))
	assert.Equal(t, 1, ParsePageCount("1 page"))
	assert.Equal(t, 0, ParsePageCount("Kindle Edition"))
}

func TestFirstInt(t *testing.T) {
	assert.Equal(t, 312, FirstInt("312 pages"))
	assert.Equal(t, 0, FirstInt("no number"))
}
