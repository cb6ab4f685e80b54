package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyISBN(t *testing.T) {
	tests := []struct {
		raw       string
		wantClean string
		wantKind  string
	}{
		{"978-0-123456-78-9", "9780123456789", ISBN13},
		{"0316129089", "0316129089", ISBN10},
		{"0-8044-2957-x", "080442957X", ISBN10},
		{"12345", "12345", ""},
		{"97801234567890", "97801234567890", ""},
		{"B00YZ12345", "0012345", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			clean, kind := ClassifyISBN(tt.raw)
			assert.Equal(t, tt.wantClean, clean)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestClassifyISBNByLengthOnly(t *testing.T) {
	for n := 1; n <= 16; n++ {
		digits := ""
		for i := 0; i < n; i++ {
			digits += "1"
		}
		_, kind := ClassifyISBN(digits)
		switch n {
		case 13:
			assert.Equal(t, ISBN13, kind)
		case 10:
			assert.Equal(t, ISBN10, kind)
		default:
			assert.Empty(t, kind, "length %d", n)
		}
	}
}
