package normalize

import (
	"regexp"
	"strings"
)

// ISBN kinds reported by ClassifyISBN.
const (
	ISBN10 = "isbn10"
	ISBN13 = "isbn13"
)

var (
	isbn13Only = regexp.MustCompile(`^\d{13}$`)
	isbn10Only = regexp.MustCompile(`^\d{9}[\dX]$`)
)

// CleanISBN drops hyphens, spaces and any other separator, keeping digits and
// a trailing check character X.
func CleanISBN(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if (r >= '0' && r <= '9') || r == 'X' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ClassifyISBN cleans raw and classifies it purely by length. It returns the
// cleaned value and ISBN10, ISBN13 or "" when it is neither.
func ClassifyISBN(raw string) (string, string) {
	clean := CleanISBN(raw)
	switch {
	case isbn13Only.MatchString(clean):
		return clean, ISBN13
	case isbn10Only.MatchString(clean):
		return clean, ISBN10
	}
	return clean, ""
}
