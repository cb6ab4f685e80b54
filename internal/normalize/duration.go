package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/user/bookmeta/internal/entity"
)

var durationPattern = regexp.MustCompile(`(?i)(\d+)\s*(hours?|hrs?|minutes?|mins?|seconds?|secs?)\b`)

// ParseDuration folds every "<n> <unit>" in text into a single duration. The
// last occurrence of a unit wins. It returns an empty slice when no unit is
// present.
func ParseDuration(text string) []entity.Duration {
	matches := durationPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return []entity.Duration{}
	}
	var d entity.Duration
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		switch unit := strings.ToLower(m[2]); {
		case strings.HasPrefix(unit, "h"):
			d.Hours = n
		case strings.HasPrefix(unit, "m"):
			d.Minutes = n
		case strings.HasPrefix(unit, "s"):
			d.Seconds = n
		}
	}
	return []entity.Duration{d}
}

var pagesPattern = regexp.MustCompile(`(?i)(\d[\d,]*)\s*pages?\b`)

// ParsePageCount returns the number in an "N pages" phrase, or 0.
func ParsePageCount(text string) int {
	m := pagesPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0
	}
	return n
}

var firstIntPattern = regexp.MustCompile(`\d[\d,]*`)

// FirstInt returns the first integer in text, or 0.
func FirstInt(text string) int {
	m := firstIntPattern.FindString(text)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return 0
	}
	return n
}
