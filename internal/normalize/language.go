package normalize

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LanguageNamer turns ISO language codes into display names in one fixed
// output locale.
type LanguageNamer struct {
	namer display.Namer
}

// NewLanguageNamer builds a namer for the given output locale, falling back
// to English when the locale is not understood.
func NewLanguageNamer(locale string) *LanguageNamer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &LanguageNamer{namer: display.Tags(tag)}
}

// Name returns the display name for code ("en", "pt-BR", "fr_CA"), or "" when
// the code is not recognised.
func (n *LanguageNamer) Name(code string) string {
	code = strings.TrimSpace(strings.ReplaceAll(code, "_", "-"))
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	return n.namer.Name(tag)
}
