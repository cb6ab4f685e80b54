package normalize

import (
	"strings"

	"github.com/user/bookmeta/internal/entity"
)

// Book categories.
const (
	CategoryBook         = "Book"
	CategoryLightNovel   = "Light Novel"
	CategoryGraphicNovel = "Graphic Novel"
	CategoryPoetry       = "Poetry"
	CategoryNovella      = "Novella"
	CategoryShortStories = "Short Story Collection"
	CategoryCollection   = "Collection"
)

// categoryRules is ordered: the first rule with a matching keyword wins, so
// "light novel" is tried before the comics family, which is tried before the
// short-form categories.
var categoryRules = []struct {
	category    string
	keywords    []string
	compilation bool
}{
	{CategoryLightNovel, []string{"light novel"}, false},
	{CategoryGraphicNovel, []string{"graphic novel", "comics", "manga"}, false},
	{CategoryPoetry, []string{"poetry"}, false},
	{CategoryNovella, []string{"novella"}, false},
	{CategoryShortStories, []string{"short story", "short stories"}, true},
	{CategoryCollection, []string{"collection", "anthology", "anthologies"}, true},
}

var nonFictionKeywords = []string{
	"nonfiction", "non-fiction", "biography", "autobiography", "memoir", "history",
	"science", "self-help", "business", "philosophy", "psychology", "religion",
	"cooking", "travel", "true crime", "reference", "politics", "economics",
}

// Classification is the outcome of ClassifyCategories.
type Classification struct {
	LiteraryType string
	BookCategory string
	Compilation  bool
}

// ClassifyCategories derives literary type, book category and the
// compilation flag from free-text subject or genre labels. The category
// defaults to CategoryBook; the literary type stays empty when nothing
// decides it.
func ClassifyCategories(categories []string) Classification {
	c := Classification{BookCategory: CategoryBook}
	if len(categories) == 0 {
		return c
	}

	lowered := make([]string, 0, len(categories))
	for _, cat := range categories {
		if cat = strings.ToLower(strings.TrimSpace(cat)); cat != "" {
			lowered = append(lowered, cat)
		}
	}

rules:
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			for _, cat := range lowered {
				if strings.Contains(cat, kw) {
					c.BookCategory = rule.category
					c.Compilation = rule.compilation
					break rules
				}
			}
		}
	}

	c.LiteraryType = literaryType(lowered)
	return c
}

func literaryType(lowered []string) string {
	for _, cat := range lowered {
		if strings.Contains(cat, "nonfiction") || strings.Contains(cat, "non-fiction") {
			return entity.LiteraryNonFiction
		}
	}
	for _, cat := range lowered {
		if strings.Contains(cat, "fiction") {
			return entity.LiteraryFiction
		}
	}
	for _, cat := range lowered {
		for _, kw := range nonFictionKeywords {
			if strings.Contains(cat, kw) {
				return entity.LiteraryNonFiction
			}
		}
	}
	return ""
}
