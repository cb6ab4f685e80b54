package entity

import (
	"strings"
	"time"
)

// Reading formats a record can be classified into. Anything else found on a
// page is kept verbatim as a fallback value.
const (
	FormatPhysical  = "Physical Book"
	FormatAudiobook = "Audiobook"
	FormatEBook     = "E-Book"
)

// Literary types.
const (
	LiteraryFiction    = "Fiction"
	LiteraryNonFiction = "Non-Fiction"
)

// Contributor is a non-authoring credit on a book, e.g. a translator.
type Contributor struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Duration is an audiobook running time.
type Duration struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// BookRecord is the canonical shape every extractor fills in. Fields that were
// not found keep their zero value; PageCount stays nil.
type BookRecord struct {
	Title             string        `json:"title"`
	Subtitle          string        `json:"subtitle"`
	SourceID          string        `json:"sourceId"`
	ISBN10            string        `json:"isbn10"`
	ISBN13            string        `json:"isbn13"`
	ASIN              string        `json:"asin"`
	Cover             string        `json:"cover"`
	Authors           []string      `json:"authors"`
	Contributors      []Contributor `json:"contributors"`
	Publisher         string        `json:"publisher"`
	ReadingFormat     string        `json:"readingFormat"`
	EditionFormat     string        `json:"editionFormat"`
	EditionInfo       string        `json:"editionInfo"`
	PageCount         *int          `json:"pageCount"`
	AudiobookDuration []Duration    `json:"audiobookDuration"`
	SeriesName        string        `json:"seriesName"`
	SeriesNumber      string        `json:"seriesNumber"`
	ReleaseDate       string        `json:"releaseDate"`
	ReleaseLanguage   string        `json:"releaseLanguage"`
	ReleaseCountry    string        `json:"releaseCountry"`
	Description       string        `json:"description"`
	LiteraryType      string        `json:"literaryType"`
	BookCategory      string        `json:"bookCategory"`
	Compilation       bool          `json:"compilation"`
}

// NewBookRecord returns an empty record. Lists are non-nil so the JSON form
// always carries [] rather than null.
func NewBookRecord() BookRecord {
	return BookRecord{
		Authors:           []string{},
		Contributors:      []Contributor{},
		AudiobookDuration: []Duration{},
	}
}

// Normalize restores the empty-list invariant after decoding or merging.
func (r *BookRecord) Normalize() {
	if r.Authors == nil {
		r.Authors = []string{}
	}
	if r.Contributors == nil {
		r.Contributors = []Contributor{}
	}
	if r.AudiobookDuration == nil {
		r.AudiobookDuration = []Duration{}
	}
	if len(r.AudiobookDuration) > 1 {
		r.AudiobookDuration = r.AudiobookDuration[:1]
	}
}

// IsEmpty reports whether nothing was extracted at all.
func (r BookRecord) IsEmpty() bool {
	return r.Title == "" && r.SourceID == "" && r.ISBN10 == "" && r.ISBN13 == "" &&
		r.ASIN == "" && len(r.Authors) == 0
}

// SetString writes v into dst unless dst already holds a value or v is blank.
// It reports whether the write happened. This is the first-writer-wins rule
// used when one extraction run has several data origins.
func SetString(dst *string, v string) bool {
	v = strings.TrimSpace(v)
	if *dst != "" || v == "" {
		return false
	}
	*dst = v
	return true
}

// SetPageCount fills the page count when unset and n is positive.
func (r *BookRecord) SetPageCount(n int) bool {
	if r.PageCount != nil || n <= 0 {
		return false
	}
	r.PageCount = &n
	return true
}

// SetDuration fills the single audiobook duration slot when unset.
func (r *BookRecord) SetDuration(d []Duration) bool {
	if len(r.AudiobookDuration) > 0 || len(d) == 0 {
		return false
	}
	r.AudiobookDuration = []Duration{d[0]}
	return true
}

// Diagnostic kinds.
const (
	DiagMissingElement = "missing-element"
	DiagParseMismatch  = "parse-mismatch"
	DiagNetwork        = "network"
	DiagStore          = "store"
	DiagPanic          = "panic"
	DiagUnverified     = "unverified"
)

// Diagnostic is a non-fatal note recorded while extracting a single field.
type Diagnostic struct {
	Field   string `json:"field"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ExtractionResult is what one extractor run produces.
type ExtractionResult struct {
	Source      string       `json:"source"`
	URL         string       `json:"url"`
	Record      BookRecord   `json:"record"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	ExtractedAt time.Time    `json:"extractedAt"`
}

// FillGaps copies every field of src into r that r has not populated yet.
func (r *BookRecord) FillGaps(src BookRecord) {
	for _, f := range []struct {
		dst *string
		v   string
	}{
		{&r.Title, src.Title},
		{&r.Subtitle, src.Subtitle},
		{&r.SourceID, src.SourceID},
		{&r.ISBN10, src.ISBN10},
		{&r.ISBN13, src.ISBN13},
		{&r.ASIN, src.ASIN},
		{&r.Cover, src.Cover},
		{&r.Publisher, src.Publisher},
		{&r.ReadingFormat, src.ReadingFormat},
		{&r.EditionFormat, src.EditionFormat},
		{&r.EditionInfo, src.EditionInfo},
		{&r.SeriesName, src.SeriesName},
		{&r.SeriesNumber, src.SeriesNumber},
		{&r.ReleaseDate, src.ReleaseDate},
		{&r.ReleaseLanguage, src.ReleaseLanguage},
		{&r.ReleaseCountry, src.ReleaseCountry},
		{&r.Description, src.Description},
		{&r.LiteraryType, src.LiteraryType},
		{&r.BookCategory, src.BookCategory},
	} {
		SetString(f.dst, f.v)
	}
	if len(r.Authors) == 0 && len(src.Authors) > 0 {
		r.Authors = append([]string{}, src.Authors...)
	}
	if len(r.Contributors) == 0 && len(src.Contributors) > 0 {
		r.Contributors = append([]Contributor{}, src.Contributors...)
	}
	if src.PageCount != nil {
		r.SetPageCount(*src.PageCount)
	}
	r.SetDuration(src.AudiobookDuration)
	if !r.Compilation {
		r.Compilation = src.Compilation
	}
}
