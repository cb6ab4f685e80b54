// Package injector turns a record into the values for a target form. It does
// no normalization of its own: values are rendered exactly as stored.
package injector

import (
	"strconv"
	"strings"

	"github.com/user/bookmeta/internal/entity"
)

// Target names the form control a record field goes to.
type Target struct {
	Field string
	ID    string
	Label string
}

type Mapping []Target

// DefaultMapping follows the edition form of the book catalog the records
// are injected into.
var DefaultMapping = Mapping{
	{Field: "title", ID: "edition_title", Label: "Title"},
	{Field: "subtitle", ID: "edition_subtitle", Label: "Subtitle"},
	{Field: "authors", ID: "edition_authors", Label: "Authors"},
	{Field: "contributors", ID: "edition_contributors", Label: "Contributors"},
	{Field: "isbn10", ID: "edition_isbn_10", Label: "ISBN 10"},
	{Field: "isbn13", ID: "edition_isbn_13", Label: "ISBN 13"},
	{Field: "asin", ID: "edition_asin", Label: "ASIN"},
	{Field: "sourceId", ID: "edition_source_id", Label: "Source ID"},
	{Field: "cover", ID: "edition_cover_url", Label: "Cover URL"},
	{Field: "publisher", ID: "edition_publisher", Label: "Publisher"},
	{Field: "readingFormat", ID: "edition_reading_format", Label: "Reading Format"},
	{Field: "editionFormat", ID: "edition_format", Label: "Edition Format"},
	{Field: "editionInfo", ID: "edition_info", Label: "Edition Information"},
	{Field: "pageCount", ID: "edition_pages", Label: "Pages"},
	{Field: "audiobookDuration.hours", ID: "edition_duration_hours", Label: "Hours"},
	{Field: "audiobookDuration.minutes", ID: "edition_duration_minutes", Label: "Minutes"},
	{Field: "audiobookDuration.seconds", ID: "edition_duration_seconds", Label: "Seconds"},
	{Field: "seriesName", ID: "edition_series_name", Label: "Series"},
	{Field: "seriesNumber", ID: "edition_series_number", Label: "Series Number"},
	{Field: "releaseDate", ID: "edition_release_date", Label: "Release Date"},
	{Field: "releaseLanguage", ID: "edition_language", Label: "Language"},
	{Field: "releaseCountry", ID: "edition_country", Label: "Country"},
	{Field: "description", ID: "edition_description", Label: "Description"},
	{Field: "literaryType", ID: "edition_literary_type", Label: "Literary Type"},
	{Field: "bookCategory", ID: "edition_category", Label: "Category"},
	{Field: "compilation", ID: "edition_compilation", Label: "Compilation"},
}

// Values renders every field of rec by name. Lists are joined, the duration
// is split into its parts and an unknown page count or duration is absent.
func Values(rec entity.BookRecord) map[string]string {
	v := map[string]string{
		"title":           rec.Title,
		"subtitle":        rec.Subtitle,
		"authors":         strings.Join(rec.Authors, ", "),
		"contributors":    joinContributors(rec.Contributors),
		"isbn10":          rec.ISBN10,
		"isbn13":          rec.ISBN13,
		"asin":            rec.ASIN,
		"sourceId":        rec.SourceID,
		"cover":           rec.Cover,
		"publisher":       rec.Publisher,
		"readingFormat":   rec.ReadingFormat,
		"editionFormat":   rec.EditionFormat,
		"editionInfo":     rec.EditionInfo,
		"seriesName":      rec.SeriesName,
		"seriesNumber":    rec.SeriesNumber,
		"releaseDate":     rec.ReleaseDate,
		"releaseLanguage": rec.ReleaseLanguage,
		"releaseCountry":  rec.ReleaseCountry,
		"description":     rec.Description,
		"literaryType":    rec.LiteraryType,
		"bookCategory":    rec.BookCategory,
		"compilation":     strconv.FormatBool(rec.Compilation),
	}
	if rec.PageCount != nil {
		v["pageCount"] = strconv.Itoa(*rec.PageCount)
	}
	if len(rec.AudiobookDuration) > 0 {
		d := rec.AudiobookDuration[0]
		v["audiobookDuration.hours"] = strconv.Itoa(d.Hours)
		v["audiobookDuration.minutes"] = strconv.Itoa(d.Minutes)
		v["audiobookDuration.seconds"] = strconv.Itoa(d.Seconds)
	}
	return v
}

// Plan lists the assignments for rec in mapping order. Blank values are left
// out so existing form input is not wiped.
func Plan(rec entity.BookRecord, mapping Mapping) []entity.FormAssignment {
	values := Values(rec)
	plan := make([]entity.FormAssignment, 0, len(mapping))
	for _, t := range mapping {
		value, ok := values[t.Field]
		if !ok || value == "" {
			continue
		}
		plan = append(plan, entity.FormAssignment{Field: t.Field, Target: t.ID, Label: t.Label, Value: value})
	}
	return plan
}

func joinContributors(cs []entity.Contributor) string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		if c.Role == "" {
			parts = append(parts, c.Name)
			continue
		}
		parts = append(parts, c.Name+" ("+c.Role+")")
	}
	return strings.Join(parts, "; ")
}
