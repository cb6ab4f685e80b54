package response

import (
	"time"

	"github.com/user/bookmeta/internal/entity"
)

// ExtractResponse mirrors entity.ExtractionResult.
type ExtractResponse struct {
	Source      string              `json:"source"`
	URL         string              `json:"url"`
	Record      entity.BookRecord   `json:"record"`
	Diagnostics []entity.Diagnostic `json:"diagnostics"`
	ExtractedAt time.Time           `json:"extractedAt"`
}

// RecordResponse is the stored record. SavedAt is omitted while the store is
// empty.
type RecordResponse struct {
	Record  entity.BookRecord `json:"record"`
	SavedAt *time.Time        `json:"savedAt,omitempty"`
}

type FormResponse struct {
	Assignments []entity.FormAssignment `json:"assignments"`
}

type InjectResponse struct {
	TargetURL string `json:"target_url"`
	Planned   int    `json:"planned"`
	Filled    int    `json:"filled"`
}
