package entity

import "time"

// StoredRecord is the single cached snapshot held by a record store.
type StoredRecord struct {
	Record  BookRecord `json:"record"`
	SavedAt time.Time  `json:"savedAt"`
}
