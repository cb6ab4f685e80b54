package entity

// CatalogVolume mirrors the subset of a Google Books volume document the
// pipeline reads.
type CatalogVolume struct {
	ID         string            `json:"id"`
	VolumeInfo CatalogVolumeInfo `json:"volumeInfo"`
	SaleInfo   CatalogSaleInfo   `json:"saleInfo"`
}

type CatalogVolumeInfo struct {
	Title               string               `json:"title"`
	Subtitle            string               `json:"subtitle"`
	Authors             []string             `json:"authors"`
	Publisher           string               `json:"publisher"`
	PublishedDate       string               `json:"publishedDate"`
	Description         string               `json:"description"`
	IndustryIdentifiers []IndustryIdentifier `json:"industryIdentifiers"`
	ReadingModes        ReadingModes         `json:"readingModes"`
	PageCount           int                  `json:"pageCount"`
	PrintedPageCount    int                  `json:"printedPageCount"`
	PrintType           string               `json:"printType"`
	Categories          []string             `json:"categories"`
	Language            string               `json:"language"`
	ImageLinks          map[string]string    `json:"imageLinks"`
}

type ReadingModes struct {
	Text  bool `json:"text"`
	Image bool `json:"image"`
}

type IndustryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type CatalogSaleInfo struct {
	Country     string `json:"country"`
	Saleability string `json:"saleability"`
	IsEbook     bool   `json:"isEbook"`
}
