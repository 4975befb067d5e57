package entities

import "time"

// FileReference points at an object-storage blob belonging to a part.
type FileReference struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// PartQuote is one priced option for manufacturing a part. Exactly one may be
// selected per part.
type PartQuote struct {
	ID         string    `json:"id"`
	UnitPrice  int64     `json:"unit_price_cents"`
	SubTotal   int64     `json:"sub_total_cents"`
	Workdays   int       `json:"workdays"`
	ValidUntil time.Time `json:"valid_until"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Part is a manufacturable component belonging to exactly one quotation.
// Mutation is forbidden once its quotation is Paid or later.
type Part struct {
	ID                  string         `json:"id"`
	ClientID            string         `json:"client_id"`
	ProjectID           string         `json:"project_id"`
	QuotationID         string         `json:"quotation_id"`
	ModelFile           FileReference  `json:"model_file"`
	RenderFile          FileReference  `json:"render_file"`
	DrawingFile         *FileReference `json:"drawing_file,omitempty"`
	Process             string         `json:"process"`
	Material            string         `json:"material"`
	Tolerance           string         `json:"tolerance"`
	Quantity            int            `json:"quantity"`
	SelectedPartQuoteID *string        `json:"selected_part_quote_id,omitempty"`
	PartQuotes          []PartQuote    `json:"part_quotes,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// SelectedQuote returns the selected part quote, if any. The selected id, when
// set, always references an entry of PartQuotes.
func (p *Part) SelectedQuote() (*PartQuote, bool) {
	if p.SelectedPartQuoteID == nil {
		return nil, false
	}
	for i := range p.PartQuotes {
		if p.PartQuotes[i].ID == *p.SelectedPartQuoteID {
			return &p.PartQuotes[i], true
		}
	}
	return nil, false
}

// UpdatablePart describes a partial update to a part. Patch fields distinguish
// clearing a value from leaving it unchanged; SelectedPartQuoteID in
// particular must support an explicit clear back to none.
type UpdatablePart struct {
	ID                  string
	QuotationID         string
	Process             *string
	Material            *string
	Tolerance           *string
	Quantity            *int
	DrawingFile         Patch[FileReference]
	SelectedPartQuoteID Patch[string]
	PartQuotes          Patch[[]PartQuote]
}
