package domain

// IdentificationConfidence grades how sure the vision model is.
type IdentificationConfidence string

const (
	ConfidenceHigh   IdentificationConfidence = "high"
	ConfidenceMedium IdentificationConfidence = "medium"
	ConfidenceLow    IdentificationConfidence = "low"
)

// ProductIdentification is the vision identifier's answer for an image.
type ProductIdentification struct {
	ProductName    string                   `json:"product_name"`
	Brand          string                   `json:"brand,omitempty"`
	Category       string                   `json:"category,omitempty"`
	Features       []string                 `json:"features,omitempty"`
	SearchKeywords []string                 `json:"search_keywords,omitempty"`
	Confidence     IdentificationConfidence `json:"confidence"`
}

// SearchQuery derives the marketplace query from the identification.
// Explicit search keywords win; the product name is the fallback.
func (p *ProductIdentification) SearchQuery() string {
	if len(p.SearchKeywords) > 0 {
		query := p.SearchKeywords[0]
		for _, kw := range p.SearchKeywords[1:] {
			query += " " + kw
		}
		return query
	}
	return p.ProductName
}
