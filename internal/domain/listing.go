package domain

import "time"

// Listing is one platform's observed offer for a product.
// At most one listing exists per (platform_id, url) pair; re-observing the
// same pair updates the existing row.
type Listing struct {
	ID         int64  `db:"id"          json:"id"`
	ProductID  int64  `db:"product_id"  json:"product_id"`
	PlatformID int64  `db:"platform_id" json:"platform_id"`

	Title    string `db:"title"     json:"title"`
	URL      string `db:"url"       json:"url"`
	ImageURL string `db:"image_url" json:"image_url,omitempty"`

	Price        float64  `db:"price"         json:"price"`
	Currency     string   `db:"currency"      json:"currency"`
	ShippingCost *float64 `db:"shipping_cost" json:"shipping_cost,omitempty"`

	Rating          *float64 `db:"rating"           json:"rating,omitempty"`
	ReviewCount     *int     `db:"review_count"     json:"review_count,omitempty"`
	Availability    bool     `db:"availability"     json:"availability"`
	SellerName      string   `db:"seller_name"      json:"seller_name,omitempty"`
	ConfidenceScore *float64 `db:"confidence_score" json:"confidence_score,omitempty"`

	// PlatformName is populated on reads that join platforms; never written.
	PlatformName string `db:"platform_name" json:"platform,omitempty"`

	ScrapedAt   time.Time `db:"scraped_at"   json:"scraped_at"`
	LastUpdated time.Time `db:"last_updated" json:"last_updated"`
}

// TotalPrice returns the price including shipping when known.
func (l *Listing) TotalPrice() float64 {
	if l.ShippingCost != nil {
		return l.Price + *l.ShippingCost
	}
	return l.Price
}

// PriceHistoryEntry is one append-only price observation for a listing.
// Entries are never mutated or deleted.
type PriceHistoryEntry struct {
	ID         int64     `db:"id"          json:"id"`
	ListingID  int64     `db:"listing_id"  json:"listing_id"`
	Price      float64   `db:"price"       json:"price"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}

// RawListing is the connector's untyped observation of one marketplace offer.
// It carries whatever the platform page exposed; the consolidator turns it
// into Product/Listing/PriceHistoryEntry rows.
type RawListing struct {
	Title           string   `json:"title"`
	URL             string   `json:"url"`
	Price           float64  `json:"price"`
	Currency        string   `json:"currency,omitempty"`
	ImageURL        string   `json:"image_url,omitempty"`
	Rating          *float64 `json:"rating,omitempty"`
	ReviewCount     *int     `json:"review_count,omitempty"`
	Availability    bool     `json:"availability"`
	SellerName      string   `json:"seller_name,omitempty"`
	ShippingCost    *float64 `json:"shipping_cost,omitempty"`
	ConfidenceScore *float64 `json:"confidence_score,omitempty"`
}
