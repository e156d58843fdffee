package domain

import (
	"time"
	"unicode/utf8"
)

// MaxProductNameLength is the maximum length of a product name.
// Raw listing titles are truncated to this length before product lookup.
const MaxProductNameLength = 500

// Product is the canonical entity aggregated from listings across platforms.
// Identity is an exact match on the (truncated) name; differently-formatted
// titles for the same physical product stay separate products.
type Product struct {
	ID          int64     `db:"id"           json:"id"`
	Name        string    `db:"name"         json:"name"`
	Brand       string    `db:"brand"        json:"brand,omitempty"`
	Category    string    `db:"category"     json:"category,omitempty"`
	Description string    `db:"description"  json:"description,omitempty"`
	ImageURL    string    `db:"image_url"    json:"image_url,omitempty"`
	SearchCount int       `db:"search_count" json:"search_count"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updated_at"`
}

// TruncateName shortens a raw listing title to the product name limit,
// cutting on a rune boundary so the result is always valid UTF-8.
func TruncateName(title string) string {
	if len(title) <= MaxProductNameLength {
		return title
	}
	cut := MaxProductNameLength
	for cut > 0 && !utf8.RuneStart(title[cut]) {
		cut--
	}
	return title[:cut]
}
