// Package domain provides domain models used across the application.
package domain

import "time"

// Known marketplace names. The platforms table is the source of truth;
// these constants exist for seeding and tests.
const (
	PlatformJumia    = "jumia"
	PlatformKilimall = "kilimall"
	PlatformAlibaba  = "alibaba"
	PlatformAmazon   = "amazon"
	PlatformEbay     = "ebay"
)

// Platform represents a marketplace that can be scraped.
type Platform struct {
	ID        int64     `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	BaseURL   string    `db:"base_url"   json:"base_url"`
	IsActive  bool      `db:"is_active"  json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
