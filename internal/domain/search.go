package domain

import "time"

// SearchSpec is a normalized, validated search request.
// Produced by the planner; request-scoped.
type SearchSpec struct {
	QueryText  string   `json:"query"`
	Platforms  []string `json:"platforms"`
	MaxResults int      `json:"max_results"`
}

// SearchType distinguishes how a search was initiated.
type SearchType string

const (
	SearchTypeText  SearchType = "text"
	SearchTypeImage SearchType = "image"
)

// SearchHistoryEntry records one search request for analytics.
type SearchHistoryEntry struct {
	ID         int64      `db:"id"          json:"id"`
	Query      string     `db:"query"       json:"query"`
	SearchType SearchType `db:"search_type" json:"search_type"`
	IPAddress  string     `db:"ip_address"  json:"ip_address,omitempty"`
	UserAgent  string     `db:"user_agent"  json:"user_agent,omitempty"`
	CreatedAt  time.Time  `db:"created_at"  json:"created_at"`
}
