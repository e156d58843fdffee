package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
)

// SearchHistoryRepository handles database operations for search history.
type SearchHistoryRepository struct {
	db *sqlx.DB
}

// NewSearchHistoryRepository creates a new search history repository.
func NewSearchHistoryRepository(db *sqlx.DB) *SearchHistoryRepository {
	return &SearchHistoryRepository{db: db}
}

// Create records a search request.
func (r *SearchHistoryRepository) Create(ctx context.Context, entry *domain.SearchHistoryEntry) error {
	query := `
		INSERT INTO search_history (query, search_type, ip_address, user_agent)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		entry.Query,
		entry.SearchType,
		entry.IPAddress,
		entry.UserAgent,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create search history entry: %w", err)
	}

	return nil
}

// ListRecent retrieves the most recent search history entries.
func (r *SearchHistoryRepository) ListRecent(ctx context.Context, limit int) ([]*domain.SearchHistoryEntry, error) {
	var entries []*domain.SearchHistoryEntry
	query := `
		SELECT id, query, search_type, ip_address, user_agent, created_at
		FROM search_history
		ORDER BY created_at DESC
		LIMIT $1
	`

	err := r.db.SelectContext(ctx, &entries, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list search history: %w", err)
	}

	if entries == nil {
		entries = []*domain.SearchHistoryEntry{}
	}

	return entries, nil
}
