package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
)

// PriceHistoryRepository handles database operations for price history.
// The table is append-only.
type PriceHistoryRepository struct {
	db *sqlx.DB
}

// NewPriceHistoryRepository creates a new price history repository.
func NewPriceHistoryRepository(db *sqlx.DB) *PriceHistoryRepository {
	return &PriceHistoryRepository{db: db}
}

// Append records a price observation for a listing.
func (r *PriceHistoryRepository) Append(ctx context.Context, listingID int64, price float64) error {
	query := `INSERT INTO price_history (listing_id, price) VALUES ($1, $2)`

	if _, err := r.db.ExecContext(ctx, query, listingID, price); err != nil {
		return fmt.Errorf("failed to append price history: %w", err)
	}

	return nil
}

// LatestPrice returns the most recently recorded price for a listing.
// Returns ErrNotFound when the listing has no history yet.
func (r *PriceHistoryRepository) LatestPrice(ctx context.Context, listingID int64) (float64, error) {
	var price float64
	query := `
		SELECT price
		FROM price_history
		WHERE listing_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &price, query, listingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to get latest price: %w", err)
	}

	return price, nil
}

// ListByListing retrieves a listing's most recent price entries, newest first.
func (r *PriceHistoryRepository) ListByListing(
	ctx context.Context, listingID int64, limit int,
) ([]*domain.PriceHistoryEntry, error) {
	var entries []*domain.PriceHistoryEntry
	query := `
		SELECT id, listing_id, price, recorded_at
		FROM price_history
		WHERE listing_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`

	err := r.db.SelectContext(ctx, &entries, query, listingID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list price history: %w", err)
	}

	if entries == nil {
		entries = []*domain.PriceHistoryEntry{}
	}

	return entries, nil
}
