package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
)

// ListingRepository handles database operations for listings.
type ListingRepository struct {
	db *sqlx.DB
}

// NewListingRepository creates a new listing repository.
func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// Upsert inserts a listing or, when the (platform_id, url) pair already
// exists, overwrites the mutable fields with the latest observation. The
// conflict target is the unique index, so concurrent upserts of the same
// pair serialize inside PostgreSQL and never produce a duplicate row.
// Returns true when a new row was inserted.
func (r *ListingRepository) Upsert(ctx context.Context, listing *domain.Listing) (bool, error) {
	query := `
		INSERT INTO listings (
			product_id, platform_id, title, url, image_url,
			price, currency, shipping_cost, rating, review_count,
			availability, seller_name, confidence_score
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (platform_id, url) DO UPDATE SET
			product_id       = EXCLUDED.product_id,
			title            = EXCLUDED.title,
			image_url        = EXCLUDED.image_url,
			price            = EXCLUDED.price,
			currency         = EXCLUDED.currency,
			shipping_cost    = EXCLUDED.shipping_cost,
			rating           = EXCLUDED.rating,
			review_count     = EXCLUDED.review_count,
			availability     = EXCLUDED.availability,
			seller_name      = EXCLUDED.seller_name,
			confidence_score = EXCLUDED.confidence_score,
			last_updated     = NOW()
		RETURNING id, scraped_at, last_updated, (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.db.QueryRowContext(
		ctx,
		query,
		listing.ProductID,
		listing.PlatformID,
		listing.Title,
		listing.URL,
		listing.ImageURL,
		listing.Price,
		listing.Currency,
		listing.ShippingCost,
		listing.Rating,
		listing.ReviewCount,
		listing.Availability,
		listing.SellerName,
		listing.ConfidenceScore,
	).Scan(&listing.ID, &listing.ScrapedAt, &listing.LastUpdated, &inserted)

	if err != nil {
		return false, fmt.Errorf("failed to upsert listing: %w", err)
	}

	return inserted, nil
}

const listingColumns = `
	l.id, l.product_id, l.platform_id, l.title, l.url, l.image_url,
	l.price, l.currency, l.shipping_cost, l.rating, l.review_count,
	l.availability, l.seller_name, l.confidence_score,
	l.scraped_at, l.last_updated, p.name AS platform_name
`

// ListByProduct retrieves a product's listings ordered by price.
func (r *ListingRepository) ListByProduct(ctx context.Context, productID int64) ([]*domain.Listing, error) {
	var listings []*domain.Listing
	query := `
		SELECT ` + listingColumns + `
		FROM listings l
		JOIN platforms p ON p.id = l.platform_id
		WHERE l.product_id = $1
		ORDER BY l.price
	`

	err := r.db.SelectContext(ctx, &listings, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}

	if listings == nil {
		listings = []*domain.Listing{}
	}

	return listings, nil
}

// ListByProducts retrieves all listings for the given products.
func (r *ListingRepository) ListByProducts(ctx context.Context, productIDs []int64) ([]*domain.Listing, error) {
	if len(productIDs) == 0 {
		return []*domain.Listing{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT `+listingColumns+`
		FROM listings l
		JOIN platforms p ON p.id = l.platform_id
		WHERE l.product_id IN (?)
		ORDER BY l.product_id, l.price`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var listings []*domain.Listing
	err = r.db.SelectContext(ctx, &listings, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}

	if listings == nil {
		listings = []*domain.Listing{}
	}

	return listings, nil
}
