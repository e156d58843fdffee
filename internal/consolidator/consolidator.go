// Package consolidator persists raw marketplace observations as canonical
// product, listing, and price history rows.
package consolidator

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/database"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/logger"
)

// Result summarizes one consolidation pass.
type Result struct {
	// ProductIDs are the distinct products the listings resolved to.
	ProductIDs []int64

	// Stored is the number of listings written (created or updated).
	Stored int

	// Skipped is the number of raw listings dropped as unusable.
	Skipped int
}

// Consolidator folds raw listings into the product catalog.
type Consolidator struct {
	products database.ProductRepositoryInterface
	listings database.ListingRepositoryInterface
	prices   database.PriceHistoryRepositoryInterface
	logger   logger.Interface
}

// New creates a consolidator.
func New(
	products database.ProductRepositoryInterface,
	listings database.ListingRepositoryInterface,
	prices database.PriceHistoryRepositoryInterface,
	log logger.Interface,
) *Consolidator {
	return &Consolidator{
		products: products,
		listings: listings,
		prices:   prices,
		logger:   log.WithComponent("consolidator"),
	}
}

// Consolidate persists rawListings for a completed scrape job. A failure on
// one listing is logged and absorbed so the rest still land; the returned
// error is non-nil only when nothing could be stored at all.
func (c *Consolidator) Consolidate(
	ctx context.Context, job *domain.Job, rawListings []domain.RawListing,
) (*Result, error) {
	result := &Result{}
	seen := make(map[int64]struct{})

	var lastErr error
	for i := range rawListings {
		raw := &rawListings[i]

		if raw.Title == "" || raw.URL == "" || raw.Price <= 0 {
			result.Skipped++
			continue
		}

		productID, err := c.storeListing(ctx, job, raw)
		if err != nil {
			lastErr = err
			c.logger.Warn("failed to store listing",
				"job_id", job.ID,
				"url", raw.URL,
				"error", err.Error(),
			)
			continue
		}

		result.Stored++
		if _, ok := seen[productID]; !ok {
			seen[productID] = struct{}{}
			result.ProductIDs = append(result.ProductIDs, productID)
		}
	}

	if result.Stored == 0 && lastErr != nil {
		return result, fmt.Errorf("all listings failed to store: %w", lastErr)
	}

	c.logger.Info("consolidated scrape results",
		"job_id", job.ID,
		"platform", job.PlatformName,
		"stored", result.Stored,
		"skipped", result.Skipped,
		"products", len(result.ProductIDs),
	)

	return result, nil
}

// storeListing resolves the product, upserts the listing, and appends to
// price history when the price actually changed.
func (c *Consolidator) storeListing(
	ctx context.Context, job *domain.Job, raw *domain.RawListing,
) (int64, error) {
	product, err := c.products.GetOrCreate(ctx, &domain.Product{
		Name:     domain.TruncateName(raw.Title),
		ImageURL: raw.ImageURL,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to resolve product: %w", err)
	}

	listing := &domain.Listing{
		ProductID:       product.ID,
		PlatformID:      job.PlatformID,
		Title:           raw.Title,
		URL:             raw.URL,
		ImageURL:        raw.ImageURL,
		Price:           raw.Price,
		Currency:        raw.Currency,
		ShippingCost:    raw.ShippingCost,
		Rating:          raw.Rating,
		ReviewCount:     raw.ReviewCount,
		Availability:    raw.Availability,
		SellerName:      raw.SellerName,
		ConfidenceScore: raw.ConfidenceScore,
	}

	inserted, err := c.listings.Upsert(ctx, listing)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert listing: %w", err)
	}

	if err := c.recordPrice(ctx, listing, inserted); err != nil {
		// The listing itself landed; a history gap is tolerable.
		c.logger.Warn("failed to record price history",
			"listing_id", listing.ID,
			"error", err.Error(),
		)
	}

	return product.ID, nil
}

// recordPrice appends a history entry for new listings, and for existing
// listings only when the observed price differs from the latest entry.
func (c *Consolidator) recordPrice(ctx context.Context, listing *domain.Listing, inserted bool) error {
	if inserted {
		return c.prices.Append(ctx, listing.ID, listing.Price)
	}

	latest, err := c.prices.LatestPrice(ctx, listing.ID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return c.prices.Append(ctx, listing.ID, listing.Price)
		}
		return err
	}

	if latest != listing.Price {
		return c.prices.Append(ctx, listing.ID, listing.Price)
	}
	return nil
}
