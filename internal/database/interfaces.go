package database

import (
	"context"
	"time"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
)

// PlatformRepositoryInterface defines the contract for platform data access.
type PlatformRepositoryInterface interface {
	GetByName(ctx context.Context, name string) (*domain.Platform, error)
	ListActive(ctx context.Context) ([]*domain.Platform, error)
	Upsert(ctx context.Context, platform *domain.Platform) error
}

// ProductRepositoryInterface defines the contract for product data access.
type ProductRepositoryInterface interface {
	GetOrCreate(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Product, error)
	List(ctx context.Context, params ListProductsParams) ([]*domain.Product, error)
	SearchByName(ctx context.Context, query string, limit int) ([]*domain.Product, error)
	IncrementSearchCount(ctx context.Context, ids []int64) error
	MostSearched(ctx context.Context, limit int) ([]*domain.Product, error)
}

// ListingRepositoryInterface defines the contract for listing data access.
type ListingRepositoryInterface interface {
	Upsert(ctx context.Context, listing *domain.Listing) (bool, error)
	ListByProduct(ctx context.Context, productID int64) ([]*domain.Listing, error)
	ListByProducts(ctx context.Context, productIDs []int64) ([]*domain.Listing, error)
}

// PriceHistoryRepositoryInterface defines the contract for price history access.
// Entries are append-only; there is no update or delete.
type PriceHistoryRepositoryInterface interface {
	Append(ctx context.Context, listingID int64, price float64) error
	LatestPrice(ctx context.Context, listingID int64) (float64, error)
	ListByListing(ctx context.Context, listingID int64, limit int) ([]*domain.PriceHistoryEntry, error)
}

// JobRepositoryInterface defines the contract for scrape job data access.
type JobRepositoryInterface interface {
	Create(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	UpdateStatus(ctx context.Context, job *domain.Job) error
	ListByFingerprint(ctx context.Context, fingerprint string, since time.Time) ([]*domain.Job, error)
	List(ctx context.Context, status string, limit, offset int) ([]*domain.Job, error)
}

// SearchHistoryRepositoryInterface defines the contract for search history access.
type SearchHistoryRepositoryInterface interface {
	Create(ctx context.Context, entry *domain.SearchHistoryEntry) error
	ListRecent(ctx context.Context, limit int) ([]*domain.SearchHistoryEntry, error)
}

// ListProductsParams holds filters for product listing.
type ListProductsParams struct {
	Brand    string
	Category string
	Limit    int
	Offset   int
}
