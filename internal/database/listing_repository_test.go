package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
)

var listingRows = []string{
	"id", "product_id", "platform_id", "title", "url", "image_url",
	"price", "currency", "shipping_cost", "rating", "review_count",
	"availability", "seller_name", "confidence_score",
	"scraped_at", "last_updated", "platform_name",
}

func upsertRow(id int64, inserted bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "scraped_at", "last_updated", "inserted"}).
		AddRow(id, now, now, inserted)
}

func TestListingUpsertInserts(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewListingRepository(sqlxDB)

	mock.ExpectQuery(`INSERT INTO listings .+ ON CONFLICT \(platform_id, url\) DO UPDATE`).
		WillReturnRows(upsertRow(11, true))

	listing := &domain.Listing{
		ProductID:  1,
		PlatformID: 2,
		Title:      "Wireless Headphones Pro",
		URL:        "https://example.com/item/1",
		Price:      89.99,
		Currency:   "USD",
	}

	inserted, err := repo.Upsert(context.Background(), listing)
	require.NoError(t, err)

	assert.True(t, inserted)
	assert.Equal(t, int64(11), listing.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingUpsertUpdatesExisting(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewListingRepository(sqlxDB)

	mock.ExpectQuery(`INSERT INTO listings`).
		WillReturnRows(upsertRow(11, false))

	listing := &domain.Listing{
		ProductID:  1,
		PlatformID: 2,
		Title:      "Wireless Headphones Pro",
		URL:        "https://example.com/item/1",
		Price:      79.99,
		Currency:   "USD",
	}

	inserted, err := repo.Upsert(context.Background(), listing)
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestListingListByProduct(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewListingRepository(sqlxDB)

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM listings l\s+JOIN platforms p .+ WHERE l\.product_id`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(listingRows).
			AddRow(int64(11), int64(1), int64(2), "Cheapest", "https://a.example/1", "",
				59.99, "USD", nil, nil, nil, true, "", nil, now, now, "ebay").
			AddRow(int64(12), int64(1), int64(3), "Pricier", "https://b.example/1", "",
				89.99, "USD", nil, nil, nil, true, "", nil, now, now, "amazon"))

	listings, err := repo.ListByProduct(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, listings, 2)
	assert.Less(t, listings[0].Price, listings[1].Price, "listings come back cheapest first")
	assert.Equal(t, "ebay", listings[0].PlatformName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingListByProductsEmpty(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewListingRepository(sqlxDB)

	listings, err := repo.ListByProducts(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, listings)
	assert.Empty(t, listings)
	assert.NoError(t, mock.ExpectationsWereMet())
}
