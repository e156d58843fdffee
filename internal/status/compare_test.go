package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
)

func TestBuildComparisonGroupsByPlatform(t *testing.T) {
	product := &domain.Product{ID: 1, Name: "Keychron K2"}
	listings := []*domain.Listing{
		{
			ID: 1, ProductID: 1, Price: 95, Currency: "USD",
			PlatformName: domain.PlatformEbay, Availability: true,
		},
		{
			ID: 2, ProductID: 1, Price: 80, Currency: "USD",
			PlatformName: domain.PlatformEbay, ShippingCost: float(25), Availability: true,
		},
		{
			ID: 3, ProductID: 1, Price: 99, Currency: "USD",
			PlatformName: domain.PlatformJumia, Availability: true,
		},
	}

	cmp := BuildComparison(product, listings)

	require.Len(t, cmp.PlatformPrices, 2)
	// Alphabetical platform order, cheapest total first within a platform.
	assert.Equal(t, domain.PlatformEbay, cmp.PlatformPrices[0].Platform)
	assert.Equal(t, 95.0, cmp.PlatformPrices[0].LowestPrice)
	assert.Equal(t, int64(1), cmp.PlatformPrices[0].Listings[0].ID)
	assert.Equal(t, domain.PlatformJumia, cmp.PlatformPrices[1].Platform)

	// 95 flat beats 80+25 shipping and 99.
	require.NotNil(t, cmp.BestDeal)
	assert.Equal(t, domain.PlatformEbay, cmp.BestDeal.Platform)
	assert.Equal(t, 95.0, cmp.BestDeal.TotalPrice)
	assert.InDelta(t, 10.0, cmp.BestDeal.Savings, 0.01)

	require.NotNil(t, cmp.PriceStats)
	assert.Equal(t, 80.0, cmp.PriceStats.Min)
	assert.Equal(t, 99.0, cmp.PriceStats.Max)
	assert.InDelta(t, 91.33, cmp.PriceStats.Avg, 0.01)
	assert.Equal(t, 3, cmp.PriceStats.Count)
}

func TestBuildComparisonIgnoresUnavailable(t *testing.T) {
	product := &domain.Product{ID: 1, Name: "Keychron K2"}
	listings := []*domain.Listing{
		{
			ID: 1, ProductID: 1, Price: 10, Currency: "USD",
			PlatformName: domain.PlatformEbay, Availability: false,
		},
		{
			ID: 2, ProductID: 1, Price: 60, Currency: "USD",
			PlatformName: domain.PlatformJumia, Availability: true,
		},
	}

	cmp := BuildComparison(product, listings)

	require.Len(t, cmp.PlatformPrices, 1)
	assert.Equal(t, domain.PlatformJumia, cmp.PlatformPrices[0].Platform)
	require.NotNil(t, cmp.BestDeal)
	assert.Equal(t, 60.0, cmp.BestDeal.TotalPrice)
	assert.Equal(t, 0.0, cmp.BestDeal.Savings)
	require.NotNil(t, cmp.PriceStats)
	assert.Equal(t, 1, cmp.PriceStats.Count)
}

func TestBuildComparisonNoAvailableListings(t *testing.T) {
	product := &domain.Product{ID: 1, Name: "Keychron K2"}
	listings := []*domain.Listing{
		{
			ID: 1, ProductID: 1, Price: 10, Currency: "USD",
			PlatformName: domain.PlatformEbay, Availability: false,
		},
	}

	cmp := BuildComparison(product, listings)

	assert.NotNil(t, cmp.PlatformPrices)
	assert.Empty(t, cmp.PlatformPrices)
	assert.Nil(t, cmp.BestDeal)
	assert.Nil(t, cmp.PriceStats)
}
