package status

import (
	"sort"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
)

// PlatformOffers is one platform's listings for a product, cheapest first.
type PlatformOffers struct {
	Platform    string            `json:"platform"`
	Listings    []*domain.Listing `json:"listings"`
	LowestPrice float64           `json:"lowest_price"`
}

// BestDeal is the cheapest available offer, with the savings against the
// most expensive one.
type BestDeal struct {
	Listing    *domain.Listing `json:"listing"`
	Platform   string          `json:"platform"`
	TotalPrice float64         `json:"total_price"`
	Savings    float64         `json:"savings"`
}

// PriceStats summarizes the available offers for a product.
type PriceStats struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	Count int     `json:"count"`
}

// Comparison is the cross-platform price comparison for one product.
type Comparison struct {
	Product        *domain.Product  `json:"product"`
	PlatformPrices []PlatformOffers `json:"platform_prices"`
	BestDeal       *BestDeal        `json:"best_deal,omitempty"`
	PriceStats     *PriceStats      `json:"price_stats,omitempty"`
}

// BuildComparison groups a product's listings per platform and derives the
// best deal and price statistics. Only available listings count; a product
// with none compares to empty platform groups and nil stats.
func BuildComparison(product *domain.Product, listings []*domain.Listing) Comparison {
	cmp := Comparison{
		Product:        product,
		PlatformPrices: []PlatformOffers{},
	}

	available := availableListings(listings)
	if len(available) == 0 {
		return cmp
	}

	byPlatform := make(map[string][]*domain.Listing)
	for _, l := range available {
		byPlatform[l.PlatformName] = append(byPlatform[l.PlatformName], l)
	}

	platforms := make([]string, 0, len(byPlatform))
	for name := range byPlatform {
		platforms = append(platforms, name)
	}
	sort.Strings(platforms)

	best := available[0]
	worst := available[0]
	stats := PriceStats{
		Min:   available[0].Price,
		Max:   available[0].Price,
		Count: len(available),
	}
	var sum float64

	for _, l := range available {
		if l.TotalPrice() < best.TotalPrice() {
			best = l
		}
		if l.TotalPrice() > worst.TotalPrice() {
			worst = l
		}
		if l.Price < stats.Min {
			stats.Min = l.Price
		}
		if l.Price > stats.Max {
			stats.Max = l.Price
		}
		sum += l.Price
	}
	stats.Avg = sum / float64(len(available))

	for _, name := range platforms {
		offers := byPlatform[name]
		sort.Slice(offers, func(i, j int) bool {
			return offers[i].TotalPrice() < offers[j].TotalPrice()
		})
		cmp.PlatformPrices = append(cmp.PlatformPrices, PlatformOffers{
			Platform:    name,
			Listings:    offers,
			LowestPrice: offers[0].TotalPrice(),
		})
	}

	cmp.BestDeal = &BestDeal{
		Listing:    best,
		Platform:   best.PlatformName,
		TotalPrice: best.TotalPrice(),
		Savings:    worst.TotalPrice() - best.TotalPrice(),
	}
	cmp.PriceStats = &stats

	return cmp
}
