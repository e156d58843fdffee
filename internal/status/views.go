package status

import (
	"time"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
)

// LowestPrice identifies the cheapest offer for a product across platforms.
// Comparison uses the total price including shipping when known.
type LowestPrice struct {
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Platform string  `json:"platform"`
}

// PriceRange summarizes the spread of listing prices for a product.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// ProductView is a product with its listings and derived price figures.
type ProductView struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Brand       string            `json:"brand,omitempty"`
	Category    string            `json:"category,omitempty"`
	ImageURL    string            `json:"image_url,omitempty"`
	Listings    []*domain.Listing `json:"listings"`
	LowestPrice *LowestPrice      `json:"lowest_price,omitempty"`
	PriceRange  *PriceRange       `json:"price_range,omitempty"`
}

// SearchResults is the consolidated payload for a finished search. It is
// what gets cached under the fingerprint's result key.
type SearchResults struct {
	Query        string        `json:"query"`
	Platforms    []string      `json:"platforms"`
	TotalResults int           `json:"total_results"`
	Products     []ProductView `json:"products"`
	CompletedAt  time.Time     `json:"completed_at"`
}

// BuildProductView assembles the view for one product from its listings.
func BuildProductView(product *domain.Product, listings []*domain.Listing) ProductView {
	view := ProductView{
		ID:       product.ID,
		Name:     product.Name,
		Brand:    product.Brand,
		Category: product.Category,
		ImageURL: product.ImageURL,
		Listings: listings,
	}

	if len(listings) == 0 {
		view.Listings = []*domain.Listing{}
		return view
	}

	// Price figures consider only listings that can actually be bought.
	available := availableListings(listings)
	if len(available) == 0 {
		return view
	}

	lowest := available[0]
	rng := PriceRange{Min: available[0].Price, Max: available[0].Price}
	var sum float64

	for _, l := range available {
		if l.TotalPrice() < lowest.TotalPrice() {
			lowest = l
		}
		if l.Price < rng.Min {
			rng.Min = l.Price
		}
		if l.Price > rng.Max {
			rng.Max = l.Price
		}
		sum += l.Price
	}
	rng.Avg = sum / float64(len(available))

	view.LowestPrice = &LowestPrice{
		Price:    lowest.TotalPrice(),
		Currency: lowest.Currency,
		Platform: lowest.PlatformName,
	}
	view.PriceRange = &rng

	return view
}

// availableListings filters out listings marked unavailable.
func availableListings(listings []*domain.Listing) []*domain.Listing {
	out := make([]*domain.Listing, 0, len(listings))
	for _, l := range listings {
		if l.Availability {
			out = append(out, l)
		}
	}
	return out
}

// groupListingsByProduct indexes listings by their product id.
func groupListingsByProduct(listings []*domain.Listing) map[int64][]*domain.Listing {
	byProduct := make(map[int64][]*domain.Listing)
	for _, l := range listings {
		byProduct[l.ProductID] = append(byProduct[l.ProductID], l)
	}
	return byProduct
}
