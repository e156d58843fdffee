package connector

import (
	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/logger"
)

// Profiles for the supported marketplaces. Selectors track each site's
// search results markup and need occasional upkeep when a site redesigns.
var marketplaceProfiles = []Profile{
	{
		Platform:       domain.PlatformJumia,
		BaseURL:        "https://www.jumia.com.ng",
		SearchPath:     "/catalog/?q=%s",
		Currency:       "NGN",
		ResultSelector: "article.prd",
		TitleSelector:  "h3.name",
		LinkSelector:   "a.core",
		PriceSelector:  "div.prc",
		ImageSelector:  "img.img",
		RatingSelector: "div.stars",
		ReviewSelector: "div.rev",
	},
	{
		Platform:       domain.PlatformKilimall,
		BaseURL:        "https://www.kilimall.co.ke",
		SearchPath:     "/new/search?keywords=%s",
		Currency:       "KES",
		ResultSelector: "div.goods-item",
		TitleSelector:  "div.goods-name",
		LinkSelector:   "a",
		PriceSelector:  "span.goods-price",
		ImageSelector:  "img",
		RatingSelector: "div.rating",
	},
	{
		Platform:       domain.PlatformAlibaba,
		BaseURL:        "https://www.alibaba.com",
		SearchPath:     "/trade/search?SearchText=%s",
		Currency:       "USD",
		ResultSelector: "div.organic-list-offer",
		TitleSelector:  "h2.search-card-e-title",
		LinkSelector:   "a.organic-list-offer-outter",
		PriceSelector:  "span.search-card-e-price-main",
		ImageSelector:  "img.search-card-e-pic__img",
		SellerSelector: "a.search-card-e-company",
	},
	{
		Platform:       domain.PlatformAmazon,
		BaseURL:        "https://www.amazon.com",
		SearchPath:     "/s?k=%s",
		Currency:       "USD",
		ResultSelector: "div[data-component-type='s-search-result']",
		TitleSelector:  "h2.s-line-clamp-2",
		LinkSelector:   "a.a-link-normal",
		PriceSelector:  "span.a-price-whole",
		ImageSelector:  "img.s-image",
		RatingSelector: "span.a-icon-alt",
		ReviewSelector: "span.a-size-base",
	},
	{
		Platform:         domain.PlatformEbay,
		BaseURL:          "https://www.ebay.com",
		SearchPath:       "/sch/i.html?_nkw=%s",
		Currency:         "USD",
		ResultSelector:   "div.s-item__wrapper",
		TitleSelector:    "div.s-item__title",
		LinkSelector:     "a.s-item__link",
		PriceSelector:    "span.s-item__price",
		ImageSelector:    "img.s-item__image-img",
		ShippingSelector: "span.s-item__shipping",
		SellerSelector:   "span.s-item__seller-info-text",
	},
}

// DefaultPlatforms returns catalog rows for every supported marketplace,
// used to seed the platforms table.
func DefaultPlatforms() []*domain.Platform {
	platforms := make([]*domain.Platform, len(marketplaceProfiles))
	for i, profile := range marketplaceProfiles {
		platforms[i] = &domain.Platform{
			Name:     profile.Platform,
			BaseURL:  profile.BaseURL,
			IsActive: true,
		}
	}
	return platforms
}

// NewDefaultRegistry builds a registry with connectors for every supported
// marketplace.
func NewDefaultRegistry(cfg Config, log logger.Interface) *Registry {
	registry := NewRegistry()
	for _, profile := range marketplaceProfiles {
		registry.Register(NewScraper(profile, cfg, log))
	}
	return registry
}
