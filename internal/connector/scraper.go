package connector

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	colly "github.com/gocolly/colly/v2"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/logger"
)

// Profile describes how to scrape one marketplace's search results page.
// Selectors are goquery expressions evaluated relative to ResultSelector.
type Profile struct {
	// Platform is the marketplace name ("jumia", "amazon", ...).
	Platform string
	// BaseURL prefixes relative listing links.
	BaseURL string
	// SearchPath is the search URL template; %s receives the encoded query.
	SearchPath string
	// Currency is the marketplace's listing currency.
	Currency string

	// ResultSelector matches one product card.
	ResultSelector string
	// Field selectors, evaluated inside a product card. Empty selectors
	// mean the marketplace does not expose that field on the results page.
	TitleSelector    string
	LinkSelector     string
	PriceSelector    string
	ImageSelector    string
	RatingSelector   string
	ReviewSelector   string
	ShippingSelector string
	SellerSelector   string
}

// SearchURL builds the search results URL for a query.
func (p *Profile) SearchURL(query string) string {
	return p.BaseURL + fmt.Sprintf(p.SearchPath, url.QueryEscape(query))
}

// Config holds shared scraper settings.
type Config struct {
	// UserAgent is sent on every request.
	UserAgent string
	// RequestTimeout bounds one search request.
	RequestTimeout time.Duration
	// RequestDelay is the politeness delay between requests to one host.
	RequestDelay time.Duration
}

// Scraper is a colly-backed Connector driven by a Profile.
type Scraper struct {
	profile Profile
	cfg     Config
	logger  logger.Interface
}

// NewScraper creates a connector for one marketplace profile.
func NewScraper(profile Profile, cfg Config, log logger.Interface) *Scraper {
	return &Scraper{
		profile: profile,
		cfg:     cfg,
		logger:  log.WithComponent("connector").With("platform", profile.Platform),
	}
}

// Platform returns the marketplace name this connector scrapes.
func (s *Scraper) Platform() string {
	return s.profile.Platform
}

// Search scrapes the marketplace's search results page.
// Cards that fail extraction are logged and skipped; they never fail the
// whole search. A request-level failure is returned to the caller and is
// retryable unless wrapped as fatal.
func (s *Scraper) Search(ctx context.Context, query string, maxResults int) ([]domain.RawListing, error) {
	c := colly.NewCollector(
		colly.ParseHTTPErrorResponse(),
		colly.IgnoreRobotsTxt(),
		colly.UserAgent(s.cfg.UserAgent),
	)
	c.SetRequestTimeout(s.cfg.RequestTimeout)

	if s.cfg.RequestDelay > 0 {
		if err := c.Limit(&colly.LimitRule{
			DomainGlob: "*",
			Delay:      s.cfg.RequestDelay,
		}); err != nil {
			return nil, fmt.Errorf("failed to set rate limit: %w", err)
		}
	}

	// Abort the request when the job context expires mid-flight.
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	var (
		listings []domain.RawListing
		scrapeErr error
	)

	c.OnHTML(s.profile.ResultSelector, func(e *colly.HTMLElement) {
		if len(listings) >= maxResults {
			return
		}

		listing, err := s.extract(e)
		if err != nil {
			s.logger.Debug("skipping result card", "error", err.Error())
			return
		}

		listings = append(listings, listing)
	})

	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = fmt.Errorf("request to %s failed (status %d): %w",
			r.Request.URL, r.StatusCode, err)
	})

	searchURL := s.profile.SearchURL(query)
	s.logger.Info("scraping search results", "url", searchURL, "max_results", maxResults)

	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", searchURL, err)
	}
	c.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("search cancelled: %w", ctxErr)
	}
	if scrapeErr != nil {
		return nil, scrapeErr
	}

	s.logger.Info("scrape finished", "results", len(listings))
	return listings, nil
}

// extract pulls one raw listing out of a product card element.
func (s *Scraper) extract(e *colly.HTMLElement) (domain.RawListing, error) {
	title := strings.TrimSpace(e.ChildText(s.profile.TitleSelector))
	if title == "" {
		return domain.RawListing{}, errors.New("missing title")
	}

	href := e.ChildAttr(s.profile.LinkSelector, "href")
	if href == "" {
		return domain.RawListing{}, errors.New("missing link")
	}
	listingURL := s.absoluteURL(href)

	price, err := ParsePrice(e.ChildText(s.profile.PriceSelector))
	if err != nil {
		return domain.RawListing{}, fmt.Errorf("bad price: %w", err)
	}

	listing := domain.RawListing{
		Title:        title,
		URL:          listingURL,
		Price:        price,
		Currency:     s.profile.Currency,
		Availability: true,
	}

	if s.profile.ImageSelector != "" {
		// Lazy-loaded images keep the real source in data-src.
		img := e.ChildAttr(s.profile.ImageSelector, "data-src")
		if img == "" {
			img = e.ChildAttr(s.profile.ImageSelector, "src")
		}
		listing.ImageURL = img
	}
	if s.profile.RatingSelector != "" {
		listing.Rating = ParseRating(e.ChildText(s.profile.RatingSelector))
	}
	if s.profile.ReviewSelector != "" {
		listing.ReviewCount = ParseReviewCount(e.ChildText(s.profile.ReviewSelector))
	}
	if s.profile.ShippingSelector != "" {
		listing.ShippingCost = ParseShipping(e.ChildText(s.profile.ShippingSelector))
	}
	if s.profile.SellerSelector != "" {
		listing.SellerName = strings.TrimSpace(e.ChildText(s.profile.SellerSelector))
	}

	return listing, nil
}

// absoluteURL resolves a possibly-relative listing link against the base URL.
func (s *Scraper) absoluteURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return s.profile.BaseURL + href
}
