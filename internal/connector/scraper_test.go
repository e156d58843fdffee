package connector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/logger"
)

const resultsPage = `<!DOCTYPE html>
<html><body>
<div class="results">
  <article class="card">
    <h3 class="title">Wireless Headphones Pro</h3>
    <a class="link" href="/item/1">view</a>
    <span class="price">$89.99</span>
    <img class="photo" src="https://cdn.example.com/1.jpg"/>
    <span class="stars">4.5 out of 5 stars</span>
    <span class="reviews">(1,234)</span>
  </article>
  <article class="card">
    <h3 class="title">Budget Headphones</h3>
    <a class="link" href="https://shop.example.com/item/2">view</a>
    <span class="price">$19.99</span>
  </article>
  <article class="card">
    <h3 class="title">Card With No Price</h3>
    <a class="link" href="/item/3">view</a>
    <span class="price">Call for price</span>
  </article>
  <article class="card">
    <h3 class="title">Third Valid Item</h3>
    <a class="link" href="/item/4">view</a>
    <span class="price">$45.00</span>
  </article>
</div>
</body></html>`

func testProfile(baseURL string) Profile {
	return Profile{
		Platform:       "testmart",
		BaseURL:        baseURL,
		SearchPath:     "/search?q=%s",
		Currency:       "USD",
		ResultSelector: "article.card",
		TitleSelector:  "h3.title",
		LinkSelector:   "a.link",
		PriceSelector:  "span.price",
		ImageSelector:  "img.photo",
		RatingSelector: "span.stars",
		ReviewSelector: "span.reviews",
	}
}

func testScraperConfig() Config {
	return Config{
		UserAgent:      "price-tracker-test/1.0",
		RequestTimeout: 5 * time.Second,
	}
}

func TestSearchExtractsListings(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		fmt.Fprint(w, resultsPage)
	}))
	defer server.Close()

	s := NewScraper(testProfile(server.URL), testScraperConfig(), logger.NewNoOp())

	listings, err := s.Search(context.Background(), "wireless headphones", 10)
	require.NoError(t, err)
	assert.Equal(t, "wireless headphones", gotQuery)

	// The card without a parseable price is skipped.
	require.Len(t, listings, 3)

	first := listings[0]
	assert.Equal(t, "Wireless Headphones Pro", first.Title)
	assert.Equal(t, server.URL+"/item/1", first.URL, "relative links resolve against the base URL")
	assert.InDelta(t, 89.99, first.Price, 0.001)
	assert.Equal(t, "USD", first.Currency)
	assert.Equal(t, "https://cdn.example.com/1.jpg", first.ImageURL)
	require.NotNil(t, first.Rating)
	assert.InDelta(t, 4.5, *first.Rating, 0.001)
	require.NotNil(t, first.ReviewCount)
	assert.Equal(t, 1234, *first.ReviewCount)
	assert.True(t, first.Availability)

	assert.Equal(t, "https://shop.example.com/item/2", listings[1].URL, "absolute links pass through")
}

func TestSearchHonorsMaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, resultsPage)
	}))
	defer server.Close()

	s := NewScraper(testProfile(server.URL), testScraperConfig(), logger.NewNoOp())

	listings, err := s.Search(context.Background(), "headphones", 1)
	require.NoError(t, err)
	assert.Len(t, listings, 1)
}

func TestSearchReturnsRequestError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	s := NewScraper(testProfile(server.URL), testScraperConfig(), logger.NewNoOp())

	_, err := s.Search(context.Background(), "headphones", 10)
	require.Error(t, err)
	assert.False(t, IsFatal(err), "HTTP failures stay retryable")
}

func TestRegistryResolvesConnectors(t *testing.T) {
	r := NewRegistry()
	r.Register(NewScraper(testProfile("https://example.com"), testScraperConfig(), logger.NewNoOp()))

	c, err := r.Get("testmart")
	require.NoError(t, err)
	assert.Equal(t, "testmart", c.Platform())

	_, err = r.Get("nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownPlatform)
	assert.True(t, IsFatal(err))
}

func TestDefaultPlatformsMatchProfiles(t *testing.T) {
	platforms := DefaultPlatforms()
	require.NotEmpty(t, platforms)

	reg := NewDefaultRegistry(testScraperConfig(), logger.NewNoOp())
	for _, p := range platforms {
		assert.True(t, p.IsActive)
		_, err := reg.Get(p.Name)
		assert.NoError(t, err, "every seeded platform has a connector")
	}
}
