package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/cache"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/database"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/logger"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/status"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/vision"
)

type fakeDispatcher struct {
	group *domain.GroupRun
	err   error
	spec  *domain.SearchSpec
}

func (f *fakeDispatcher) Dispatch(_ context.Context, spec *domain.SearchSpec) (*domain.GroupRun, error) {
	f.spec = spec
	if f.err != nil {
		return nil, f.err
	}
	if f.group != nil {
		return f.group, nil
	}
	return &domain.GroupRun{
		ID:        "group-abc",
		Query:     spec.QueryText,
		Platforms: spec.Platforms,
		StartedAt: time.Now(),
	}, nil
}

type fakeTracker struct {
	statusResp *status.Response
	statusErr  error
	cached     *status.SearchResults
}

func (f *fakeTracker) Status(context.Context, string) (*status.Response, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.statusResp, nil
}

func (f *fakeTracker) CachedResults(context.Context, string) (*status.SearchResults, error) {
	if f.cached == nil {
		return nil, cache.ErrCacheMiss
	}
	return f.cached, nil
}

type fakeIdentifier struct {
	identification *domain.ProductIdentification
	err            error
}

func (f *fakeIdentifier) Identify(context.Context, []byte, string) (*domain.ProductIdentification, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identification, nil
}

type fakePlatformRepo struct {
	platforms []*domain.Platform
}

func (r *fakePlatformRepo) GetByName(_ context.Context, name string) (*domain.Platform, error) {
	for _, p := range r.platforms {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, database.ErrNotFound
}

func (r *fakePlatformRepo) ListActive(context.Context) ([]*domain.Platform, error) {
	return r.platforms, nil
}

func (r *fakePlatformRepo) Upsert(context.Context, *domain.Platform) error { return nil }

type fakeProductRepo struct {
	products      map[int64]*domain.Product
	searchMatches []*domain.Product
}

func (r *fakeProductRepo) GetOrCreate(context.Context, *domain.Product) (*domain.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) GetByIDs(context.Context, []int64) ([]*domain.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) List(context.Context, database.ListProductsParams) ([]*domain.Product, error) {
	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProductRepo) SearchByName(context.Context, string, int) ([]*domain.Product, error) {
	return r.searchMatches, nil
}

func (r *fakeProductRepo) IncrementSearchCount(context.Context, []int64) error { return nil }

func (r *fakeProductRepo) MostSearched(context.Context, int) ([]*domain.Product, error) {
	return nil, nil
}

type fakeListingRepo struct {
	listings []*domain.Listing
}

func (r *fakeListingRepo) Upsert(context.Context, *domain.Listing) (bool, error) {
	return false, nil
}

func (r *fakeListingRepo) ListByProduct(context.Context, int64) ([]*domain.Listing, error) {
	return r.listings, nil
}

func (r *fakeListingRepo) ListByProducts(context.Context, []int64) ([]*domain.Listing, error) {
	return r.listings, nil
}

type fakePriceRepo struct {
	entries []*domain.PriceHistoryEntry
}

func (r *fakePriceRepo) Append(context.Context, int64, float64) error { return nil }

func (r *fakePriceRepo) LatestPrice(context.Context, int64) (float64, error) {
	return 0, database.ErrNotFound
}

func (r *fakePriceRepo) ListByListing(context.Context, int64, int) ([]*domain.PriceHistoryEntry, error) {
	return r.entries, nil
}

type fakeSearchLogRepo struct {
	entries []*domain.SearchHistoryEntry
}

func (r *fakeSearchLogRepo) Create(_ context.Context, entry *domain.SearchHistoryEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeSearchLogRepo) ListRecent(context.Context, int) ([]*domain.SearchHistoryEntry, error) {
	return r.entries, nil
}

type testDeps struct {
	dispatcher *fakeDispatcher
	tracker    *fakeTracker
	identifier *fakeIdentifier
	platforms  *fakePlatformRepo
	products   *fakeProductRepo
	listings   *fakeListingRepo
	prices     *fakePriceRepo
	searchLog  *fakeSearchLogRepo
}

func newTestRouter(deps *testDeps) http.Handler {
	h := NewHandler(
		deps.dispatcher, deps.tracker, deps.identifier,
		deps.platforms, deps.products, deps.listings, deps.prices, deps.searchLog,
		1<<20, logger.NewNoOp(),
	)
	return SetupRouter(h, logger.NewNoOp())
}

func defaultDeps() *testDeps {
	return &testDeps{
		dispatcher: &fakeDispatcher{},
		tracker:    &fakeTracker{},
		identifier: &fakeIdentifier{
			identification: &domain.ProductIdentification{
				ProductName:    "Sony WH-1000XM5",
				SearchKeywords: []string{"sony", "headphones"},
				Confidence:     domain.ConfidenceHigh,
			},
		},
		platforms: &fakePlatformRepo{platforms: []*domain.Platform{
			{ID: 1, Name: domain.PlatformJumia, IsActive: true},
			{ID: 2, Name: domain.PlatformEbay, IsActive: true},
		}},
		products:  &fakeProductRepo{products: map[int64]*domain.Product{}},
		listings:  &fakeListingRepo{},
		prices:    &fakePriceRepo{},
		searchLog: &fakeSearchLogRepo{},
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	router := newTestRouter(defaultDeps())
	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTextSearchDispatches(t *testing.T) {
	deps := defaultDeps()
	router := newTestRouter(deps)

	w := doJSON(t, router, http.MethodPost, "/api/v1/search", map[string]any{
		"query": "  Wireless Mouse  ",
	})

	assert.Equal(t, http.StatusAccepted, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "processing", body["status"])
	assert.Equal(t, false, body["cached"])
	assert.NotEmpty(t, body["group_id"])

	// The planner trimmed the query and filled in the active platforms.
	require.NotNil(t, deps.dispatcher.spec)
	assert.Equal(t, "Wireless Mouse", deps.dispatcher.spec.QueryText)
	assert.Equal(t, []string{domain.PlatformEbay, domain.PlatformJumia}, deps.dispatcher.spec.Platforms)

	// Search history recorded with the client context.
	require.Len(t, deps.searchLog.entries, 1)
	assert.Equal(t, domain.SearchTypeText, deps.searchLog.entries[0].SearchType)
}

func TestTextSearchCacheHit(t *testing.T) {
	deps := defaultDeps()
	deps.tracker.cached = &status.SearchResults{
		Query:        "wireless mouse",
		TotalResults: 3,
	}
	router := newTestRouter(deps)

	w := doJSON(t, router, http.MethodPost, "/api/v1/search", map[string]any{
		"query": "wireless mouse",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "completed", body["status"])
	assert.Equal(t, true, body["cached"])
	// Nothing dispatched on a cache hit, and nothing logged to history.
	assert.Nil(t, deps.dispatcher.spec)
	assert.Empty(t, deps.searchLog.entries)
}

func TestTextSearchValidation(t *testing.T) {
	router := newTestRouter(defaultDeps())

	w := doJSON(t, router, http.MethodPost, "/api/v1/search", map[string]any{"query": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusBadRequest, w2.Code)
}

func imageRequest(t *testing.T, field string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "product.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake-image-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImageSearch(t *testing.T) {
	deps := defaultDeps()
	router := newTestRouter(deps)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, imageRequest(t, "image"))

	assert.Equal(t, http.StatusAccepted, w.Code)
	body := decodeBody(t, w)
	assert.NotNil(t, body["identification"])

	require.NotNil(t, deps.dispatcher.spec)
	assert.Equal(t, "sony headphones", deps.dispatcher.spec.QueryText)
	require.Len(t, deps.searchLog.entries, 1)
	assert.Equal(t, domain.SearchTypeImage, deps.searchLog.entries[0].SearchType)
}

func TestImageSearchMissingFile(t *testing.T) {
	router := newTestRouter(defaultDeps())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, imageRequest(t, "wrongfield"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImageSearchDisabled(t *testing.T) {
	deps := defaultDeps()
	deps.identifier = &fakeIdentifier{err: vision.ErrDisabled}
	router := newTestRouter(deps)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, imageRequest(t, "image"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestImageSearchIdentificationFailure(t *testing.T) {
	deps := defaultDeps()
	deps.identifier = &fakeIdentifier{err: vision.ErrIdentificationFailed}
	router := newTestRouter(deps)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, imageRequest(t, "image"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSearchStatusNotFound(t *testing.T) {
	deps := defaultDeps()
	deps.tracker.statusErr = status.ErrGroupNotFound
	router := newTestRouter(deps)

	w := doJSON(t, router, http.MethodGet, "/api/v1/search/status/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchStatusOK(t *testing.T) {
	deps := defaultDeps()
	deps.tracker.statusResp = &status.Response{
		GroupID: "group-abc",
		Status:  status.StateProcessing,
		Progress: status.Progress{
			Completed: 1, Total: 2, Percentage: 50,
		},
	}
	router := newTestRouter(deps)

	w := doJSON(t, router, http.MethodGet, "/api/v1/search/status/group-abc", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "processing", body["status"])
}

func TestGetProduct(t *testing.T) {
	deps := defaultDeps()
	deps.products.products[7] = &domain.Product{ID: 7, Name: "Desk Lamp"}
	router := newTestRouter(deps)

	w := doJSON(t, router, http.MethodGet, "/api/v1/products/7", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/products/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/products/notanumber", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func comparableDeps() *testDeps {
	deps := defaultDeps()
	deps.products.products[7] = &domain.Product{ID: 7, Name: "Desk Lamp"}
	deps.listings.listings = []*domain.Listing{
		{
			ID: 1, ProductID: 7, Price: 20, Currency: "USD",
			PlatformName: domain.PlatformJumia, Availability: true,
		},
		{
			ID: 2, ProductID: 7, Price: 18, Currency: "USD",
			PlatformName: domain.PlatformEbay, Availability: true,
		},
	}
	return deps
}

func assertLampComparison(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	var cmp status.Comparison
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cmp))

	require.NotNil(t, cmp.Product)
	assert.Equal(t, int64(7), cmp.Product.ID)
	assert.Len(t, cmp.PlatformPrices, 2)
	require.NotNil(t, cmp.BestDeal)
	assert.Equal(t, 18.0, cmp.BestDeal.TotalPrice)
	assert.Equal(t, domain.PlatformEbay, cmp.BestDeal.Platform)
	assert.InDelta(t, 2.0, cmp.BestDeal.Savings, 0.01)
	require.NotNil(t, cmp.PriceStats)
	assert.Equal(t, 2, cmp.PriceStats.Count)
}

func TestCompareProduct(t *testing.T) {
	router := newTestRouter(comparableDeps())

	w := doJSON(t, router, http.MethodGet, "/api/v1/products/7/compare", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assertLampComparison(t, w)
}

func TestCompareByProductID(t *testing.T) {
	router := newTestRouter(comparableDeps())

	w := doJSON(t, router, http.MethodGet, "/api/v1/compare?product_id=7", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assertLampComparison(t, w)

	w = doJSON(t, router, http.MethodGet, "/api/v1/compare?product_id=999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompareByQuery(t *testing.T) {
	deps := comparableDeps()
	deps.products.searchMatches = []*domain.Product{deps.products.products[7]}
	router := newTestRouter(deps)

	w := doJSON(t, router, http.MethodGet, "/api/v1/compare?query=desk+lamp", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assertLampComparison(t, w)
}

func TestCompareValidation(t *testing.T) {
	router := newTestRouter(comparableDeps())

	// Neither product_id nor query.
	w := doJSON(t, router, http.MethodGet, "/api/v1/compare", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/compare?product_id=notanumber", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// No product matches the query.
	w = doJSON(t, router, http.MethodGet, "/api/v1/compare?query=nosuchthing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPlatforms(t *testing.T) {
	router := newTestRouter(defaultDeps())

	w := doJSON(t, router, http.MethodGet, "/api/v1/platforms", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	platforms, ok := body["platforms"].([]any)
	require.True(t, ok)
	assert.Len(t, platforms, 2)
}

func TestSearchHistoryEndpoint(t *testing.T) {
	deps := defaultDeps()
	deps.searchLog.entries = []*domain.SearchHistoryEntry{
		{ID: 1, Query: "mouse", SearchType: domain.SearchTypeText},
	}
	router := newTestRouter(deps)

	w := doJSON(t, router, http.MethodGet, "/api/v1/search/history", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	searches, ok := body["searches"].([]any)
	require.True(t, ok)
	assert.Len(t, searches, 1)
}
