package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/database"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/logger"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/status"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/vision"
)

// SearchDispatcher fans a planned search out into scrape jobs.
type SearchDispatcher interface {
	Dispatch(ctx context.Context, spec *domain.SearchSpec) (*domain.GroupRun, error)
}

// StatusTracker reports group progress and serves cached results.
type StatusTracker interface {
	Status(ctx context.Context, groupID string) (*status.Response, error)
	CachedResults(ctx context.Context, fingerprint string) (*status.SearchResults, error)
}

// Handler holds the dependencies the HTTP handlers need.
type Handler struct {
	dispatcher SearchDispatcher
	tracker    StatusTracker
	identifier vision.Identifier
	platforms  database.PlatformRepositoryInterface
	products   database.ProductRepositoryInterface
	listings   database.ListingRepositoryInterface
	prices     database.PriceHistoryRepositoryInterface
	searchLog  database.SearchHistoryRepositoryInterface
	maxUpload  int64
	logger     logger.Interface
}

// NewHandler creates the handler set.
func NewHandler(
	dispatcher SearchDispatcher,
	tracker StatusTracker,
	identifier vision.Identifier,
	platforms database.PlatformRepositoryInterface,
	products database.ProductRepositoryInterface,
	listings database.ListingRepositoryInterface,
	prices database.PriceHistoryRepositoryInterface,
	searchLog database.SearchHistoryRepositoryInterface,
	maxUpload int64,
	log logger.Interface,
) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		tracker:    tracker,
		identifier: identifier,
		platforms:  platforms,
		products:   products,
		listings:   listings,
		prices:     prices,
		searchLog:  searchLog,
		maxUpload:  maxUpload,
		logger:     log.WithComponent("api"),
	}
}

// Health reports service liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// recordSearch appends to search history; failures are logged, not surfaced.
func (h *Handler) recordSearch(c *gin.Context, query string, searchType domain.SearchType) {
	entry := &domain.SearchHistoryEntry{
		Query:      query,
		SearchType: searchType,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	}
	if err := h.searchLog.Create(c.Request.Context(), entry); err != nil {
		h.logger.Warn("failed to record search history", "error", err.Error())
	}
}

// activePlatformNames resolves the default platform set for a search.
func (h *Handler) activePlatformNames(ctx context.Context) ([]string, error) {
	active, err := h.platforms.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(active))
	for i, p := range active {
		names[i] = p.Name
	}
	return names, nil
}
