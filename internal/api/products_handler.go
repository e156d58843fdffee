package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/database"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/status"
)

const (
	defaultProductLimit = 20
	maxProductLimit     = 100
	priceHistoryLimit   = 100
)

// ListProducts lists catalog products with optional filters. A q parameter
// switches to name search.
func (h *Handler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()
	limit := intQuery(c, "limit", defaultProductLimit)
	if limit > maxProductLimit {
		limit = maxProductLimit
	}

	if q := c.Query("q"); q != "" {
		products, err := h.products.SearchByName(ctx, q, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search products"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
		return
	}

	products, err := h.products.List(ctx, database.ListProductsParams{
		Brand:    c.Query("brand"),
		Category: c.Query("category"),
		Limit:    limit,
		Offset:   intQuery(c, "offset", 0),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct returns one product with its listings.
func (h *Handler) GetProduct(c *gin.Context) {
	product, ok := h.productFromPath(c)
	if !ok {
		return
	}

	listings, err := h.listings.ListByProduct(c.Request.Context(), product.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load listings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product":  product,
		"listings": listings,
	})
}

// ProductPriceHistory returns per-listing price history for a product.
func (h *Handler) ProductPriceHistory(c *gin.Context) {
	product, ok := h.productFromPath(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	listings, err := h.listings.ListByProduct(ctx, product.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load listings"})
		return
	}

	type listingHistory struct {
		ListingID int64                       `json:"listing_id"`
		Platform  string                      `json:"platform"`
		Title     string                      `json:"title"`
		History   []*domain.PriceHistoryEntry `json:"history"`
	}

	histories := make([]listingHistory, 0, len(listings))
	for _, l := range listings {
		entries, err := h.prices.ListByListing(ctx, l.ID, priceHistoryLimit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load price history"})
			return
		}
		histories = append(histories, listingHistory{
			ListingID: l.ID,
			Platform:  l.PlatformName,
			Title:     l.Title,
			History:   entries,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id": product.ID,
		"name":       product.Name,
		"listings":   histories,
	})
}

// CompareProduct returns the comparison for the product in the path.
func (h *Handler) CompareProduct(c *gin.Context) {
	product, ok := h.productFromPath(c)
	if !ok {
		return
	}
	h.renderComparison(c, product)
}

// Compare resolves a product by id or name query and returns its
// cross-platform price comparison.
func (h *Handler) Compare(c *gin.Context) {
	ctx := c.Request.Context()

	if raw := c.Query("product_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product_id"})
			return
		}
		product, err := h.products.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
			return
		}
		h.renderComparison(c, product)
		return
	}

	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id or query is required"})
		return
	}

	matches, err := h.products.SearchByName(ctx, query, 1)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search products"})
		return
	}
	if len(matches) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No product matches the query"})
		return
	}
	h.renderComparison(c, matches[0])
}

// renderComparison loads the product's listings and writes the comparison.
func (h *Handler) renderComparison(c *gin.Context, product *domain.Product) {
	listings, err := h.listings.ListByProduct(c.Request.Context(), product.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load listings"})
		return
	}

	c.JSON(http.StatusOK, status.BuildComparison(product, listings))
}

// productFromPath loads the product named by the :id path parameter,
// writing the error response itself on failure.
func (h *Handler) productFromPath(c *gin.Context) (*domain.Product, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return nil, false
	}

	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
		return nil, false
	}
	return product, true
}

// intQuery parses an integer query parameter with a fallback.
func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
