package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/domain"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/planner"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/status"
	"github.com/jonesrussell/north-cloud/price-tracker/internal/vision"
)

const defaultHistoryLimit = 20

// TextSearch accepts a search request, serves it from cache when a fresh
// result exists, and otherwise dispatches scrape jobs and returns the group
// id to poll.
func (h *Handler) TextSearch(c *gin.Context) {
	var req planner.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	ctx := c.Request.Context()
	active, err := h.activePlatformNames(ctx)
	if err != nil {
		h.logger.Error("failed to list active platforms", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve platforms"})
		return
	}

	spec, err := planner.Plan(req, active)
	if err != nil {
		var verr *planner.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid search request"})
		return
	}

	h.startSearch(c, spec, domain.SearchTypeText, nil)
}

// ImageSearch identifies the product in an uploaded image, then runs the
// derived query through the normal search flow.
func (h *Handler) ImageSearch(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}
	defer file.Close()

	if header.Size > h.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image too large"})
		return
	}

	imageData, err := io.ReadAll(io.LimitReader(file, h.maxUpload))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image"})
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(imageData)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File must be an image"})
		return
	}

	ctx := c.Request.Context()
	identification, err := h.identifier.Identify(ctx, imageData, mimeType)
	if err != nil {
		if errors.Is(err, vision.ErrDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image search is not configured"})
			return
		}
		h.logger.Warn("image identification failed", "error", err.Error())
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Could not identify product in image"})
		return
	}

	active, err := h.activePlatformNames(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve platforms"})
		return
	}

	req := planner.Request{
		Query:     identification.SearchQuery(),
		Platforms: splitPlatforms(c.PostForm("platforms")),
	}
	spec, err := planner.Plan(req, active)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Identification produced no usable query"})
		return
	}

	h.startSearch(c, spec, domain.SearchTypeImage, identification)
}

// startSearch serves a cache hit or dispatches a new group. History records
// only searches that actually reach the scrapers; cache hits stay silent.
func (h *Handler) startSearch(
	c *gin.Context,
	spec *domain.SearchSpec,
	searchType domain.SearchType,
	identification *domain.ProductIdentification,
) {
	ctx := c.Request.Context()
	fingerprint := planner.Fingerprint(spec)

	if cached, err := h.tracker.CachedResults(ctx, fingerprint); err == nil {
		resp := gin.H{
			"status":  status.StateCompleted,
			"cached":  true,
			"query":   spec.QueryText,
			"results": cached,
		}
		if identification != nil {
			resp["identification"] = identification
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	h.recordSearch(c, spec.QueryText, searchType)

	group, err := h.dispatcher.Dispatch(ctx, spec)
	if err != nil {
		h.logger.Error("dispatch failed", "query", spec.QueryText, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start search"})
		return
	}

	resp := gin.H{
		"status":    status.StateProcessing,
		"cached":    false,
		"group_id":  group.ID,
		"query":     group.Query,
		"platforms": group.Platforms,
		"message":   "Search started. Poll the status endpoint for results.",
	}
	if identification != nil {
		resp["identification"] = identification
	}
	c.JSON(http.StatusAccepted, resp)
}

// SearchStatus reports progress for a dispatched group.
func (h *Handler) SearchStatus(c *gin.Context) {
	groupID := c.Param("groupID")

	resp, err := h.tracker.Status(c.Request.Context(), groupID)
	if err != nil {
		if errors.Is(err, status.ErrGroupNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Search group not found or expired"})
			return
		}
		h.logger.Error("status lookup failed", "group_id", groupID, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get search status"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SearchHistory returns the most recent searches.
func (h *Handler) SearchHistory(c *gin.Context) {
	limit := intQuery(c, "limit", defaultHistoryLimit)

	entries, err := h.searchLog.ListRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load search history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"searches": entries})
}

// splitPlatforms parses a comma-separated platform list from a form field.
func splitPlatforms(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
