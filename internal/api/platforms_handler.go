package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListPlatforms returns the active marketplaces.
func (h *Handler) ListPlatforms(c *gin.Context) {
	platforms, err := h.platforms.ListActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list platforms"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"platforms": platforms})
}
