package handlers

import (
	"net/http"
	"strings"

	"github.com/cinelog/backend/internal/util"
	"github.com/gin-gonic/gin"
)

const suggestLimit = 6

// SearchMovies runs a catalog title search
// GET /api/v1/search?q=...&page=N
func (h *Handlers) SearchMovies(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusOK, gin.H{"results": []shapedMovie{}})
		return
	}
	page := util.ParseInt(c.Query("page"), 1)

	resp, err := h.catalog.SearchMovies(c.Request.Context(), query, page)
	if err != nil {
		respondCatalogError(c, "search", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results":       shapeMovies(resp.Results),
		"page":          resp.Page,
		"total_pages":   resp.TotalPages,
		"total_results": resp.TotalResults,
	})
}

// SearchSuggest returns a short typeahead list. Unlike SearchMovies it
// never surfaces upstream failures; an empty list keeps the search box
// responsive while the catalog misbehaves.
// GET /api/v1/search/suggest?q=...
func (h *Handlers) SearchSuggest(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if len(query) < 2 {
		c.JSON(http.StatusOK, gin.H{"results": []shapedMovie{}})
		return
	}

	resp, err := h.catalog.SearchMovies(c.Request.Context(), query, 1)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"results": []shapedMovie{}})
		return
	}

	results := resp.Results
	if len(results) > suggestLimit {
		results = results[:suggestLimit]
	}
	c.JSON(http.StatusOK, gin.H{"results": shapeMovies(results)})
}
