package handlers

import (
	"net/http"

	"github.com/cinelog/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// GetRecommendations returns movies matching the user's genre taste.
// The list is empty when the user has no highly rated movies or the
// catalog is unavailable; this endpoint never fails.
// GET /api/v1/recommendations
func (h *Handlers) GetRecommendations(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	movies := h.engine.Recommend(c.Request.Context(), userID)

	c.JSON(http.StatusOK, gin.H{
		"results": shapeMovies(movies),
	})
}
