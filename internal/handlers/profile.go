package handlers

import (
	"net/http"

	"github.com/cinelog/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// GetProfileStats summarizes the user's watchlist activity
// GET /api/v1/profile/stats
func (h *Handlers) GetProfileStats(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	stats, err := h.watchlist.GetStats(c.Request.Context(), userID)
	if err != nil {
		util.RespondInternalError(c, "failed to load profile stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}
