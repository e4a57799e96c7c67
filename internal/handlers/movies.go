package handlers

import (
	"errors"
	"net/http"

	"github.com/cinelog/backend/internal/catalog"
	"github.com/cinelog/backend/internal/logger"
	"github.com/cinelog/backend/internal/util"
	"github.com/cinelog/backend/internal/watchlist"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetMovieDetail returns the full movie record plus the caller's
// watchlist state. Credits and videos are best-effort; the detail
// itself is required.
// GET /api/v1/movies/:id
func (h *Handlers) GetMovieDetail(c *gin.Context) {
	// Anonymous viewers get the page without watchlist state
	userID := util.UserIDFromContext(c)

	movieID, err := util.ParseInt64Param(c.Param("id"))
	if err != nil {
		util.RespondBadRequest(c, "movie id must be an integer")
		return
	}

	ctx := c.Request.Context()

	detail, err := h.catalog.MovieDetails(ctx, movieID)
	if err != nil {
		if code, ok := catalog.StatusCode(err); ok && code == http.StatusNotFound {
			util.RespondNotFound(c, "movie")
			return
		}
		// The page renders with empty sections rather than failing when
		// the catalog is unreachable or unconfigured
		logger.Warn("movie detail fetch failed",
			logger.WithMovieID(movieID),
			zap.Error(err),
		)
		detail = &catalog.MovieDetail{ID: movieID}
	}

	var credits *catalog.Credits
	if credits, err = h.catalog.MovieCredits(ctx, movieID); err != nil {
		logger.Warn("credits fetch failed",
			logger.WithMovieID(movieID),
			zap.Error(err),
		)
		credits = nil
	}

	var videos *catalog.VideoList
	if videos, err = h.catalog.MovieVideos(ctx, movieID); err != nil {
		logger.Warn("videos fetch failed",
			logger.WithMovieID(movieID),
			zap.Error(err),
		)
		videos = nil
	}

	response := gin.H{
		"movie":        detail,
		"credits":      credits,
		"videos":       videos,
		"in_watchlist": false,
		"watched":      false,
		"user_rating":  nil,
	}

	if userID != "" {
		entry, err := h.watchlist.Get(ctx, userID, movieID)
		if err == nil {
			response["in_watchlist"] = true
			response["watched"] = entry.Watched
			response["user_rating"] = entry.UserRating
		} else if !errors.Is(err, watchlist.ErrNotFound) {
			logger.WarnWithFields("watchlist lookup failed", err)
		}
	}

	c.JSON(http.StatusOK, response)
}
