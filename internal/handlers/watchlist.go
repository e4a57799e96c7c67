package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cinelog/backend/internal/util"
	"github.com/cinelog/backend/internal/watchlist"
	"github.com/gin-gonic/gin"
)

const (
	actionAdd         = "add"
	actionRemove      = "remove"
	actionMarkWatched = "mark_watched"
)

type toggleRequest struct {
	movieRequest
	Action string `json:"action"`
}

// ToggleWatchlist adds, removes, or marks watched a single movie
// POST /api/v1/watchlist/toggle
func (h *Handlers) ToggleWatchlist(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid request body")
		return
	}
	if req.TMDBID == nil {
		util.RespondBadRequest(c, "tmdb_id is required")
		return
	}

	info := req.movieInfo()
	ctx := c.Request.Context()

	switch req.Action {
	case actionAdd:
		entry, created, err := h.watchlist.Add(ctx, userID, info)
		if err != nil {
			util.RespondInternalError(c, "failed to update watchlist")
			return
		}
		message := fmt.Sprintf("%s added to watchlist.", entry.Title)
		if !created {
			message = fmt.Sprintf("%s is already in your watchlist.", entry.Title)
		}
		c.JSON(http.StatusOK, gin.H{
			"status":       "success",
			"message":      message,
			"in_watchlist": true,
			"watched":      entry.Watched,
		})

	case actionRemove:
		err := h.watchlist.Remove(ctx, userID, *req.TMDBID)
		if errors.Is(err, watchlist.ErrNotFound) {
			util.RespondNotFound(c, "watchlist entry")
			return
		}
		if err != nil {
			util.RespondInternalError(c, "failed to update watchlist")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":       "success",
			"message":      fmt.Sprintf("%s removed from watchlist.", info.Title),
			"in_watchlist": false,
			"watched":      false,
		})

	case actionMarkWatched:
		entry, err := h.watchlist.MarkWatched(ctx, userID, info)
		if err != nil {
			util.RespondInternalError(c, "failed to update watchlist")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":       "success",
			"message":      fmt.Sprintf("%s marked as watched.", entry.Title),
			"in_watchlist": true,
			"watched":      true,
		})

	default:
		util.RespondBadRequest(c, "invalid action")
	}
}

type ratingRequest struct {
	movieRequest
	Rating *int `json:"rating"`
}

// SubmitRating records a 1..5 rating for a movie, creating the
// watchlist entry as watched if needed. A rating of 0 marks the movie
// watched without recording a rating.
// POST /api/v1/watchlist/rating
func (h *Handlers) SubmitRating(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "rating must be an integer")
		return
	}
	if req.TMDBID == nil {
		util.RespondBadRequest(c, "tmdb_id is required")
		return
	}
	if req.Rating == nil {
		util.RespondBadRequest(c, "rating is required")
		return
	}

	info := req.movieInfo()
	ctx := c.Request.Context()

	if *req.Rating == 0 {
		entry, err := h.watchlist.MarkWatched(ctx, userID, info)
		if err != nil {
			util.RespondInternalError(c, "failed to save rating")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":      "success",
			"message":     fmt.Sprintf("%s marked as watched.", entry.Title),
			"watched":     true,
			"user_rating": entry.UserRating,
		})
		return
	}

	entry, err := h.watchlist.Rate(ctx, userID, info, *req.Rating)
	if errors.Is(err, watchlist.ErrInvalidRating) {
		util.RespondBadRequest(c, "rating must be between 1 and 5")
		return
	}
	if err != nil {
		util.RespondInternalError(c, "failed to save rating")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"message":     fmt.Sprintf("Rating (%d/5) saved successfully.", *req.Rating),
		"watched":     true,
		"user_rating": entry.UserRating,
	})
}

// GetWatchlist returns the user's saved movies, most recent first
// GET /api/v1/watchlist
func (h *Handlers) GetWatchlist(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	entries, err := h.watchlist.List(c.Request.Context(), userID)
	if err != nil {
		util.RespondInternalError(c, "failed to load watchlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": entries,
		"count":   len(entries),
	})
}
