package handlers

import (
	"github.com/cinelog/backend/internal/catalog"
	"github.com/cinelog/backend/internal/errors"
	"github.com/cinelog/backend/internal/logger"
	"github.com/cinelog/backend/internal/middleware"
	"github.com/cinelog/backend/internal/util"
	"github.com/cinelog/backend/internal/watchlist"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// shapedMovie is the wire shape catalog results are reduced to
type shapedMovie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
}

func shapeMovie(m catalog.Movie) shapedMovie {
	return shapedMovie{
		ID:          m.ID,
		Title:       m.DisplayTitle(),
		PosterPath:  m.PosterPath,
		ReleaseDate: m.ReleaseDate,
		Overview:    m.Overview,
		VoteAverage: m.VoteAverage,
	}
}

func shapeMovies(movies []catalog.Movie) []shapedMovie {
	shaped := make([]shapedMovie, len(movies))
	for i, m := range movies {
		shaped[i] = shapeMovie(m)
	}
	return shaped
}

// respondCatalogError maps a catalog failure onto the API error space:
// missing key is a server misconfiguration, an upstream status is 503,
// a deadline is 504, anything else network-shaped is 502.
func respondCatalogError(c *gin.Context, endpoint string, err error) {
	logger.Error("catalog request failed",
		zap.String("endpoint", endpoint),
		zap.Error(err),
	)

	switch {
	case err == catalog.ErrMissingAPIKey:
		middleware.RecordError("catalog_unconfigured", endpoint)
		util.RespondWithAPIError(c, errors.InternalError("movie catalog is not configured"))
	case isStatusError(err):
		middleware.RecordError("catalog_status", endpoint)
		util.RespondWithAPIError(c, errors.ServiceUnavailable("movie catalog"))
	case catalog.IsTimeout(err):
		middleware.RecordError("catalog_timeout", endpoint)
		util.RespondWithAPIError(c, errors.Timeout("movie catalog request"))
	default:
		middleware.RecordError("catalog_network", endpoint)
		util.RespondWithAPIError(c, errors.BadGateway("movie catalog"))
	}
}

func isStatusError(err error) bool {
	_, ok := catalog.StatusCode(err)
	return ok
}

// movieRequest is the movie snapshot clients send with watchlist writes
type movieRequest struct {
	TMDBID      *int64  `json:"tmdb_id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
}

func (r movieRequest) movieInfo() watchlist.MovieInfo {
	info := watchlist.MovieInfo{
		Title:       r.Title,
		PosterPath:  r.PosterPath,
		ReleaseDate: r.ReleaseDate,
		Overview:    r.Overview,
		VoteAverage: r.VoteAverage,
	}
	if r.TMDBID != nil {
		info.TMDBID = *r.TMDBID
	}
	if info.Title == "" {
		info.Title = "Untitled"
	}
	return info
}
