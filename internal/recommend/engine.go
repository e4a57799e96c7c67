package recommend

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/cinelog/backend/internal/catalog"
	"github.com/cinelog/backend/internal/logger"
	"github.com/cinelog/backend/internal/metrics"
	"github.com/cinelog/backend/internal/models"
	"github.com/cinelog/backend/internal/telemetry"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// Ratings that count as a strong signal
	minAffinityRating = 4

	topGenreCount      = 5
	maxRecommendations = 12

	discoverSortBy       = "vote_average.desc"
	discoverMinVoteCount = 100
	discoverMaxPage      = 5
	discoverMaxYearsBack = 3
)

// catalogAPI is the slice of the catalog client the engine uses
type catalogAPI interface {
	MovieDetails(ctx context.Context, id int64) (*catalog.MovieDetail, error)
	Discover(ctx context.Context, p catalog.DiscoverParams) (*catalog.SearchResponse, error)
}

// Engine builds personalized discovery queries from a user's highly
// rated watchlist entries. It degrades to an empty result on upstream
// failure; callers never see an error from Recommend.
type Engine struct {
	catalog catalogAPI
	db      *gorm.DB
	region  string

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithRand injects a seeded source, mainly for tests
func WithRand(rng *rand.Rand) EngineOption {
	return func(e *Engine) { e.rng = rng }
}

// WithNow overrides the clock used for release-year windows
func WithNow(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a recommendation engine. region biases discovery
// toward one origin country and may be empty.
func NewEngine(api catalogAPI, db *gorm.DB, region string, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog: api,
		db:      db,
		region:  region,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend returns up to maxRecommendations movies matching the user's
// strongest genre affinities. An empty slice means no signal or a failed
// upstream query; both are normal outcomes.
func (e *Engine) Recommend(ctx context.Context, userID string) []catalog.Movie {
	ctx, span := telemetry.TraceRecommendation(ctx, userID)
	m := metrics.Get()
	start := time.Now()
	defer func() {
		m.RecommendationDuration.WithLabelValues().Observe(time.Since(start).Seconds())
		telemetry.EndSpan(span, nil)
	}()

	genreIDs := e.topGenres(ctx, userID)
	if len(genreIDs) == 0 {
		m.RecommendationsTotal.WithLabelValues("no_signal").Inc()
		return []catalog.Movie{}
	}

	params := e.discoverParams(genreIDs)
	resp, err := e.catalog.Discover(ctx, params)
	if err != nil {
		logger.Warn("discovery query failed",
			logger.WithUserID(userID),
			zap.Error(err),
		)
		m.RecommendationsTotal.WithLabelValues("error").Inc()
		return []catalog.Movie{}
	}

	// An empty page can just mean the year/region filters were too
	// narrow, or the random page overshot. Try once more without them.
	if len(resp.Results) == 0 {
		broadened := params
		broadened.PrimaryReleaseYear = 0
		broadened.WithOriginCountry = ""
		broadened.Page = 0
		resp, err = e.catalog.Discover(ctx, broadened)
		if err != nil {
			logger.Warn("broadened discovery query failed",
				logger.WithUserID(userID),
				zap.Error(err),
			)
			m.RecommendationsTotal.WithLabelValues("error").Inc()
			return []catalog.Movie{}
		}
	}

	results := resp.Results
	if len(results) > maxRecommendations {
		results = results[:maxRecommendations]
	}
	m.RecommendationsTotal.WithLabelValues("ok").Inc()
	return results
}

// topGenres computes the user's strongest genres: for each genre, the
// number of distinct highly rated movies carrying it, taking the top
// five. Detail fetch failures skip that movie rather than aborting.
func (e *Engine) topGenres(ctx context.Context, userID string) []int64 {
	var entries []models.WatchlistEntry
	err := e.db.WithContext(ctx).
		Where("user_id = ? AND user_rating >= ?", userID, minAffinityRating).
		Find(&entries).Error
	if err != nil {
		logger.ErrorWithFields("failed to load rated watchlist entries", err)
		return nil
	}
	if len(entries) == 0 {
		return nil
	}

	// genre name -> distinct movie ids carrying it
	genreMovies := make(map[string]map[int64]struct{})
	for _, entry := range entries {
		detail, err := e.catalog.MovieDetails(ctx, entry.TMDBID)
		if err != nil {
			logger.Warn("skipping rated movie, detail fetch failed",
				logger.WithMovieID(entry.TMDBID),
				zap.Error(err),
			)
			continue
		}
		for _, genre := range detail.Genres {
			if genreMovies[genre.Name] == nil {
				genreMovies[genre.Name] = make(map[int64]struct{})
			}
			genreMovies[genre.Name][entry.TMDBID] = struct{}{}
		}
	}

	type genreScore struct {
		name  string
		count int
	}
	scores := make([]genreScore, 0, len(genreMovies))
	for name, movies := range genreMovies {
		scores = append(scores, genreScore{name: name, count: len(movies)})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].count != scores[j].count {
			return scores[i].count > scores[j].count
		}
		return scores[i].name < scores[j].name
	})

	// Rank first, then map. A name outside the id table still occupies
	// its top-five slot; it does not promote a weaker genre.
	if len(scores) > topGenreCount {
		scores = scores[:topGenreCount]
	}
	ids := make([]int64, 0, len(scores))
	for _, s := range scores {
		if id, ok := GenreIDMap[s.name]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (e *Engine) discoverParams(genreIDs []int64) catalog.DiscoverParams {
	e.mu.Lock()
	page := 1 + e.rng.Intn(discoverMaxPage)
	yearsBack := e.rng.Intn(discoverMaxYearsBack + 1)
	e.mu.Unlock()

	return catalog.DiscoverParams{
		SortBy:             discoverSortBy,
		VoteCountGTE:       discoverMinVoteCount,
		Page:               page,
		PrimaryReleaseYear: e.now().Year() - yearsBack,
		WithGenres:         genreIDs,
		WithOriginCountry:  e.region,
	}
}
