package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/cinelog/backend/internal/catalog"
	"github.com/cinelog/backend/internal/logger"
	"github.com/cinelog/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	logger.Initialize("error", os.DevNull)
	os.Exit(m.Run())
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.WatchlistEntry{}))
	return db
}

type fakeCatalog struct {
	details       map[int64]*catalog.MovieDetail
	detailErrs    map[int64]error
	detailCalls   int
	discoverPages [][]catalog.Movie
	discoverErr   error
	discoverCalls []catalog.DiscoverParams
}

func (f *fakeCatalog) MovieDetails(ctx context.Context, id int64) (*catalog.MovieDetail, error) {
	f.detailCalls++
	if err, ok := f.detailErrs[id]; ok {
		return nil, err
	}
	if d, ok := f.details[id]; ok {
		return d, nil
	}
	return nil, &catalog.StatusError{Code: 404}
}

func (f *fakeCatalog) Discover(ctx context.Context, p catalog.DiscoverParams) (*catalog.SearchResponse, error) {
	f.discoverCalls = append(f.discoverCalls, p)
	if f.discoverErr != nil {
		return nil, f.discoverErr
	}
	call := len(f.discoverCalls) - 1
	if call >= len(f.discoverPages) {
		return &catalog.SearchResponse{Page: 1}, nil
	}
	return &catalog.SearchResponse{Page: 1, Results: f.discoverPages[call]}, nil
}

func detailWithGenres(id int64, genres ...string) *catalog.MovieDetail {
	d := &catalog.MovieDetail{ID: id, Title: fmt.Sprintf("movie-%d", id)}
	for _, name := range genres {
		d.Genres = append(d.Genres, catalog.Genre{ID: GenreIDMap[name], Name: name})
	}
	return d
}

func rated(userID string, tmdbID int64, rating int) *models.WatchlistEntry {
	return &models.WatchlistEntry{
		UserID:     userID,
		TMDBID:     tmdbID,
		Title:      fmt.Sprintf("movie-%d", tmdbID),
		Watched:    true,
		UserRating: &rating,
	}
}

func newTestEngine(api catalogAPI, db *gorm.DB) *Engine {
	return NewEngine(api, db, "IN",
		WithRand(rand.New(rand.NewSource(1))),
		WithNow(func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }),
	)
}

func TestRecommendNoRatedEntries(t *testing.T) {
	db := setupDB(t)
	user := &models.User{Email: "a@b.c", Username: "a"}
	require.NoError(t, db.Create(user).Error)

	// A low rating is not a signal
	require.NoError(t, db.Create(rated(user.ID, 10, 3)).Error)

	fc := &fakeCatalog{}
	engine := newTestEngine(fc, db)

	results := engine.Recommend(context.Background(), user.ID)

	assert.Empty(t, results)
	assert.Zero(t, fc.detailCalls, "no detail fetches without rated entries")
	assert.Empty(t, fc.discoverCalls, "no discovery query without genre signal")
}

func TestRecommendGenreAffinity(t *testing.T) {
	db := setupDB(t)
	user := &models.User{Email: "a@b.c", Username: "a"}
	require.NoError(t, db.Create(user).Error)

	require.NoError(t, db.Create(rated(user.ID, 1, 5)).Error)
	require.NoError(t, db.Create(rated(user.ID, 2, 4)).Error)
	require.NoError(t, db.Create(rated(user.ID, 3, 5)).Error)

	fc := &fakeCatalog{
		details: map[int64]*catalog.MovieDetail{
			1: detailWithGenres(1, "Action", "Thriller"),
			2: detailWithGenres(2, "Action"),
			3: detailWithGenres(3, "Comedy"),
		},
		discoverPages: [][]catalog.Movie{
			{{ID: 100, Title: "Pick"}},
		},
	}
	engine := newTestEngine(fc, db)

	results := engine.Recommend(context.Background(), user.ID)

	require.Len(t, results, 1)
	assert.Equal(t, int64(100), results[0].ID)

	require.Len(t, fc.discoverCalls, 1)
	params := fc.discoverCalls[0]
	// Action appears on two distinct movies, Comedy and Thriller on one
	// each; ties order by name
	assert.Equal(t, []int64{28, 35, 53}, params.WithGenres)
	assert.Equal(t, "vote_average.desc", params.SortBy)
	assert.Equal(t, 100, params.VoteCountGTE)
	assert.Equal(t, "IN", params.WithOriginCountry)
	assert.GreaterOrEqual(t, params.Page, 1)
	assert.LessOrEqual(t, params.Page, 5)
	assert.GreaterOrEqual(t, params.PrimaryReleaseYear, 2023)
	assert.LessOrEqual(t, params.PrimaryReleaseYear, 2026)
}

func TestRecommendTopFiveGenresOnly(t *testing.T) {
	db := setupDB(t)
	user := &models.User{Email: "a@b.c", Username: "a"}
	require.NoError(t, db.Create(user).Error)

	require.NoError(t, db.Create(rated(user.ID, 1, 5)).Error)

	fc := &fakeCatalog{
		details: map[int64]*catalog.MovieDetail{
			1: detailWithGenres(1, "Action", "Adventure", "Comedy", "Crime", "Drama", "Horror", "Western"),
		},
		discoverPages: [][]catalog.Movie{{{ID: 100}}},
	}
	engine := newTestEngine(fc, db)

	engine.Recommend(context.Background(), user.ID)

	require.Len(t, fc.discoverCalls, 1)
	assert.Len(t, fc.discoverCalls[0].WithGenres, 5)
}

func TestRecommendSkipsFailedDetailFetches(t *testing.T) {
	db := setupDB(t)
	user := &models.User{Email: "a@b.c", Username: "a"}
	require.NoError(t, db.Create(user).Error)

	require.NoError(t, db.Create(rated(user.ID, 1, 5)).Error)
	require.NoError(t, db.Create(rated(user.ID, 2, 5)).Error)

	fc := &fakeCatalog{
		details: map[int64]*catalog.MovieDetail{
			2: detailWithGenres(2, "Horror"),
		},
		detailErrs: map[int64]error{
			1: &catalog.StatusError{Code: 500},
		},
		discoverPages: [][]catalog.Movie{{{ID: 100}}},
	}
	engine := newTestEngine(fc, db)

	results := engine.Recommend(context.Background(), user.ID)

	require.Len(t, results, 1)
	require.Len(t, fc.discoverCalls, 1)
	assert.Equal(t, []int64{27}, fc.discoverCalls[0].WithGenres)
}

func TestRecommendDiscoverFailureReturnsEmpty(t *testing.T) {
	db := setupDB(t)
	user := &models.User{Email: "a@b.c", Username: "a"}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(rated(user.ID, 1, 5)).Error)

	fc := &fakeCatalog{
		details: map[int64]*catalog.MovieDetail{
			1: detailWithGenres(1, "Action"),
		},
		discoverErr: &catalog.StatusError{Code: 503},
	}
	engine := newTestEngine(fc, db)

	results := engine.Recommend(context.Background(), user.ID)

	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestRecommendBroadensEmptyQuery(t *testing.T) {
	db := setupDB(t)
	user := &models.User{Email: "a@b.c", Username: "a"}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(rated(user.ID, 1, 5)).Error)

	fc := &fakeCatalog{
		details: map[int64]*catalog.MovieDetail{
			1: detailWithGenres(1, "Action"),
		},
		discoverPages: [][]catalog.Movie{
			{}, // narrow query finds nothing
			{{ID: 200, Title: "Broadened"}},
		},
	}
	engine := newTestEngine(fc, db)

	results := engine.Recommend(context.Background(), user.ID)

	require.Len(t, results, 1)
	assert.Equal(t, int64(200), results[0].ID)

	require.Len(t, fc.discoverCalls, 2)
	narrow, broad := fc.discoverCalls[0], fc.discoverCalls[1]
	assert.NotZero(t, narrow.PrimaryReleaseYear)
	assert.Equal(t, "IN", narrow.WithOriginCountry)
	assert.Zero(t, broad.PrimaryReleaseYear, "broadened query drops the year filter")
	assert.Empty(t, broad.WithOriginCountry, "broadened query drops the region filter")
	assert.Zero(t, broad.Page, "broadened query drops the page filter")
	assert.NotZero(t, narrow.Page)
	assert.Equal(t, narrow.WithGenres, broad.WithGenres)
}

func TestRecommendCapsResults(t *testing.T) {
	db := setupDB(t)
	user := &models.User{Email: "a@b.c", Username: "a"}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(rated(user.ID, 1, 5)).Error)

	page := make([]catalog.Movie, 20)
	for i := range page {
		page[i] = catalog.Movie{ID: int64(i + 1)}
	}
	fc := &fakeCatalog{
		details: map[int64]*catalog.MovieDetail{
			1: detailWithGenres(1, "Action"),
		},
		discoverPages: [][]catalog.Movie{page},
	}
	engine := newTestEngine(fc, db)

	results := engine.Recommend(context.Background(), user.ID)

	assert.Len(t, results, maxRecommendations)
}

func TestRecommendUnknownGenreConsumesTopSlot(t *testing.T) {
	db := setupDB(t)
	user := &models.User{Email: "a@b.c", Username: "a"}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(rated(user.ID, 1, 5)).Error)
	require.NoError(t, db.Create(rated(user.ID, 2, 5)).Error)

	fc := &fakeCatalog{
		details: map[int64]*catalog.MovieDetail{
			1: detailWithGenres(1, "Telenovela", "Action", "Adventure", "Comedy", "Crime", "Drama"),
			2: detailWithGenres(2, "Telenovela"),
		},
		discoverPages: [][]catalog.Movie{{{ID: 100}}},
	}
	engine := newTestEngine(fc, db)

	engine.Recommend(context.Background(), user.ID)

	// The unmapped name outranks everything on two movies and keeps
	// its slot, so only four of the five single-movie genres survive
	require.Len(t, fc.discoverCalls, 1)
	assert.Equal(t, []int64{28, 12, 35, 80}, fc.discoverCalls[0].WithGenres)
}

func TestRecommendIgnoresUnknownGenres(t *testing.T) {
	db := setupDB(t)
	user := &models.User{Email: "a@b.c", Username: "a"}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(rated(user.ID, 1, 5)).Error)

	fc := &fakeCatalog{
		details: map[int64]*catalog.MovieDetail{
			1: {ID: 1, Genres: []catalog.Genre{{ID: 999, Name: "Telenovela"}}},
		},
	}
	engine := newTestEngine(fc, db)

	results := engine.Recommend(context.Background(), user.ID)

	assert.Empty(t, results)
	assert.Empty(t, fc.discoverCalls, "unmapped genres produce no discovery query")
}
