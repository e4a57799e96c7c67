package watchlist

import (
	"context"
	"os"
	"testing"

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

func setupService(t *testing.T) (*Service, string) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.WatchlistEntry{}))

	user := &models.User{Email: "viewer@example.com", Username: "viewer"}
	require.NoError(t, db.Create(user).Error)

	return NewService(db), user.ID
}

var inception = MovieInfo{
	TMDBID:      27205,
	Title:       "Inception",
	PosterPath:  "/inception.jpg",
	ReleaseDate: "2010-07-15",
	Overview:    "A thief who steals corporate secrets.",
	VoteAverage: 8.4,
}

func TestAddCreatesEntry(t *testing.T) {
	svc, userID := setupService(t)
	ctx := context.Background()

	entry, created, err := svc.Add(ctx, userID, inception)

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, inception.TMDBID, entry.TMDBID)
	assert.Equal(t, "Inception", entry.Title)
	assert.False(t, entry.Watched)
	assert.Nil(t, entry.UserRating)
}

func TestAddIsIdempotent(t *testing.T) {
	svc, userID := setupService(t)
	ctx := context.Background()

	first, created, err := svc.Add(ctx, userID, inception)
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := svc.Add(ctx, userID, inception)
	require.NoError(t, err)
	assert.False(t, created, "second add should report the existing entry")
	assert.Equal(t, first.ID, second.ID)

	entries, err := svc.List(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAddDoesNotClobberState(t *testing.T) {
	svc, userID := setupService(t)
	ctx := context.Background()

	_, err := svc.Rate(ctx, userID, inception, 5)
	require.NoError(t, err)

	entry, created, err := svc.Add(ctx, userID, inception)
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, entry.Watched, "re-adding must not reset watched")
	require.NotNil(t, entry.UserRating)
	assert.Equal(t, 5, *entry.UserRating)
}

func TestRemove(t *testing.T) {
	svc, userID := setupService(t)
	ctx := context.Background()

	_, _, err := svc.Add(ctx, userID, inception)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, userID, inception.TMDBID))

	entries, err := svc.List(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRemoveNotFound(t *testing.T) {
	svc, userID := setupService(t)

	err := svc.Remove(context.Background(), userID, 99999)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkWatched(t *testing.T) {
	svc, userID := setupService(t)
	ctx := context.Background()

	entry, err := svc.MarkWatched(ctx, userID, inception)

	require.NoError(t, err)
	assert.True(t, entry.Watched, "marking an unsaved movie creates it watched")

	entries, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Watched)
}

func TestMarkWatchedPreservesRating(t *testing.T) {
	svc, userID := setupService(t)
	ctx := context.Background()

	_, err := svc.Rate(ctx, userID, inception, 4)
	require.NoError(t, err)

	entry, err := svc.MarkWatched(ctx, userID, inception)
	require.NoError(t, err)
	require.NotNil(t, entry.UserRating)
	assert.Equal(t, 4, *entry.UserRating)
}

func TestRateCreatesWatchedEntry(t *testing.T) {
	svc, userID := setupService(t)
	ctx := context.Background()

	entry, err := svc.Rate(ctx, userID, inception, 5)

	require.NoError(t, err)
	assert.True(t, entry.Watched, "rating implies watched")
	require.NotNil(t, entry.UserRating)
	assert.Equal(t, 5, *entry.UserRating)
}

func TestRateOverwritesPrevious(t *testing.T) {
	svc, userID := setupService(t)
	ctx := context.Background()

	_, err := svc.Rate(ctx, userID, inception, 2)
	require.NoError(t, err)

	entry, err := svc.Rate(ctx, userID, inception, 4)
	require.NoError(t, err)
	require.NotNil(t, entry.UserRating)
	assert.Equal(t, 4, *entry.UserRating)

	stored, err := svc.Get(ctx, userID, inception.TMDBID)
	require.NoError(t, err)
	require.NotNil(t, stored.UserRating)
	assert.Equal(t, 4, *stored.UserRating)
}

func TestRateRejectsOutOfRange(t *testing.T) {
	svc, userID := setupService(t)
	ctx := context.Background()

	for _, rating := range []int{0, -1, 6, 100} {
		_, err := svc.Rate(ctx, userID, inception, rating)
		assert.ErrorIs(t, err, ErrInvalidRating, "rating %d", rating)
	}

	entries, err := svc.List(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected ratings must not create entries")
}

func TestListOrdering(t *testing.T) {
	svc, userID := setupService(t)
	ctx := context.Background()

	_, _, err := svc.Add(ctx, userID, MovieInfo{TMDBID: 1, Title: "First"})
	require.NoError(t, err)
	_, _, err = svc.Add(ctx, userID, MovieInfo{TMDBID: 2, Title: "Second"})
	require.NoError(t, err)

	entries, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.False(t, entries[0].CreatedAt.Before(entries[1].CreatedAt))
}

func TestListIsScopedToUser(t *testing.T) {
	svc, userID := setupService(t)
	ctx := context.Background()

	other := &models.User{Email: "other@example.com", Username: "other"}
	require.NoError(t, svc.db.Create(other).Error)

	_, _, err := svc.Add(ctx, userID, inception)
	require.NoError(t, err)
	_, _, err = svc.Add(ctx, other.ID, MovieInfo{TMDBID: 500, Title: "Other Movie"})
	require.NoError(t, err)

	entries, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, inception.TMDBID, entries[0].TMDBID)
}

func TestGetStats(t *testing.T) {
	svc, userID := setupService(t)
	ctx := context.Background()

	_, _, err := svc.Add(ctx, userID, MovieInfo{TMDBID: 1, Title: "Unwatched"})
	require.NoError(t, err)
	_, err = svc.MarkWatched(ctx, userID, MovieInfo{TMDBID: 2, Title: "Watched"})
	require.NoError(t, err)
	_, err = svc.Rate(ctx, userID, MovieInfo{TMDBID: 3, Title: "Rated A"}, 5)
	require.NoError(t, err)
	_, err = svc.Rate(ctx, userID, MovieInfo{TMDBID: 4, Title: "Rated B"}, 3)
	require.NoError(t, err)

	stats, err := svc.GetStats(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(3), stats.Watched)
	assert.Equal(t, int64(2), stats.Rated)
	assert.InDelta(t, 4.0, stats.AverageRating, 0.001)
}
