package watchlist

import (
	"context"
	"errors"

	"github.com/cinelog/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when removing a movie the user never saved
	ErrNotFound = errors.New("watchlist: entry not found")
	// ErrInvalidRating is returned for ratings outside 1..5
	ErrInvalidRating = errors.New("watchlist: rating must be between 1 and 5")
)

// MovieInfo is the catalog snapshot stored with a new entry
type MovieInfo struct {
	TMDBID      int64
	Title       string
	PosterPath  string
	ReleaseDate string
	Overview    string
	VoteAverage float64
}

// Stats summarizes one user's watchlist
type Stats struct {
	Total         int64   `json:"total"`
	Watched       int64   `json:"watched"`
	Rated         int64   `json:"rated"`
	AverageRating float64 `json:"average_rating"`
}

// Service owns all watchlist state transitions. Every operation is
// idempotent per (user, movie) pair; the unique index on that pair is
// the source of truth.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Add saves a movie for the user. The returned bool is false when the
// movie was already on the list, in which case the existing entry is
// returned untouched.
func (s *Service) Add(ctx context.Context, userID string, movie MovieInfo) (*models.WatchlistEntry, bool, error) {
	return s.getOrCreate(ctx, userID, movie)
}

// Remove hard-deletes the user's entry for the movie. Removing a movie
// that was never saved returns ErrNotFound.
func (s *Service) Remove(ctx context.Context, userID string, tmdbID int64) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND tmdb_id = ?", userID, tmdbID).
		Delete(&models.WatchlistEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkWatched flags the movie as watched, creating the entry first if
// needed. An existing rating is preserved.
func (s *Service) MarkWatched(ctx context.Context, userID string, movie MovieInfo) (*models.WatchlistEntry, error) {
	entry, _, err := s.getOrCreate(ctx, userID, movie)
	if err != nil {
		return nil, err
	}
	if !entry.Watched {
		err = s.db.WithContext(ctx).
			Model(entry).
			Update("watched", true).Error
		if err != nil {
			return nil, err
		}
		entry.Watched = true
	}
	return entry, nil
}

// Rate records a 1..5 rating and marks the movie watched, creating the
// entry first if needed. Re-rating overwrites the previous value.
func (s *Service) Rate(ctx context.Context, userID string, movie MovieInfo, rating int) (*models.WatchlistEntry, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	entry, _, err := s.getOrCreate(ctx, userID, movie)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).
		Model(entry).
		Updates(map[string]interface{}{
			"watched":     true,
			"user_rating": rating,
		}).Error
	if err != nil {
		return nil, err
	}
	entry.Watched = true
	entry.UserRating = &rating
	return entry, nil
}

// List returns the user's entries, most recently added first
func (s *Service) List(ctx context.Context, userID string) ([]models.WatchlistEntry, error) {
	var entries []models.WatchlistEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

// Get returns the user's entry for one movie, or ErrNotFound
func (s *Service) Get(ctx context.Context, userID string, tmdbID int64) (*models.WatchlistEntry, error) {
	var entry models.WatchlistEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND tmdb_id = ?", userID, tmdbID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetStats aggregates watch and rating counts for a user
func (s *Service) GetStats(ctx context.Context, userID string) (*Stats, error) {
	stats := &Stats{}
	model := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.WatchlistEntry{}).Where("user_id = ?", userID)
	}

	if err := model().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := model().Where("watched = ?", true).Count(&stats.Watched).Error; err != nil {
		return nil, err
	}
	if err := model().Where("user_rating IS NOT NULL").Count(&stats.Rated).Error; err != nil {
		return nil, err
	}
	if stats.Rated > 0 {
		var avg float64
		err := s.db.WithContext(ctx).
			Model(&models.WatchlistEntry{}).
			Where("user_id = ? AND user_rating IS NOT NULL", userID).
			Select("AVG(user_rating)").
			Scan(&avg).Error
		if err != nil {
			return nil, err
		}
		stats.AverageRating = avg
	}
	return stats, nil
}

// getOrCreate inserts the entry, deferring to the unique (user, movie)
// index on conflict and then loading the surviving row.
func (s *Service) getOrCreate(ctx context.Context, userID string, movie MovieInfo) (*models.WatchlistEntry, bool, error) {
	entry := &models.WatchlistEntry{
		UserID:      userID,
		TMDBID:      movie.TMDBID,
		Title:       movie.Title,
		PosterPath:  movie.PosterPath,
		ReleaseDate: movie.ReleaseDate,
		Overview:    movie.Overview,
		VoteAverage: movie.VoteAverage,
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "tmdb_id"}},
			DoNothing: true,
		}).
		Create(entry)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return entry, true, nil
	}

	var existing models.WatchlistEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND tmdb_id = ?", userID, movie.TMDBID).
		First(&existing).Error
	if err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}
