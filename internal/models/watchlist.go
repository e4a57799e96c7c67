package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WatchlistEntry is one saved movie for one user. A user can hold at most
// one entry per TMDB movie id; removal is a hard delete.
type WatchlistEntry struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;uniqueIndex:idx_watchlist_user_movie" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`

	TMDBID int64 `gorm:"not null;uniqueIndex:idx_watchlist_user_movie" json:"tmdb_id"`

	// Catalog snapshot taken when the entry was added
	Title       string  `gorm:"not null" json:"title"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `gorm:"type:text" json:"overview"`
	VoteAverage float64 `json:"vote_average"`

	Watched bool `gorm:"default:false" json:"watched"`
	// UserRating is 1..5 when set, nil when the user has not rated yet
	UserRating *int `json:"user_rating"`

	CreatedAt time.Time `json:"added_on"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (w *WatchlistEntry) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
