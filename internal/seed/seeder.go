package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/cinelog/backend/internal/logger"
	"github.com/cinelog/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// A fixed pool of well-known movies so seeded watchlists point at real
// TMDB ids and recommendations have genre signal to work with.
var seedMovies = []models.WatchlistEntry{
	{TMDBID: 27205, Title: "Inception", ReleaseDate: "2010-07-15", VoteAverage: 8.4, PosterPath: "/oYuLEt3zVCKq57qu2F8dT7NIa6f.jpg"},
	{TMDBID: 603, Title: "The Matrix", ReleaseDate: "1999-03-31", VoteAverage: 8.2, PosterPath: "/f89U3ADr1oiB1s9GkdPOEpXUk5H.jpg"},
	{TMDBID: 155, Title: "The Dark Knight", ReleaseDate: "2008-07-16", VoteAverage: 8.5, PosterPath: "/qJ2tW6WMUDux911r6m7haRef0WH.jpg"},
	{TMDBID: 680, Title: "Pulp Fiction", ReleaseDate: "1994-09-10", VoteAverage: 8.5, PosterPath: "/d5iIlFn5s0ImszYzBPb8JPIfbXD.jpg"},
	{TMDBID: 13, Title: "Forrest Gump", ReleaseDate: "1994-06-23", VoteAverage: 8.5, PosterPath: "/arw2vcBveWOVZr6pxd9XTd1TdQa.jpg"},
	{TMDBID: 122, Title: "The Lord of the Rings: The Return of the King", ReleaseDate: "2003-12-01", VoteAverage: 8.5, PosterPath: "/rCzpDGLbOoPwLjy3OAm5NUPOTrC.jpg"},
	{TMDBID: 550, Title: "Fight Club", ReleaseDate: "1999-10-15", VoteAverage: 8.4, PosterPath: "/pB8BM7pdSp6B6Ih7QZ4DrQ3PmJK.jpg"},
	{TMDBID: 278, Title: "The Shawshank Redemption", ReleaseDate: "1994-09-23", VoteAverage: 8.7, PosterPath: "/9cqNxx0GxF0bflZmeSMuL5tnGzr.jpg"},
	{TMDBID: 238, Title: "The Godfather", ReleaseDate: "1972-03-14", VoteAverage: 8.7, PosterPath: "/3bhkrj58Vtu7enYsRolD1fZdja1.jpg"},
	{TMDBID: 19995, Title: "Avatar", ReleaseDate: "2009-12-15", VoteAverage: 7.6, PosterPath: "/kyeqWdyUXW608qlYkRqosgbbJyK.jpg"},
	{TMDBID: 157336, Title: "Interstellar", ReleaseDate: "2014-11-05", VoteAverage: 8.4, PosterPath: "/gEU2QniE6E77NI6lCU6MxlNBvIx.jpg"},
	{TMDBID: 496243, Title: "Parasite", ReleaseDate: "2019-05-30", VoteAverage: 8.5, PosterPath: "/7IiTTgloJzvGI1TAYymCfbfl3vT.jpg"},
	{TMDBID: 324857, Title: "Spider-Man: Into the Spider-Verse", ReleaseDate: "2018-12-06", VoteAverage: 8.4, PosterPath: "/iiZZdoQBEYBv6id8su7ImL0oCbD.jpg"},
	{TMDBID: 419430, Title: "Get Out", ReleaseDate: "2017-02-24", VoteAverage: 7.6, PosterPath: "/tFXcEccSQMf3lfhfXKSU9iRBpa3.jpg"},
	{TMDBID: 429617, Title: "Spider-Man: Far From Home", ReleaseDate: "2019-06-28", VoteAverage: 7.4, PosterPath: "/4q2NNj4S5dG2RLF9CpXsej7yXl.jpg"},
}

// SeedDev seeds the development database with realistic data
func (s *Seeder) SeedDev() error {
	logger.InfoWithFields("creating users...")
	users, err := s.seedUsers(20)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.InfoWithFields("creating watchlists...")
	if err := s.seedWatchlists(users); err != nil {
		return fmt.Errorf("failed to seed watchlists: %w", err)
	}

	return nil
}

// SeedTest seeds the test database with a small fixed set of users
func (s *Seeder) SeedTest() error {
	testUserSpecs := []struct {
		username    string
		email       string
		displayName string
	}{
		{"alice", "alice@example.com", "Alice Smith"},
		{"bob", "bob@example.com", "Bob Johnson"},
		{"charlie", "charlie@example.com", "Charlie Brown"},
	}

	var users []models.User
	for _, spec := range testUserSpecs {
		var user models.User
		err := s.db.Where("username = ? OR email = ?", spec.username, spec.email).First(&user).Error
		if err == nil {
			users = append(users, user)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("failed to look up user %s: %w", spec.username, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		hashStr := string(hash)
		user = models.User{
			Email:        spec.email,
			Username:     spec.username,
			DisplayName:  spec.displayName,
			PasswordHash: &hashStr,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", spec.username, err)
		}
		users = append(users, user)
	}

	return s.seedWatchlists(users)
}

// Clean removes all seeded data. Destructive; dev use only.
func (s *Seeder) Clean() error {
	if err := s.db.Where("1 = 1").Delete(&models.WatchlistEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete watchlist entries: %w", err)
	}
	// Unscoped so soft-deleted users go too
	if err := s.db.Unscoped().Where("1 = 1").Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("failed to delete users: %w", err)
	}
	return nil
}

func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		username := fmt.Sprintf("%s%d", gofakeit.Username(), i)
		user := models.User{
			Email:        fmt.Sprintf("%d_%s", i, gofakeit.Email()),
			Username:     username,
			DisplayName:  gofakeit.Name(),
			PasswordHash: &hashStr,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", username, err)
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedWatchlists(users []models.User) error {
	for _, user := range users {
		// Each user saves a random subset of the pool
		count := 3 + rand.Intn(len(seedMovies)-3)
		perm := rand.Perm(len(seedMovies))

		for _, idx := range perm[:count] {
			entry := seedMovies[idx]
			entry.ID = ""
			entry.UserID = user.ID

			// Roughly two thirds watched, most of those rated
			if rand.Intn(3) > 0 {
				entry.Watched = true
				if rand.Intn(4) > 0 {
					rating := 3 + rand.Intn(3)
					entry.UserRating = &rating
				}
			}

			if err := s.db.Create(&entry).Error; err != nil {
				return fmt.Errorf("failed to create watchlist entry for %s: %w", user.Username, err)
			}
		}
	}
	return nil
}
