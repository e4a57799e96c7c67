package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	Port     string
	LogLevel string
	LogFile  string

	JWTSecret []byte

	// TMDB settings. APIKey may be empty; catalog calls fail at request
	// time rather than at startup so the rest of the app stays usable.
	TMDBAPIKey  string
	TMDBBaseURL string

	// ISO 3166-1 region used to bias discovery queries.
	DiscoverRegion string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	SearchCacheTTL time.Duration

	// Tracing is off unless TRACING_ENABLED=true.
	TracingEnabled bool
	OTLPEndpoint   string
	Environment    string
}

// Load reads configuration from the environment.
// REQUIRED environment variables:
// - JWT_SECRET: HMAC secret for access tokens
func Load() (*Config, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        getEnv("LOG_FILE", "server.log"),
		JWTSecret:      []byte(jwtSecret),
		TMDBAPIKey:     os.Getenv("TMDB_API_KEY"),
		TMDBBaseURL:    getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		DiscoverRegion: getEnv("DISCOVER_REGION", "IN"),
		RedisHost:      getEnv("REDIS_HOST", "localhost"),
		RedisPort:      getEnv("REDIS_PORT", "6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		SearchCacheTTL: 3 * time.Minute,
		TracingEnabled: os.Getenv("TRACING_ENABLED") == "true",
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4318"),
		Environment:    getEnv("ENVIRONMENT", "development"),
	}

	if ttl := os.Getenv("SEARCH_CACHE_TTL"); ttl != "" {
		parsed, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid SEARCH_CACHE_TTL %q: %w", ttl, err)
		}
		cfg.SearchCacheTTL = parsed
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
