// Package backend provides the CineLog API server.

// This package contains the main application entry point. The actual API
// documentation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/auth: Authentication and token validation
// - internal/catalog: TMDB client with caching, retries, and timeouts
// - internal/watchlist: Watchlist state transitions and stats
// - internal/recommend: Genre-affinity recommendation engine
// - internal/cache: Redis-backed cache with in-process fallback
// - internal/database: Database connection and migrations
// - internal/middleware: HTTP middleware (request ids, logging, metrics)

// See the individual package documentation for detailed API reference.
package backend
