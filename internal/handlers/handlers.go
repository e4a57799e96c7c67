package handlers

import (
	"github.com/cinelog/backend/internal/catalog"
	"github.com/cinelog/backend/internal/recommend"
	"github.com/cinelog/backend/internal/watchlist"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	catalog   *catalog.CachedClient
	watchlist *watchlist.Service
	engine    *recommend.Engine
}

// NewHandlers creates a new handlers instance
func NewHandlers(catalogClient *catalog.CachedClient, watchlistSvc *watchlist.Service, engine *recommend.Engine) *Handlers {
	return &Handlers{
		catalog:   catalogClient,
		watchlist: watchlistSvc,
		engine:    engine,
	}
}
