package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cinelog/backend/internal/cache"
	"github.com/cinelog/backend/internal/logger"
	"github.com/cinelog/backend/internal/metrics"
)

const searchCacheName = "tmdb_search"

// CachedClient layers a short-lived result cache over search queries.
// Only searches are cached; detail and discovery traffic goes straight
// through.
type CachedClient struct {
	*Client
	store cache.Store
	ttl   time.Duration
}

// NewCachedClient wraps client with store. A nil store disables caching.
func NewCachedClient(client *Client, store cache.Store, ttl time.Duration) *CachedClient {
	return &CachedClient{Client: client, store: store, ttl: ttl}
}

// SearchMovies returns cached results when fresh, otherwise queries the
// catalog and stores the response.
func (c *CachedClient) SearchMovies(ctx context.Context, query string, page int) (*SearchResponse, error) {
	if c.store == nil {
		return c.Client.SearchMovies(ctx, query, page)
	}

	key := searchCacheKey(query, page)
	m := metrics.Get()

	if raw, ok := c.store.Get(ctx, key); ok {
		var cached SearchResponse
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			m.CacheHitsTotal.WithLabelValues(searchCacheName).Inc()
			return &cached, nil
		}
		// Corrupt entry; drop it and fall through to the catalog
		c.store.Delete(ctx, key)
	}
	m.CacheMissesTotal.WithLabelValues(searchCacheName).Inc()

	resp, err := c.Client.SearchMovies(ctx, query, page)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(resp); err == nil {
		c.store.Set(ctx, key, string(raw), c.ttl)
	} else {
		logger.WarnWithFields("failed to marshal search results for cache", err)
	}

	return resp, nil
}

func searchCacheKey(query string, page int) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	return fmt.Sprintf("%s:%s:%d", searchCacheName, normalized, page)
}
