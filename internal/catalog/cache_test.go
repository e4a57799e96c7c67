package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cinelog/backend/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedSearchReusesResults(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"page":1,"results":[{"id":603,"title":"The Matrix"}],"total_pages":1,"total_results":1}`))
	}))
	defer server.Close()

	client := NewCachedClient(newTestClient(server.URL), cache.NewMemoryStore(), time.Minute)
	ctx := context.Background()

	first, err := client.SearchMovies(ctx, "matrix", 1)
	require.NoError(t, err)
	second, err := client.SearchMovies(ctx, "matrix", 1)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second search should be served from cache")
	assert.Equal(t, first.Results, second.Results)

	// A different page is a different cache entry
	_, err = client.SearchMovies(ctx, "matrix", 2)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCachedSearchKeyNormalization(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"page":1,"results":[]}`))
	}))
	defer server.Close()

	client := NewCachedClient(newTestClient(server.URL), cache.NewMemoryStore(), time.Minute)
	ctx := context.Background()

	_, err := client.SearchMovies(ctx, "Matrix", 1)
	require.NoError(t, err)
	_, err = client.SearchMovies(ctx, "  matrix ", 1)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "casing and whitespace should not fragment the cache")
}

func TestCachedSearchErrorNotCached(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 4 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"page":1,"results":[]}`))
	}))
	defer server.Close()

	client := NewCachedClient(newTestClient(server.URL), cache.NewMemoryStore(), time.Minute)
	ctx := context.Background()

	_, err := client.SearchMovies(ctx, "matrix", 1)
	require.Error(t, err)

	// The failure must not be cached; the next search reaches upstream
	resp, err := client.SearchMovies(ctx, "matrix", 1)
	require.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestCachedSearchNilStorePassesThrough(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"page":1,"results":[]}`))
	}))
	defer server.Close()

	client := NewCachedClient(newTestClient(server.URL), nil, time.Minute)
	ctx := context.Background()

	_, err := client.SearchMovies(ctx, "matrix", 1)
	require.NoError(t, err)
	_, err = client.SearchMovies(ctx, "matrix", 1)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
