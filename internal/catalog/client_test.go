package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, "test-key", WithRetry(4, time.Millisecond))
}

func TestSearchMovies(t *testing.T) {
	var gotQuery, gotAdult, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		gotQuery = r.URL.Query().Get("query")
		gotAdult = r.URL.Query().Get("include_adult")
		gotKey = r.URL.Query().Get("api_key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"page":1,"results":[{"id":603,"title":"The Matrix","vote_average":8.2}],"total_pages":1,"total_results":1}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.SearchMovies(context.Background(), "matrix", 1)

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, int64(603), resp.Results[0].ID)
	assert.Equal(t, "The Matrix", resp.Results[0].Title)
	assert.Equal(t, "matrix", gotQuery)
	assert.Equal(t, "false", gotAdult)
	assert.Equal(t, "test-key", gotKey)
}

func TestSearchMoviesMissingAPIKey(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.SearchMovies(context.Background(), "matrix", 1)

	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "no request should be made without a key")
}

func TestRetryOnServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"page":1,"results":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.SearchMovies(context.Background(), "matrix", 1)

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "two failures then success")
	assert.Empty(t, resp.Results)
}

func TestRetriesExhausted(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.SearchMovies(context.Background(), "matrix", 1)

	require.Error(t, err)
	code, ok := StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls), "all attempts should be used")
}

func TestNonRetryableStatusFailsFast(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.MovieDetails(context.Background(), 999999)

	require.Error(t, err)
	code, ok := StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "404 should not be retried")
}

func TestTimeoutClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key",
		WithRetry(1, time.Millisecond),
		WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}),
	)
	_, err := client.SearchMovies(context.Background(), "matrix", 1)

	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	_, hasStatus := StatusCode(err)
	assert.False(t, hasStatus)
}

func TestDiscoverQueryParams(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/discover/movie", r.URL.Path)
		got = map[string]string{
			"sort_by":              r.URL.Query().Get("sort_by"),
			"vote_count.gte":       r.URL.Query().Get("vote_count.gte"),
			"page":                 r.URL.Query().Get("page"),
			"primary_release_year": r.URL.Query().Get("primary_release_year"),
			"with_genres":          r.URL.Query().Get("with_genres"),
			"with_origin_country":  r.URL.Query().Get("with_origin_country"),
		}
		w.Write([]byte(`{"page":1,"results":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Discover(context.Background(), DiscoverParams{
		SortBy:             "vote_average.desc",
		VoteCountGTE:       100,
		Page:               2,
		PrimaryReleaseYear: 2024,
		WithGenres:         []int64{28, 35},
		WithOriginCountry:  "IN",
	})

	require.NoError(t, err)
	assert.Equal(t, "vote_average.desc", got["sort_by"])
	assert.Equal(t, "100", got["vote_count.gte"])
	assert.Equal(t, "2", got["page"])
	assert.Equal(t, "2024", got["primary_release_year"])
	assert.Equal(t, "28,35", got["with_genres"])
	assert.Equal(t, "IN", got["with_origin_country"])
}

func TestDisplayTitleFallsBackToName(t *testing.T) {
	assert.Equal(t, "The Matrix", Movie{Title: "The Matrix", Name: "ignored"}.DisplayTitle())
	assert.Equal(t, "Dark", Movie{Name: "Dark"}.DisplayTitle())
}
