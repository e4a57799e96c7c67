package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/cinelog/backend/internal/logger"
	"github.com/cinelog/backend/internal/metrics"
	"github.com/cinelog/backend/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	defaultConnectTimeout = 3 * time.Second
	defaultRequestTimeout = 8 * time.Second

	// One initial attempt plus three retries, doubling from the base delay
	defaultRetryAttempts = 4
	defaultRetryDelay    = 700 * time.Millisecond
)

// ErrMissingAPIKey is returned when no API key is configured. The caller
// decides how to surface it; no upstream request is made.
var ErrMissingAPIKey = errors.New("catalog: API key not configured")

// StatusError is a non-200 response from the catalog after retries are
// exhausted (or immediately, for statuses that are not retried).
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog: upstream returned status %d", e.Code)
}

// Statuses worth retrying. Everything else fails immediately.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Client talks to the TMDB HTTP API with bounded retries and timeouts.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	retryAttempts uint
	retryDelay    time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient overrides the default transport, mainly for tests
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry overrides the retry schedule. attempts counts the first try.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		c.retryAttempts = attempts
		c.retryDelay = delay
	}
}

// NewClient creates a catalog client. apiKey may be empty; calls will
// fail with ErrMissingAPIKey until one is configured.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		apiKey:        apiKey,
		httpClient:    defaultHTTPClient(),
		retryAttempts: defaultRetryAttempts,
		retryDelay:    defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func defaultHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   defaultConnectTimeout,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   defaultConnectTimeout,
		ResponseHeaderTimeout: defaultRequestTimeout,
	}
	return &http.Client{
		Timeout:   defaultRequestTimeout,
		Transport: otelhttp.NewTransport(transport),
	}
}

// SearchMovies runs a title search. Adult titles are always excluded.
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	var out SearchResponse
	if err := c.get(ctx, "/search/movie", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MovieDetails fetches the full record for one movie
func (c *Client) MovieDetails(ctx context.Context, id int64) (*MovieDetail, error) {
	params := url.Values{}
	params.Set("language", "en-US")

	var out MovieDetail
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MovieCredits fetches cast and crew for one movie
func (c *Client) MovieCredits(ctx context.Context, id int64) (*Credits, error) {
	var out Credits
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/credits", id), url.Values{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MovieVideos fetches trailers and clips for one movie
func (c *Client) MovieVideos(ctx context.Context, id int64) (*VideoList, error) {
	var out VideoList
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/videos", id), url.Values{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Discover runs a filtered discovery query
func (c *Client) Discover(ctx context.Context, p DiscoverParams) (*SearchResponse, error) {
	params := url.Values{}
	if p.SortBy != "" {
		params.Set("sort_by", p.SortBy)
	}
	if p.VoteCountGTE > 0 {
		params.Set("vote_count.gte", strconv.Itoa(p.VoteCountGTE))
	}
	if p.Page > 0 {
		params.Set("page", strconv.Itoa(p.Page))
	}
	if p.PrimaryReleaseYear > 0 {
		params.Set("primary_release_year", strconv.Itoa(p.PrimaryReleaseYear))
	}
	if len(p.WithGenres) > 0 {
		ids := make([]string, len(p.WithGenres))
		for i, id := range p.WithGenres {
			ids[i] = strconv.FormatInt(id, 10)
		}
		params.Set("with_genres", strings.Join(ids, ","))
	}
	if p.WithOriginCountry != "" {
		params.Set("with_origin_country", p.WithOriginCountry)
	}

	var out SearchResponse
	if err := c.get(ctx, "/discover/movie", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	params.Set("api_key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	ctx, span := telemetry.TraceCatalogCall(ctx, path)
	m := metrics.Get()
	start := time.Now()

	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				// Connection and timeout failures are retryable
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				io.Copy(io.Discard, resp.Body)
				statusErr := &StatusError{Code: resp.StatusCode}
				if retryableStatus[resp.StatusCode] {
					return statusErr
				}
				return retry.Unrecoverable(statusErr)
			}

			b, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			body = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.retryAttempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			m.CatalogRetriesTotal.WithLabelValues(path).Inc()
			logger.Warn("catalog request retrying",
				zap.String("path", path),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)

	m.CatalogRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	if err != nil {
		m.CatalogRequestsTotal.WithLabelValues(path, "error").Inc()
		telemetry.EndSpan(span, err)
		return err
	}
	m.CatalogRequestsTotal.WithLabelValues(path, "ok").Inc()

	if err := json.Unmarshal(body, out); err != nil {
		err = fmt.Errorf("catalog: decoding %s response: %w", path, err)
		telemetry.EndSpan(span, err)
		return err
	}
	telemetry.EndSpan(span, nil)
	return nil
}

// IsTimeout reports whether err is a deadline failure rather than a
// connection-level one. Used to map failures to 504 vs 502.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// StatusCode extracts the upstream status from err, if it carries one
func StatusCode(err error) (int, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code, true
	}
	return 0, false
}
