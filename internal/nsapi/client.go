// Package nsapi is a typed client for the NS reisinformatie API: the trips
// search and the per-leg journey detail endpoint.
package nsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bluele/gcache"
	"golang.org/x/time/rate"
	"tripranker.dev/internal/logging"
	"tripranker.dev/internal/metrics"
)

const (
	tripsPath   = "/api/v3/trips"
	journeyPath = "/api/v2/journey"

	subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

	maxBodySize = 10 * 1024 * 1024
)

// Options configures a Client. Zero values pick conservative defaults.
type Options struct {
	BaseURL string
	APIKey  string

	// Timeout bounds every single upstream call.
	Timeout time.Duration

	// RequestsPerSecond caps outbound calls across all requests; 0 disables the cap.
	RequestsPerSecond float64
	Burst             int

	// JourneyCacheSize is the number of journey details kept; 0 disables caching.
	JourneyCacheSize int
	JourneyCacheTTL  time.Duration

	HTTPClient *http.Client
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// Client talks to the reisinformatie API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	journeys   gcache.Cache
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// newHTTPClient clones the default transport so proxy and keepalive defaults survive.
func newHTTPClient(timeout time.Duration) *http.Client {
	var transport *http.Transport
	if t, ok := http.DefaultTransport.(*http.Transport); ok {
		transport = t.Clone()
	} else {
		transport = &http.Transport{}
	}
	transport.MaxIdleConns = 50
	transport.MaxIdleConnsPerHost = 20
	transport.IdleConnTimeout = 90 * time.Second
	transport.TLSHandshakeTimeout = 10 * time.Second

	return &http.Client{
		// Absolute safety net; each call also carries a context deadline.
		Timeout:   timeout + 5*time.Second,
		Transport: transport,
	}
}

// NewClient validates opts and builds a Client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("nsapi: API key is required")
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("nsapi: invalid base URL %q", opts.BaseURL)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	client := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		timeout:    opts.Timeout,
		httpClient: opts.HTTPClient,
		metrics:    opts.Metrics,
		logger:     opts.Logger.With(slog.String("component", "nsapi")),
	}
	if client.httpClient == nil {
		client.httpClient = newHTTPClient(opts.Timeout)
	}

	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = max(1, int(opts.RequestsPerSecond))
		}
		client.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	if opts.JourneyCacheSize > 0 {
		builder := gcache.New(opts.JourneyCacheSize).LRU()
		if opts.JourneyCacheTTL > 0 {
			builder = builder.Expiration(opts.JourneyCacheTTL)
		}
		client.journeys = builder.Build()
	}

	return client, nil
}

// Configured reports whether the client holds credentials.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// GetTrips runs a trips search. A response without a trips field yields an empty slice.
func (c *Client) GetTrips(ctx context.Context, q TripsQuery) ([]Trip, error) {
	params := url.Values{}
	params.Set("fromStation", q.FromStation)
	params.Set("toStation", q.ToStation)
	if !q.DateTime.IsZero() {
		params.Set("dateTime", q.DateTime.Format(time.RFC3339))
	}
	params.Set("searchForArrival", strconv.FormatBool(q.SearchForArrival))
	params.Set("passing", strconv.FormatBool(q.Passing))

	var resp tripsResponse
	if err := c.get(ctx, "trips", tripsPath, params, &resp); err != nil {
		return nil, err
	}
	if resp.Trips == nil {
		return []Trip{}, nil
	}
	return resp.Trips, nil
}

// GetJourney fetches one journey detail. It returns nil without error when
// the provider has no payload for the journey.
func (c *Client) GetJourney(ctx context.Context, q JourneyQuery) (*Journey, error) {
	key := journeyCacheKey(q)
	if c.journeys != nil {
		if cached, err := c.journeys.Get(key); err == nil {
			c.metrics.ObserveCacheLookup(true)
			return cached.(*Journey), nil
		}
		c.metrics.ObserveCacheLookup(false)
	}

	params := url.Values{}
	params.Set("id", q.ID)
	if q.Train > 0 {
		params.Set("train", strconv.Itoa(q.Train))
	}
	if q.DateTime != "" {
		params.Set("dateTime", q.DateTime)
	}

	var resp journeyResponse
	if err := c.get(ctx, "journey", journeyPath, params, &resp); err != nil {
		return nil, err
	}

	if c.journeys != nil && resp.Payload != nil {
		if err := c.journeys.Set(key, resp.Payload); err != nil {
			logging.LogError(c.logger, "failed to cache journey detail", err,
				slog.String("journey_id", q.ID))
		}
	}
	return resp.Payload, nil
}

func journeyCacheKey(q JourneyQuery) string {
	return q.ID + "|" + strconv.Itoa(q.Train) + "|" + q.DateTime
}

// CacheStats describes the journey detail cache.
type CacheStats struct {
	Enabled bool
	Entries int
	Hits    uint64
	Misses  uint64
}

func (c *Client) CacheStats() CacheStats {
	if c == nil || c.journeys == nil {
		return CacheStats{}
	}
	return CacheStats{
		Enabled: true,
		Entries: c.journeys.Len(true),
		Hits:    c.journeys.HitCount(),
		Misses:  c.journeys.MissCount(),
	}
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.metrics.ObserveUpstream(endpoint, "throttled", 0)
			return &UpstreamError{Endpoint: endpoint, Message: "request budget exhausted", Err: err}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return &UpstreamError{Endpoint: endpoint, Message: "invalid request", Err: err}
	}
	req.Header.Set(subscriptionKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("upstream_request",
		slog.String("endpoint", endpoint),
		slog.String("path", path),
		slog.String("query", params.Encode()))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		c.metrics.ObserveUpstream(endpoint, "error", elapsed)
		message := "request failed"
		if errors.Is(err, context.DeadlineExceeded) {
			message = "request timed out"
		}
		upstreamErr := &UpstreamError{Endpoint: endpoint, Message: message, Err: err}
		logging.LogError(c.logger, "upstream request failed", upstreamErr, slog.String("endpoint", endpoint))
		return upstreamErr
	}
	defer logging.SafeCloseWithLogging(resp.Body, c.logger, "http_response_body")

	c.metrics.ObserveUpstream(endpoint, strconv.Itoa(resp.StatusCode), elapsed)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: "failed to read response", Err: err}
	}
	if len(body) > maxBodySize {
		return &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: "response exceeds size limit"}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upstreamErr := &UpstreamError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, body),
		}
		logging.LogError(c.logger, "upstream returned an error", upstreamErr,
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode))
		return upstreamErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: "malformed response payload", Err: err}
	}
	return nil
}
