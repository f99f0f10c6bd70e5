// Package provider implements the HTTP client for the third-party
// digital-asset-management API: folder listings and per-asset detail lookups,
// Basic-authenticated, with quota tracking and error classification.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for upstream provider operations.
var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_upstream_requests_total",
		Help: "Total upstream provider requests by endpoint and status",
	}, []string{"endpoint", "status"})

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gallery_upstream_request_duration_seconds",
		Help:    "Upstream provider request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	upstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_upstream_errors_total",
		Help: "Total upstream provider errors by status code",
	}, []string{"status"})
)

// listingMaxResults caps the folder listing at the provider's page maximum.
const listingMaxResults = 500

// QuotaGuard gates upstream calls on the provider's remaining request quota.
type QuotaGuard interface {
	ShouldAllowRequest(ctx context.Context) (bool, error)
	UpdateFromHeaders(ctx context.Context, headers http.Header) error
}

// Config holds the provider client configuration.
type Config struct {
	// Key and Secret are the provider API credentials, sent as HTTP Basic auth.
	Key    string
	Secret string

	// Account is the provider account (cloud) name, part of the API base path.
	Account string

	// BaseURL overrides the derived API base URL (used in tests).
	BaseURL string

	// Timeout for a single upstream call.
	Timeout time.Duration
}

// Client talks to the asset provider API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	config     Config
	quota      QuotaGuard
	logger     zerolog.Logger
}

// New creates a provider client. quota may be nil, in which case requests are
// never gated.
func New(cfg Config, quota QuotaGuard) (*Client, error) {
	if cfg.Key == "" || cfg.Secret == "" {
		return nil, fmt.Errorf("provider credentials are required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.Account == "" {
			return nil, fmt.Errorf("provider account is required")
		}
		baseURL = "https://api.dam.example.com/v1/" + cfg.Account
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "provider").Logger()

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		config:     cfg,
		quota:      quota,
		logger:     logger,
	}, nil
}

// ListFolder fetches the full listing of one folder, up to the provider's
// 500-resource page maximum, including context and embedded metadata.
func (c *Client) ListFolder(ctx context.Context, folder string) ([]RawResource, error) {
	query := url.Values{}
	query.Set("folder", folder)
	query.Set("max_results", strconv.Itoa(listingMaxResults))
	query.Set("include", "context,image_metadata")

	body, err := c.get(ctx, "/resources/by_folder", query)
	if err != nil {
		return nil, err
	}

	var listing listResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("decode folder listing: %w", err)
	}

	c.logger.Debug().
		Str("folder", folder).
		Int("resources", len(listing.Resources)).
		Msg("Fetched folder listing")

	return listing.Resources, nil
}

// GetResource fetches one resource's color and metadata detail. Detail
// lookups are addressed by asset id, not the listing's public id.
func (c *Client) GetResource(ctx context.Context, assetID string) (*RawResource, error) {
	query := url.Values{}
	query.Set("colors", "true")

	body, err := c.get(ctx, "/resources/"+url.PathEscape(assetID), query)
	if err != nil {
		return nil, err
	}

	var resource RawResource
	if err := json.Unmarshal(body, &resource); err != nil {
		return nil, fmt.Errorf("decode resource detail: %w", err)
	}
	return &resource, nil
}

// get performs one authenticated GET against the provider API and returns the
// response body. Non-2xx responses become *UpstreamError. No retries: a
// single upstream failure fails the whole request.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	startTime := time.Now()
	defer func() {
		upstreamRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	if c.quota != nil {
		allowed, err := c.quota.ShouldAllowRequest(ctx)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Quota check failed, allowing request")
		} else if !allowed {
			c.logger.Warn().Str("endpoint", endpoint).Msg("Request blocked by quota guard")
			upstreamRequestsTotal.WithLabelValues(endpoint, "quota_blocked").Inc()
			return nil, ErrQuotaExceeded
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.config.Key, c.config.Secret)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Msg("Executing provider request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		upstreamRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	if c.quota != nil {
		if err := c.quota.UpdateFromHeaders(ctx, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update quota state from headers")
		}
	}

	upstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ue := errorFromResponse(resp)
		upstreamErrorsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("message", ue.Message).
			Msg("Provider request error")
		return nil, ue
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
