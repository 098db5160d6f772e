// Package birdeye implements the BirdEye market-data API client.
package birdeye

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/solsift/solsift/internal/common"
	"github.com/solsift/solsift/internal/model"
	"github.com/solsift/solsift/internal/service"
)

const defaultBaseURL = "https://public-api.birdeye.so"

// Config holds configuration for the BirdEye client.
type Config struct {
	APIKey            string
	BaseURL           string
	RequestsPerSecond float64
	Timeout           time.Duration
	Retry             service.RetryOptions
}

// Client is an HTTP client for the BirdEye API. All calls share one rate
// limiter so that concurrent workers cannot exceed the aggregate request
// budget, and one circuit breaker so that a failing upstream is backed off
// quickly.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	baseURL    string
	apiKey     string
	retryOpts  service.RetryOptions
}

// NewClient creates a BirdEye API client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: birdeye API key is required", common.ErrMissingConfig)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2 // courtesy limit, ~500ms between requests
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "birdeye",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		apiKey:    cfg.APIKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		breaker:   breaker,
		retryOpts: cfg.Retry,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// ListTokens fetches one page of the v3 token list under the given filter
// parameters.
func (c *Client) ListTokens(ctx context.Context, params model.FilterParameterSet, offset, limit int) ([]TokenRecord, error) {
	q := url.Values{}
	q.Set("sort_by", params.SortBy)
	q.Set("sort_type", params.SortType)
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))

	// Deterministic query order keeps request logs diffable.
	keys := make([]string, 0, len(params.Filters))
	for key := range params.Filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		q.Set(key, strconv.FormatFloat(params.Filters[key], 'f', -1, 64))
	}

	var data tokenListData
	if err := c.getJSON(ctx, "/defi/v3/token/list", q, &data); err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	return data.Items, nil
}

// TokenMetadata fetches extended metadata for up to 50 addresses in one call.
func (c *Client) TokenMetadata(ctx context.Context, addresses []string) (map[string]TokenMetadata, error) {
	if len(addresses) == 0 {
		return map[string]TokenMetadata{}, nil
	}
	q := url.Values{}
	q.Set("list_address", strings.Join(addresses, ","))

	data := make(map[string]TokenMetadata)
	if err := c.getJSON(ctx, "/defi/v3/token/meta-data/multiple", q, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch token metadata: %w", err)
	}
	return data, nil
}

// WalletTokenBalance returns the wallet's balance of the given token in UI
// units. A wallet without the token yields zero.
func (c *Client) WalletTokenBalance(ctx context.Context, wallet, tokenAddress string) (float64, error) {
	q := url.Values{}
	q.Set("wallet", wallet)
	q.Set("token_address", tokenAddress)

	var data *walletBalanceData
	if err := c.getJSON(ctx, "/v1/wallet/token_balance", q, &data); err != nil {
		return 0, fmt.Errorf("failed to fetch wallet balance: %w", err)
	}
	if data == nil {
		// The endpoint returns null data when the wallet holds none.
		return 0, nil
	}
	return data.UIAmount, nil
}

// getJSON performs a rate-limited, retried GET through the circuit breaker
// and decodes the envelope's data payload into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	return common.WithRetry(ctx, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}
		_, err := c.breaker.Execute(func() (interface{}, error) {
			return nil, c.doRequest(ctx, path, query, out)
		})
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return fmt.Errorf("%w: circuit open", common.ErrMarketDataUnavailable)
		}
		return err
	}, c.retryOpts)
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &common.RetryableError{Err: fmt.Errorf("failed to create request: %w", err), Retryable: false}
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return common.ErrRateLimit
	case resp.StatusCode >= 500:
		return fmt.Errorf("birdeye API error (status %d): %s", resp.StatusCode, string(body))
	case resp.StatusCode != http.StatusOK:
		return &common.RetryableError{
			Err:       fmt.Errorf("birdeye API error (status %d): %s", resp.StatusCode, string(body)),
			Retryable: false,
		}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &common.RetryableError{Err: fmt.Errorf("failed to parse response: %w", err), Retryable: false}
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "unknown error"
		}
		return &common.RetryableError{Err: fmt.Errorf("birdeye API rejected request: %s", msg), Retryable: false}
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &common.RetryableError{Err: fmt.Errorf("failed to parse response data: %w", err), Retryable: false}
	}
	return nil
}
