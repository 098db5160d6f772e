// Package llm provides the decision-function client used as an untrusted
// scoring and selection oracle inside selected pipeline stages. The oracle
// returns natural-language text with no structural guarantee; all parsing
// and validation is the caller's responsibility.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/solsift/solsift/internal/common"
	"github.com/solsift/solsift/internal/service"
)

// provider is the raw completion transport implemented per vendor.
type provider interface {
	complete(ctx context.Context, system, user string) (string, error)
}

// Config holds configuration for the oracle client.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	MaxRetries  int
	RetryDelay  time.Duration
	RateLimit   int // requests per minute
	Temperature float64
	MaxTokens   int
}

// Client calls the configured completion provider with rate limiting and
// bounded retries. It implements the pipeline's oracle contract.
type Client struct {
	provider    provider
	logger      *slog.Logger
	rateLimiter *rateLimiter
	retryOpts   service.RetryOptions
}

// NewClient creates an oracle client for the configured provider.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	var p provider
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "anthropic":
		p, err = newAnthropicProvider(cfg)
	case "openai":
		p, err = newOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported oracle provider: %s", common.ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create oracle provider: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		provider:    p,
		logger:      logger,
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}, nil
}

// Close releases the client's rate limiter. The client must not be used
// after Close.
func (c *Client) Close() {
	c.rateLimiter.stop()
}

// Complete sends the prompt and payload to the provider and returns the raw
// response text. Transient failures are retried with exponential backoff.
func (c *Client) Complete(ctx context.Context, prompt, payload string) (string, error) {
	var response string

	err := common.WithRetry(ctx, func() error {
		if waitErr := c.rateLimiter.wait(ctx); waitErr != nil {
			return &common.RetryableError{Err: waitErr, Retryable: false}
		}

		start := time.Now()
		text, completeErr := c.provider.complete(ctx, prompt, payload)
		if completeErr != nil {
			return completeErr
		}

		c.logger.Debug("oracle completion finished",
			"duration", time.Since(start),
			"response_bytes", len(text))
		response = text
		return nil
	}, c.retryOpts)
	if err != nil {
		return "", fmt.Errorf("oracle completion failed: %w", err)
	}

	return response, nil
}
