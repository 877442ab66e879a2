package huggingface

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// defaultBaseURL is the public HuggingFace Hub endpoint.
	defaultBaseURL = "https://huggingface.co"

	// userAgent identifies tok to the Hub API.
	userAgent = "tokker-cli"

	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 2
)

// Config holds HTTP settings for the Hub client.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

// DefaultConfig returns sensible default Hub client settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:        defaultBaseURL,
		Timeout:        defaultTimeout,
		MaxRetries:     defaultMaxRetries,
		RetryBaseDelay: 500 * time.Millisecond,
		RetryMaxDelay:  4 * time.Second,
	}
}

// Client handles HTTP communication with the HuggingFace Hub API.
type Client struct {
	httpClient *http.Client
	config     Config
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client for the Client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.config.Timeout = timeout
		c.httpClient.Timeout = timeout
	}
}

// WithMaxRetries sets the maximum number of retries.
func WithMaxRetries(maxRetries int) ClientOption {
	return func(c *Client) {
		c.config.MaxRetries = maxRetries
	}
}

// WithBaseURL sets the base URL for Hub requests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.config.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// NewClient creates a new Hub API client with functional options.
func NewClient(config Config, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ModelExists reports whether the named model is published on the Hub.
// Missing, gated, and private repositories all answer false: none of them
// can serve a tokenizer to an anonymous download.
func (c *Client) ModelExists(ctx context.Context, name string) (bool, error) {
	resp, err := c.doRequestWithRetry(ctx, http.MethodGet, "/api/models/"+name)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound, http.StatusUnauthorized, http.StatusForbidden:
		return false, nil
	default:
		return false, fmt.Errorf("hub returned HTTP %d for %q", resp.StatusCode, name)
	}
}

// doRequestWithRetry performs an HTTP request with exponential backoff retry.
func (c *Client) doRequestWithRetry(ctx context.Context, method, path string) (*http.Response, error) {
	var lastErr error
	delay := c.config.RetryBaseDelay
	if delay == 0 {
		delay = 500 * time.Millisecond
	}

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff with cap
			delay *= 2
			if c.config.RetryMaxDelay > 0 && delay > c.config.RetryMaxDelay {
				delay = c.config.RetryMaxDelay
			}
		}

		req, err := c.newRequest(ctx, method, path)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		// Check for retryable status codes (429 Too Many Requests, 5xx Server Errors)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			// Check for Retry-After header
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if seconds, err := strconv.Atoi(retryAfter); err == nil {
					delay = time.Duration(seconds) * time.Second
				}
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("hub request failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
}

// newRequest creates a new HTTP request with required headers.
func (c *Client) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	url := c.config.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	// Gated repositories answer with a token, matching the behavior of
	// the official Hub clients.
	if token := hubToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

// hubToken returns the Hub access token from the environment, if any.
func hubToken() string {
	if token := os.Getenv("HF_TOKEN"); token != "" {
		return token
	}
	return os.Getenv("HUGGING_FACE_HUB_TOKEN")
}
