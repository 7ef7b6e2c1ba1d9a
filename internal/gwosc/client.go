package gwosc

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client provides access to the GWOSC archive.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	urlCache   *URLCache

	maxRetries   int
	retryBackoff time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new archive client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
		logger:       zap.NewNop(),
		maxRetries:   3,
		retryBackoff: 2 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithURLCache keeps parsed strain files in the given cache.
func WithURLCache(uc *URLCache) ClientOption {
	return func(c *Client) {
		c.urlCache = uc
	}
}
