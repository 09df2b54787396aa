// Package fetch downloads published spreadsheet files.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds a whole download, body included.
	DefaultTimeout = 60 * time.Second
	// DefaultMaxBytes caps the size of a downloaded document.
	DefaultMaxBytes int64 = 64 << 20
	// DefaultUserAgent is sent when none is configured.
	DefaultUserAgent = "opendata-collector/1.0"
)

// ErrTooLarge indicates the response body exceeded the configured limit.
var ErrTooLarge = errors.New("response body too large")

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Options configures a Client.
type Options struct {
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string
	// HTTPClient overrides the underlying client; Timeout is ignored when set.
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client downloads documents over HTTP.
type Client struct {
	http      *http.Client
	maxBytes  int64
	userAgent string
	logger    *zap.Logger
}

// New builds a Client, filling unset options with defaults.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		http:      httpClient,
		maxBytes:  opts.MaxBytes,
		userAgent: opts.UserAgent,
		logger:    opts.Logger,
	}
}

// Fetch downloads baseURL + fileName and returns the body.
func (c *Client) Fetch(ctx context.Context, baseURL, fileName string) ([]byte, error) {
	url := baseURL + fileName

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("GET %s: %w (limit %d bytes)", url, ErrTooLarge, c.maxBytes)
	}

	c.logger.Debug("downloaded document",
		zap.String("url", url),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))
	return body, nil
}
