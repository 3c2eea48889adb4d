// internal/common/http/client.go
package http

import (
	"context"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client is the shared outbound HTTP client for platform-facing calls such
// as the self-trigger endpoint. It enforces a per-request timeout so a slow
// downstream cannot stall the trigger pipeline.
type Client struct {
	httpClient *http.Client
}

// NewClient builds a client with the given timeout; a non-positive timeout
// falls back to the default.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// DoWithContext binds the request to ctx so callers can cancel in-flight
// calls independently of the client timeout.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}
