package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Config defines the setup for the HTTP client shared by the outbound
// API clients (LLM provider, brand metadata, static page fetches).
type Config struct {
	Timeout time.Duration
	// MaxRedirects caps redirect chains; negative disables following
	// redirects entirely.
	MaxRedirects int
	// UserAgent, when set, is applied to every request that does not
	// already carry one.
	UserAgent string
}

// Client wraps a standard http.Client with a configurable timeout and
// redirect policy.
type Client struct {
	*http.Client
	userAgent string
}

// New creates a client from the provided configuration.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := &http.Client{Timeout: cfg.Timeout}

	if cfg.MaxRedirects < 0 {
		c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	} else if cfg.MaxRedirects > 0 {
		limit := cfg.MaxRedirects
		c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= limit {
				return fmt.Errorf("stopped after %d redirects", limit)
			}
			return nil
		}
	}

	return &Client{Client: c, userAgent: cfg.UserAgent}
}

// Do executes the request under the provided context. The context
// controls cancellation independently of the client-level timeout.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if ctx == nil {
		return nil, errors.New("nil context")
	}

	req = req.Clone(ctx)
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	return resp, nil
}
