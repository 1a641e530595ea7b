package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client is an HTTP implementation of Resolver against a JSON endpoint:
// GET {base}/resolve?url={pageURL} returns a Metadata document.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a resolver client for the given endpoint.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve fetches metadata for pageURL.
// Returns ErrUnresolvable when the endpoint reports no match.
func (c *Client) Resolve(ctx context.Context, pageURL string) (*Metadata, error) {
	endpoint := fmt.Sprintf("%s/resolve?url=%s", c.baseURL, url.QueryEscape(pageURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", pageURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("resolve %s: %w", pageURL, ErrUnresolvable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resolve %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	var meta Metadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if meta.Title == "" {
		return nil, fmt.Errorf("resolve %s: metadata without title: %w", pageURL, ErrUnresolvable)
	}
	return &meta, nil
}
