package ipinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client queries an external IP echo service. The gate uses it at startup to
// log its own egress address; deployments without the echo URL configured
// simply skip the lookup.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for injecting a logging
// transport or test doubles).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a client for an IP echo service. The service is expected
// to answer GET with either a bare IP string or a JSON body {"ip": "..."}.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup fetches the caller's public IP from the echo service.
func (c *Client) Lookup(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		//nolint:errcheck
		resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ip echo service returned status %d", resp.StatusCode)
	}

	// JSON form first, then bare string
	var payload struct {
		IP string `json:"ip"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.IP != "" {
		if ip := parseIP(payload.IP); ip != "" {
			return ip, nil
		}
	}
	if ip := parseIP(strings.TrimSpace(string(body))); ip != "" {
		return ip, nil
	}

	return "", fmt.Errorf("ip echo service returned unparsable body")
}
