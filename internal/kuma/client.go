package kuma

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxResponseBodySize = 1 << 20 // 1MB

// fetchTimeout bounds every backend request so a stuck backend cannot
// starve the tick that issued it.
const fetchTimeout = 10 * time.Second

// connection pooling limits to prevent resource exhaustion when the
// candidate list is retried every cycle
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second
)

// authMode selects how a configured credential is attached to a request.
type authMode int

const (
	authNone   authMode = iota
	authBearer          // Authorization: Bearer <key> (JSON endpoints)
	authBasic           // HTTP basic, empty user + key (metrics endpoint)
)

// Client is an HTTP client wrapper for talking to the monitoring
// backend.
//
// Timeouts are applied per-request via context rather than a global
// client timeout. Response bodies are limited to 1MB.
type Client struct {
	httpClient *http.Client
	apiKey     string
}

// NewClient creates a backend [Client].
//
// apiKey may be empty, in which case requests are sent unauthenticated
// and only public data is expected back.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			// no default timeout - per-request timeouts via context
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
	}
}

// get performs a GET against one backend URL and returns the body.
//
// Error classification:
//   - network/timeout failures and non-2xx responses other than 401
//     come back as [*TransportError]
//   - a 401 response comes back as [ErrUnauthorized] so the caller can
//     decide whether retrying other candidates is pointless
func (c *Client) get(ctx context.Context, url string, mode authMode) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	if c.apiKey != "" {
		switch mode {
		case authBearer:
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		case authBasic:
			req.SetBasicAuth("", c.apiKey)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%s: %w", url, ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	return body, nil
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times. After Close, the client remains usable
// but new connections will be established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
