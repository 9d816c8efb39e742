// Package apiclient provides a REST API client for the dmds admin commands
// and for data servers posting notifications.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout = 30 * time.Second

	// A LAYOUTGET waits a bounded time for its pool to report ready, so
	// notifications are retried briefly rather than until the timeout.
	defaultNotifyAttempts = 3
	defaultNotifyBackoff  = 100 * time.Millisecond
)

// errRequest marks failures to reach the server at all.
var errRequest = errors.New("request failed")

// Client is the dmds API client. Admin calls are sent once; pool
// notifications are retried on transient failures.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string

	notifyAttempts int
	notifyBackoff  time.Duration
}

// New creates a new API client.
func New(baseURL string) *Client {
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{Timeout: defaultTimeout},
		notifyAttempts: defaultNotifyAttempts,
		notifyBackoff:  defaultNotifyBackoff,
	}
}

func (c *Client) clone() *Client {
	cp := *c
	return &cp
}

// WithToken returns a new client with the given token.
func (c *Client) WithToken(token string) *Client {
	cp := c.clone()
	cp.token = token
	return cp
}

// WithTimeout returns a new client whose requests time out after d.
func (c *Client) WithTimeout(d time.Duration) *Client {
	cp := c.clone()
	cp.httpClient = &http.Client{Timeout: d}
	return cp
}

// WithNotifyRetry returns a new client that sends each pool notification
// up to attempts times, doubling backoff between tries. attempts < 1 is
// treated as 1.
func (c *Client) WithNotifyRetry(attempts int, backoff time.Duration) *Client {
	cp := c.clone()
	cp.notifyAttempts = max(attempts, 1)
	cp.notifyBackoff = backoff
	return cp
}

// SetToken sets the authentication token.
func (c *Client) SetToken(token string) {
	c.token = token
}

// do performs one HTTP request and decodes the response.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", errRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return parseAPIError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// notify posts a pool notification, retrying transport failures and
// gateway/unavailable answers until the attempts run out or ctx is done.
func (c *Client) notify(ctx context.Context, path string, body, result any) error {
	backoff := c.notifyBackoff
	var err error
	for attempt := 1; ; attempt++ {
		err = c.do(ctx, http.MethodPost, path, body, result)
		if err == nil || !isTransient(err) || attempt >= c.notifyAttempts || ctx.Err() != nil {
			return err
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
		backoff *= 2
	}
}

func isTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	return errors.Is(err, errRequest)
}

func (c *Client) get(path string, result any) error {
	return c.do(context.Background(), http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body, result any) error {
	return c.do(context.Background(), http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body, result any) error {
	return c.do(context.Background(), http.MethodPut, path, body, result)
}

func (c *Client) delete(path string, result any) error {
	return c.do(context.Background(), http.MethodDelete, path, nil, result)
}
