package poolmanager

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/dittomds/internal/logger"
)

// Client talks to the pool manager over HTTP/JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	door       string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithDoor sets the door name reported in selection requests.
func WithDoor(name string) Option {
	return func(c *Client) { c.door = name }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a pool manager client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		door:       "dmds",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SelectReadPool asks for a pool to serve reads of an existing file.
func (c *Client) SelectReadPool(ctx context.Context, req Request) (Ack, error) {
	return c.selectPool(ctx, "/pools/read", req)
}

// SelectWritePool asks for a pool to receive a newly created file.
func (c *Client) SelectWritePool(ctx context.Context, req Request) (Ack, error) {
	return c.selectPool(ctx, "/pools/write", req)
}

func (c *Client) selectPool(ctx context.Context, path string, req Request) (Ack, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.Door == "" {
		req.Door = c.door
	}

	ack := Ack{MoverID: NoMover}
	if err := c.do(ctx, http.MethodPost, path, req, &ack); err != nil {
		return Ack{}, err
	}
	if ack.Pool == "" {
		return Ack{}, &Error{StatusCode: http.StatusOK, Message: "empty pool in selection reply"}
	}

	logger.DebugCtx(ctx, "Pool selected",
		"request_id", req.RequestID,
		"file_id", req.FileID,
		"pool", ack.Pool,
		"mover_id", ack.MoverID)
	return ack, nil
}

// KillMover instructs pool to stop mover. Only the HTTP status is checked.
func (c *Client) KillMover(ctx context.Context, pool string, moverID int32) error {
	path := fmt.Sprintf("/pools/%s/movers/%s/kill",
		url.PathEscape(pool), strconv.FormatInt(int64(moverID), 10))
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
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
		if isUnreachable(err) {
			return fmt.Errorf("%w: %v", ErrNoRoute, err)
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusServiceUnavailable {
		return fmt.Errorf("%w: %s", ErrNoRoute, bytes.TrimSpace(respBody))
	}
	if resp.StatusCode >= 400 {
		pmErr := &Error{StatusCode: resp.StatusCode}
		if json.Unmarshal(respBody, pmErr) != nil || pmErr.Message == "" {
			pmErr.Message = string(bytes.TrimSpace(respBody))
		}
		return pmErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// isUnreachable reports whether err means the pool manager could not be
// contacted at all.
func isUnreachable(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
