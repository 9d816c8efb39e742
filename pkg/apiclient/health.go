package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// HealthResponse is the body of the health endpoints.
type HealthResponse struct {
	Status    string     `json:"status"`
	Timestamp string     `json:"timestamp"`
	Data      HealthData `json:"data"`
	Error     string     `json:"error,omitempty"`
}

// HealthData carries the liveness details. Readiness only sets
// CatalogLatency.
type HealthData struct {
	Service        string `json:"service,omitempty"`
	StartedAt      string `json:"started_at,omitempty"`
	Uptime         string `json:"uptime,omitempty"`
	UptimeSec      int64  `json:"uptime_sec,omitempty"`
	CatalogLatency string `json:"catalog_latency,omitempty"`
}

// Healthy reports whether the server said it is healthy.
func (h *HealthResponse) Healthy() bool {
	return h.Status == "healthy"
}

// Health calls the liveness endpoint.
func (c *Client) Health() (*HealthResponse, error) {
	return c.health("/health")
}

// Ready calls the readiness endpoint. An unready server is not an error:
// the returned response reports it.
func (c *Client) Ready() (*HealthResponse, error) {
	return c.health("/health/ready")
}

func (c *Client) health(path string) (*HealthResponse, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("invalid health response (HTTP %d): %w", resp.StatusCode, err)
	}
	return &health, nil
}
