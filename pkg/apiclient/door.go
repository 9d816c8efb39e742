package apiclient

import (
	"fmt"
	"net/url"
	"time"
)

// Device is a known pool device.
type Device struct {
	DeviceID string `json:"device_id"`
	Pool     string `json:"pool"`
	Address  string `json:"address"`
}

// Session is an active layout session.
type Session struct {
	Stateid string    `json:"stateid"`
	Pool    string    `json:"pool"`
	MoverID int32     `json:"mover_id"`
	FileID  string    `json:"file_id"`
	IOMode  string    `json:"iomode"`
	Started time.Time `json:"started"`
}

// Info is the door summary.
type Info struct {
	Threads  int       `json:"threads"`
	InFlight int       `json:"in_flight"`
	Pending  int       `json:"pending"`
	Pools    []Device  `json:"pools"`
	Movers   []Session `json:"movers"`
}

// Threads is the pNFS worker limit and its current use.
type Threads struct {
	Count    int `json:"count"`
	InFlight int `json:"in_flight"`
}

// ListDevices returns all known pool devices.
func (c *Client) ListDevices() ([]Device, error) {
	return listResources[Device](c, "/api/v1/devices")
}

// ListSessions returns all active layout sessions.
func (c *Client) ListSessions() ([]Session, error) {
	return listResources[Session](c, "/api/v1/sessions")
}

// GetInfo returns the door summary.
func (c *Client) GetInfo() (*Info, error) {
	return getResource[Info](c, "/api/v1/info")
}

// KillMover asks the server to kill mover on pool.
func (c *Client) KillMover(pool string, moverID int32) error {
	return c.post(fmt.Sprintf("/api/v1/pools/%s/movers/%d/kill", url.PathEscape(pool), moverID), nil, nil)
}

// GetThreads returns the pNFS worker limit.
func (c *Client) GetThreads() (*Threads, error) {
	return getResource[Threads](c, "/api/v1/settings/threads")
}

// SetThreadCount changes the pNFS worker limit.
func (c *Client) SetThreadCount(n int) (*Threads, error) {
	return updateResource[Threads](c, "/api/v1/settings/threads", map[string]int{"count": n})
}
