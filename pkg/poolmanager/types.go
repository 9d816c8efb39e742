// Package poolmanager is the client side of the external pool manager that
// selects a storage pool and starts a mover for each pNFS I/O session.
package poolmanager

import (
	"errors"
	"fmt"
)

// ErrNoRoute is returned when the pool manager cannot be reached or reports
// that no pool is available.
var ErrNoRoute = errors.New("no route to pool manager")

// Request asks the pool manager to start a mover for a file.
type Request struct {
	RequestID    string `json:"request_id"`
	FileID       string `json:"file_id"`
	StorageClass string `json:"storage_class"`
	ClientAddr   string `json:"client_addr"`

	// Challenge is the XDR stateid4 of the session. The selected pool echoes
	// it back in its readiness notification.
	Challenge []byte `json:"challenge"`

	Door      string `json:"door"`
	TimeoutMS int64  `json:"timeout_ms"`
}

// NoMover is the MoverID of an Ack whose reply carried no mover id.
const NoMover int32 = -1

// Ack is the pool manager's synchronous answer: which pool took the request
// and which mover it started.
type Ack struct {
	Pool    string `json:"pool"`
	MoverID int32  `json:"mover_id"`
}

// Error is a non-routing failure reported by the pool manager.
type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("pool manager: %s: %s (status %d)", e.Code, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("pool manager: %s (status %d)", e.Message, e.StatusCode)
}
