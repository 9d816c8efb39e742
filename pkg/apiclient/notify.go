package apiclient

import (
	"context"
	"net/url"
)

type poolReadyRequest struct {
	Address   string `json:"address"`
	Challenge []byte `json:"challenge"`
}

type transferFinishedRequest struct {
	Stateid []byte `json:"stateid"`
}

type transferFinishedResponse struct {
	SessionFound bool `json:"session_found"`
}

// PoolReady reports that pool serves the transfer identified by challenge
// at address ("host:port"). Resending it is harmless, so transient failures
// are retried.
func (c *Client) PoolReady(ctx context.Context, pool, address string, challenge []byte) error {
	return c.notify(ctx, "/api/v1/pools/"+url.PathEscape(pool)+"/ready",
		poolReadyRequest{Address: address, Challenge: challenge}, nil)
}

// TransferFinished reports that the mover for stateid exited. It returns
// whether the server still had a session for it.
func (c *Client) TransferFinished(ctx context.Context, stateid []byte) (bool, error) {
	var resp transferFinishedResponse
	if err := c.notify(ctx, "/api/v1/transfers/finished", transferFinishedRequest{Stateid: stateid}, &resp); err != nil {
		return false, err
	}
	return resp.SessionFound, nil
}
