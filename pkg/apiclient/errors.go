package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is an error response from the API. The server answers errors
// with RFC 7807 problem documents; other bodies end up in Detail.
type APIError struct {
	StatusCode int    `json:"status"`
	Title      string `json:"title"`
	Detail     string `json:"detail,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%d %s", e.StatusCode, e.Title)
	}
	return fmt.Sprintf("%s: %s", e.Title, e.Detail)
}

// IsAuthError returns true if this is an authentication error.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsNotFound returns true if this is a not found error.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsValidationError returns true if the request was rejected as invalid.
func (e *APIError) IsValidationError() bool {
	return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
}

func parseAPIError(status int, body []byte) *APIError {
	var apiErr APIError
	if json.Unmarshal(body, &apiErr) != nil || apiErr.Title == "" {
		apiErr = APIError{
			Title:  http.StatusText(status),
			Detail: string(bytes.TrimSpace(body)),
		}
	}
	apiErr.StatusCode = status
	return &apiErr
}
