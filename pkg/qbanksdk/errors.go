package qbanksdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError represents a non-2xx response from the service. It implements the
// error interface so callers can errors.As on it to inspect the status code.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int `json:"-"`

	// Message is the server's human-readable failure description
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("qbank: HTTP %d: %s", e.StatusCode, e.Message)
}

// parseErrorResponse turns an error response body into a typed *APIError.
// Returns nil for 2xx responses.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Message}
	}

	// Bearer failures carry no JSON body, only a WWW-Authenticate header.
	if desc := resp.Header.Get("WWW-Authenticate"); desc != "" && resp.StatusCode == http.StatusUnauthorized {
		return &APIError{StatusCode: resp.StatusCode, Message: desc}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}
}
