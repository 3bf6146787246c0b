package notion

import (
	"errors"
	"fmt"
)

// ErrUnauthorized indicates the integration token was rejected.
var ErrUnauthorized = errors.New("notion: invalid or revoked integration token")

// ErrRateLimited indicates the API rate limit was exceeded.
var ErrRateLimited = errors.New("notion: API rate limit exceeded")

// APIError is an error object returned by the Notion API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion API error %d (%s): %s", e.Status, e.Code, e.Message)
}

// ServerError represents a 5xx response from the Notion API
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("notion server error: HTTP %d", e.StatusCode)
}
