package keep

import (
	"errors"
	"fmt"
)

// ErrBadAuthentication indicates Google rejected the email/password pair.
// Accounts with 2-step verification need an app password.
var ErrBadAuthentication = errors.New("keep: bad authentication (use an app password if 2-step verification is on)")

// ErrAuthFailed wraps any other login or token exchange failure.
var ErrAuthFailed = errors.New("keep: authentication failed")

// ErrUnauthorized indicates the access token was rejected by the Keep API.
var ErrUnauthorized = errors.New("keep: access token rejected")

// ErrNotLoggedIn is returned when syncing before Login or Resume.
var ErrNotLoggedIn = errors.New("keep: not logged in")

// ErrResyncRequired indicates the server asked for a full resync.
var ErrResyncRequired = errors.New("keep: full resync required")

// APIError is an error payload returned by the Keep notes API.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("keep API error %d: %s", e.Code, e.Message)
}

// ServerError represents a 5xx response from Google.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("keep server error: HTTP %d", e.StatusCode)
}
