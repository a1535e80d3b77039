package garmin

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError represents an unexpected response from the Garmin Connect
// API: any status outside the known 401/403/429 set.
type APIError struct {
	StatusCode int
	Message    string // server-supplied message, extracted best effort
	URL        string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("garmin api error: unknown response [%d] at %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("garmin api error: unknown response [%d] - %s at %s", e.StatusCode, e.Message, e.URL)
}

// AuthError represents an authentication failure: bad credentials, a
// missing CSRF token or SSO cookie during login, or a 401 response.
type AuthError struct {
	StatusCode int
	Message    string
	Err        error // Underlying error, if any
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	msg := "garmin auth error"
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (%d)", e.StatusCode)
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += fmt.Sprintf(" - %v", e.Err)
	}
	return msg
}

// Unwrap implements errors.Unwrap.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// ConnectionError represents a 403 response. Garmin Connect answers
// with 403 rather than 401 once a session has gone stale, so this is
// treated as an expired-session signal just like AuthError.
type ConnectionError struct {
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	msg := fmt.Sprintf("garmin connection error (%d): %s", e.StatusCode, e.Message)
	if e.Err != nil {
		msg += fmt.Sprintf(" - %v", e.Err)
	}
	return msg
}

// Unwrap implements errors.Unwrap.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// RateLimitError represents a 429 response. It is never retried; the
// caller decides when to back off.
type RateLimitError struct {
	Err error
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("garmin rate limit exceeded: %v", e.Err)
	}
	return "garmin rate limit exceeded"
}

// Unwrap implements errors.Unwrap.
func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// mapHTTPError converts an unsuccessful HTTP response to the
// appropriate error kind. The server message is parsed best effort; an
// unparseable body degrades the message to empty rather than failing
// the error path itself.
func mapHTTPError(resp *http.Response, body []byte) error {
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)

	baseErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    payload.Message,
		URL:        resp.Request.URL.String(),
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return &AuthError{
			StatusCode: resp.StatusCode,
			Message:    "authentication error",
			Err:        baseErr,
		}
	case http.StatusForbidden:
		return &ConnectionError{
			StatusCode: resp.StatusCode,
			Message:    "error connecting to Garmin Connect",
			Err:        baseErr,
		}
	case http.StatusTooManyRequests:
		return &RateLimitError{
			Err: baseErr,
		}
	default:
		return baseErr
	}
}
