package authapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAuthentication matches every *AuthenticationError.
	ErrAuthentication = errors.New("authentication failed")
	// ErrNotFound matches a *StatusError with status 404.
	ErrNotFound = errors.New("resource not found")
	// ErrUnexpectedResponse is returned when a 2xx body cannot be decoded.
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// AuthenticationError is a failed login: rejected credentials, a non-2xx
// response, or a transport failure.
type AuthenticationError struct {
	// Status is the HTTP status, or 0 for transport failures.
	Status int
	// Detail is the server-provided message, when present.
	Detail string
	// Err is the transport error, when there was no response.
	Err error
}

func (e *AuthenticationError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("authentication failed: %v", e.Err)
	case e.Detail != "":
		return fmt.Sprintf("authentication failed (%d): %s", e.Status, e.Detail)
	default:
		return fmt.Sprintf("authentication failed (%d)", e.Status)
	}
}

func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Message returns the text to show the person logging in.
func (e *AuthenticationError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Err != nil {
		return "Unable to reach the login service"
	}
	return "Login failed"
}

// StatusError is a non-2xx response from a non-login endpoint.
type StatusError struct {
	Method string
	Path   string
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Status == 404
}

// parseDetail extracts {"detail": ...} from an error body. A string detail
// is returned as-is; structured details are returned as compact JSON; a
// non-JSON body is returned trimmed.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return strings.TrimSpace(string(body))
	}
	if len(envelope.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}
	return string(envelope.Detail)
}
