package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the content item does not exist on the server
	ErrNotFound = errors.New("content not found")

	// ErrServerOffline indicates the content service is unreachable
	ErrServerOffline = errors.New("content service is unreachable")

	// ErrAuthFailed indicates the access token was rejected
	ErrAuthFailed = errors.New("authentication token is invalid")

	// ErrNotFoundInCache indicates the screen never loaded the item.
	// This is a steady-state condition, not a failure.
	ErrNotFoundInCache = errors.New("content not loaded on this screen")

	// ErrStaleCallback indicates an async result arrived after its screen
	// was torn down or after a newer request superseded it.
	ErrStaleCallback = errors.New("screen no longer alive")

	// ErrActionPending indicates the same action is already in flight for the item
	ErrActionPending = errors.New("action already pending")
)

// NetworkError is a remote failure carrying a message fit for an alert
type NetworkError struct {
	Title   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Title, e.Message, e.Err)
	}
	return e.Title + ": " + e.Message
}

// Unwrap returns the underlying cause
func (e *NetworkError) Unwrap() error { return e.Err }

// NewNetworkError wraps err with a user-facing title. The message is derived
// from the cause so the alert says something more useful than "failed".
func NewNetworkError(title string, err error) *NetworkError {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return &NetworkError{Title: title, Message: ne.Message, Err: ne.Err}
	}
	msg := "Something went wrong. Please try again."
	switch {
	case errors.Is(err, ErrServerOffline):
		msg = "Check your connection and try again."
	case errors.Is(err, ErrAuthFailed):
		msg = "Your session has expired. Run setup to sign in again."
	case errors.Is(err, ErrNotFound):
		msg = "This content is no longer available."
	}
	return &NetworkError{Title: title, Message: msg, Err: err}
}

// IsSteadyState reports whether err is an expected condition that must not
// be surfaced to the user or logged as an error.
func IsSteadyState(err error) bool {
	return errors.Is(err, ErrNotFoundInCache) || errors.Is(err, ErrStaleCallback)
}
