package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for the transport taxonomy. Match with errors.Is.
var (
	// ErrUnavailable means no response was received at all (network failure).
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized is an authorization failure that survived the refresh
	// protocol (or occurred where no refresh applies).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means the resource is absent. Lookups that treat absence as
	// a normal outcome must check for it explicitly.
	ErrNotFound = errors.New("not found")
)

// genericFailureMessage is shown when the server provided no message of its own.
const genericFailureMessage = "something went wrong, please try again"

// ValidationError is a 4xx rejection carrying field-level messages.
// Match with errors.As.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return genericFailureMessage
}

// ServerError is a 5xx response.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error (%d)", e.Status)
}

// UserMessage extracts the text worth showing to the user for err: the
// server-provided message when present, else a generic fallback.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var ve *ValidationError
	if errors.As(err, &ve) && ve.Message != "" {
		return ve.Message
	}
	var se *ServerError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}

	switch {
	case errors.Is(err, ErrUnavailable):
		return "server unavailable, check your connection"
	case errors.Is(err, ErrUnauthorized):
		return "session expired, please log in again"
	case errors.Is(err, ErrNotFound):
		return "not found"
	}
	return genericFailureMessage
}
