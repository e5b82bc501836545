// internal/api/errors.go
package api

import (
	"errors"
	"fmt"
	"net/http"
)

// GenericFailureMessage is shown when the backend gave us nothing
// better to show.
const GenericFailureMessage = "An unexpected error occurred. Please try again."

// Error is a non-2xx response from the backend. Message holds the
// server-provided message verbatim when the body was parseable, and is
// empty otherwise.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// Unauthenticated reports whether the response means "not signed in"
// rather than a real failure.
func (e *Error) Unauthenticated() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// UserMessage maps any error coming out of the client to the text a
// user should see: the server's message verbatim when present, the
// generic fallback for unparseable bodies and transport failures.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericFailureMessage
}

// IsTransport reports whether err is a network/transport failure, as
// opposed to a response the backend actually produced. Transport
// failures are always retry-eligible.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *Error
	return !errors.As(err, &apiErr)
}
