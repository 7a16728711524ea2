package apiclient

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ashureev/castline/internal/validation"
)

var (
	// ErrTransport is returned when no response was received.
	ErrTransport = errors.New("transport error")

	// ErrAuthRequired is returned when an authenticated call is attempted without a session.
	ErrAuthRequired = errors.New("authentication required")

	// ErrValidation matches client-side validation failures (*validation.Error).
	ErrValidation = validation.ErrInvalid
)

// APIError is an HTTP error status returned by the backend.
type APIError struct {
	Status  int
	Message string // server-supplied "message", may be empty
	Method  string
	Path    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

// SchemaError is returned when a response body does not have the expected shape.
type SchemaError struct {
	Path string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unexpected response from %s: %v", e.Path, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// UserMessage turns err into the string a view shows inline: the server's
// message when it sent one, the first validation message for client-side
// failures, otherwise fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.First()
	}

	return fallback
}

// Report logs err at Warn and returns the user-facing message for it.
func Report(logger *slog.Logger, op string, err error, fallback string) string {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("Request failed", "op", op, "error", err)
	return UserMessage(err, fallback)
}
