package services

import (
	"errors"
	"fmt"

	"github.com/desertthunder/resonate/internal/shared"
)

// ErrorKind classifies a [RequestError].
type ErrorKind int

const (
	// NetworkError means the request never produced an HTTP response.
	NetworkError ErrorKind = iota
	// HTTPError means the server answered with a failure (non-2xx, or a 2xx carrying an error field).
	HTTPError
	// ValidationError is raised client-side before any request is sent.
	ValidationError
)

func (k ErrorKind) String() string {
	switch k {
	case NetworkError:
		return "network"
	case HTTPError:
		return "http"
	case ValidationError:
		return "validation"
	default:
		return "unknown"
	}
}

// RequestError is the single error type surfaced to read and mutation state.
//
// Error returns Message verbatim so the UI can show it as-is.
type RequestError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is matches the kind's sentinel so callers can branch with [errors.Is].
func (e *RequestError) Is(target error) bool {
	switch target {
	case shared.ErrNetwork:
		return e.Kind == NetworkError
	case shared.ErrAPIRequest:
		return e.Kind == HTTPError
	case shared.ErrInvalidInput:
		return e.Kind == ValidationError
	}
	return false
}

// NewValidationError builds a client-side [ValidationError].
func NewValidationError(format string, args ...any) *RequestError {
	return &RequestError{Kind: ValidationError, Message: fmt.Sprintf(format, args...)}
}

func networkError(message string, err error) *RequestError {
	return &RequestError{Kind: NetworkError, Message: message, Err: err}
}

func httpError(status int, message string) *RequestError {
	return &RequestError{Kind: HTTPError, Status: status, Message: message}
}

// AsRequestError extracts a [RequestError] from err's chain.
func AsRequestError(err error) (*RequestError, bool) {
	var re *RequestError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// Message returns the text the UI should show for err.
//
// Anything that is not a [RequestError] (a canceled context, a storage failure) falls back to its own text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if re, ok := AsRequestError(err); ok {
		return re.Message
	}
	return err.Error()
}
