package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound reports an id-addressed operation on an entity that does not
// exist or is not owned by the caller.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed local input. It is handled at the edit
// workflow boundary and never reaches a store.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s", e.Reason)
}

// Validation builds a ValidationError from a format string.
func Validation(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NetworkError reports a request that could not be dispatched or a response
// that could not be parsed as the expected shape.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RemoteError reports a non-2xx response. Detail carries the server-provided
// text verbatim.
type RemoteError struct {
	Status int
	Detail string
}

func (e *RemoteError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("remote error (status %d)", e.Status)
	}
	return fmt.Sprintf("remote error (status %d): %s", e.Status, e.Detail)
}

// Is lets errors.Is(err, ErrNotFound) match a 404 from the remote store.
func (e *RemoteError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}
