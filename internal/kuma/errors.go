package kuma

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthorized is returned when the backend answers 401. When no
// credential is configured the remaining candidates would fail the
// same way, so the fetch short-circuits.
var ErrUnauthorized = errors.New("backend rejected request (401 unauthorized)")

// TransportError indicates a backend endpoint could not be reached or
// answered outside the 2xx range. It is recovered locally by trying
// the next candidate.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error on %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError indicates an endpoint was reachable but its
// body did not match the expected shape. Like [TransportError] it is
// recovered locally by trying the next candidate. An empty monitor
// list is not malformed.
type MalformedResponseError struct {
	Shape Shape
	Err   error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %v", e.Shape, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// ExhaustedError is returned when every candidate endpoint failed. It
// aborts the current cycle; no partial render is attempted.
type ExhaustedError struct {
	// Attempts holds one error per candidate, in try order.
	Attempts []error
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, err := range e.Attempts {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("all %d backend endpoints exhausted: %s", len(e.Attempts), strings.Join(parts, "; "))
}

// Unwrap exposes the per-candidate errors to errors.Is/As.
func (e *ExhaustedError) Unwrap() []error { return e.Attempts }
