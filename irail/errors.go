package irail

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the requested station or vehicle is absent
// from the upstream API
var ErrNotFound = errors.New("irail: not found")

// TransportError is a network or HTTP-level failure reaching the upstream
// API. Transport errors are retryable.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("irail: transport error fetching %s: %s", e.URL, e.Err)
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError is an unexpected upstream payload shape. Parse errors are not
// retryable; the offending item is skipped.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("irail: parse error in response from %s: %s", e.URL, e.Err)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Err
}

// MalformedVehicleIDError is returned when a vehicle identifier does not
// follow the <country>.<operator>.<code> form
type MalformedVehicleIDError struct {
	ID string
}

func (e *MalformedVehicleIDError) Error() string {
	return fmt.Sprintf("irail: malformed vehicle identifier %q", e.ID)
}
