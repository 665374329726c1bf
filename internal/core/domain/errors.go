package domain

import (
	"errors"
	"fmt"
)

// ErrNoRouteFound means the routing service returned zero candidate paths
// between two successfully geocoded points.
var ErrNoRouteFound = errors.New("no walking route found")

// AddressNotFoundError means geocoding returned zero candidates for an
// address. User-correctable: the message carries the offending input.
type AddressNotFoundError struct {
	Address string
}

func (e *AddressNotFoundError) Error() string {
	return fmt.Sprintf("address not found: %s", e.Address)
}

// UpstreamError wraps a transport or service-level failure from one of the
// external collaborators. Not correctable by rephrasing the addresses.
type UpstreamError struct {
	Cause error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream service error: %v", e.Cause)
}

func (e *UpstreamError) Unwrap() error { return e.Cause }
