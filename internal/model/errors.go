package model

import "errors"

// Business failures are typed so callers can render specific guidance.
// They are wrapped with fmt.Errorf("context: %w", err) and checked with
// errors.Is.
var (
	// ErrInvalidTransition signals a lifecycle or request-state change
	// attempted from a state that does not permit it.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrNotFound signals that a referenced user, class or request id does
	// not resolve.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRole signals an attempt to grant publication rights to a
	// user type that may not hold them.
	ErrInvalidRole = errors.New("user role may not hold publication rights")

	// ErrValidation signals malformed or missing input.
	ErrValidation = errors.New("validation failed")

	// ErrRemote wraps any failure of the backing service: non-2xx replies
	// and transport errors alike.
	ErrRemote = errors.New("remote service failure")
)
