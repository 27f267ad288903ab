package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrNoCart is returned when a cart operation needs a cart ID and none is known.
	ErrNoCart = errors.New("no cart")
	// ErrUnauthenticated indicates no valid customer access token is held.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrTokenExpired indicates a stored customer access token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidInput marks a request rejected by local validation before any remote call.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRejected marks a well-formed gateway response carrying top-level or user errors.
	ErrRejected = errors.New("rejected by gateway")
)
