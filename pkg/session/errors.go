package session

import "errors"

var (
	// ErrInvalidSession indicates the session failed validation.
	ErrInvalidSession = errors.New("session.invalid")

	// ErrSessionExpired indicates the session has expired.
	ErrSessionExpired = errors.New("session.expired")

	// ErrSessionNotFound indicates no session was found. Sessions of
	// other tenants surface as this error, never as a mismatch.
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrSessionHijacked indicates the session was authenticated in a
	// different tenant than the current request's.
	ErrSessionHijacked = errors.New("session.hijack_suspected")

	// ErrTokenGeneration indicates token generation failed.
	ErrTokenGeneration = errors.New("session.token_generation_failed")

	// ErrNoTransport indicates no transport is configured.
	ErrNoTransport = errors.New("session.no_transport")

	// ErrNoStore indicates no store is configured.
	ErrNoStore = errors.New("session.no_store")
)
