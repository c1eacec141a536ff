package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidCredentials indicates the username is unknown or the password
	// does not match. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrRateLimited indicates too many failed login attempts for the
	// (username, client IP) pair within the decay window.
	ErrRateLimited = errors.New("too many login attempts")

	// ErrInvalidToken indicates the token format is invalid or the signature
	// doesn't match.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in
	// the future).
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrRevokedToken indicates a well-formed token whose record has been
	// deleted, typically by logout.
	ErrRevokedToken = errors.New("authentication token has been revoked")

	// ErrMissingToken indicates a token was expected but not provided.
	ErrMissingToken = errors.New("authentication token is missing")
)
