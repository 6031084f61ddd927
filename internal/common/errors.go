// Package common defines shared constants and sentinel errors used across
// client and server layers of healthsync. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Session errors.
	ErrNotSignedIn = errors.New("no user signed in")
	ErrNoProfile   = errors.New("no local profile, run `profile set` first")

	// Document tree errors.
	ErrInvalidPath = errors.New("invalid document path")
	ErrForbidden   = errors.New("forbidden")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
