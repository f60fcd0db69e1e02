// Package common defines shared constants and sentinel errors used across
// the token, storage and transport layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")
	ErrorProtected    = errors.New("protected record")

	// Token issuance errors.
	ErrInvalidPrincipal      = errors.New("invalid principal")
	ErrSigningKeyUnavailable = errors.New("signing key unavailable")
	ErrInvalidLifetime       = errors.New("invalid token lifetime")

	// Token validation errors. A malformed token is treated as "no token"
	// by the sliding-expiration stage.
	ErrMalformedToken = errors.New("malformed token")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
)
