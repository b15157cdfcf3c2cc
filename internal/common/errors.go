// Package common defines shared constants and sentinel errors used across
// client and server layers of farmclub. Callers should use errors.Is to
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

	// Validation errors.
	ErrorInvalidEmail  = errors.New(ReasonInvalidEmail)
	ErrorWeakPassword  = errors.New(ReasonWeakPassword)
	ErrorMissingFields = errors.New(ReasonMissingFields)
	ErrorInvalidRole   = errors.New(ReasonInvalidRole)

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
